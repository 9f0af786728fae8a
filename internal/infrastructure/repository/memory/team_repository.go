package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/leagueforge/waiverwire/internal/domain/team"
)

type TeamRepository struct {
	mu            sync.RWMutex
	teamsByLeague map[string][]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	teamsByLeague := make(map[string][]team.Team)
	for _, item := range teams {
		teamsByLeague[item.LeagueID] = append(teamsByLeague[item.LeagueID], item)
	}

	return &TeamRepository{teamsByLeague: teamsByLeague}
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := r.teamsByLeague[leagueID]
	out := make([]team.Team, 0, len(teams))
	out = append(out, teams...)

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, leagueID, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.teamsByLeague[leagueID] {
		if item.ID == teamID {
			return item, true, nil
		}
	}

	return team.Team{}, false, nil
}

// DebitBudget subtracts amount from the team's FAAB budget, refusing to
// take it below zero. The memory settlement store calls it under its
// own lock.
func (r *TeamRepository) DebitBudget(_ context.Context, leagueID, teamID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	teams := r.teamsByLeague[leagueID]
	for idx := range teams {
		if teams[idx].ID != teamID {
			continue
		}
		if teams[idx].FAABBudget < amount {
			return fmt.Errorf("budget %d cannot cover debit %d for team %s", teams[idx].FAABBudget, amount, teamID)
		}
		teams[idx].FAABBudget -= amount
		return nil
	}

	return fmt.Errorf("team %s not found in league %s", teamID, leagueID)
}
