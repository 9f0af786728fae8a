package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/leagueforge/waiverwire/internal/domain/asset"
	"github.com/leagueforge/waiverwire/internal/domain/roster"
)

type RosterRepository struct {
	mu      sync.RWMutex
	entries []roster.Entry
}

func NewRosterRepository(entries []roster.Entry) *RosterRepository {
	return &RosterRepository{entries: append([]roster.Entry(nil), entries...)}
}

func (r *RosterRepository) ListByTeam(_ context.Context, leagueID, teamID string) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Entry, 0)
	for _, entry := range r.entries {
		if entry.LeagueID == leagueID && entry.TeamID == teamID {
			out = append(out, entry)
		}
	}

	return out, nil
}

func (r *RosterRepository) Holds(_ context.Context, leagueID, teamID string, ref asset.Ref) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.LeagueID == leagueID && entry.TeamID == teamID && entry.Asset.Key() == ref.Key() {
			return true, nil
		}
	}

	return false, nil
}

func (r *RosterRepository) HolderOf(_ context.Context, leagueID string, ref asset.Ref) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.LeagueID == leagueID && entry.Asset.Key() == ref.Key() {
			return entry.TeamID, true, nil
		}
	}

	return "", false, nil
}

// Remove deletes the team's entry for the asset, reporting whether a
// row was actually removed.
func (r *RosterRepository) Remove(_ context.Context, leagueID, teamID string, ref asset.Ref) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx, entry := range r.entries {
		if entry.LeagueID == leagueID && entry.TeamID == teamID && entry.Asset.Key() == ref.Key() {
			r.entries = append(r.entries[:idx], r.entries[idx+1:]...)
			return true, nil
		}
	}

	return false, nil
}

// Add inserts a new roster entry, refusing a duplicate holder for the
// asset inside the league.
func (r *RosterRepository) Add(_ context.Context, entry roster.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.entries {
		if existing.LeagueID == entry.LeagueID && existing.Asset.Key() == entry.Asset.Key() {
			return fmt.Errorf("asset %s already rostered in league %s", entry.Asset, entry.LeagueID)
		}
	}
	r.entries = append(r.entries, entry)

	return nil
}
