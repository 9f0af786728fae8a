package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/leagueforge/waiverwire/internal/domain/team"
)

type teamTableModel struct {
	ID             string `db:"public_id"`
	LeagueID       string `db:"league_public_id"`
	OwnerUserID    string `db:"owner_user_id"`
	Name           string `db:"name"`
	FAABBudget     int64  `db:"faab_budget"`
	WaiverPriority int    `db:"waiver_priority"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:             m.ID,
		LeagueID:       m.LeagueID,
		OwnerUserID:    m.OwnerUserID,
		Name:           m.Name,
		FAABBudget:     m.FAABBudget,
		WaiverPriority: m.WaiverPriority,
	}
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID string) ([]team.Team, error) {
	const query = `
SELECT public_id, league_public_id, owner_user_id, name, faab_budget, waiver_priority
FROM teams
WHERE league_public_id = $1
  AND deleted_at IS NULL
ORDER BY waiver_priority, public_id`

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueID); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	teams := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, row.toDomain())
	}
	return teams, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, leagueID, teamID string) (team.Team, bool, error) {
	const query = `
SELECT public_id, league_public_id, owner_user_id, name, faab_budget, waiver_priority
FROM teams
WHERE league_public_id = $1
  AND public_id = $2
  AND deleted_at IS NULL`

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, leagueID, teamID); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team: %w", err)
	}

	return row.toDomain(), true, nil
}
