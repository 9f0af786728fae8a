package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/leagueforge/waiverwire/internal/domain/asset"
	"github.com/leagueforge/waiverwire/internal/domain/roster"
)

type rosterEntryTableModel struct {
	TeamID      string    `db:"team_public_id"`
	LeagueID    string    `db:"league_public_id"`
	AssetType   string    `db:"asset_type"`
	AssetID     string    `db:"asset_id"`
	Acquisition string    `db:"acquisition"`
	AcquiredAt  time.Time `db:"acquired_at"`
}

func (m rosterEntryTableModel) toDomain() roster.Entry {
	return roster.Entry{
		TeamID:   m.TeamID,
		LeagueID: m.LeagueID,
		Asset: asset.Ref{
			Type: asset.Type(m.AssetType),
			ID:   m.AssetID,
		},
		Acquisition: roster.Acquisition(m.Acquisition),
		AcquiredAt:  m.AcquiredAt,
	}
}

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) ListByTeam(ctx context.Context, leagueID, teamID string) ([]roster.Entry, error) {
	const query = `
SELECT team_public_id, league_public_id, asset_type, asset_id, acquisition, acquired_at
FROM roster_entries
WHERE league_public_id = $1
  AND team_public_id = $2
ORDER BY acquired_at, asset_type, asset_id`

	var rows []rosterEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueID, teamID); err != nil {
		return nil, fmt.Errorf("list roster entries: %w", err)
	}

	entries := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (r *RosterRepository) Holds(ctx context.Context, leagueID, teamID string, ref asset.Ref) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1
    FROM roster_entries
    WHERE league_public_id = $1
      AND team_public_id = $2
      AND asset_type = $3
      AND asset_id = $4
)`

	var held bool
	if err := r.db.GetContext(ctx, &held, query, leagueID, teamID, string(ref.Type), ref.ID); err != nil {
		return false, fmt.Errorf("check roster holding: %w", err)
	}
	return held, nil
}

func (r *RosterRepository) HolderOf(ctx context.Context, leagueID string, ref asset.Ref) (string, bool, error) {
	const query = `
SELECT team_public_id
FROM roster_entries
WHERE league_public_id = $1
  AND asset_type = $2
  AND asset_id = $3`

	var teamID string
	if err := r.db.GetContext(ctx, &teamID, query, leagueID, string(ref.Type), ref.ID); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find asset holder: %w", err)
	}
	return teamID, true, nil
}
