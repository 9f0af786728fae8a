package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/leagueforge/waiverwire/internal/domain/league"
)

type leagueTableModel struct {
	ID                 string `db:"public_id"`
	Name               string `db:"name"`
	SeasonYear         int    `db:"season_year"`
	CurrentWeek        int    `db:"current_week"`
	CommissionerUserID string `db:"commissioner_user_id"`
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		ID:                 m.ID,
		Name:               m.Name,
		SeasonYear:         m.SeasonYear,
		CurrentWeek:        m.CurrentWeek,
		CommissionerUserID: m.CommissionerUserID,
	}
}

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	const query = `
SELECT public_id, name, season_year, current_week, commissioner_user_id
FROM leagues
WHERE deleted_at IS NULL
ORDER BY name, public_id`

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	leagues := make([]league.League, 0, len(rows))
	for _, row := range rows {
		leagues = append(leagues, row.toDomain())
	}
	return leagues, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	const query = `
SELECT public_id, name, season_year, current_week, commissioner_user_id
FROM leagues
WHERE public_id = $1
  AND deleted_at IS NULL`

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, leagueID); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}

	return row.toDomain(), true, nil
}
