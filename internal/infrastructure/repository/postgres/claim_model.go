package postgres

import (
	"time"

	"github.com/leagueforge/waiverwire/internal/domain/asset"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
)

type claimTableModel struct {
	ID            string     `db:"public_id"`
	LeagueID      string     `db:"league_public_id"`
	TeamID        string     `db:"team_public_id"`
	Year          int        `db:"season_year"`
	Week          int        `db:"week"`
	AddAssetType  string     `db:"add_asset_type"`
	AddAssetID    string     `db:"add_asset_id"`
	DropAssetType *string    `db:"drop_asset_type"`
	DropAssetID   *string    `db:"drop_asset_id"`
	Bid           int64      `db:"bid"`
	Priority      int        `db:"priority"`
	Status        string     `db:"status"`
	FailureReason *string    `db:"failure_reason"`
	CreatedAt     time.Time  `db:"created_at"`
	ProcessedAt   *time.Time `db:"processed_at"`
}

const claimColumns = `public_id, league_public_id, team_public_id, season_year, week,
    add_asset_type, add_asset_id, drop_asset_type, drop_asset_id,
    bid, priority, status, failure_reason, created_at, processed_at`

type claimInsertModel struct {
	ID            string  `db:"public_id"`
	LeagueID      string  `db:"league_public_id"`
	TeamID        string  `db:"team_public_id"`
	Year          int     `db:"season_year"`
	Week          int     `db:"week"`
	AddAssetType  string  `db:"add_asset_type"`
	AddAssetID    string  `db:"add_asset_id"`
	DropAssetType *string `db:"drop_asset_type"`
	DropAssetID   *string `db:"drop_asset_id"`
	Bid           int64   `db:"bid"`
	Priority      int     `db:"priority"`
	Status        string  `db:"status"`
}

func (m claimTableModel) toDomain() waiver.Claim {
	claim := waiver.Claim{
		ID:       m.ID,
		LeagueID: m.LeagueID,
		TeamID:   m.TeamID,
		Year:     m.Year,
		Week:     m.Week,
		Add: asset.Ref{
			Type: asset.Type(m.AddAssetType),
			ID:   m.AddAssetID,
		},
		Bid:         m.Bid,
		Priority:    m.Priority,
		Status:      waiver.Status(m.Status),
		CreatedAt:   m.CreatedAt,
		ProcessedAt: m.ProcessedAt,
	}
	if m.DropAssetType != nil && m.DropAssetID != nil {
		claim.Drop = asset.Ref{
			Type: asset.Type(*m.DropAssetType),
			ID:   *m.DropAssetID,
		}
	}
	if m.FailureReason != nil {
		claim.FailureReason = *m.FailureReason
	}
	return claim
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
