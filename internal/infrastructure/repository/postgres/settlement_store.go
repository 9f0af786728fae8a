package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
)

// SettlementStore applies one accepted claim in a single transaction so
// the drop, the pickup, the budget debit and the status change land
// together or not at all.
type SettlementStore struct {
	db *sqlx.DB
}

func NewSettlementStore(db *sqlx.DB) *SettlementStore {
	return &SettlementStore{db: db}
}

func (s *SettlementStore) ApplyAccepted(ctx context.Context, claim waiver.Claim, processedAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for claim settlement: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if claim.HasDrop() {
		const dropQuery = `
DELETE FROM roster_entries
WHERE league_public_id = $1
  AND team_public_id = $2
  AND asset_type = $3
  AND asset_id = $4`

		result, err := tx.ExecContext(ctx, dropQuery,
			claim.LeagueID, claim.TeamID, string(claim.Drop.Type), claim.Drop.ID)
		if err != nil {
			return fmt.Errorf("drop roster entry claim=%s: %w", claim.ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("drop roster entry claim=%s rows affected: %w", claim.ID, err)
		}
		if affected != 1 {
			return fmt.Errorf("drop roster entry claim=%s asset=%s: %w",
				claim.ID, claim.Drop, waiver.ErrDropAssetMissing)
		}
	}

	// The unique (league, asset) index rejects a pickup of an asset that
	// landed on another roster since the resolve pass read state.
	const addQuery = `
INSERT INTO roster_entries (team_public_id, league_public_id, asset_type, asset_id, acquisition, acquired_at)
VALUES ($1, $2, $3, $4, 'waiver', $5)`

	if _, err := tx.ExecContext(ctx, addQuery,
		claim.TeamID, claim.LeagueID, string(claim.Add.Type), claim.Add.ID, processedAt.UTC()); err != nil {
		return fmt.Errorf("add roster entry claim=%s asset=%s: %w", claim.ID, claim.Add, err)
	}

	const debitQuery = `
UPDATE teams
SET faab_budget = faab_budget - $3,
    updated_at = NOW()
WHERE league_public_id = $1
  AND public_id = $2
  AND faab_budget >= $3
  AND deleted_at IS NULL`

	result, err := tx.ExecContext(ctx, debitQuery, claim.LeagueID, claim.TeamID, claim.Bid)
	if err != nil {
		return fmt.Errorf("debit team budget claim=%s: %w", claim.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit team budget claim=%s rows affected: %w", claim.ID, err)
	}
	if affected != 1 {
		return fmt.Errorf("debit team budget claim=%s team=%s bid=%d: %w",
			claim.ID, claim.TeamID, claim.Bid, waiver.ErrInsufficientBudget)
	}

	if err := markClaimProcessed(ctx, tx, claim.ID, waiver.StatusSuccess, "", processedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit claim settlement tx claim=%s: %w", claim.ID, err)
	}

	return nil
}
