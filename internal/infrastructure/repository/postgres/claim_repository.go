package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
	qb "github.com/leagueforge/waiverwire/internal/platform/querybuilder"
)

type ClaimRepository struct {
	db *sqlx.DB
}

func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) Insert(ctx context.Context, claim waiver.Claim) error {
	model := claimInsertModel{
		ID:           claim.ID,
		LeagueID:     claim.LeagueID,
		TeamID:       claim.TeamID,
		Year:         claim.Year,
		Week:         claim.Week,
		AddAssetType: string(claim.Add.Type),
		AddAssetID:   claim.Add.ID,
		Bid:          claim.Bid,
		Priority:     claim.Priority,
		Status:       string(claim.Status),
	}
	if claim.HasDrop() {
		model.DropAssetType = optionalString(string(claim.Drop.Type))
		model.DropAssetID = optionalString(claim.Drop.ID)
	}

	query, args, err := qb.InsertModel("waiver_claims", model, "")
	if err != nil {
		return fmt.Errorf("build insert waiver claim query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert waiver claim claim=%s: %w", claim.ID, err)
	}

	return nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, leagueID, claimID string) (waiver.Claim, bool, error) {
	query := `
SELECT ` + claimColumns + `
FROM waiver_claims
WHERE league_public_id = $1
  AND public_id = $2`

	var row claimTableModel
	if err := r.db.GetContext(ctx, &row, query, leagueID, claimID); err != nil {
		if isNotFound(err) {
			return waiver.Claim{}, false, nil
		}
		return waiver.Claim{}, false, fmt.Errorf("get waiver claim: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ClaimRepository) ListPendingByLeague(ctx context.Context, leagueID string) ([]waiver.Claim, error) {
	query := `
SELECT ` + claimColumns + `
FROM waiver_claims
WHERE league_public_id = $1
  AND status = 'pending'
ORDER BY created_at, public_id`

	return r.list(ctx, query, leagueID)
}

func (r *ClaimRepository) ListPendingByTeam(ctx context.Context, leagueID, teamID string) ([]waiver.Claim, error) {
	query := `
SELECT ` + claimColumns + `
FROM waiver_claims
WHERE league_public_id = $1
  AND team_public_id = $2
  AND status = 'pending'
ORDER BY created_at, public_id`

	return r.list(ctx, query, leagueID, teamID)
}

func (r *ClaimRepository) ListTerminalByLeague(ctx context.Context, leagueID string, filter waiver.LogFilter) ([]waiver.Claim, error) {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []waiver.Status{waiver.StatusSuccess, waiver.StatusFailed, waiver.StatusError}
	}
	statusValues := make([]any, 0, len(statuses))
	for _, status := range statuses {
		statusValues = append(statusValues, string(status))
	}

	builder := qb.Select(
		"public_id", "league_public_id", "team_public_id", "season_year", "week",
		"add_asset_type", "add_asset_id", "drop_asset_type", "drop_asset_id",
		"bid", "priority", "status", "failure_reason", "created_at", "processed_at",
	).
		From("waiver_claims").
		Where(qb.Eq("league_public_id", leagueID), qb.In("status", statusValues)).
		OrderBy("processed_at DESC", "public_id")
	if filter.Week > 0 {
		builder = builder.Where(qb.Eq("week", filter.Week))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transaction log query: %w", err)
	}

	return r.list(ctx, query, args...)
}

func (r *ClaimRepository) DeletePending(ctx context.Context, leagueID, claimID, teamID string) (bool, error) {
	const query = `
DELETE FROM waiver_claims
WHERE league_public_id = $1
  AND public_id = $2
  AND team_public_id = $3
  AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, leagueID, claimID, teamID)
	if err != nil {
		return false, fmt.Errorf("delete pending waiver claim claim=%s: %w", claimID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete pending waiver claim claim=%s rows affected: %w", claimID, err)
	}

	return affected == 1, nil
}

func (r *ClaimRepository) MarkProcessed(ctx context.Context, claimID string, status waiver.Status, reason string, processedAt time.Time) error {
	return markClaimProcessed(ctx, r.db, claimID, status, reason, processedAt)
}

func (r *ClaimRepository) list(ctx context.Context, query string, args ...any) ([]waiver.Claim, error) {
	var rows []claimTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list waiver claims: %w", err)
	}

	claims := make([]waiver.Claim, 0, len(rows))
	for _, row := range rows {
		claims = append(claims, row.toDomain())
	}
	return claims, nil
}

// markClaimProcessed guards the pending-to-terminal transition in SQL so
// a claim cannot be processed twice, whether it runs on the pool or
// inside a settlement transaction.
func markClaimProcessed(ctx context.Context, ex sqlx.ExtContext, claimID string, status waiver.Status, reason string, processedAt time.Time) error {
	if !status.IsTerminal() {
		return fmt.Errorf("mark waiver claim claim=%s: status %q is not terminal", claimID, status)
	}

	const query = `
UPDATE waiver_claims
SET status = $2,
    failure_reason = $3,
    processed_at = $4,
    updated_at = NOW()
WHERE public_id = $1
  AND status = 'pending'`

	result, err := ex.ExecContext(ctx, query, claimID, string(status), optionalString(reason), processedAt.UTC())
	if err != nil {
		return fmt.Errorf("mark waiver claim claim=%s status=%s: %w", claimID, status, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark waiver claim claim=%s rows affected: %w", claimID, err)
	}
	if affected != 1 {
		return fmt.Errorf("mark waiver claim claim=%s status=%s: claim is not pending", claimID, status)
	}

	return nil
}
