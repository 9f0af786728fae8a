package roster

import (
	"context"

	"github.com/leagueforge/waiverwire/internal/domain/asset"
)

// Repository describes roster reads needed by claim validation. Writes
// happen only through the settlement store, which applies an accepted
// claim's drop/add/debit in one transaction.
type Repository interface {
	ListByTeam(ctx context.Context, leagueID, teamID string) ([]Entry, error)
	// Holds reports whether the team currently holds the asset.
	Holds(ctx context.Context, leagueID, teamID string, ref asset.Ref) (bool, error)
	// HolderOf returns the team currently holding the asset in the
	// league, or ok=false when it is a free agent.
	HolderOf(ctx context.Context, leagueID string, ref asset.Ref) (teamID string, ok bool, err error)
}
