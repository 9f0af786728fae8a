package team

import "context"

// Repository reads teams for claim validation and settlement. Budget
// and priority snapshots come from these lookups; budget debits go
// through the settlement store.
type Repository interface {
	// ListByLeague returns every active team in the league.
	ListByLeague(ctx context.Context, leagueID string) ([]Team, error)
	// GetByID scopes the lookup to a league so a team id from another
	// league reads as absent.
	GetByID(ctx context.Context, leagueID, teamID string) (Team, bool, error)
}
