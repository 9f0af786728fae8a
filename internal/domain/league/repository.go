package league

import "context"

// Repository reads leagues for membership checks, the commissioner
// gate, and the sweep fan-out.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
}
