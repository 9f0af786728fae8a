package waiver

import (
	"context"
	"time"
)

// LogFilter narrows transaction-log listings.
type LogFilter struct {
	Statuses []Status
	Week     int
	Limit    int
}

// Repository describes claim persistence needs from use cases.
// Implementations must enforce the lifecycle: MarkProcessed and
// DeletePending only act on pending claims, so terminal states stay
// immutable and a claim that went terminal mid-run cannot be cancelled
// afterwards.
type Repository interface {
	Insert(ctx context.Context, claim Claim) error
	GetByID(ctx context.Context, leagueID, claimID string) (Claim, bool, error)
	ListPendingByLeague(ctx context.Context, leagueID string) ([]Claim, error)
	ListPendingByTeam(ctx context.Context, leagueID, teamID string) ([]Claim, error)
	ListTerminalByLeague(ctx context.Context, leagueID string, filter LogFilter) ([]Claim, error)
	// DeletePending removes the claim iff it is still pending and
	// belongs to the given team. Returns false when no such row exists.
	DeletePending(ctx context.Context, leagueID, claimID, teamID string) (bool, error)
	// MarkProcessed transitions a pending claim to a terminal status.
	MarkProcessed(ctx context.Context, claimID string, status Status, reason string, processedAt time.Time) error
}

// SettlementStore applies one accepted claim's effects atomically:
// delete the drop roster entry (failing with ErrDropAssetMissing when
// the expected row is gone), insert the add entry tagged as a waiver
// acquisition, debit the team budget (never below zero), and mark the
// claim success. A failure anywhere rolls the whole claim back.
type SettlementStore interface {
	ApplyAccepted(ctx context.Context, claim Claim, processedAt time.Time) error
}

// RunLocker serializes settlement runs per league. Acquire fails with
// ErrSettlementRunning when another run holds the league's lock.
type RunLocker interface {
	AcquireRunLock(ctx context.Context, leagueID string) (release func(), err error)
}
