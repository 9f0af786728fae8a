package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/leagueforge/waiverwire/internal/domain/roster"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
	"github.com/leagueforge/waiverwire/internal/platform/lockring"
)

// SettlementStore applies accepted claims against the in-memory
// repositories. One mutex stands in for the per-claim transaction:
// every check runs before any mutation, so a failed claim leaves
// rosters and budgets untouched.
type SettlementStore struct {
	mu      sync.Mutex
	teams   *TeamRepository
	rosters *RosterRepository
	claims  *ClaimRepository
}

func NewSettlementStore(teams *TeamRepository, rosters *RosterRepository, claims *ClaimRepository) *SettlementStore {
	return &SettlementStore{
		teams:   teams,
		rosters: rosters,
		claims:  claims,
	}
}

func (s *SettlementStore) ApplyAccepted(ctx context.Context, claim waiver.Claim, processedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if claim.HasDrop() {
		holds, err := s.rosters.Holds(ctx, claim.LeagueID, claim.TeamID, claim.Drop)
		if err != nil {
			return fmt.Errorf("check drop asset: %w", err)
		}
		if !holds {
			return fmt.Errorf("%w: %s", waiver.ErrDropAssetMissing, claim.Drop)
		}
	}

	tm, exists, err := s.teams.GetByID(ctx, claim.LeagueID, claim.TeamID)
	if err != nil {
		return fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return fmt.Errorf("team %s not found in league %s", claim.TeamID, claim.LeagueID)
	}
	if tm.FAABBudget < claim.Bid {
		return fmt.Errorf("%w: budget %d, bid %d", waiver.ErrInsufficientBudget, tm.FAABBudget, claim.Bid)
	}

	if claim.HasDrop() {
		removed, err := s.rosters.Remove(ctx, claim.LeagueID, claim.TeamID, claim.Drop)
		if err != nil {
			return fmt.Errorf("remove drop asset: %w", err)
		}
		if !removed {
			return fmt.Errorf("%w: %s", waiver.ErrDropAssetMissing, claim.Drop)
		}
	}

	if err := s.rosters.Add(ctx, roster.Entry{
		TeamID:      claim.TeamID,
		LeagueID:    claim.LeagueID,
		Asset:       claim.Add,
		Acquisition: roster.AcquisitionWaiver,
		AcquiredAt:  processedAt,
	}); err != nil {
		return fmt.Errorf("add claimed asset: %w", err)
	}

	if err := s.teams.DebitBudget(ctx, claim.LeagueID, claim.TeamID, claim.Bid); err != nil {
		return fmt.Errorf("debit budget: %w", err)
	}

	if err := s.claims.MarkProcessed(ctx, claim.ID, waiver.StatusSuccess, "", processedAt); err != nil {
		return fmt.Errorf("mark claim success: %w", err)
	}

	return nil
}

// RunLocker serializes settlement per league inside one process.
type RunLocker struct {
	ring *lockring.Ring
}

func NewRunLocker() *RunLocker {
	return &RunLocker{ring: lockring.New()}
}

func (l *RunLocker) AcquireRunLock(_ context.Context, leagueID string) (func(), error) {
	release, ok := l.ring.TryAcquire(leagueID)
	if !ok {
		return nil, waiver.ErrSettlementRunning
	}

	return release, nil
}
