package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/leagueforge/waiverwire/internal/domain/waiver"
)

type ClaimRepository struct {
	mu     sync.RWMutex
	claims map[string]waiver.Claim
}

func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{claims: make(map[string]waiver.Claim)}
}

func (r *ClaimRepository) Insert(_ context.Context, claim waiver.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.claims[claim.ID]; exists {
		return fmt.Errorf("claim %s already exists", claim.ID)
	}
	r.claims[claim.ID] = claim

	return nil
}

func (r *ClaimRepository) GetByID(_ context.Context, leagueID, claimID string) (waiver.Claim, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	claim, ok := r.claims[claimID]
	if !ok || claim.LeagueID != leagueID {
		return waiver.Claim{}, false, nil
	}

	return claim, true, nil
}

func (r *ClaimRepository) ListPendingByLeague(_ context.Context, leagueID string) ([]waiver.Claim, error) {
	return r.list(func(c waiver.Claim) bool {
		return c.LeagueID == leagueID && c.Status == waiver.StatusPending
	}, 0), nil
}

func (r *ClaimRepository) ListPendingByTeam(_ context.Context, leagueID, teamID string) ([]waiver.Claim, error) {
	return r.list(func(c waiver.Claim) bool {
		return c.LeagueID == leagueID && c.TeamID == teamID && c.Status == waiver.StatusPending
	}, 0), nil
}

func (r *ClaimRepository) ListTerminalByLeague(_ context.Context, leagueID string, filter waiver.LogFilter) ([]waiver.Claim, error) {
	statuses := make(map[waiver.Status]struct{}, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses[s] = struct{}{}
	}

	claims := r.list(func(c waiver.Claim) bool {
		if c.LeagueID != leagueID || !c.Status.IsTerminal() {
			return false
		}
		if len(statuses) > 0 {
			if _, ok := statuses[c.Status]; !ok {
				return false
			}
		}
		if filter.Week > 0 && c.Week != filter.Week {
			return false
		}
		return true
	}, 0)

	// Newest settled first, matching the postgres ordering.
	sort.SliceStable(claims, func(i, j int) bool {
		pi, pj := claims[i].ProcessedAt, claims[j].ProcessedAt
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		case !pi.Equal(*pj):
			return pi.After(*pj)
		}
		return claims[i].ID < claims[j].ID
	})

	if filter.Limit > 0 && len(claims) > filter.Limit {
		claims = claims[:filter.Limit]
	}

	return claims, nil
}

func (r *ClaimRepository) DeletePending(_ context.Context, leagueID, claimID, teamID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claim, ok := r.claims[claimID]
	if !ok || claim.LeagueID != leagueID || claim.TeamID != teamID || claim.Status != waiver.StatusPending {
		return false, nil
	}
	delete(r.claims, claimID)

	return true, nil
}

func (r *ClaimRepository) MarkProcessed(_ context.Context, claimID string, status waiver.Status, reason string, processedAt time.Time) error {
	if !status.IsTerminal() {
		return fmt.Errorf("status %s is not terminal", status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	claim, ok := r.claims[claimID]
	if !ok {
		return fmt.Errorf("claim %s not found", claimID)
	}
	if claim.Status != waiver.StatusPending {
		return fmt.Errorf("claim %s is already %s", claimID, claim.Status)
	}

	claim.Status = status
	claim.FailureReason = reason
	claim.ProcessedAt = &processedAt
	r.claims[claimID] = claim

	return nil
}

func (r *ClaimRepository) list(keep func(waiver.Claim) bool, limit int) []waiver.Claim {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]waiver.Claim, 0)
	for _, claim := range r.claims {
		if keep(claim) {
			out = append(out, claim)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
