package waiver

import (
	"sort"

	"github.com/leagueforge/waiverwire/internal/domain/asset"
)

// RejectReason explains why the resolver passed over a claim.
type RejectReason string

const (
	ReasonAssetTaken      RejectReason = "asset_taken"
	ReasonDropConflict    RejectReason = "drop_conflict"
	ReasonBudgetExhausted RejectReason = "budget_exhausted"
)

func (r RejectReason) Describe() string {
	switch r {
	case ReasonAssetTaken:
		return "asset already taken"
	case ReasonDropConflict:
		return "drop asset already moved"
	case ReasonBudgetExhausted:
		return "insufficient remaining budget"
	default:
		return string(r)
	}
}

// Decision is the resolver's verdict for one claim.
type Decision struct {
	ClaimID  string
	Accepted bool
	Reason   RejectReason
}

// TieBreak selects the tertiary ordering key used when bid and priority
// are both equal. Claim id is always the final key so two identical
// inputs resolve identically.
type TieBreak string

const (
	TieBreakCreatedAt TieBreak = "created_at"
	TieBreakClaimID   TieBreak = "claim_id"
)

func (t TieBreak) Valid() bool {
	return t == TieBreakCreatedAt || t == TieBreakClaimID
}

// Resolve runs the sealed-bid auction over one league's pending claims:
// a single deterministic greedy pass with no backtracking. Claims are
// ordered bid descending, then priority ascending, then the configured
// tie-break. Each claim is accepted unless its add asset was already
// granted this pass, its drop asset was already moved this pass, or the
// team's remaining budget no longer covers the bid. Budgets holds each
// team's FAAB budget at the moment of the run; accepted bids are
// debited from the working copy so a team cannot overdraw across
// several individually-valid claims.
//
// Resolve is pure: it never touches storage and never mutates its
// inputs.
func Resolve(claims []Claim, budgets map[string]int64, tieBreak TieBreak) []Decision {
	if len(claims) == 0 {
		return nil
	}
	if !tieBreak.Valid() {
		tieBreak = TieBreakCreatedAt
	}

	ordered := make([]Claim, len(claims))
	copy(ordered, claims)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Bid != b.Bid {
			return a.Bid > b.Bid
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if tieBreak == TieBreakCreatedAt && !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	taken := make(map[asset.Key]struct{}, len(ordered))
	dropped := make(map[DropKey]struct{}, len(ordered))
	remaining := make(map[string]int64, len(budgets))
	for teamID, budget := range budgets {
		remaining[teamID] = budget
	}

	decisions := make([]Decision, 0, len(ordered))
	for _, claim := range ordered {
		if _, conflict := taken[claim.Add.Key()]; conflict {
			decisions = append(decisions, Decision{ClaimID: claim.ID, Reason: ReasonAssetTaken})
			continue
		}
		if claim.HasDrop() {
			if _, conflict := dropped[claim.DropKey()]; conflict {
				decisions = append(decisions, Decision{ClaimID: claim.ID, Reason: ReasonDropConflict})
				continue
			}
		}
		if claim.Bid > remaining[claim.TeamID] {
			decisions = append(decisions, Decision{ClaimID: claim.ID, Reason: ReasonBudgetExhausted})
			continue
		}

		taken[claim.Add.Key()] = struct{}{}
		if claim.HasDrop() {
			dropped[claim.DropKey()] = struct{}{}
		}
		remaining[claim.TeamID] -= claim.Bid
		decisions = append(decisions, Decision{ClaimID: claim.ID, Accepted: true})
	}

	return decisions
}
