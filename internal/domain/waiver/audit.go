package waiver

import "fmt"

// AuditEntry is one human-readable line of a settlement run's trace.
// The run returns the full list to the triggering caller; the claim
// rows themselves are the durable history.
type AuditEntry struct {
	ClaimID string
	TeamID  string
	Status  Status
	Detail  string
}

func (e AuditEntry) String() string {
	switch e.Status {
	case StatusSuccess:
		return fmt.Sprintf("claim %s success: %s", e.ClaimID, e.Detail)
	case StatusFailed:
		return fmt.Sprintf("claim %s failed: %s", e.ClaimID, e.Detail)
	case StatusError:
		return fmt.Sprintf("claim %s error: %s", e.ClaimID, e.Detail)
	default:
		return fmt.Sprintf("claim %s %s: %s", e.ClaimID, e.Status, e.Detail)
	}
}

func successEntry(claim Claim) AuditEntry {
	return AuditEntry{
		ClaimID: claim.ID,
		TeamID:  claim.TeamID,
		Status:  StatusSuccess,
		Detail:  fmt.Sprintf("team %s got asset %s for bid %d", claim.TeamID, claim.Add, claim.Bid),
	}
}

func failedEntry(claim Claim, reason RejectReason) AuditEntry {
	return AuditEntry{
		ClaimID: claim.ID,
		TeamID:  claim.TeamID,
		Status:  StatusFailed,
		Detail:  reason.Describe(),
	}
}

func errorEntry(claim Claim, cause error) AuditEntry {
	return AuditEntry{
		ClaimID: claim.ID,
		TeamID:  claim.TeamID,
		Status:  StatusError,
		Detail:  cause.Error(),
	}
}

// NewAuditEntry builds the entry matching a claim's terminal state.
func NewAuditEntry(claim Claim, status Status, reason RejectReason, cause error) AuditEntry {
	switch status {
	case StatusSuccess:
		return successEntry(claim)
	case StatusError:
		return errorEntry(claim, cause)
	default:
		return failedEntry(claim, reason)
	}
}
