package waiver

import (
	"fmt"
	"time"

	"github.com/leagueforge/waiverwire/internal/domain/asset"
)

// Status is the lifecycle state of a claim. A claim is created pending
// and becomes terminal exactly once; terminal states are immutable.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusError
}

func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusPending, StatusSuccess, StatusFailed, StatusError:
		return Status(v), nil
	default:
		return "", fmt.Errorf("unknown claim status %q", v)
	}
}

// Claim is a sealed bid to acquire a free agent, optionally paired with
// dropping a rostered asset. Priority is the team's waiver priority
// snapshotted at submission time (lower resolves first on bid ties).
type Claim struct {
	ID       string
	LeagueID string
	TeamID   string
	Year     int
	Week     int
	Add      asset.Ref
	// Drop is the asset released when the claim wins. The zero Ref
	// means no drop (an open roster slot absorbs the pickup).
	Drop          asset.Ref
	Bid           int64
	Priority      int
	Status        Status
	FailureReason string
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}

func (c Claim) HasDrop() bool {
	return !c.Drop.IsZero()
}

func (c Claim) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("claim id is required")
	}
	if c.LeagueID == "" {
		return fmt.Errorf("claim league id is required")
	}
	if c.TeamID == "" {
		return fmt.Errorf("claim team id is required")
	}
	if err := c.Add.Validate(); err != nil {
		return fmt.Errorf("claim add asset: %w", err)
	}
	if c.HasDrop() {
		if err := c.Drop.Validate(); err != nil {
			return fmt.Errorf("claim drop asset: %w", err)
		}
	}
	if c.Bid < 0 {
		return fmt.Errorf("claim bid cannot be negative")
	}
	if c.Priority < 1 {
		return fmt.Errorf("claim priority must be >= 1")
	}

	return nil
}

// DropKey identifies one team releasing one asset, used to reject a
// second claim that would move an already-moved asset within a pass.
type DropKey struct {
	TeamID string
	Asset  asset.Key
}

func (c Claim) DropKey() DropKey {
	return DropKey{TeamID: c.TeamID, Asset: c.Drop.Key()}
}
