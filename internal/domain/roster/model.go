package roster

import (
	"fmt"
	"time"

	"github.com/leagueforge/waiverwire/internal/domain/asset"
)

// Acquisition records how an asset arrived on a roster.
type Acquisition string

const (
	AcquisitionDraft     Acquisition = "draft"
	AcquisitionWaiver    Acquisition = "waiver"
	AcquisitionFreeAgent Acquisition = "free_agent"
	AcquisitionTrade     Acquisition = "trade"
)

// Entry is one asset held by one team. Within a league an asset is held
// by at most one team at any time; absence from every roster makes it a
// free agent.
type Entry struct {
	TeamID      string
	LeagueID    string
	Asset       asset.Ref
	Acquisition Acquisition
	AcquiredAt  time.Time
}

func (e Entry) Validate() error {
	if e.TeamID == "" {
		return fmt.Errorf("roster entry team id is required")
	}
	if e.LeagueID == "" {
		return fmt.Errorf("roster entry league id is required")
	}
	if err := e.Asset.Validate(); err != nil {
		return fmt.Errorf("roster entry asset: %w", err)
	}
	if e.Acquisition == "" {
		return fmt.Errorf("roster entry acquisition is required")
	}

	return nil
}
