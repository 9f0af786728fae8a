package team

import "fmt"

// Team is a fantasy roster owner inside a league. FAABBudget is the
// remaining free-agent acquisition budget; WaiverPriority breaks
// equal-bid ties (lower wins).
type Team struct {
	ID             string
	LeagueID       string
	OwnerUserID    string
	Name           string
	FAABBudget     int64
	WaiverPriority int
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("team league id is required")
	}
	if t.OwnerUserID == "" {
		return fmt.Errorf("team owner is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.FAABBudget < 0 {
		return fmt.Errorf("team faab budget cannot be negative")
	}
	if t.WaiverPriority < 1 {
		return fmt.Errorf("team waiver priority must be >= 1")
	}

	return nil
}

// IsOwnedBy reports whether the given user manages this team.
func (t Team) IsOwnedBy(userID string) bool {
	return userID != "" && t.OwnerUserID == userID
}
