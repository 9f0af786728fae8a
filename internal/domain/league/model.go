package league

import "fmt"

// League is a fantasy league running one waiver wire.
type League struct {
	ID                 string
	Name               string
	SeasonYear         int
	CurrentWeek        int
	CommissionerUserID string
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.SeasonYear <= 0 {
		return fmt.Errorf("league season year is required")
	}
	if l.CommissionerUserID == "" {
		return fmt.Errorf("league commissioner is required")
	}

	return nil
}

// IsCommissioner reports whether the given user may trigger settlement runs.
func (l League) IsCommissioner(userID string) bool {
	return userID != "" && l.CommissionerUserID == userID
}
