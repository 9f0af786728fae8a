package user

// Principal is the authenticated caller as resolved by the account service.
type Principal struct {
	UserID string
	Email  string
}
