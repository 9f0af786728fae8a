package waiver

import "errors"

// Submission-time validation failures.
var (
	ErrInsufficientBudget = errors.New("bid exceeds remaining faab budget")
	ErrAssetNotOwned      = errors.New("drop asset is not on the team roster")
	ErrAssetUnavailable   = errors.New("add asset is already rostered in the league")
)

// Settlement-time failures.
var (
	// ErrDropAssetMissing means the drop asset left the roster between
	// submission and settlement; the claim settles as error and the add
	// asset is not granted.
	ErrDropAssetMissing = errors.New("drop asset no longer on roster")
	// ErrSettlementRunning means another run already holds the league's
	// settlement lock.
	ErrSettlementRunning = errors.New("settlement already running for league")
)
