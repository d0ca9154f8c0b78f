package reconcile

import "errors"

// Sentinel kinds for reconciliation errors.
var (
	ErrMisaligned = errors.New("participant links do not line up with requests")
)
