package sandbox

import "errors"

// ErrInvalidFixture is returned for fixture parameters that cannot produce
// every report case.
var ErrInvalidFixture = errors.New("invalid fixture")
