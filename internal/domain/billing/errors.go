package billing

import "errors"

// Sentinel kinds for billing errors. Billing correctness cannot be silently
// defaulted, so a missing policy surfaces instead of degrading.
var (
	ErrUnknownProject = errors.New("no billing policy for project")
	ErrInvalidPolicy  = errors.New("invalid billing policy")
	ErrInvalidRate    = errors.New("invalid hourly rate")
)
