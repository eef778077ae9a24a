package source

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrOpenSource   = errors.New("open source failed")
	ErrMalformedCSV = errors.New("malformed csv")
)
