package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrUnknownEmployee = errors.New("unknown employee")
	ErrInvalidRange    = errors.New("invalid date range")
)
