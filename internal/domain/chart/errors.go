package chart

import "errors"

// Sentinel kinds for chart errors.
var (
	ErrInvalidDescriptor = errors.New("invalid chart descriptor")
)
