package rules

import "errors"

// Sentinel kinds for rule set errors.
var (
	ErrInvalidRules = errors.New("invalid rule set")
	ErrLoadRules    = errors.New("load rule set failed")
)
