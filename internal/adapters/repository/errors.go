package repository

import "errors"

// Sentinel kinds for inspection store errors.
var (
	ErrNotFound     = errors.New("inspection not found")
	ErrInvalidLimit = errors.New("invalid list limit")
	ErrStoreClosed  = errors.New("store closed")
)
