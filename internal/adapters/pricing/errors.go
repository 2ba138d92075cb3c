package pricing

import "errors"

// Sentinel kinds for price book errors.
var (
	ErrLoadPriceBook = errors.New("load price book failed")
)
