// Package pricing provides price book adapters for the valuation
// calculator. A price book maps brand and model to a reference market
// price; lookups are case-insensitive and a miss is reported, never an
// error, so the calculator can fall back to its default baseline.
package pricing

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okhan/motoval/pkg/metrics"
)

// Lookup result labels for metrics.
const (
	lookupHit  = "hit"
	lookupMiss = "miss"
)

// Book is an in-memory price book keyed by normalized brand and model.
type Book struct {
	prices map[string]map[string]int64
}

// NewBook builds a price book from brand -> model -> price data. Keys are
// normalized once at construction so lookups stay allocation-free.
func NewBook(seed map[string]map[string]int64) *Book {
	b := &Book{prices: make(map[string]map[string]int64, len(seed))}
	for brand, models := range seed {
		nm := make(map[string]int64, len(models))
		for mdl, price := range models {
			nm[normalize(mdl)] = price
		}
		b.prices[normalize(brand)] = nm
	}
	return b
}

// Baseline implements valuation.PriceBook.
func (b *Book) Baseline(_ context.Context, brand, mdl string) (int64, bool) {
	models, ok := b.prices[normalize(brand)]
	if !ok {
		metrics.RecordPriceLookup(lookupMiss)
		metrics.RecordValuationFallback()
		return 0, false
	}
	price, ok := models[normalize(mdl)]
	if !ok {
		metrics.RecordPriceLookup(lookupMiss)
		metrics.RecordValuationFallback()
		return 0, false
	}
	metrics.RecordPriceLookup(lookupHit)
	return price, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LoadFile reads a price book from a YAML file shaped as:
//
//	Honda:
//	  CD 70: 159900
//	  CG 125: 238500
//	Yamaha:
//	  YBR 125: 429500
func LoadFile(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadPriceBook, err)
	}
	return Parse(data)
}

// Parse decodes a price book from YAML.
func Parse(data []byte) (*Book, error) {
	var raw map[string]map[string]int64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadPriceBook, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty price book", ErrLoadPriceBook)
	}
	return NewBook(raw), nil
}

// Default returns the seed price book shipped with the service. Deployments
// normally replace it with an admin-managed file; the CD 70 entry doubles as
// the reference fixture for the valuation examples.
func Default() *Book {
	return NewBook(map[string]map[string]int64{
		"Honda": {
			"CD 70":   159900,
			"CG 125":  238500,
			"CB 150F": 493900,
			"Pridor":  215900,
		},
		"Yamaha": {
			"YBR 125": 429500,
			"YB 125Z": 389500,
		},
		"Suzuki": {
			"GS 150":  372000,
			"GD 110S": 347000,
		},
		"United": {
			"US 70": 115000,
		},
	})
}
