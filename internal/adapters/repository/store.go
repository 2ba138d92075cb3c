// Package repository defines the inspection record store and its
// implementations. Records are write-once: a scored inspection keeps its
// original scores and valuation even after rule or price changes.
package repository

import (
	"context"

	"github.com/okhan/motoval/internal/domain/model"
)

// Store provides read/write access to scored inspection records.
type Store interface {
	// Save persists a scored inspection record.
	Save(ctx context.Context, rec model.InspectionRecord) error

	// Get returns the record for a report ID.
	// Returns ErrNotFound if the report is unknown.
	Get(ctx context.Context, reportID string) (model.InspectionRecord, error)

	// List returns up to limit records, most recently scored first.
	List(ctx context.Context, limit int) ([]model.InspectionRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) int

	// Close releases store resources.
	Close() error
}
