package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okhan/motoval/internal/domain/model"
	"github.com/okhan/motoval/pkg/logger"
	"github.com/okhan/motoval/pkg/metrics"
)

//go:embed sql/ddl.sql
var ddl embed.FS

const (
	insertStmt = `INSERT OR REPLACE INTO inspections (
		report_id, brand, model, year,
		engine_score, frame_score, suspension_score, brake_score,
		tire_score, electrical_score, body_score, document_score,
		final_score, market_baseline, estimated_value, scored_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectColumns = `report_id, brand, model, year,
		engine_score, frame_score, suspension_score, brake_score,
		tire_score, electrical_score, body_score, document_score,
		final_score, market_baseline, estimated_value, scored_at`
)

// SQLiteStore implements Store on a single-file sqlite database.
type SQLiteStore struct {
	db  *sql.DB
	log logger.Logger
}

// SQLiteOption applies a configuration option to the SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteLogger sets a custom logger for the store.
func WithSQLiteLogger(log logger.Logger) SQLiteOption {
	return func(s *SQLiteStore) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLiteStore(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("db path not specified")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	schema, err := ddl.ReadFile("sql/ddl.sql")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}

	s := &SQLiteStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save persists a record, replacing any previous row for the same report ID.
func (s *SQLiteStore) Save(ctx context.Context, rec model.InspectionRecord) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(float64(time.Since(start).Milliseconds()))
	}()

	_, err := s.db.ExecContext(ctx, insertStmt,
		rec.ReportID,
		rec.Vehicle.Brand,
		rec.Vehicle.Model,
		rec.Vehicle.Year,
		rec.Scores.Engine,
		rec.Scores.Frame,
		rec.Scores.Suspension,
		rec.Scores.Brakes,
		rec.Scores.Tires,
		rec.Scores.Electricals,
		rec.Scores.Body,
		rec.Scores.Documents,
		rec.Scores.Final,
		rec.Valuation.MarketBaseline,
		rec.Valuation.EstimatedValue,
		rec.ScoredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		metrics.RecordStoreError()
		metrics.RecordErrorByComponent("store", "save_failed")
		return fmt.Errorf("save inspection %s: %w", rec.ReportID, err)
	}
	return nil
}

// Get returns the record for a report ID.
func (s *SQLiteStore) Get(ctx context.Context, reportID string) (model.InspectionRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(float64(time.Since(start).Milliseconds()))
	}()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM inspections WHERE report_id = ?`, reportID)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.InspectionRecord{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError()
		metrics.RecordErrorByComponent("store", "get_failed")
		return model.InspectionRecord{}, fmt.Errorf("get inspection %s: %w", reportID, err)
	}
	return rec, nil
}

// List returns up to limit records, most recently scored first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]model.InspectionRecord, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM inspections ORDER BY scored_at DESC LIMIT ?`, limit)
	if err != nil {
		metrics.RecordStoreError()
		metrics.RecordErrorByComponent("store", "list_failed")
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recs := make([]model.InspectionRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("scan inspection row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	return recs, nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inspections`).Scan(&n); err != nil {
		if s.log != nil {
			s.log.Error(ctx, "count inspections failed", logger.Error(err))
		}
		return 0
	}
	return n
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// scanRecord reads one row using the provided scan function, so the same
// column mapping serves both QueryRow and Rows.
func scanRecord(scan func(dest ...any) error) (model.InspectionRecord, error) {
	var rec model.InspectionRecord
	var scoredAt string
	err := scan(
		&rec.ReportID,
		&rec.Vehicle.Brand,
		&rec.Vehicle.Model,
		&rec.Vehicle.Year,
		&rec.Scores.Engine,
		&rec.Scores.Frame,
		&rec.Scores.Suspension,
		&rec.Scores.Brakes,
		&rec.Scores.Tires,
		&rec.Scores.Electricals,
		&rec.Scores.Body,
		&rec.Scores.Documents,
		&rec.Scores.Final,
		&rec.Valuation.MarketBaseline,
		&rec.Valuation.EstimatedValue,
		&scoredAt,
	)
	if err != nil {
		return model.InspectionRecord{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, scoredAt)
	if err != nil {
		return model.InspectionRecord{}, fmt.Errorf("parse scored_at: %w", err)
	}
	rec.ScoredAt = ts
	return rec, nil
}
