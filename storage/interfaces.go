package storage

import (
	"context"
	"errors"

	"sales-dashboard/models"
)

// ErrTableNotEmpty is returned by AppendOnce when the table already holds rows
// by the time the write transaction acquires the import lock.
var ErrTableNotEmpty = errors.New("sales table already populated")

// SalesStore is the interface any backend holding the raw sales table must satisfy.
type SalesStore interface {
	// EnsureTable creates the sales table if it is absent and reports whether
	// it did so.
	EnsureTable(ctx context.Context) (bool, error)
	TableExists(ctx context.Context) (bool, error)
	CountRows(ctx context.Context) (int, error)
	// AppendOnce writes every record in one transaction, provided the table
	// is still empty inside that transaction.
	AppendOnce(ctx context.Context, records []models.RawRecord) (int, error)
	FetchRaw(ctx context.Context) (models.RawTable, error)
	Close() error
}

// RecordExporter is the interface for writing normalized records out.
type RecordExporter interface {
	WriteRecords(records []models.NormalizedRecord) error
	Close() error
}
