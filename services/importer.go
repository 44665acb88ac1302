package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"

	"sales-dashboard/models"
	"sales-dashboard/storage"
	"sales-dashboard/utils"
)

// ImportOutcome is the successful result of an import attempt.
type ImportOutcome string

const (
	OutcomeImported       ImportOutcome = "imported"
	OutcomeAlreadyPresent ImportOutcome = "already_present"
)

// ImportResult describes a completed import attempt.
type ImportResult struct {
	ImportID string
	Outcome  ImportOutcome
	Rows     int
}

// SourceReader reads a tabular source file.
type SourceReader func(path string) (models.RawTable, error)

// Importer loads the source export into the store exactly once.
type Importer struct {
	store  storage.SalesStore
	read   SourceReader
	logger *utils.Logger
}

// NewImporter creates an Importer reading sources with storage.ReadSource.
func NewImporter(store storage.SalesStore, logger *utils.Logger) *Importer {
	return &Importer{store: store, read: storage.ReadSource, logger: logger}
}

// EnsureImported creates the sales table if needed and, when it holds no
// rows, loads sourcePath into it in a single transaction. Once the table has
// data every call is a no-op reporting OutcomeAlreadyPresent.
//
// SourceMissing and SourceEmpty leave an empty, valid table. SchemaMismatch
// and WriteFailed write nothing. All four come back as *ImportError.
func (im *Importer) EnsureImported(ctx context.Context, sourcePath string) (ImportResult, error) {
	result := ImportResult{ImportID: uuid.NewString()}
	log := im.logger.With("import_id", result.ImportID)

	created, err := im.store.EnsureTable(ctx)
	if err != nil {
		return result, err
	}
	if created {
		log.Info("[import] Created table %q", models.SalesTable)
	} else {
		n, err := im.store.CountRows(ctx)
		if err != nil {
			return result, err
		}
		if n > 0 {
			log.Info("[import] Table %q already holds %d rows, skipping import", models.SalesTable, n)
			result.Outcome = OutcomeAlreadyPresent
			return result, nil
		}
		log.Info("[import] Table %q exists but is empty, importing %s", models.SalesTable, sourcePath)
	}

	table, err := im.read(sourcePath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("[import] Source %s not found, table %q stays empty", sourcePath, models.SalesTable)
		return result, &ImportError{Kind: ErrSourceMissing, Path: sourcePath, Err: err}
	}
	if err != nil {
		return result, fmt.Errorf("import: read source: %w", err)
	}
	if len(table.Rows) == 0 {
		log.Warn("[import] Source %s has no data rows, nothing imported", sourcePath)
		return result, &ImportError{Kind: ErrSourceEmpty, Path: sourcePath}
	}

	records, missing := project(table)
	if len(missing) > 0 {
		log.Error("[import] Source %s lacks columns %v (found %v), import aborted", sourcePath, missing, table.Columns)
		return result, &ImportError{Kind: ErrSchemaMismatch, Path: sourcePath, Missing: missing}
	}

	n, err := im.store.AppendOnce(ctx, records)
	if errors.Is(err, storage.ErrTableNotEmpty) {
		log.Info("[import] Table %q was populated concurrently, skipping import", models.SalesTable)
		result.Outcome = OutcomeAlreadyPresent
		return result, nil
	}
	if err != nil {
		log.Error("[import] Writing %d rows failed, transaction rolled back: %v", len(records), err)
		return result, &ImportError{Kind: ErrWriteFailed, Path: sourcePath, Err: err}
	}

	log.Info("[import] Imported %d rows from %s", n, sourcePath)
	result.Outcome = OutcomeImported
	result.Rows = n
	return result, nil
}

// project keeps exactly the raw-schema columns of table, in any header
// order, and reports the schema columns the header lacks.
func project(table models.RawTable) ([]models.RawRecord, []string) {
	index := make(map[string]int, len(table.Columns))
	for i, c := range table.Columns {
		if _, seen := index[c]; !seen {
			index[c] = i
		}
	}

	var missing []string
	for _, m := range models.Schema {
		if _, ok := index[m.Column]; !ok {
			missing = append(missing, m.Column)
		}
	}
	if len(missing) > 0 {
		return nil, missing
	}

	records := make([]models.RawRecord, len(table.Rows))
	for i, row := range table.Rows {
		for _, m := range models.Schema {
			if col := index[m.Column]; col < len(row) {
				records[i].Set(m.Field, row[col])
			}
		}
	}
	return records, nil
}
