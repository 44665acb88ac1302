package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"sales-dashboard/models"
	"sales-dashboard/utils"
)

// importLockKey serializes table creation and the initial load across
// processes sharing one database.
const importLockKey int64 = 0x5a1e5

const batchSize = 50

// PostgresStore keeps the raw sales table in PostgreSQL.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgresStore opens a connection with the given driver ("postgres" for
// lib/pq, "pgx" for pgx) and pings it with retries.
func NewPostgresStore(ctx context.Context, driver, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	err = retry.Do(ctx, "postgres-ping", func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return NewPostgresStoreFromDB(db), nil
}

// NewPostgresStoreFromDB wraps an already opened database.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, table: models.SalesTable}
}

func (ps *PostgresStore) EnsureTable(ctx context.Context) (bool, error) {
	created, err := withTx(ctx, ps.db, func(tx *sql.Tx) (bool, error) {
		if err := lockImport(ctx, tx); err != nil {
			return false, err
		}

		exists, err := tableExists(ctx, tx, ps.table)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}

		if _, err := tx.ExecContext(ctx, ps.createTableSQL()); err != nil {
			return false, fmt.Errorf("create table: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return false, fmt.Errorf("postgres: ensure table: %w", err)
	}
	return created, nil
}

func (ps *PostgresStore) TableExists(ctx context.Context) (bool, error) {
	exists, err := tableExists(ctx, ps.db, ps.table)
	if err != nil {
		return false, fmt.Errorf("postgres: table exists: %w", err)
	}
	return exists, nil
}

func (ps *PostgresStore) CountRows(ctx context.Context) (int, error) {
	n, err := countRows(ctx, ps.db, ps.table)
	if err != nil {
		return 0, fmt.Errorf("postgres: count rows: %w", err)
	}
	return n, nil
}

func (ps *PostgresStore) AppendOnce(ctx context.Context, records []models.RawRecord) (int, error) {
	inserted, err := withTx(ctx, ps.db, func(tx *sql.Tx) (int, error) {
		if err := lockImport(ctx, tx); err != nil {
			return 0, err
		}

		n, err := countRows(ctx, tx, ps.table)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return 0, ErrTableNotEmpty
		}

		for i := 0; i < len(records); i += batchSize {
			end := i + batchSize
			if end > len(records) {
				end = len(records)
			}
			if err := ps.insertBatch(ctx, tx, records[i:end]); err != nil {
				return 0, fmt.Errorf("insert rows %d-%d: %w", i+1, end, err)
			}
		}
		return len(records), nil
	})
	if err != nil {
		return 0, fmt.Errorf("postgres: append: %w", err)
	}
	return inserted, nil
}

func (ps *PostgresStore) insertBatch(ctx context.Context, tx *sql.Tx, batch []models.RawRecord) error {
	width := len(models.Schema)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*width)

	for idx, r := range batch {
		base := idx * width
		placeholders := make([]string, width)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		for _, v := range r.Values() {
			valueArgs = append(valueArgs, v)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		pq.QuoteIdentifier(ps.table), quotedColumns(), strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

// FetchRaw returns every stored row with the column set the table actually
// has, so schema drift is detected at normalization.
func (ps *PostgresStore) FetchRaw(ctx context.Context) (models.RawTable, error) {
	rows, err := ps.db.QueryContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(ps.table))
	if err != nil {
		return models.RawTable{}, fmt.Errorf("postgres: fetch raw: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return models.RawTable{}, fmt.Errorf("postgres: fetch raw columns: %w", err)
	}

	table := models.RawTable{Columns: cols}
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return models.RawTable{}, fmt.Errorf("postgres: scan row: %w", err)
		}

		row := make([]string, len(cols))
		for i, c := range cells {
			row[i] = c.String
		}
		table.Rows = append(table.Rows, row)
	}
	return table, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func (ps *PostgresStore) createTableSQL() string {
	defs := make([]string, len(models.Schema))
	for i, m := range models.Schema {
		defs[i] = pq.QuoteIdentifier(m.Column) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pq.QuoteIdentifier(ps.table), strings.Join(defs, ", "))
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func lockImport(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey); err != nil {
		return fmt.Errorf("acquire import lock: %w", err)
	}
	return nil
}

func tableExists(ctx context.Context, q queryer, table string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, table).Scan(&exists)
	return exists, err
}

func countRows(ctx context.Context, q queryer, table string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+pq.QuoteIdentifier(table)).Scan(&n)
	return n, err
}

func quotedColumns() string {
	cols := models.Columns()
	for i, c := range cols {
		cols[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(cols, ", ")
}
