package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"sales-dashboard/models"
	"sales-dashboard/storage"
	"sales-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerWithOutput(&bytes.Buffer{}) }

// memStore is an in-memory SalesStore counting every write.
type memStore struct {
	exists    bool
	rows      []models.RawRecord
	writes    int
	appendErr error
	// populateBeforeAppend simulates another process winning the import race.
	populateBeforeAppend bool
}

func (m *memStore) EnsureTable(ctx context.Context) (bool, error) {
	if m.exists {
		return false, nil
	}
	m.exists = true
	return true, nil
}

func (m *memStore) TableExists(ctx context.Context) (bool, error) { return m.exists, nil }

func (m *memStore) CountRows(ctx context.Context) (int, error) { return len(m.rows), nil }

func (m *memStore) AppendOnce(ctx context.Context, records []models.RawRecord) (int, error) {
	if m.populateBeforeAppend {
		m.rows = append(m.rows, models.RawRecord{ProductName: "other"})
	}
	if len(m.rows) > 0 {
		return 0, storage.ErrTableNotEmpty
	}
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	m.writes++
	m.rows = append(m.rows, records...)
	return len(records), nil
}

func (m *memStore) FetchRaw(ctx context.Context) (models.RawTable, error) {
	t := models.RawTable{Columns: models.Columns()}
	for _, r := range m.rows {
		t.Rows = append(t.Rows, r.Values())
	}
	return t, nil
}

func (m *memStore) Close() error { return nil }

func writeSource(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vendas.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sourceHeader = "product_id,product_name,category,discounted_price,actual_price,discount_percentage,rating,rating_count"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fptr(f float64) *float64 { return &f }

func rec(name, category, price string) models.NormalizedRecord {
	return models.NormalizedRecord{ProductName: name, Category: category, Price: dec(price), Sentiment: models.SentimentUnrated}
}
