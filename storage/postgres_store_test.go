package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/models"
)

var (
	lockSQL   = regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")
	existsSQL = regexp.QuoteMeta("SELECT EXISTS (")
	countSQL  = regexp.QuoteMeta(`SELECT COUNT(*) FROM "sales"`)
	insertSQL = regexp.QuoteMeta(`INSERT INTO "sales" ("product_name", "category", "rating", "rating_count", "discounted_price", "actual_price", "discount_percentage") VALUES`)
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStoreFromDB(db), mock
}

func sampleRaw(n int) []models.RawRecord {
	out := make([]models.RawRecord, n)
	for i := range out {
		out[i] = models.RawRecord{
			ProductName:        "Cable",
			Category:           "Computers|Accessories",
			Rating:             "4.2",
			RatingCount:        "1,024",
			DiscountedPrice:    "₹399",
			ActualPrice:        "₹1,099",
			DiscountPercentage: "64%",
		}
	}
	return out
}

func TestEnsureTableCreatesWhenAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WithArgs(importLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(existsSQL).WithArgs("sales").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "sales" ("product_name" TEXT`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	created, err := store.EnsureTable(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureTableSkipsWhenPresent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WithArgs(importLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(existsSQL).WithArgs("sales").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectCommit()

	created, err := store.EnsureTable(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendOnceBatchesInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WithArgs(importLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 50))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectCommit()

	n, err := store.AppendOnce(context.Background(), sampleRaw(60))
	require.NoError(t, err)
	assert.Equal(t, 60, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendOnceRollsBackOnWriteFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WithArgs(importLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 50))
	mock.ExpectExec(insertSQL).WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	n, err := store.AppendOnce(context.Background(), sampleRaw(60))
	require.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendOnceRefusesPopulatedTable(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WithArgs(importLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	_, err := store.AppendOnce(context.Background(), sampleRaw(1))
	assert.ErrorIs(t, err, ErrTableNotEmpty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRawKeepsColumnsAndNulls(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"product_name", "category", "discounted_price"}).
		AddRow("Phone", "Electronics|Phones", "$10.00").
		AddRow("Book", nil, "bad")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sales"`)).WillReturnRows(rows)

	table, err := store.FetchRaw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"product_name", "category", "discounted_price"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Book", "", "bad"}, table.Rows[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := store.CountRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
