package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/models"
)

func TestCSVWriterWritesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "records.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	orig := decimal.RequireFromString("20")
	rating := 4.5
	count := int64(12)
	require.NoError(t, w.WriteRecords([]models.NormalizedRecord{
		{ProductName: "Phone", Category: "Electronics", Price: decimal.RequireFromString("10"), OriginalPrice: &orig, Rating: &rating, RatingCount: &count, Sentiment: models.SentimentPositive},
		{ProductName: "Book", Category: "Books", Price: decimal.RequireFromString("3.5"), Sentiment: models.SentimentUnrated},
	}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Phone,Electronics,10.00,20.00,4.5,12,,Positive", lines[1])
	assert.Equal(t, "Book,Books,3.50,,,,,Unrated", lines[2])
}
