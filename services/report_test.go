package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/models"
)

func TestBuildReport(t *testing.T) {
	r := BuildReport(sampleRecords(), CategoryFilter("Electronics"), 2)

	assert.Equal(t, "Electronics", r.Filter)
	assert.Equal(t, 3, r.Metrics.TransactionCount)
	assert.True(t, r.MinPrice.Equal(dec("10")))
	assert.True(t, r.MaxPrice.Equal(dec("300")))
	require.Len(t, r.TopProducts, 2)
	assert.Equal(t, "Phone", r.TopProducts[0].Group)
	assert.Equal(t, map[string]int{"Electronics": 3}, r.ByCategory)
	assert.Len(t, r.SentimentCounts, len(models.Sentiments))
}

func TestReportPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewReportPrinter(&buf)

	records := []models.NormalizedRecord{rec("Laptop", "Computers", "1234.5")}
	p.Print(BuildReport(records, AllCategories(), 5))

	out := buf.String()
	assert.Contains(t, out, "All categories")
	assert.Contains(t, out, "1,234.50")
	assert.Contains(t, out, "Laptop")

	buf.Reset()
	p.Print(BuildReport(nil, AllCategories(), 5))
	assert.Contains(t, buf.String(), "No data available")

	buf.Reset()
	p.PrintRecords(records)
	assert.Contains(t, buf.String(), "1 records")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Cafés c...", truncate("Cafés com leite", 10))
}
