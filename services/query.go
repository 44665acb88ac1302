package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"sales-dashboard/models"
	"sales-dashboard/storage"
	"sales-dashboard/utils"
)

// OthersGroup is the bucket TopCategories folds the remaining categories into.
const OthersGroup = "Others"

// FilterState is the current query filter: every category, or exactly one.
type FilterState struct {
	category string
	selected bool
}

// AllCategories returns the filter that keeps every record.
func AllCategories() FilterState {
	return FilterState{}
}

// CategoryFilter returns a filter keeping only records in category.
func CategoryFilter(category string) FilterState {
	return FilterState{category: category, selected: true}
}

// All reports whether f is the all-categories sentinel.
func (f FilterState) All() bool { return !f.selected }

// Category returns the selected category; empty for the sentinel.
func (f FilterState) Category() string { return f.category }

func (f FilterState) String() string {
	if f.All() {
		return "All categories"
	}
	return f.category
}

// GroupField selects the record field TopByValue groups on.
type GroupField int

const (
	GroupByProduct GroupField = iota
	GroupByCategory
	GroupBySentiment
)

func (g GroupField) key(r models.NormalizedRecord) string {
	switch g {
	case GroupByCategory:
		return r.Category
	case GroupBySentiment:
		return string(r.Sentiment)
	default:
		return r.ProductName
	}
}

// QueryEngine loads the stored sales table as normalized records.
type QueryEngine struct {
	store  storage.SalesStore
	logger *utils.Logger
}

// NewQueryEngine creates a QueryEngine reading from store.
func NewQueryEngine(store storage.SalesStore, logger *utils.Logger) *QueryEngine {
	return &QueryEngine{store: store, logger: logger}
}

// Load reads and normalizes every stored row. An absent or empty table
// yields an empty record set.
func (q *QueryEngine) Load(ctx context.Context) ([]models.NormalizedRecord, error) {
	exists, err := q.store.TableExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("query: load: %w", err)
	}
	if !exists {
		q.logger.Warn("[query] Table %q does not exist, nothing to load", models.SalesTable)
		return []models.NormalizedRecord{}, nil
	}

	table, err := q.store.FetchRaw(ctx)
	if err != nil {
		return nil, fmt.Errorf("query: load: %w", err)
	}
	if len(table.Rows) == 0 {
		q.logger.Info("[query] Table %q is empty", models.SalesTable)
		return []models.NormalizedRecord{}, nil
	}

	records, err := Normalize(table)
	if err != nil {
		return nil, err
	}

	q.logger.Info("[query] Normalized %d → %d records (dropped %d without a price)",
		len(table.Rows), len(records), len(table.Rows)-len(records))
	return records, nil
}

// ApplyFilter returns the records f keeps, in input order, as a new slice.
func ApplyFilter(records []models.NormalizedRecord, f FilterState) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if f.All() || r.Category == f.category {
			out = append(out, r)
		}
	}
	return out
}

// ComputeMetrics sums prices and averages them. Empty input yields zeros.
func ComputeMetrics(records []models.NormalizedRecord) models.Metrics {
	m := models.Metrics{TotalValue: decimal.Zero, AverageValue: decimal.Zero}
	if len(records) == 0 {
		return m
	}
	for _, r := range records {
		m.TotalValue = m.TotalValue.Add(r.Price)
	}
	m.TransactionCount = len(records)
	m.AverageValue = m.TotalValue.Div(decimal.NewFromInt(int64(len(records))))
	return m
}

// TopByValue sums price per group and returns at most n groups, highest sum
// first. Ties keep first-seen order.
func TopByValue(records []models.NormalizedRecord, field GroupField, n int) []models.GroupTotal {
	if n <= 0 {
		return []models.GroupTotal{}
	}
	groups := sumBy(records, field)
	sortTotals(groups)
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// CountByCategory counts records per category.
func CountByCategory(records []models.NormalizedRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	return counts
}

// Categories returns the distinct categories, sorted.
func Categories(records []models.NormalizedRecord) []string {
	counts := CountByCategory(records)
	out := make([]string, 0, len(counts))
	for c := range counts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// TopCategories ranks categories with a positive price sum and folds those
// beyond the first n into a single OthersGroup entry.
func TopCategories(records []models.NormalizedRecord, n int) []models.GroupTotal {
	if n <= 0 {
		return []models.GroupTotal{}
	}

	groups := sumBy(records, GroupByCategory)
	positive := groups[:0]
	for _, g := range groups {
		if g.Total.IsPositive() {
			positive = append(positive, g)
		}
	}
	sortTotals(positive)

	if len(positive) <= n {
		return positive
	}
	rest := decimal.Zero
	for _, g := range positive[n:] {
		rest = rest.Add(g.Total)
	}
	top := append([]models.GroupTotal{}, positive[:n]...)
	return append(top, models.GroupTotal{Group: OthersGroup, Total: rest})
}

// TopByDiscount returns at most n records with a discount, largest first.
func TopByDiscount(records []models.NormalizedRecord, n int) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0)
	for _, r := range records {
		if r.DiscountPercentage != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DiscountPercentage > *out[j].DiscountPercentage
	})
	if n < 0 {
		n = 0
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// SentimentCounts counts records per sentiment in models.Sentiments order,
// including zero counts.
func SentimentCounts(records []models.NormalizedRecord) []models.SentimentCount {
	counts := make(map[models.Sentiment]int, len(models.Sentiments))
	for _, r := range records {
		counts[r.Sentiment]++
	}
	out := make([]models.SentimentCount, len(models.Sentiments))
	for i, s := range models.Sentiments {
		out[i] = models.SentimentCount{Sentiment: s, Count: counts[s]}
	}
	return out
}

// SentimentByCategory counts sentiments within each category.
func SentimentByCategory(records []models.NormalizedRecord) map[string]map[models.Sentiment]int {
	out := make(map[string]map[models.Sentiment]int)
	for _, r := range records {
		byS, ok := out[r.Category]
		if !ok {
			byS = make(map[models.Sentiment]int)
			out[r.Category] = byS
		}
		byS[r.Sentiment]++
	}
	return out
}

// RecordsInCategory returns the records of one category, most expensive first.
func RecordsInCategory(records []models.NormalizedRecord, category string) []models.NormalizedRecord {
	out := ApplyFilter(records, CategoryFilter(category))
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price.GreaterThan(out[j].Price)
	})
	return out
}

// PriceRange returns the lowest and highest price; zeros for empty input.
func PriceRange(records []models.NormalizedRecord) (lo, hi decimal.Decimal) {
	if len(records) == 0 {
		return decimal.Zero, decimal.Zero
	}
	lo, hi = records[0].Price, records[0].Price
	for _, r := range records[1:] {
		if r.Price.LessThan(lo) {
			lo = r.Price
		}
		if r.Price.GreaterThan(hi) {
			hi = r.Price
		}
	}
	return lo, hi
}

func sumBy(records []models.NormalizedRecord, field GroupField) []models.GroupTotal {
	index := make(map[string]int)
	groups := make([]models.GroupTotal, 0)
	for _, r := range records {
		k := field.key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, models.GroupTotal{Group: k, Total: decimal.Zero})
		}
		groups[i].Total = groups[i].Total.Add(r.Price)
	}
	return groups
}

func sortTotals(groups []models.GroupTotal) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.GreaterThan(groups[j].Total)
	})
}
