package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"sales-dashboard/models"
)

const categoryDelimiter = "|"

// ratingRegexp captures the leading numeric token of free-form rating text.
var ratingRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Normalize binds a raw table to the schema and converts its rows. It fails
// with a NormalizationError when a required column is absent from the
// table's column set; empty values in present columns are a per-row matter.
func Normalize(table models.RawTable) ([]models.NormalizedRecord, error) {
	index := make(map[string]int, len(table.Columns))
	for i, c := range table.Columns {
		if _, seen := index[c]; !seen {
			index[c] = i
		}
	}

	var missing []string
	for _, m := range models.Schema {
		if _, ok := index[m.Column]; !ok && m.Required {
			missing = append(missing, m.Column)
		}
	}
	if len(missing) > 0 {
		return nil, &NormalizationError{Missing: missing}
	}

	raw := make([]models.RawRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		var r models.RawRecord
		for _, m := range models.Schema {
			if i, ok := index[m.Column]; ok && i < len(row) {
				r.Set(m.Field, row[i])
			}
		}
		raw = append(raw, r)
	}
	return NormalizeRecords(raw), nil
}

// NormalizeRecords converts raw records, dropping those whose price does not
// parse. Every other unparsable value becomes nil and the record is kept.
func NormalizeRecords(raw []models.RawRecord) []models.NormalizedRecord {
	result := make([]models.NormalizedRecord, 0, len(raw))
	for _, r := range raw {
		rec, ok := NormalizeRecord(r)
		if ok {
			result = append(result, rec)
		}
	}
	return result
}

// NormalizeRecord converts one raw record. ok is false when the price is
// unparsable and the record must be dropped.
func NormalizeRecord(r models.RawRecord) (models.NormalizedRecord, bool) {
	price, ok := parsePrice(r.DiscountedPrice)
	if !ok {
		return models.NormalizedRecord{}, false
	}

	rating := parseRating(r.Rating)
	rec := models.NormalizedRecord{
		ProductName:        r.ProductName,
		Category:           leafCategory(r.Category),
		Price:              price,
		Rating:             rating,
		RatingCount:        parseCount(r.RatingCount),
		DiscountPercentage: parsePercent(r.DiscountPercentage),
		Sentiment:          models.Classify(rating),
	}
	if orig, ok := parsePrice(r.ActualPrice); ok {
		rec.OriginalPrice = &orig
	}
	return rec, true
}

// parsePrice strips currency symbols, thousands separators and whitespace
// before parsing. Examples:
//
//	"$1,234.50" → 1234.50
//	"₹1,234.50" → 1234.50
//	"N/A"       → not ok
func parsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// parseRating extracts the leading number; values outside 0–5 are rejected.
func parseRating(raw string) *float64 {
	match := ratingRegexp.FindString(raw)
	if match == "" {
		return nil
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil || val < 0 || val > 5 {
		return nil
	}
	return &val
}

func parseCount(raw string) *int64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parsePercent(raw string) *float64 {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// leafCategory keeps the first segment of a hierarchical category path.
func leafCategory(path string) string {
	leaf, _, _ := strings.Cut(path, categoryDelimiter)
	return leaf
}
