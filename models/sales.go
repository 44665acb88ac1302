package models

import "github.com/shopspring/decimal"

// RawRecord holds one source row exactly as it was read, every field as text.
// This is what the sales table stores.
type RawRecord struct {
	ProductName        string
	Category           string
	Rating             string
	RatingCount        string
	DiscountedPrice    string
	ActualPrice        string
	DiscountPercentage string
}

// RawTable is the sales table as read back from the store: the column set the
// store reports plus one string row per record, aligned with Columns.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// NormalizedRecord is the typed, cleaned record the query layer works on.
// Price is always set; the pointer fields are nil when the source value
// could not be parsed.
type NormalizedRecord struct {
	ProductName        string
	Category           string
	Price              decimal.Decimal
	OriginalPrice      *decimal.Decimal
	Rating             *float64
	RatingCount        *int64
	DiscountPercentage *float64
	Sentiment          Sentiment
}

// Sentiment is a four-valued classification derived from a rating.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
	SentimentUnrated  Sentiment = "Unrated"
)

// Sentiments lists every sentiment in display order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative, SentimentUnrated}

// Classify maps a rating to its sentiment. Nil, negative and NaN ratings are Unrated.
func Classify(rating *float64) Sentiment {
	if rating == nil {
		return SentimentUnrated
	}
	r := *rating
	switch {
	case r >= 4.0:
		return SentimentPositive
	case r >= 3.0:
		return SentimentNeutral
	case r >= 0:
		return SentimentNegative
	default:
		return SentimentUnrated
	}
}
