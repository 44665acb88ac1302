package models

import "github.com/shopspring/decimal"

// Metrics are the headline figures over a record set.
type Metrics struct {
	TotalValue       decimal.Decimal
	AverageValue     decimal.Decimal
	TransactionCount int
}

// GroupTotal is one ranked group with its summed price.
type GroupTotal struct {
	Group string
	Total decimal.Decimal
}

// SentimentCount pairs a sentiment with the number of records carrying it.
type SentimentCount struct {
	Sentiment Sentiment
	Count     int
}

// Report holds the computed dashboard view over the filtered dataset.
type Report struct {
	Filter          string
	Metrics         Metrics
	MinPrice        decimal.Decimal
	MaxPrice        decimal.Decimal
	TopProducts     []GroupTotal
	TopCategories   []GroupTotal
	TopDiscounts    []NormalizedRecord
	ByCategory      map[string]int
	SentimentCounts []SentimentCount
}
