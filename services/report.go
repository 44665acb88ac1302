package services

import (
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-dashboard/models"
)

const categoryChartSize = 7

// BuildReport computes the dashboard view of records under filter.
func BuildReport(records []models.NormalizedRecord, filter FilterState, topN int) *models.Report {
	filtered := ApplyFilter(records, filter)
	lo, hi := PriceRange(filtered)

	return &models.Report{
		Filter:          filter.String(),
		Metrics:         ComputeMetrics(filtered),
		MinPrice:        lo,
		MaxPrice:        hi,
		TopProducts:     TopByValue(filtered, GroupByProduct, topN),
		TopCategories:   TopCategories(filtered, categoryChartSize),
		TopDiscounts:    TopByDiscount(filtered, topN),
		ByCategory:      CountByCategory(filtered),
		SentimentCounts: SentimentCounts(filtered),
	}
}

// ReportPrinter renders reports and record listings as terminal text.
type ReportPrinter struct {
	w io.Writer
	p *message.Printer
}

// NewReportPrinter creates a printer writing to w. Amounts use thousands
// separators.
func NewReportPrinter(w io.Writer) *ReportPrinter {
	return &ReportPrinter{w: w, p: message.NewPrinter(language.English)}
}

func (rp *ReportPrinter) Print(r *models.Report) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	rp.p.Fprintf(rp.w, "\n\033[1;35m%s\033[0m\n", sep)
	rp.p.Fprintf(rp.w, "\033[1;35m  📊 SALES DASHBOARD: %s\033[0m\n", r.Filter)
	rp.p.Fprintf(rp.w, "\033[1;35m%s\033[0m\n\n", sep)

	rp.p.Fprintf(rp.w, "\033[1;33m  Overview\033[0m\n")
	rp.p.Fprintf(rp.w, "  %s\n", thin)
	if r.Metrics.TransactionCount == 0 {
		rp.p.Fprintf(rp.w, "  No data available for the selected filters\n")
		rp.p.Fprintf(rp.w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}
	rp.p.Fprintf(rp.w, "  Total sales    : \033[1;32m$ %s\033[0m\n", rp.amount(r.Metrics.TotalValue))
	rp.p.Fprintf(rp.w, "  Average ticket : \033[1;32m$ %s\033[0m\n", rp.amount(r.Metrics.AverageValue))
	rp.p.Fprintf(rp.w, "  Transactions   : \033[1m%d\033[0m\n", r.Metrics.TransactionCount)
	rp.p.Fprintf(rp.w, "  Price range    : $ %s to $ %s\n\n", rp.amount(r.MinPrice), rp.amount(r.MaxPrice))

	rp.p.Fprintf(rp.w, "\033[1;33m  Sales by Category\033[0m\n")
	rp.p.Fprintf(rp.w, "  %s\n", thin)
	for _, g := range r.TopCategories {
		rp.p.Fprintf(rp.w, "  %-30s $ %s\n", truncate(g.Group, 28), rp.amount(g.Total))
	}
	rp.p.Fprintln(rp.w)

	rp.p.Fprintf(rp.w, "\033[1;33m  Top %d Products by Sales\033[0m\n", len(r.TopProducts))
	rp.p.Fprintf(rp.w, "  %s\n", thin)
	for i, g := range r.TopProducts {
		rp.p.Fprintf(rp.w, "  \033[1m%d.\033[0m %-38s $ %s\n", i+1, truncate(g.Group, 38), rp.amount(g.Total))
	}
	rp.p.Fprintln(rp.w)

	if len(r.TopDiscounts) > 0 {
		rp.p.Fprintf(rp.w, "\033[1;33m  Largest Discounts\033[0m\n")
		rp.p.Fprintf(rp.w, "  %s\n", thin)
		for i, rec := range r.TopDiscounts {
			rp.p.Fprintf(rp.w, "  \033[1m%d.\033[0m %-38s %5.1f%%\n", i+1, truncate(rec.ProductName, 38), *rec.DiscountPercentage)
		}
		rp.p.Fprintln(rp.w)
	}

	rp.p.Fprintf(rp.w, "\033[1;33m  Sentiment\033[0m\n")
	rp.p.Fprintf(rp.w, "  %s\n", thin)
	for _, sc := range r.SentimentCounts {
		rp.p.Fprintf(rp.w, "  %-10s %s (%d)\n", sc.Sentiment, bar(sc.Count, r.Metrics.TransactionCount), sc.Count)
	}
	rp.p.Fprintln(rp.w)

	rp.p.Fprintf(rp.w, "\033[1;33m  Products per Category\033[0m\n")
	rp.p.Fprintf(rp.w, "  %s\n", thin)
	type catCount struct {
		cat   string
		count int
	}
	cats := make([]catCount, 0, len(r.ByCategory))
	for c, n := range r.ByCategory {
		cats = append(cats, catCount{c, n})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].count != cats[j].count {
			return cats[i].count > cats[j].count
		}
		return cats[i].cat < cats[j].cat
	})
	for _, cc := range cats {
		rp.p.Fprintf(rp.w, "  %-30s %s (%d)\n", truncate(cc.cat, 28), bar(cc.count, r.Metrics.TransactionCount), cc.count)
	}

	rp.p.Fprintf(rp.w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// PrintRecords lists detailed rows.
func (rp *ReportPrinter) PrintRecords(records []models.NormalizedRecord) {
	rp.p.Fprintf(rp.w, "  %-40s %-22s %12s %6s %-8s\n", "Product", "Category", "Price", "Rating", "Sentiment")
	for _, r := range records {
		rating := "-"
		if r.Rating != nil {
			rating = rp.p.Sprintf("%.1f", *r.Rating)
		}
		rp.p.Fprintf(rp.w, "  %-40s %-22s %12s %6s %-8s\n",
			truncate(r.ProductName, 40), truncate(r.Category, 22), rp.amount(r.Price), rating, r.Sentiment)
	}
	rp.p.Fprintf(rp.w, "  %d records\n", len(records))
}

func (rp *ReportPrinter) amount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return rp.p.Sprintf("%.2f", f)
}

// bar scales count against total onto at most 30 cells.
func bar(count, total int) string {
	if total == 0 || count == 0 {
		return ""
	}
	n := count * 30 / total
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
