// Package analytics computes read-side rollups over catalog and ledger
// snapshots. Nothing here mutates state; callers pass the snapshots in.
package analytics

import (
	"time"

	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/ledger"
)

// DefaultLowStockThreshold flags products for restocking.
const DefaultLowStockThreshold = 10

// DailyPoint is one zero-filled bucket of the trailing sales series.
type DailyPoint struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Total int64  `json:"total"`
}

// Summary is the dashboard card set.
type Summary struct {
	DailySales    int64 `json:"dailySales"`
	MonthlySales  int64 `json:"monthlySales"`
	GrossProfit   int64 `json:"grossProfit"`
	LowStockCount int   `json:"lowStockCount"`
}

const dayFormat = "2006-01-02"

// sameDay matches on the calendar day in day's location, not on timestamp
// arithmetic, so postings near midnight land in the right bucket.
func sameDay(txDate, day time.Time) bool {
	return txDate.In(day.Location()).Format(dayFormat) == day.Format(dayFormat)
}

func sameMonth(txDate, month time.Time) bool {
	return txDate.In(month.Location()).Format("2006-01") == month.Format("2006-01")
}

// DailySales sums SALE totals whose date falls on the given calendar day.
func DailySales(txs []ledger.Transaction, day time.Time) int64 {
	var total int64
	for _, tx := range txs {
		if tx.Type == ledger.TypeSale && sameDay(tx.Date, day) {
			total += tx.TotalAmount
		}
	}
	return total
}

// MonthlySales sums SALE totals within the given calendar month.
func MonthlySales(txs []ledger.Transaction, month time.Time) int64 {
	var total int64
	for _, tx := range txs {
		if tx.Type == ledger.TypeSale && sameMonth(tx.Date, month) {
			total += tx.TotalAmount
		}
	}
	return total
}

// GrossProfit sums totalAmount minus cost-of-goods over SALE transactions
// in the half-open range [from, to). Zero bounds mean unbounded.
func GrossProfit(txs []ledger.Transaction, from, to time.Time) int64 {
	var total int64
	for _, tx := range txs {
		if tx.Type != ledger.TypeSale {
			continue
		}
		if !from.IsZero() && tx.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !tx.Date.Before(to) {
			continue
		}
		total += tx.TotalAmount - tx.CostTotal()
	}
	return total
}

// LowStock returns the products with stock strictly below threshold.
func LowStock(products []catalog.Product, threshold int) []catalog.Product {
	out := make([]catalog.Product, 0)
	for _, p := range products {
		if p.Stock < threshold {
			out = append(out, p)
		}
	}
	return out
}

// TrailingDailySeries buckets SALE totals per calendar day for the `days`
// consecutive days ending on (and including) now's day. Days without sales
// are zero-filled.
func TrailingDailySeries(txs []ledger.Transaction, days int, now time.Time) []DailyPoint {
	if days <= 0 {
		return nil
	}
	points := make([]DailyPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		points = append(points, DailyPoint{
			Date:  day.Format(dayFormat),
			Label: day.Weekday().String()[:3],
			Total: DailySales(txs, day),
		})
	}
	return points
}

// NewSummary computes the dashboard metrics as of now.
func NewSummary(txs []ledger.Transaction, products []catalog.Product, now time.Time, lowStockThreshold int) Summary {
	return Summary{
		DailySales:    DailySales(txs, now),
		MonthlySales:  MonthlySales(txs, now),
		GrossProfit:   GrossProfit(txs, time.Time{}, time.Time{}),
		LowStockCount: len(LowStock(products, lowStockThreshold)),
	}
}
