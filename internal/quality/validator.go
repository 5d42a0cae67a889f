// Package quality scores how complete a financial record is before any
// analysis runs on it. The score is informational; the Valid flag gates
// whether downstream analysis is worth attempting at all.
package quality

import (
	"time"

	"github.com/ftorres/b3score/internal/core"
)

// staleAfter is how old a record's timestamp can be before it stops
// counting toward the metadata portion of the score.
const staleAfter = 7 * 24 * time.Hour

// minHistoryPoints is the shortest series that supports growth analysis.
const minHistoryPoints = 3

// Report describes the completeness of one financial record.
type Report struct {
	Score   float64  `json:"score"`
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
}

// Assess scores a record from 0 to 100. The four basic fields (price, market
// cap, revenue, net income) carry 40 points and all must be present and
// positive for the record to be valid. Balance sheet fields carry 30,
// historical series 20 and metadata 10.
func Assess(rec core.FinancialRecord) Report {
	var rep Report

	basics := 0
	basics += score10(&rep, "current_price", positive(rec.CurrentPrice))
	basics += score10(&rep, "market_cap", positive(rec.MarketCap))
	basics += score10(&rep, "revenue", positive(rec.Revenue))
	basics += score10(&rep, "net_income", positive(rec.NetIncome))
	rep.Valid = basics == 40

	balance := 0
	balance += score10(&rep, "total_assets", positive(rec.TotalAssets))
	balance += score10(&rep, "shareholders_equity", positive(rec.ShareholdersEquity))
	balance += score10(&rep, "total_debt", rec.TotalDebt != nil)

	history := 0
	history += score10(&rep, "historical_revenue", len(rec.HistoricalRevenue) >= minHistoryPoints)
	history += score10(&rep, "historical_net_income", len(rec.HistoricalNetIncome) >= minHistoryPoints)

	meta := 0
	if rec.Sector != "" {
		meta += 5
	} else {
		rep.Missing = append(rep.Missing, "sector")
	}
	if !rec.LastUpdated.IsZero() && time.Since(rec.LastUpdated) <= staleAfter {
		meta += 5
	} else {
		rep.Missing = append(rep.Missing, "last_updated")
	}

	rep.Score = float64(basics + balance + history + meta)
	return rep
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func score10(rep *Report, field string, ok bool) int {
	if ok {
		return 10
	}
	rep.Missing = append(rep.Missing, field)
	return 0
}
