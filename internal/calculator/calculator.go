// Package calculator turns raw financial statement fields into dimensionless
// ratios. All computation is pure: it never errors, never panics and never
// produces NaN or Inf. A ratio whose inputs are absent or whose denominator is
// not positive is simply left nil with a warning appended to the MetricSet.
package calculator

import (
	"fmt"
	"math"
	"time"

	"github.com/ftorres/b3score/internal/core"
)

// brazilCorporateTaxRate approximates NOPAT from operating income for ROIC.
const brazilCorporateTaxRate = 0.34

// quickAssetsFactor approximates quick assets from current assets when no
// inventory line is available.
const quickAssetsFactor = 0.70

// Calculate computes every ratio the record's data allows.
func Calculate(rec core.FinancialRecord) core.MetricSet {
	m := core.MetricSet{CalculatedAt: time.Now()}

	valuation(rec, &m)
	profitability(rec, &m)
	growth(rec, &m)
	leverage(rec, &m)
	liquidity(rec, &m)
	efficiency(rec, &m)

	return m
}

func valuation(rec core.FinancialRecord, m *core.MetricSet) {
	// P/E only makes sense for profitable companies
	if rec.MarketCap != nil && rec.NetIncome != nil && *rec.NetIncome > 0 {
		m.PERatio = safeDiv(*rec.MarketCap, *rec.NetIncome)
	} else {
		warn(m, "pe_ratio", "market cap or positive net income unavailable")
	}

	m.PBRatio = divOrWarn(m, "pb_ratio", rec.MarketCap, rec.ShareholdersEquity)
	m.PSRatio = divOrWarn(m, "ps_ratio", rec.MarketCap, rec.Revenue)

	if ev := enterpriseValue(rec); ev != nil {
		if rec.EBITDA != nil && *rec.EBITDA > 0 {
			m.EVEBITDA = safeDiv(*ev, *rec.EBITDA)
		} else {
			warn(m, "ev_ebitda", "positive EBITDA unavailable")
		}
		if rec.Revenue != nil && *rec.Revenue > 0 {
			m.EVSales = safeDiv(*ev, *rec.Revenue)
		} else {
			warn(m, "ev_sales", "positive revenue unavailable")
		}
	} else {
		warn(m, "ev_ebitda", "enterprise value unavailable")
		warn(m, "ev_sales", "enterprise value unavailable")
	}
}

// enterpriseValue is market cap plus net debt; debt and cash default to zero
// only when market cap itself is known.
func enterpriseValue(rec core.FinancialRecord) *float64 {
	if rec.MarketCap == nil {
		return nil
	}
	ev := *rec.MarketCap
	if rec.TotalDebt != nil {
		ev += *rec.TotalDebt
	}
	if rec.Cash != nil {
		ev -= *rec.Cash
	}
	return &ev
}

func profitability(rec core.FinancialRecord, m *core.MetricSet) {
	m.ROE = pctOrWarn(m, "roe", rec.NetIncome, rec.ShareholdersEquity)
	m.ROA = pctOrWarn(m, "roa", rec.NetIncome, rec.TotalAssets)

	// ROIC with NOPAT approximated at the Brazilian corporate tax rate
	if rec.OperatingIncome != nil && rec.ShareholdersEquity != nil && rec.TotalDebt != nil {
		invested := *rec.ShareholdersEquity + *rec.TotalDebt
		if invested > 0 {
			nopat := *rec.OperatingIncome * (1 - brazilCorporateTaxRate)
			m.ROIC = core.Float(clampFinite(nopat / invested * 100))
		} else {
			warn(m, "roic", "invested capital not positive")
		}
	} else {
		warn(m, "roic", "operating income, equity or debt unavailable")
	}

	m.GrossMargin = pctOrWarn(m, "gross_margin", rec.GrossProfit, rec.Revenue)
	m.OperatingMargin = pctOrWarn(m, "operating_margin", rec.OperatingIncome, rec.Revenue)
	m.NetMargin = pctOrWarn(m, "net_margin", rec.NetIncome, rec.Revenue)
	m.EBITDAMargin = pctOrWarn(m, "ebitda_margin", rec.EBITDA, rec.Revenue)
}

func growth(rec core.FinancialRecord, m *core.MetricSet) {
	m.RevenueGrowth1Y = growth1Y(m, "revenue_growth_1y", rec.HistoricalRevenue, false)
	m.RevenueGrowth3Y = cagr3Y(m, "revenue_growth_3y", rec.HistoricalRevenue)
	m.EarningsGrowth1Y = growth1Y(m, "earnings_growth_1y", rec.HistoricalNetIncome, true)
	m.EarningsGrowth3Y = cagr3Y(m, "earnings_growth_3y", rec.HistoricalNetIncome)
}

// growth1Y is the change between the last two points, in percent of the
// prior value's magnitude. For earnings, a swing from loss to profit is
// reported as +100% rather than an undefined ratio.
func growth1Y(m *core.MetricSet, name string, series []float64, earnings bool) *float64 {
	if len(series) < 2 {
		warn(m, name, "fewer than 2 historical points")
		return nil
	}
	latest := series[len(series)-1]
	prior := series[len(series)-2]
	if prior == 0 {
		warn(m, name, "prior-year value is zero")
		return nil
	}
	if earnings && prior < 0 {
		if latest > 0 {
			return core.Float(100)
		}
		warn(m, name, "prior-year earnings negative")
		return nil
	}
	return core.Float(clampFinite((latest - prior) / math.Abs(prior) * 100))
}

// cagr3Y computes the 3-year compound annual growth rate over the last four
// points when available, otherwise over the whole series (minimum three
// points). The base value must be positive.
func cagr3Y(m *core.MetricSet, name string, series []float64) *float64 {
	if len(series) < 3 {
		warn(m, name, "fewer than 3 historical points")
		return nil
	}
	window := series
	if len(series) > 4 {
		window = series[len(series)-4:]
	}
	base := window[0]
	latest := window[len(window)-1]
	if base <= 0 || latest <= 0 {
		warn(m, name, "non-positive values in growth window")
		return nil
	}
	return core.Float(clampFinite((math.Pow(latest/base, 1.0/3.0) - 1) * 100))
}

func leverage(rec core.FinancialRecord, m *core.MetricSet) {
	m.DebtToEquity = divOrWarn(m, "debt_to_equity", rec.TotalDebt, rec.ShareholdersEquity)
	m.DebtToAssets = divOrWarn(m, "debt_to_assets", rec.TotalDebt, rec.TotalAssets)
	m.DebtToEBITDA = divOrWarn(m, "debt_to_ebitda", rec.TotalDebt, rec.EBITDA)
}

func liquidity(rec core.FinancialRecord, m *core.MetricSet) {
	m.CurrentRatio = divOrWarn(m, "current_ratio", rec.CurrentAssets, rec.CurrentLiabilities)
	m.CashRatio = divOrWarn(m, "cash_ratio", rec.Cash, rec.CurrentLiabilities)

	// No inventory line from upstream, so quick assets are approximated
	if rec.CurrentAssets != nil && rec.CurrentLiabilities != nil && *rec.CurrentLiabilities > 0 {
		m.QuickRatio = safeDiv(*rec.CurrentAssets*quickAssetsFactor, *rec.CurrentLiabilities)
	} else {
		warn(m, "quick_ratio", "current assets or liabilities unavailable")
	}
}

func efficiency(rec core.FinancialRecord, m *core.MetricSet) {
	m.AssetTurnover = divOrWarn(m, "asset_turnover", rec.Revenue, rec.TotalAssets)
}

// divOrWarn divides num by den when both are present and den is positive.
func divOrWarn(m *core.MetricSet, name string, num, den *float64) *float64 {
	if num == nil || den == nil {
		warn(m, name, "input unavailable")
		return nil
	}
	if *den <= 0 {
		warn(m, name, "denominator not positive")
		return nil
	}
	return safeDiv(*num, *den)
}

// pctOrWarn is divOrWarn expressed as a percentage.
func pctOrWarn(m *core.MetricSet, name string, num, den *float64) *float64 {
	v := divOrWarn(m, name, num, den)
	if v == nil {
		return nil
	}
	return core.Float(clampFinite(*v * 100))
}

func safeDiv(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return core.Float(clampFinite(num / den))
}

// clampFinite collapses any non-finite intermediate to 0. The guards above
// make this unreachable in practice, but the contract is "never NaN/Inf".
func clampFinite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// warn appends a calculation warning for one skipped metric.
func warn(m *core.MetricSet, name, reason string) {
	m.Warnings = append(m.Warnings, fmt.Sprintf("%s: %s", name, reason))
}
