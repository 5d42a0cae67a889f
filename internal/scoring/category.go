// Package scoring converts raw ratios into 0-100 scores against per-sector
// benchmarks and blends category scores into a single composite.
package scoring

import "github.com/ftorres/b3score/internal/core"

// categoryMetrics names the metrics that contribute to each category.
// Profitability is scored on returns and operating efficiency; net margin is
// left to the filter battery so that one weak reading is not counted twice.
var categoryMetrics = map[core.Category][]string{
	core.CategoryValuation:     {"pe_ratio", "pb_ratio", "ev_ebitda"},
	core.CategoryProfitability: {"roe", "roa", "ebitda_margin", "operating_margin"},
	core.CategoryGrowth:        {"revenue_growth_1y", "revenue_growth_3y", "earnings_growth_1y"},
	core.CategoryLeverage:      {"debt_to_equity", "debt_to_ebitda", "current_ratio"},
}

// ScoreCategories scores every category whose metrics have at least one
// present value. Categories with no usable metric are omitted from the map.
func ScoreCategories(m core.MetricSet, sector string) core.CategoryScore {
	bench := Benchmarks(sector)
	values := metricValues(m)

	scores := make(core.CategoryScore)
	for _, cat := range core.Categories() {
		var sum float64
		var n int
		for _, name := range categoryMetrics[cat] {
			v, present := values[name]
			b, benched := bench[name]
			if !present || !benched {
				continue
			}
			sum += scoreMetric(name, v, b)
			n++
		}
		if n > 0 {
			scores[cat] = sum / float64(n)
		}
	}
	return scores
}

// scoreMetric maps one metric reading to [0,100] against its benchmark.
// Better-when-lower metrics hold 100 at or below the benchmark and decay
// linearly to 0 at twice the benchmark. Better-when-higher metrics hold 100
// at or above the benchmark and scale linearly with metric/benchmark below it.
func scoreMetric(name string, value, benchmark float64) float64 {
	if benchmark <= 0 {
		return core.NeutralScore
	}
	switch metricDirections[name] {
	case lowerIsBetter:
		if value <= benchmark {
			return 100
		}
		return clampScore(100 * (1 - (value-benchmark)/benchmark))
	default:
		if value >= benchmark {
			return 100
		}
		return clampScore(100 * value / benchmark)
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// metricValues flattens the benchmarked subset of a MetricSet by wire name.
func metricValues(m core.MetricSet) map[string]float64 {
	out := make(map[string]float64)
	put := func(name string, v *float64) {
		if v != nil {
			out[name] = *v
		}
	}
	put("pe_ratio", m.PERatio)
	put("pb_ratio", m.PBRatio)
	put("ev_ebitda", m.EVEBITDA)
	put("roe", m.ROE)
	put("roa", m.ROA)
	put("ebitda_margin", m.EBITDAMargin)
	put("operating_margin", m.OperatingMargin)
	put("revenue_growth_1y", m.RevenueGrowth1Y)
	put("revenue_growth_3y", m.RevenueGrowth3Y)
	put("earnings_growth_1y", m.EarningsGrowth1Y)
	put("debt_to_equity", m.DebtToEquity)
	put("debt_to_ebitda", m.DebtToEBITDA)
	put("current_ratio", m.CurrentRatio)
	return out
}
