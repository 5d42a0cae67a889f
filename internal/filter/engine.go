// Package filter runs the quality filter battery and red-flag rules over a
// metric set and derives the final recommendation. Every evaluation is a
// total, deterministic function of its inputs.
package filter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ftorres/b3score/internal/core"
)

// Thresholds parameterizes the filter battery and red-flag rules. Zero values
// are replaced by DefaultThresholds in NewEngine.
type Thresholds struct {
	GoodROE            float64 // filter: roe above this passes
	SustainableGrowth  float64 // filter: revenue growth 3y above this passes
	ControlledDebt     float64 // filter: debt/EBITDA below this passes
	HealthyLiquidity   float64 // filter: current ratio above this passes
	CriticalDebt       float64 // red flag: debt/EBITDA above this is critical
	ShrinkingRevenue   float64 // red flag: revenue growth 3y below this is high
	StretchedValuation float64 // red flag: P/E above this is medium
}

// DefaultThresholds returns the standard rule parameters.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GoodROE:            15,
		SustainableGrowth:  0,
		ControlledDebt:     3,
		HealthyLiquidity:   1.0,
		CriticalDebt:       6,
		ShrinkingRevenue:   -10,
		StretchedValuation: 40,
	}
}

// Verdict is the outcome of running the full battery on one stock.
type Verdict struct {
	FiltersPassed  int
	TotalFilters   int
	RedFlags       []core.RedFlag
	Strengths      []string
	Weaknesses     []string
	Recommendation core.Recommendation
	Confidence     float64
}

// Engine evaluates filters and red flags with fixed thresholds.
type Engine struct {
	t   Thresholds
	log *zap.Logger
}

// NewEngine builds a filter engine. Any zero threshold falls back to its
// default so partial configuration stays safe.
func NewEngine(t Thresholds, log ...*zap.Logger) *Engine {
	def := DefaultThresholds()
	if t.GoodROE == 0 {
		t.GoodROE = def.GoodROE
	}
	if t.ControlledDebt == 0 {
		t.ControlledDebt = def.ControlledDebt
	}
	if t.HealthyLiquidity == 0 {
		t.HealthyLiquidity = def.HealthyLiquidity
	}
	if t.CriticalDebt == 0 {
		t.CriticalDebt = def.CriticalDebt
	}
	if t.ShrinkingRevenue == 0 {
		t.ShrinkingRevenue = def.ShrinkingRevenue
	}
	if t.StretchedValuation == 0 {
		t.StretchedValuation = def.StretchedValuation
	}

	e := &Engine{t: t, log: zap.NewNop()}
	if len(log) > 0 && log[0] != nil {
		e.log = log[0]
	}
	return e
}

// filter is one named pass/fail check. Absent metrics fail the check but are
// still counted in the total, so sparse data reads as low conviction rather
// than a free pass.
type filterRule struct {
	name     string
	strength string
	weakness string
	passes   func(m core.MetricSet) bool
}

func (e *Engine) filters() []filterRule {
	above := func(v *float64, threshold float64) bool { return v != nil && *v > threshold }
	below := func(v *float64, threshold float64) bool { return v != nil && *v < threshold }

	return []filterRule{
		{
			name:     "strong_returns",
			strength: fmt.Sprintf("ROE above %.0f%%", e.t.GoodROE),
			weakness: fmt.Sprintf("ROE at or below %.0f%%", e.t.GoodROE),
			passes:   func(m core.MetricSet) bool { return above(m.ROE, e.t.GoodROE) },
		},
		{
			name:     "sustainable_growth",
			strength: "revenue growing over 3 years",
			weakness: "revenue not growing over 3 years",
			passes:   func(m core.MetricSet) bool { return above(m.RevenueGrowth3Y, e.t.SustainableGrowth) },
		},
		{
			name:     "controlled_debt",
			strength: fmt.Sprintf("debt under %.0fx EBITDA", e.t.ControlledDebt),
			weakness: fmt.Sprintf("debt at or above %.0fx EBITDA", e.t.ControlledDebt),
			passes:   func(m core.MetricSet) bool { return below(m.DebtToEBITDA, e.t.ControlledDebt) },
		},
		{
			name:     "healthy_liquidity",
			strength: "current ratio above 1",
			weakness: "current liabilities exceed current assets",
			passes:   func(m core.MetricSet) bool { return above(m.CurrentRatio, e.t.HealthyLiquidity) },
		},
		{
			name:     "profitable",
			strength: "positive net margin",
			weakness: "operating at a loss",
			passes:   func(m core.MetricSet) bool { return above(m.NetMargin, 0) },
		},
	}
}

// redFlags evaluates every red-flag rule against the metrics.
func (e *Engine) redFlags(m core.MetricSet) []core.RedFlag {
	var flags []core.RedFlag
	add := func(metric string, v *float64, threshold float64, severity core.Severity, breached bool, desc string) {
		if v == nil || !breached {
			return
		}
		flags = append(flags, core.RedFlag{
			Metric:      metric,
			Severity:    severity,
			Description: desc,
			Value:       *v,
			Threshold:   threshold,
		})
	}

	add("roe", m.ROE, 0, core.SeverityCritical,
		m.ROE != nil && *m.ROE < 0, "negative return on equity")
	add("debt_to_ebitda", m.DebtToEBITDA, e.t.CriticalDebt, core.SeverityCritical,
		m.DebtToEBITDA != nil && *m.DebtToEBITDA > e.t.CriticalDebt, "debt load unserviceable from earnings")
	add("net_margin", m.NetMargin, 0, core.SeverityCritical,
		m.NetMargin != nil && *m.NetMargin < 0, "company is losing money")
	add("revenue_growth_3y", m.RevenueGrowth3Y, e.t.ShrinkingRevenue, core.SeverityHigh,
		m.RevenueGrowth3Y != nil && *m.RevenueGrowth3Y < e.t.ShrinkingRevenue, "revenue shrinking over 3 years")
	add("current_ratio", m.CurrentRatio, e.t.HealthyLiquidity, core.SeverityHigh,
		m.CurrentRatio != nil && *m.CurrentRatio < e.t.HealthyLiquidity, "short-term liquidity risk")
	add("pe_ratio", m.PERatio, e.t.StretchedValuation, core.SeverityMedium,
		m.PERatio != nil && *m.PERatio > e.t.StretchedValuation, "valuation stretched versus earnings")

	return flags
}

// Evaluate runs the filter battery and red-flag rules and maps the results to
// a recommendation with a confidence level.
func (e *Engine) Evaluate(code string, m core.MetricSet) Verdict {
	v := Verdict{}

	for _, f := range e.filters() {
		v.TotalFilters++
		if f.passes(m) {
			v.FiltersPassed++
			v.Strengths = append(v.Strengths, f.strength)
		} else {
			v.Weaknesses = append(v.Weaknesses, f.weakness)
		}
	}

	v.RedFlags = e.redFlags(m)
	v.Recommendation, v.Confidence = e.recommend(v)

	if len(v.RedFlags) > 0 {
		e.log.Debug("red flags raised",
			zap.String("code", code), zap.Int("count", len(v.RedFlags)))
	}
	return v
}

// recommend maps critical red flags and the filter pass ratio to a final
// verdict. Critical flags dominate; otherwise the pass ratio decides, with
// confidence reduced when flags and filters disagree.
func (e *Engine) recommend(v Verdict) (core.Recommendation, float64) {
	var criticals int
	for _, f := range v.RedFlags {
		if f.Severity == core.SeverityCritical {
			criticals++
		}
	}

	ratio := 0.0
	if v.TotalFilters > 0 {
		ratio = float64(v.FiltersPassed) / float64(v.TotalFilters)
	}

	if criticals >= 2 {
		return core.StrongSell, 90
	}
	if criticals == 1 {
		// one critical flag against otherwise strong filters is a mixed
		// signal; hold with low conviction instead of an outright sell
		if ratio >= 0.65 {
			return core.Hold, 55
		}
		return core.Sell, 80
	}

	switch {
	case ratio >= 0.85:
		return core.StrongBuy, confidence(85, v.RedFlags)
	case ratio >= 0.65:
		return core.Buy, confidence(75, v.RedFlags)
	case ratio >= 0.40:
		return core.Hold, confidence(65, v.RedFlags)
	case ratio >= 0.20:
		return core.Sell, confidence(70, v.RedFlags)
	default:
		return core.StrongSell, confidence(80, v.RedFlags)
	}
}

// confidence lowers a base confidence by 5 points per non-critical red flag,
// floored at 50.
func confidence(base float64, flags []core.RedFlag) float64 {
	c := base - 5*float64(len(flags))
	if c < 50 {
		return 50
	}
	return c
}

// Tier buckets a composite score into a quality tier.
func Tier(score float64) core.QualityTier {
	switch {
	case score >= 85:
		return core.TierExcellent
	case score >= 70:
		return core.TierGood
	case score >= 50:
		return core.TierAverage
	case score >= 30:
		return core.TierBelowAverage
	default:
		return core.TierPoor
	}
}
