package calculator

import (
	"math"
	"strings"
	"testing"

	"github.com/ftorres/b3score/internal/core"
)

func fullRecord() core.FinancialRecord {
	return core.FinancialRecord{
		CurrentPrice:       core.Float(25.0),
		MarketCap:          core.Float(100_000_000_000),
		Revenue:            core.Float(50_000_000_000),
		GrossProfit:        core.Float(20_000_000_000),
		OperatingIncome:    core.Float(10_000_000_000),
		EBITDA:             core.Float(12_000_000_000),
		NetIncome:          core.Float(8_000_000_000),
		TotalAssets:        core.Float(200_000_000_000),
		CurrentAssets:      core.Float(60_000_000_000),
		Cash:               core.Float(15_000_000_000),
		TotalDebt:          core.Float(40_000_000_000),
		CurrentLiabilities: core.Float(30_000_000_000),
		ShareholdersEquity: core.Float(80_000_000_000),
		HistoricalRevenue:  []float64{40e9, 44e9, 47e9, 50e9},
		HistoricalNetIncome: []float64{
			5e9, 6e9, 7e9, 8e9,
		},
	}
}

func approx(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: got nil, want %.4f", name, want)
	}
	if math.Abs(*got-want) > 0.01 {
		t.Errorf("%s: got %.4f, want %.4f", name, *got, want)
	}
}

func TestCalculate_Valuation(t *testing.T) {
	m := Calculate(fullRecord())

	approx(t, "pe_ratio", m.PERatio, 12.5)
	approx(t, "pb_ratio", m.PBRatio, 1.25)
	approx(t, "ps_ratio", m.PSRatio, 2.0)
	// EV = 100B + 40B - 15B = 125B
	approx(t, "ev_ebitda", m.EVEBITDA, 125.0/12.0)
	approx(t, "ev_sales", m.EVSales, 2.5)
}

func TestCalculate_Profitability(t *testing.T) {
	m := Calculate(fullRecord())

	approx(t, "roe", m.ROE, 10.0)
	approx(t, "roa", m.ROA, 4.0)
	// NOPAT = 10B * 0.66 = 6.6B, invested = 80B + 40B = 120B
	approx(t, "roic", m.ROIC, 5.5)
	approx(t, "gross_margin", m.GrossMargin, 40.0)
	approx(t, "operating_margin", m.OperatingMargin, 20.0)
	approx(t, "net_margin", m.NetMargin, 16.0)
	approx(t, "ebitda_margin", m.EBITDAMargin, 24.0)
}

func TestCalculate_Growth(t *testing.T) {
	m := Calculate(fullRecord())

	approx(t, "revenue_growth_1y", m.RevenueGrowth1Y, (50.0-47.0)/47.0*100)
	approx(t, "revenue_growth_3y", m.RevenueGrowth3Y, (math.Pow(50.0/40.0, 1.0/3.0)-1)*100)
	approx(t, "earnings_growth_1y", m.EarningsGrowth1Y, (8.0-7.0)/7.0*100)
	approx(t, "earnings_growth_3y", m.EarningsGrowth3Y, (math.Pow(8.0/5.0, 1.0/3.0)-1)*100)
}

func TestCalculate_LeverageAndLiquidity(t *testing.T) {
	m := Calculate(fullRecord())

	approx(t, "debt_to_equity", m.DebtToEquity, 0.5)
	approx(t, "debt_to_assets", m.DebtToAssets, 0.2)
	approx(t, "debt_to_ebitda", m.DebtToEBITDA, 40.0/12.0)
	approx(t, "current_ratio", m.CurrentRatio, 2.0)
	approx(t, "quick_ratio", m.QuickRatio, 60.0*0.7/30.0)
	approx(t, "cash_ratio", m.CashRatio, 0.5)
	approx(t, "asset_turnover", m.AssetTurnover, 0.25)
}

func TestCalculate_NegativeEarningsSkipsPE(t *testing.T) {
	rec := fullRecord()
	rec.NetIncome = core.Float(-2_000_000_000)

	m := Calculate(rec)

	if m.PERatio != nil {
		t.Errorf("pe_ratio for loss-making company: got %v, want nil", *m.PERatio)
	}
	if !hasWarning(m, "pe_ratio") {
		t.Error("expected pe_ratio warning")
	}
	// ROE and margins are still computed, just negative
	approx(t, "roe", m.ROE, -2.5)
	approx(t, "net_margin", m.NetMargin, -4.0)
}

func TestCalculate_ZeroDenominators(t *testing.T) {
	rec := core.FinancialRecord{
		MarketCap:          core.Float(1e9),
		NetIncome:          core.Float(1e8),
		Revenue:            core.Float(0),
		ShareholdersEquity: core.Float(0),
	}

	m := Calculate(rec)

	if m.PBRatio != nil {
		t.Error("pb_ratio with zero equity should be nil")
	}
	if m.PSRatio != nil {
		t.Error("ps_ratio with zero revenue should be nil")
	}
	if m.NetMargin != nil {
		t.Error("net_margin with zero revenue should be nil")
	}
	if !hasWarning(m, "pb_ratio") || !hasWarning(m, "ps_ratio") {
		t.Errorf("missing denominator warnings, got %v", m.Warnings)
	}
}

func TestCalculate_EmptyRecord(t *testing.T) {
	m := Calculate(core.FinancialRecord{})

	for name, v := range map[string]*float64{
		"pe_ratio": m.PERatio, "roe": m.ROE, "roic": m.ROIC,
		"revenue_growth_1y": m.RevenueGrowth1Y, "debt_to_equity": m.DebtToEquity,
		"current_ratio": m.CurrentRatio, "asset_turnover": m.AssetTurnover,
	} {
		if v != nil {
			t.Errorf("%s from empty record: got %v, want nil", name, *v)
		}
	}
	if len(m.Warnings) == 0 {
		t.Error("empty record should produce warnings")
	}
}

func TestGrowth1Y_LossToProfit(t *testing.T) {
	rec := core.FinancialRecord{
		HistoricalNetIncome: []float64{-1e9, 2e9},
	}

	m := Calculate(rec)

	approx(t, "earnings_growth_1y", m.EarningsGrowth1Y, 100.0)
}

func TestGrowth1Y_DeepeningLoss(t *testing.T) {
	rec := core.FinancialRecord{
		HistoricalNetIncome: []float64{-1e9, -3e9},
	}

	m := Calculate(rec)

	if m.EarningsGrowth1Y != nil {
		t.Errorf("earnings growth from loss to loss: got %v, want nil", *m.EarningsGrowth1Y)
	}
}

func TestCAGR3Y_ShortSeries(t *testing.T) {
	rec := core.FinancialRecord{
		HistoricalRevenue: []float64{30e9, 40e9, 50e9},
	}

	m := Calculate(rec)

	// three points: base is the oldest one
	approx(t, "revenue_growth_3y", m.RevenueGrowth3Y, (math.Pow(50.0/30.0, 1.0/3.0)-1)*100)
}

func TestCAGR3Y_NonPositiveBase(t *testing.T) {
	rec := core.FinancialRecord{
		HistoricalNetIncome: []float64{-5e9, 1e9, 2e9, 3e9},
	}

	m := Calculate(rec)

	if m.EarningsGrowth3Y != nil {
		t.Errorf("CAGR with negative base: got %v, want nil", *m.EarningsGrowth3Y)
	}
}

func TestCalculate_NeverNaNOrInf(t *testing.T) {
	records := []core.FinancialRecord{
		fullRecord(),
		{},
		{MarketCap: core.Float(0), Revenue: core.Float(-1), NetIncome: core.Float(-1)},
		{HistoricalRevenue: []float64{0, 0, 0, 0}},
	}
	for _, rec := range records {
		m := Calculate(rec)
		for name, v := range map[string]*float64{
			"pe": m.PERatio, "pb": m.PBRatio, "ev_ebitda": m.EVEBITDA,
			"roe": m.ROE, "roic": m.ROIC, "rev_3y": m.RevenueGrowth3Y,
			"d/e": m.DebtToEquity, "quick": m.QuickRatio,
		} {
			if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
				t.Errorf("%s: non-finite value %v", name, *v)
			}
		}
	}
}

func hasWarning(m core.MetricSet, metric string) bool {
	for _, w := range m.Warnings {
		if strings.HasPrefix(w, metric+":") {
			return true
		}
	}
	return false
}
