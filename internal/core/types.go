package core

import "time"

// Sector names used across the Brazilian market benchmark tables.
// Sectors outside this list fall back to the default benchmarks.
const (
	SectorBancos     = "Bancos"
	SectorPetroleo   = "Petróleo e Gás"
	SectorMineracao  = "Mineração"
	SectorVarejo     = "Varejo"
	SectorTecnologia = "Tecnologia"
	SectorEnergia    = "Energia Elétrica"
	SectorConsumo    = "Consumo"
	SectorSaude      = "Saúde"
	SectorDefault    = "default"
)

// Float returns a pointer to v. Used to populate optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

// FinancialRecord is a snapshot of one company's financials at one point in
// time. Numeric fields are either a non-negative value or nil (absent);
// upstream collectors must never encode "unknown" as 0 or NaN.
type FinancialRecord struct {
	Code              string   `json:"code"`
	Sector            string   `json:"sector,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	CurrentPrice      *float64 `json:"current_price,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`

	// Income statement
	Revenue         *float64 `json:"revenue,omitempty"`
	GrossProfit     *float64 `json:"gross_profit,omitempty"`
	OperatingIncome *float64 `json:"operating_income,omitempty"`
	EBITDA          *float64 `json:"ebitda,omitempty"`
	NetIncome       *float64 `json:"net_income,omitempty"`

	// Balance sheet
	TotalAssets        *float64 `json:"total_assets,omitempty"`
	CurrentAssets      *float64 `json:"current_assets,omitempty"`
	Cash               *float64 `json:"cash,omitempty"`
	TotalDebt          *float64 `json:"total_debt,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty"`
	ShareholdersEquity *float64 `json:"shareholders_equity,omitempty"`

	// Historical series, oldest first, up to 5 years
	HistoricalRevenue   []float64 `json:"historical_revenue,omitempty"`
	HistoricalNetIncome []float64 `json:"historical_net_income,omitempty"`

	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// IsEmpty reports whether the record carries no usable financial data at all.
func (r FinancialRecord) IsEmpty() bool {
	return r.CurrentPrice == nil && r.MarketCap == nil && r.Revenue == nil &&
		r.NetIncome == nil && r.TotalAssets == nil && r.ShareholdersEquity == nil &&
		len(r.HistoricalRevenue) == 0 && len(r.HistoricalNetIncome) == 0
}

// MetricSet holds the computed ratios for one FinancialRecord. Every field is
// nil when the inputs needed to compute it were absent; Warnings lists one
// entry per skipped metric. Immutable after creation.
type MetricSet struct {
	// Valuation
	PERatio  *float64 `json:"pe_ratio,omitempty"`
	PBRatio  *float64 `json:"pb_ratio,omitempty"`
	PSRatio  *float64 `json:"ps_ratio,omitempty"`
	EVEBITDA *float64 `json:"ev_ebitda,omitempty"`
	EVSales  *float64 `json:"ev_sales,omitempty"`

	// Profitability (percentages)
	ROE             *float64 `json:"roe,omitempty"`
	ROA             *float64 `json:"roa,omitempty"`
	ROIC            *float64 `json:"roic,omitempty"`
	GrossMargin     *float64 `json:"gross_margin,omitempty"`
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	NetMargin       *float64 `json:"net_margin,omitempty"`
	EBITDAMargin    *float64 `json:"ebitda_margin,omitempty"`

	// Growth (percentages)
	RevenueGrowth1Y  *float64 `json:"revenue_growth_1y,omitempty"`
	RevenueGrowth3Y  *float64 `json:"revenue_growth_3y,omitempty"`
	EarningsGrowth1Y *float64 `json:"earnings_growth_1y,omitempty"`
	EarningsGrowth3Y *float64 `json:"earnings_growth_3y,omitempty"`

	// Leverage
	DebtToEquity *float64 `json:"debt_to_equity,omitempty"`
	DebtToAssets *float64 `json:"debt_to_assets,omitempty"`
	DebtToEBITDA *float64 `json:"debt_to_ebitda,omitempty"`

	// Liquidity
	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	QuickRatio   *float64 `json:"quick_ratio,omitempty"`
	CashRatio    *float64 `json:"cash_ratio,omitempty"`

	// Efficiency
	AssetTurnover *float64 `json:"asset_turnover,omitempty"`

	Warnings     []string  `json:"warnings,omitempty"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// Category identifies one scoring dimension.
type Category string

const (
	CategoryValuation     Category = "valuation"
	CategoryProfitability Category = "profitability"
	CategoryGrowth        Category = "growth"
	CategoryLeverage      Category = "leverage"
)

// Categories lists all scoring categories in weight order.
func Categories() []Category {
	return []Category{CategoryValuation, CategoryProfitability, CategoryGrowth, CategoryLeverage}
}

// CategoryScore maps category name to a score in [0,100]. A category is absent
// from the map when none of its contributing metrics were available.
type CategoryScore map[Category]float64

// CompositeScore is the weighted blend of category scores plus the inputs
// that produced it.
type CompositeScore struct {
	Value      float64       `json:"value"`
	Categories CategoryScore `json:"categories"`
	Refined    bool          `json:"refined"` // true when an LLM adjustment was blended in
}

// NeutralScore is the composite value used when no category could be computed.
const NeutralScore = 50.0

// Severity tags how serious a red flag is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// RedFlag is a rule-triggered finding on one metric.
type RedFlag struct {
	Metric      string   `json:"metric"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Value       float64  `json:"value"`
	Threshold   float64  `json:"threshold"`
}

// QualityTier buckets a composite score.
type QualityTier string

const (
	TierExcellent    QualityTier = "excellent"
	TierGood         QualityTier = "good"
	TierAverage      QualityTier = "average"
	TierBelowAverage QualityTier = "below_average"
	TierPoor         QualityTier = "poor"
)

// Recommendation is the final buy/sell/hold verdict.
type Recommendation string

const (
	StrongBuy  Recommendation = "strong_buy"
	Buy        Recommendation = "buy"
	Hold       Recommendation = "hold"
	Sell       Recommendation = "sell"
	StrongSell Recommendation = "strong_sell"
)

// QualityAnalysis is the final artifact of one stock analysis. Immutable once
// produced; persistence and reporting are external concerns.
type QualityAnalysis struct {
	Code           string         `json:"code"`
	Sector         string         `json:"sector,omitempty"`
	Composite      CompositeScore `json:"composite"`
	Tier           QualityTier    `json:"tier"`
	RedFlags       []RedFlag      `json:"red_flags,omitempty"`
	Strengths      []string       `json:"strengths,omitempty"`
	Weaknesses     []string       `json:"weaknesses,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
	FiltersPassed  int            `json:"filters_passed"`
	TotalFilters   int            `json:"total_filters"`
	DataQuality    float64        `json:"data_quality"`
	DataValid      bool           `json:"data_valid"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// SectorStatistics summarizes composite scores within one sector. Only
// computed for sectors with at least two members.
type SectorStatistics struct {
	Sector     string  `json:"sector"`
	SampleSize int     `json:"sample_size"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	StdDev     float64 `json:"std_dev"`
	P25        float64 `json:"p25"`
	P50        float64 `json:"p50"`
	P75        float64 `json:"p75"`
	P90        float64 `json:"p90"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

// SectorRanking is one stock's position within its sector.
type SectorRanking struct {
	Code             string  `json:"code"`
	Sector           string  `json:"sector"`
	Rank             int     `json:"rank"`
	Percentile       float64 `json:"percentile"`
	TotalCompanies   int     `json:"total_companies"`
	Score            float64 `json:"score"`
	VsSectorMean     float64 `json:"vs_sector_mean"`
	VsSectorMedian   float64 `json:"vs_sector_median"`
	IsSectorLeader   bool    `json:"is_sector_leader"`
	IsTopQuartile    bool    `json:"is_top_quartile"`
	IsBottomQuartile bool    `json:"is_bottom_quartile"`
	IsOutlier        bool    `json:"is_outlier"`
}
