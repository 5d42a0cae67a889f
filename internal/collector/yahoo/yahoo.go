// Package yahoo fetches B3 fundamentals from the Yahoo Finance quoteSummary
// API. B3 tickers map to Yahoo by appending the .SA suffix.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/ftorres/b3score/internal/core"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"

const summaryModules = "price,summaryDetail,financialData,defaultKeyStatistics," +
	"incomeStatementHistory,balanceSheetHistory,assetProfile"

// validCode matches B3 tickers: four letters plus a type digit, e.g. PETR4,
// VALE3, SANB11.
var validCode = regexp.MustCompile(`^[A-Z]{4}\d{1,2}$`)

// Yahoo is a Fundamentals collector backed by Yahoo Finance.
type Yahoo struct {
	baseURL string
	client  *http.Client
}

// Option configures the collector.
type Option func(*Yahoo)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(y *Yahoo) { y.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(y *Yahoo) { y.client = c }
}

// New creates a Yahoo collector.
func New(opts ...Option) *Yahoo {
	y := &Yahoo{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

func (y *Yahoo) Name() string { return "yahoo" }

// Fetch retrieves and maps one company's fundamentals.
func (y *Yahoo) Fetch(ctx context.Context, code string) (core.FinancialRecord, error) {
	if !validCode.MatchString(code) {
		return core.FinancialRecord{}, core.WrapError(core.ErrStockNotFound,
			fmt.Errorf("invalid B3 code %q", code))
	}

	url := fmt.Sprintf("%s/%s.SA?modules=%s", y.baseURL, code, summaryModules)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.FinancialRecord{}, core.WrapError(core.ErrCollectorFailed, err)
	}
	req.Header.Set("User-Agent", "b3score/1.0")

	resp, err := y.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return core.FinancialRecord{}, core.WrapError(core.ErrCollectorTimeout, err)
		}
		return core.FinancialRecord{}, core.WrapError(core.ErrCollectorFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return core.FinancialRecord{}, core.WrapError(core.ErrStockNotFound,
			fmt.Errorf("yahoo has no data for %s", code))
	}
	if resp.StatusCode != http.StatusOK {
		return core.FinancialRecord{}, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("yahoo returned status %d", resp.StatusCode))
	}

	var body summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return core.FinancialRecord{}, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("decoding response: %w", err))
	}
	if body.QuoteSummary.Error != nil {
		return core.FinancialRecord{}, core.WrapError(core.ErrStockNotFound,
			fmt.Errorf("yahoo error: %s", body.QuoteSummary.Error.Description))
	}
	if len(body.QuoteSummary.Result) == 0 {
		return core.FinancialRecord{}, core.WrapError(core.ErrStockNotFound,
			fmt.Errorf("empty result for %s", code))
	}

	rec := mapRecord(code, body.QuoteSummary.Result[0])
	if rec.IsEmpty() {
		return core.FinancialRecord{}, core.WrapError(core.ErrEmptyRecord,
			fmt.Errorf("no usable fundamentals for %s", code))
	}
	return rec, nil
}

// mapRecord flattens the quoteSummary modules into a FinancialRecord.
func mapRecord(code string, r summaryResult) core.FinancialRecord {
	rec := core.FinancialRecord{
		Code:        code,
		Sector:      r.AssetProfile.Sector,
		Industry:    r.AssetProfile.Industry,
		LastUpdated: time.Now(),
	}

	rec.CurrentPrice = r.Price.RegularMarketPrice.ptr()
	rec.MarketCap = r.Price.MarketCap.ptr()
	rec.SharesOutstanding = r.KeyStatistics.SharesOutstanding.ptr()

	rec.Revenue = r.FinancialData.TotalRevenue.ptr()
	rec.GrossProfit = r.FinancialData.GrossProfits.ptr()
	rec.EBITDA = r.FinancialData.EBITDA.ptr()
	rec.TotalDebt = r.FinancialData.TotalDebt.ptr()
	rec.Cash = r.FinancialData.TotalCash.ptr()

	// statement history arrives newest first; series are stored oldest first
	stmts := r.IncomeStatementHistory.Statements
	for i := len(stmts) - 1; i >= 0; i-- {
		s := stmts[i]
		if v := s.TotalRevenue.ptr(); v != nil {
			rec.HistoricalRevenue = append(rec.HistoricalRevenue, *v)
		}
		if v := s.NetIncome.ptr(); v != nil {
			rec.HistoricalNetIncome = append(rec.HistoricalNetIncome, *v)
		}
	}
	if len(stmts) > 0 {
		latest := stmts[0]
		rec.NetIncome = latest.NetIncome.ptr()
		rec.OperatingIncome = latest.OperatingIncome.ptr()
		if rec.Revenue == nil {
			rec.Revenue = latest.TotalRevenue.ptr()
		}
	}

	sheets := r.BalanceSheetHistory.Statements
	if len(sheets) > 0 {
		latest := sheets[0]
		rec.TotalAssets = latest.TotalAssets.ptr()
		rec.CurrentAssets = latest.TotalCurrentAssets.ptr()
		rec.CurrentLiabilities = latest.TotalCurrentLiabilities.ptr()
		rec.ShareholdersEquity = latest.TotalStockholderEquity.ptr()
		if rec.Cash == nil {
			rec.Cash = latest.Cash.ptr()
		}
	}

	return rec
}
