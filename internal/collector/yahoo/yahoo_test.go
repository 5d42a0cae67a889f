package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ftorres/b3score/internal/core"
)

const petrobrasFixture = `{
  "quoteSummary": {
    "result": [{
      "price": {
        "regularMarketPrice": {"raw": 38.52},
        "marketCap": {"raw": 501000000000}
      },
      "assetProfile": {"sector": "Energy", "industry": "Oil & Gas Integrated"},
      "financialData": {
        "totalRevenue": {"raw": 511000000000},
        "grossProfits": {"raw": 260000000000},
        "ebitda": {"raw": 240000000000},
        "totalDebt": {"raw": 310000000000},
        "totalCash": {"raw": 60000000000}
      },
      "defaultKeyStatistics": {"sharesOutstanding": {"raw": 13000000000}},
      "incomeStatementHistory": {
        "incomeStatementHistory": [
          {"totalRevenue": {"raw": 511000000000}, "operatingIncome": {"raw": 190000000000}, "netIncome": {"raw": 125000000000}},
          {"totalRevenue": {"raw": 452000000000}, "operatingIncome": {"raw": 160000000000}, "netIncome": {"raw": 107000000000}},
          {"totalRevenue": {"raw": 272000000000}, "netIncome": {"raw": 6200000000}}
        ]
      },
      "balanceSheetHistory": {
        "balanceSheetStatements": [
          {"totalAssets": {"raw": 1050000000000},
           "totalCurrentAssets": {"raw": 170000000000},
           "totalCurrentLiabilities": {"raw": 140000000000},
           "totalStockholderEquity": {"raw": 380000000000}}
        ]
      }
    }],
    "error": null
  }
}`

func fixtureServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ".SA") {
			t.Errorf("expected .SA suffix in path, got %s", r.URL.Path)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestFetch_MapsRecord(t *testing.T) {
	srv := fixtureServer(t, http.StatusOK, petrobrasFixture)
	defer srv.Close()

	y := New(WithBaseURL(srv.URL))
	rec, err := y.Fetch(context.Background(), "PETR4")
	if err != nil {
		t.Fatal(err)
	}

	if rec.Code != "PETR4" {
		t.Errorf("code: got %s", rec.Code)
	}
	if rec.Sector != "Energy" {
		t.Errorf("sector: got %s", rec.Sector)
	}
	if rec.CurrentPrice == nil || *rec.CurrentPrice != 38.52 {
		t.Errorf("price: got %v", rec.CurrentPrice)
	}
	if rec.NetIncome == nil || *rec.NetIncome != 125e9 {
		t.Errorf("net income: got %v", rec.NetIncome)
	}
	if rec.OperatingIncome == nil || *rec.OperatingIncome != 190e9 {
		t.Errorf("operating income: got %v", rec.OperatingIncome)
	}
	if rec.ShareholdersEquity == nil || *rec.ShareholdersEquity != 380e9 {
		t.Errorf("equity: got %v", rec.ShareholdersEquity)
	}
	if rec.LastUpdated.IsZero() {
		t.Error("last_updated not set")
	}
}

func TestFetch_HistoricalSeriesOldestFirst(t *testing.T) {
	srv := fixtureServer(t, http.StatusOK, petrobrasFixture)
	defer srv.Close()

	y := New(WithBaseURL(srv.URL))
	rec, err := y.Fetch(context.Background(), "PETR4")
	if err != nil {
		t.Fatal(err)
	}

	if len(rec.HistoricalRevenue) != 3 {
		t.Fatalf("historical revenue: got %d points", len(rec.HistoricalRevenue))
	}
	if rec.HistoricalRevenue[0] != 272e9 || rec.HistoricalRevenue[2] != 511e9 {
		t.Errorf("series order wrong: %v", rec.HistoricalRevenue)
	}
	if rec.HistoricalNetIncome[0] != 6.2e9 || rec.HistoricalNetIncome[2] != 125e9 {
		t.Errorf("net income series wrong: %v", rec.HistoricalNetIncome)
	}
}

func TestFetch_InvalidCode(t *testing.T) {
	y := New()

	_, err := y.Fetch(context.Background(), "petr4")
	if !errors.Is(err, core.ErrStockNotFound) {
		t.Errorf("lowercase code: got %v", err)
	}

	_, err = y.Fetch(context.Background(), "../etc")
	if !errors.Is(err, core.ErrStockNotFound) {
		t.Errorf("path traversal attempt: got %v", err)
	}
}

func TestFetch_NotFound(t *testing.T) {
	srv := fixtureServer(t, http.StatusNotFound, `{}`)
	defer srv.Close()

	y := New(WithBaseURL(srv.URL))
	_, err := y.Fetch(context.Background(), "XXXX3")

	if !errors.Is(err, core.ErrStockNotFound) {
		t.Errorf("expected ErrStockNotFound, got %v", err)
	}
}

func TestFetch_ServerError(t *testing.T) {
	srv := fixtureServer(t, http.StatusInternalServerError, "")
	defer srv.Close()

	y := New(WithBaseURL(srv.URL))
	_, err := y.Fetch(context.Background(), "VALE3")

	if !errors.Is(err, core.ErrCollectorFailed) {
		t.Errorf("expected ErrCollectorFailed, got %v", err)
	}
}

func TestFetch_APIErrorBody(t *testing.T) {
	srv := fixtureServer(t, http.StatusOK,
		`{"quoteSummary": {"result": [], "error": {"code": "Not Found", "description": "Quote not found"}}}`)
	defer srv.Close()

	y := New(WithBaseURL(srv.URL))
	_, err := y.Fetch(context.Background(), "ZZZZ9")

	if !errors.Is(err, core.ErrStockNotFound) {
		t.Errorf("expected ErrStockNotFound, got %v", err)
	}
}

func TestFetch_EmptyFundamentals(t *testing.T) {
	srv := fixtureServer(t, http.StatusOK,
		`{"quoteSummary": {"result": [{"assetProfile": {"sector": "Utilities"}}], "error": null}}`)
	defer srv.Close()

	y := New(WithBaseURL(srv.URL))
	_, err := y.Fetch(context.Background(), "ELET3")

	if !errors.Is(err, core.ErrEmptyRecord) {
		t.Errorf("expected ErrEmptyRecord, got %v", err)
	}
}
