package core

import (
	"encoding/json"
	"testing"
)

func TestFinancialRecord_IsEmpty(t *testing.T) {
	var empty FinancialRecord
	if !empty.IsEmpty() {
		t.Error("zero record should be empty")
	}

	withPrice := FinancialRecord{Code: "PETR4", CurrentPrice: Float(38.5)}
	if withPrice.IsEmpty() {
		t.Error("record with a price should not be empty")
	}

	withHistory := FinancialRecord{HistoricalRevenue: []float64{100, 110}}
	if withHistory.IsEmpty() {
		t.Error("record with history should not be empty")
	}
}

func TestFinancialRecord_AbsentFieldsOmittedFromJSON(t *testing.T) {
	rec := FinancialRecord{Code: "VALE3", MarketCap: Float(300e9)}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if _, present := m["net_income"]; present {
		t.Error("absent net_income must not appear in JSON")
	}
	if m["market_cap"].(float64) != 300e9 {
		t.Error("market_cap should round-trip")
	}
}

func TestCategories_Order(t *testing.T) {
	cats := Categories()
	if len(cats) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(cats))
	}
	if cats[0] != CategoryValuation || cats[3] != CategoryLeverage {
		t.Error("category order changed")
	}
}
