package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ftorres/b3score/internal/core"
)

func analysis(code, sector string, score float64, rec core.Recommendation) core.QualityAnalysis {
	return core.QualityAnalysis{
		Code:           code,
		Sector:         sector,
		Composite:      core.CompositeScore{Value: score},
		Recommendation: rec,
		GeneratedAt:    time.Now(),
	}
}

func TestMemoryStore_SaveAndLatest(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	s.Save(ctx, analysis("PETR4", core.SectorPetroleo, 60, core.Hold))
	s.Save(ctx, analysis("PETR4", core.SectorPetroleo, 72, core.Buy))

	got, err := s.Latest(ctx, "PETR4")
	if err != nil {
		t.Fatal(err)
	}
	if got.Composite.Value != 72 {
		t.Errorf("latest score: got %.0f, want 72", got.Composite.Value)
	}
}

func TestMemoryStore_LatestUnknownCode(t *testing.T) {
	s := NewMemoryStore(10)

	_, err := s.Latest(context.Background(), "XXXX3")
	if !errors.Is(err, core.ErrStockNotFound) {
		t.Errorf("expected ErrStockNotFound, got %v", err)
	}
}

func TestMemoryStore_ListFilters(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	s.Save(ctx, analysis("ITUB4", core.SectorBancos, 80, core.Buy))
	s.Save(ctx, analysis("BBDC4", core.SectorBancos, 65, core.Hold))
	s.Save(ctx, analysis("MGLU3", core.SectorVarejo, 35, core.Sell))

	banks, err := s.List(ctx, ListFilter{Sector: core.SectorBancos})
	if err != nil {
		t.Fatal(err)
	}
	if len(banks) != 2 {
		t.Errorf("bank analyses: got %d, want 2", len(banks))
	}
	// newest first
	if banks[0].Code != "BBDC4" {
		t.Errorf("order: got %s first", banks[0].Code)
	}

	strong, _ := s.List(ctx, ListFilter{MinScore: 70})
	if len(strong) != 1 || strong[0].Code != "ITUB4" {
		t.Errorf("min score filter: got %+v", strong)
	}

	sells, _ := s.List(ctx, ListFilter{Recommendation: core.Sell})
	if len(sells) != 1 || sells[0].Code != "MGLU3" {
		t.Errorf("recommendation filter: got %+v", sells)
	}
}

func TestMemoryStore_ListPagination(t *testing.T) {
	s := NewMemoryStore(50)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		s.Save(ctx, analysis(fmt.Sprintf("ST%02d3", i), core.SectorVarejo, 50, core.Hold))
	}

	page, _ := s.List(ctx, ListFilter{Limit: 3, Offset: 2})
	if len(page) != 3 {
		t.Errorf("page size: got %d, want 3", len(page))
	}

	beyond, _ := s.List(ctx, ListFilter{Offset: 100})
	if len(beyond) != 0 {
		t.Errorf("offset beyond data: got %d results", len(beyond))
	}
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Save(ctx, analysis(fmt.Sprintf("ST%02d3", i), core.SectorVarejo, 50, core.Hold))
	}

	count, _ := s.Count(ctx, ListFilter{})
	if count != 3 {
		t.Errorf("count after eviction: got %d, want 3", count)
	}
	if _, err := s.Latest(ctx, "ST003"); err != nil {
		t.Error("recent entry should survive eviction")
	}
	if _, err := s.Latest(ctx, "ST000"); !errors.Is(err, core.ErrStockNotFound) {
		t.Error("oldest entry should be evicted")
	}
}
