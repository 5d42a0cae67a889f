package scoring

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ftorres/b3score/internal/core"
)

func TestBenchmarks_KnownSector(t *testing.T) {
	b := Benchmarks(core.SectorTecnologia)
	if b["roe"] != 20 {
		t.Errorf("tecnologia roe benchmark: got %.1f, want 20", b["roe"])
	}
}

func TestBenchmarks_UnknownSectorFallsBack(t *testing.T) {
	def := Benchmarks(core.SectorDefault)
	got := Benchmarks("Agronegócio")
	if got["pe_ratio"] != def["pe_ratio"] {
		t.Error("unknown sector should use default benchmarks")
	}
}

func TestScoreMetric_LowerIsBetter(t *testing.T) {
	cases := []struct {
		value, benchmark, want float64
	}{
		{8, 12, 100},  // below benchmark
		{12, 12, 100}, // at benchmark
		{18, 12, 50},  // 50% over
		{24, 12, 0},   // double the benchmark
		{36, 12, 0},   // clamped
	}
	for _, c := range cases {
		got := scoreMetric("pe_ratio", c.value, c.benchmark)
		if math.Abs(got-c.want) > 0.001 {
			t.Errorf("pe %.0f vs %.0f: got %.2f, want %.2f", c.value, c.benchmark, got, c.want)
		}
	}
}

func TestScoreMetric_HigherIsBetter(t *testing.T) {
	cases := []struct {
		value, benchmark, want float64
	}{
		{25, 20, 100},
		{20, 20, 100},
		{7.5, 20, 37.5},
		{0, 20, 0},
		{-5, 20, 0}, // clamped
	}
	for _, c := range cases {
		got := scoreMetric("roe", c.value, c.benchmark)
		if math.Abs(got-c.want) > 0.001 {
			t.Errorf("roe %.1f vs %.0f: got %.2f, want %.2f", c.value, c.benchmark, got, c.want)
		}
	}
}

func TestScoreCategories_SparseMetrics(t *testing.T) {
	// only ROE available: profitability is its lone contributor, the other
	// categories are omitted entirely
	m := core.MetricSet{ROE: core.Float(7.5)}

	scores := ScoreCategories(m, core.SectorTecnologia)

	got, ok := scores[core.CategoryProfitability]
	if !ok {
		t.Fatal("profitability should be present")
	}
	if math.Abs(got-37.5) > 0.001 {
		t.Errorf("profitability: got %.2f, want 37.5", got)
	}
	for _, cat := range []core.Category{core.CategoryValuation, core.CategoryGrowth, core.CategoryLeverage} {
		if _, ok := scores[cat]; ok {
			t.Errorf("category %s should be omitted with no metrics", cat)
		}
	}
}

func TestScoreCategories_MeanOverPresentMetrics(t *testing.T) {
	m := core.MetricSet{
		PERatio: core.Float(12), // at default benchmark: 100
		PBRatio: core.Float(4),  // double: 0
	}

	scores := ScoreCategories(m, "")

	if got := scores[core.CategoryValuation]; math.Abs(got-50) > 0.001 {
		t.Errorf("valuation: got %.2f, want 50", got)
	}
}

func TestWeights_Validate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}

	bad := Weights{core.CategoryValuation: 0.5, core.CategoryGrowth: 0.3}
	err := bad.Validate()
	if !errors.Is(err, core.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}

	neg := Weights{core.CategoryValuation: 1.5, core.CategoryGrowth: -0.5}
	if err := neg.Validate(); !errors.Is(err, core.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights for negative weight, got %v", err)
	}
}

func TestComposite_AllCategories(t *testing.T) {
	c, err := NewComposite(nil)
	if err != nil {
		t.Fatal(err)
	}

	scores := core.CategoryScore{
		core.CategoryValuation:     80,
		core.CategoryProfitability: 60,
		core.CategoryGrowth:        40,
		core.CategoryLeverage:      100,
	}
	got := c.Score(context.Background(), "TEST3", "", core.MetricSet{}, scores)

	want := 80*0.25 + 60*0.30 + 40*0.25 + 100*0.20
	if math.Abs(got.Value-want) > 0.001 {
		t.Errorf("composite: got %.2f, want %.2f", got.Value, want)
	}
	if got.Refined {
		t.Error("no reasoner attached, score must not be refined")
	}
}

func TestComposite_RenormalizesMissingCategories(t *testing.T) {
	c, _ := NewComposite(nil)

	scores := core.CategoryScore{
		core.CategoryValuation:     80,
		core.CategoryProfitability: 60,
	}
	got := c.Score(context.Background(), "TEST3", "", core.MetricSet{}, scores)

	// weights 0.25 and 0.30 renormalized over 0.55
	want := (80*0.25 + 60*0.30) / 0.55
	if math.Abs(got.Value-want) > 0.001 {
		t.Errorf("composite: got %.4f, want %.4f", got.Value, want)
	}
}

func TestComposite_NoCategoriesIsNeutral(t *testing.T) {
	c, _ := NewComposite(nil)

	got := c.Score(context.Background(), "TEST3", "", core.MetricSet{}, core.CategoryScore{})

	if got.Value != core.NeutralScore {
		t.Errorf("composite with no categories: got %.1f, want %.1f", got.Value, core.NeutralScore)
	}
}

type stubReasoner struct {
	ref Refinement
	err error
}

func (s stubReasoner) Refine(context.Context, string, string, core.MetricSet, core.CategoryScore) (Refinement, error) {
	return s.ref, s.err
}

func TestComposite_ConfidentRefinementBlendsHalfway(t *testing.T) {
	r := stubReasoner{ref: Refinement{
		Scores:     core.CategoryScore{core.CategoryValuation: 100},
		Confidence: 85,
	}}
	c, _ := NewComposite(nil, WithReasoner(r))

	scores := core.CategoryScore{core.CategoryValuation: 60}
	got := c.Score(context.Background(), "TEST3", "", core.MetricSet{}, scores)

	if !got.Refined {
		t.Fatal("expected refined score")
	}
	if math.Abs(got.Categories[core.CategoryValuation]-80) > 0.001 {
		t.Errorf("blended valuation: got %.2f, want 80", got.Categories[core.CategoryValuation])
	}
}

func TestComposite_LowConfidenceRefinementIgnored(t *testing.T) {
	r := stubReasoner{ref: Refinement{
		Scores:     core.CategoryScore{core.CategoryValuation: 100},
		Confidence: 70, // at the floor, not above it
	}}
	c, _ := NewComposite(nil, WithReasoner(r))

	scores := core.CategoryScore{core.CategoryValuation: 60}
	got := c.Score(context.Background(), "TEST3", "", core.MetricSet{}, scores)

	if got.Refined {
		t.Error("refinement at confidence floor must be ignored")
	}
	if got.Categories[core.CategoryValuation] != 60 {
		t.Errorf("valuation: got %.2f, want 60", got.Categories[core.CategoryValuation])
	}
}

func TestComposite_ReasonerErrorFallsBack(t *testing.T) {
	r := stubReasoner{err: errors.New("upstream unavailable")}
	c, _ := NewComposite(nil, WithReasoner(r))

	scores := core.CategoryScore{core.CategoryProfitability: 37.5}
	got := c.Score(context.Background(), "TEST3", "", core.MetricSet{}, scores)

	if got.Refined {
		t.Error("failed refinement must not mark score as refined")
	}
	if math.Abs(got.Value-37.5) > 0.001 {
		t.Errorf("composite: got %.2f, want 37.5", got.Value)
	}
}
