// Package analyzer runs the full fundamental analysis pipeline over financial
// records: ratios, data quality, category scores, composite, filters and the
// final recommendation.
package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ftorres/b3score/internal/calculator"
	"github.com/ftorres/b3score/internal/core"
	"github.com/ftorres/b3score/internal/filter"
	"github.com/ftorres/b3score/internal/quality"
	"github.com/ftorres/b3score/internal/scoring"
	"github.com/ftorres/b3score/internal/sector"
)

// Analyzer orchestrates the per-stock pipeline. Construct with New; the zero
// value is not usable.
type Analyzer struct {
	composite  *scoring.Composite
	engine     *filter.Engine
	comparator *sector.Comparator
	log        *zap.Logger
}

// Option configures optional collaborators.
type Option func(*Analyzer)

// WithComposite replaces the default composite scorer.
func WithComposite(c *scoring.Composite) Option {
	return func(a *Analyzer) { a.composite = c }
}

// WithFilterEngine replaces the default filter engine.
func WithFilterEngine(e *filter.Engine) Option {
	return func(a *Analyzer) { a.engine = e }
}

// WithComparator replaces the default sector comparator.
func WithComparator(c *sector.Comparator) Option {
	return func(a *Analyzer) { a.comparator = c }
}

// WithLogger sets the analyzer's logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Analyzer) { a.log = log }
}

// New builds an analyzer with default collaborators.
func New(opts ...Option) (*Analyzer, error) {
	composite, err := scoring.NewComposite(nil)
	if err != nil {
		return nil, err
	}
	a := &Analyzer{
		composite:  composite,
		engine:     filter.NewEngine(filter.Thresholds{}),
		comparator: sector.NewComparator(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze runs the pipeline for one stock. An empty record is the only hard
// failure; sparse records flow through and surface as low data quality and
// low conviction instead of errors.
func (a *Analyzer) Analyze(ctx context.Context, rec core.FinancialRecord) (core.QualityAnalysis, error) {
	if rec.IsEmpty() {
		return core.QualityAnalysis{}, core.ErrEmptyRecord
	}

	metrics := calculator.Calculate(rec)
	report := quality.Assess(rec)
	categories := scoring.ScoreCategories(metrics, rec.Sector)
	composite := a.composite.Score(ctx, rec.Code, rec.Sector, metrics, categories)
	verdict := a.engine.Evaluate(rec.Code, metrics)

	analysis := core.QualityAnalysis{
		Code:           rec.Code,
		Sector:         rec.Sector,
		Composite:      composite,
		Tier:           filter.Tier(composite.Value),
		RedFlags:       verdict.RedFlags,
		Strengths:      verdict.Strengths,
		Weaknesses:     verdict.Weaknesses,
		Recommendation: verdict.Recommendation,
		Confidence:     verdict.Confidence,
		FiltersPassed:  verdict.FiltersPassed,
		TotalFilters:   verdict.TotalFilters,
		DataQuality:    report.Score,
		DataValid:      report.Valid,
		GeneratedAt:    time.Now(),
	}

	a.log.Debug("stock analyzed",
		zap.String("code", rec.Code),
		zap.String("sector", rec.Sector),
		zap.Float64("composite", composite.Value),
		zap.String("recommendation", string(verdict.Recommendation)),
		zap.Int("warnings", len(metrics.Warnings)))

	return analysis, nil
}
