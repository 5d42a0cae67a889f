package scoring

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ftorres/b3score/internal/core"
)

// refinementConfidenceFloor is the minimum confidence a reasoner suggestion
// needs before it influences the composite.
const refinementConfidenceFloor = 70.0

// Weights assigns each category its share of the composite score.
type Weights map[core.Category]float64

// DefaultWeights returns the standard category weighting.
func DefaultWeights() Weights {
	return Weights{
		core.CategoryValuation:     0.25,
		core.CategoryProfitability: 0.30,
		core.CategoryGrowth:        0.25,
		core.CategoryLeverage:      0.20,
	}
}

// Validate checks that weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	var sum float64
	for cat, v := range w {
		if v < 0 {
			return core.WrapError(core.ErrInvalidWeights,
				fmt.Errorf("negative weight for category %s", cat))
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return core.WrapError(core.ErrInvalidWeights,
			fmt.Errorf("weights sum to %.4f", sum))
	}
	return nil
}

// Refinement is a reasoner's suggested per-category adjustment.
type Refinement struct {
	Scores     core.CategoryScore
	Confidence float64
	Rationale  string
}

// Reasoner proposes adjusted category scores from the raw metrics. Implemented
// by the LLM-backed reasoner; the composite treats any error as "no opinion".
type Reasoner interface {
	Refine(ctx context.Context, code, sector string, m core.MetricSet, scores core.CategoryScore) (Refinement, error)
}

// Composite blends category scores into one number using renormalized weights.
type Composite struct {
	weights  Weights
	reasoner Reasoner
	log      *zap.Logger
}

// CompositeOption configures optional collaborators.
type CompositeOption func(*Composite)

// WithReasoner attaches an advisory reasoner to the composite.
func WithReasoner(r Reasoner) CompositeOption {
	return func(c *Composite) { c.reasoner = r }
}

// WithLogger sets the composite's logger.
func WithLogger(log *zap.Logger) CompositeOption {
	return func(c *Composite) { c.log = log }
}

// NewComposite builds a composite scorer. Weights must validate.
func NewComposite(w Weights, opts ...CompositeOption) (*Composite, error) {
	if w == nil {
		w = DefaultWeights()
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	c := &Composite{weights: w, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Score computes the weighted composite over the categories present in scores.
// Missing categories have their weight redistributed proportionally across the
// rest; with no categories at all the score is neutral. When a reasoner is
// attached and confident enough, its suggestions are blended in at half
// strength. Reasoner failures are logged and ignored.
func (c *Composite) Score(ctx context.Context, code, sector string, m core.MetricSet, scores core.CategoryScore) core.CompositeScore {
	out := core.CompositeScore{Categories: scores}

	if c.reasoner != nil {
		if blended, ok := c.refine(ctx, code, sector, m, scores); ok {
			out.Categories = blended
			out.Refined = true
		}
	}

	out.Value = c.weighted(out.Categories)
	return out
}

func (c *Composite) weighted(scores core.CategoryScore) float64 {
	var sum, weightSum float64
	for cat, score := range scores {
		w := c.weights[cat]
		sum += score * w
		weightSum += w
	}
	if weightSum == 0 {
		return core.NeutralScore
	}
	return sum / weightSum
}

func (c *Composite) refine(ctx context.Context, code, sector string, m core.MetricSet, scores core.CategoryScore) (core.CategoryScore, bool) {
	ref, err := c.reasoner.Refine(ctx, code, sector, m, scores)
	if err != nil {
		c.log.Warn("score refinement failed, using deterministic score",
			zap.String("code", code), zap.Error(err))
		return nil, false
	}
	if ref.Confidence <= refinementConfidenceFloor {
		c.log.Debug("score refinement below confidence floor",
			zap.String("code", code), zap.Float64("confidence", ref.Confidence))
		return nil, false
	}

	blended := make(core.CategoryScore, len(scores))
	for cat, score := range scores {
		if suggested, ok := ref.Scores[cat]; ok {
			blended[cat] = clampScore((score + suggested) / 2)
		} else {
			blended[cat] = score
		}
	}
	return blended, true
}
