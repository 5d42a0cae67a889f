// Package reasoning implements the LLM-backed score refinement the composite
// scorer can optionally consult. The reasoner is advisory only; every failure
// mode degrades to "no opinion".
package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ftorres/b3score/internal/core"
	"github.com/ftorres/b3score/internal/llm"
	"github.com/ftorres/b3score/internal/scoring"
)

const defaultTimeout = 30 * time.Second

// Reasoner asks an LLM whether the deterministic category scores miss
// something the raw ratios show. It implements scoring.Reasoner.
type Reasoner struct {
	provider llm.Provider
	timeout  time.Duration
}

// Option configures a Reasoner.
type Option func(*Reasoner)

// WithTimeout bounds each refinement call.
func WithTimeout(d time.Duration) Option {
	return func(r *Reasoner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New builds a reasoner over the given provider.
func New(provider llm.Provider, opts ...Option) *Reasoner {
	r := &Reasoner{provider: provider, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// refinementReply is the JSON contract the model is asked to fill.
type refinementReply struct {
	Scores     map[string]float64 `json:"scores"`
	Confidence float64            `json:"confidence"`
	Rationale  string             `json:"rationale"`
}

// Refine sends the metrics and current scores to the model and parses its
// suggested adjustments.
func (r *Reasoner) Refine(ctx context.Context, code, sector string, m core.MetricSet, scores core.CategoryScore) (scoring.Refinement, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.provider.Chat(ctx, llm.ChatRequest{
		SystemPrompt: refinementSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: buildPrompt(code, sector, m, scores)},
		},
		MaxTokens:   1024,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return scoring.Refinement{}, core.WrapError(core.ErrReasonerFailed, err)
	}

	var reply refinementReply
	if err := json.Unmarshal([]byte(resp.Content), &reply); err != nil {
		return scoring.Refinement{}, core.WrapError(core.ErrReasonerFailed,
			fmt.Errorf("unparseable model output: %w", err))
	}

	out := scoring.Refinement{
		Scores:     make(core.CategoryScore, len(reply.Scores)),
		Confidence: clamp(reply.Confidence, 0, 100),
		Rationale:  reply.Rationale,
	}
	for name, score := range reply.Scores {
		cat := core.Category(name)
		if !validCategory(cat) {
			continue
		}
		out.Scores[cat] = clamp(score, 0, 100)
	}
	return out, nil
}

func validCategory(cat core.Category) bool {
	for _, c := range core.Categories() {
		if c == cat {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func buildPrompt(code, sector string, m core.MetricSet, scores core.CategoryScore) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Stock: %s\n", code))
	if sector != "" {
		sb.WriteString(fmt.Sprintf("## Sector: %s\n", sector))
	}
	sb.WriteString("\n## Current category scores:\n")
	for _, cat := range core.Categories() {
		if s, ok := scores[cat]; ok {
			sb.WriteString(fmt.Sprintf("- %s: %.1f\n", cat, s))
		}
	}

	sb.WriteString("\n## Raw metrics:\n")
	writeMetric(&sb, "P/E", m.PERatio)
	writeMetric(&sb, "P/B", m.PBRatio)
	writeMetric(&sb, "EV/EBITDA", m.EVEBITDA)
	writeMetric(&sb, "ROE %", m.ROE)
	writeMetric(&sb, "ROA %", m.ROA)
	writeMetric(&sb, "net margin %", m.NetMargin)
	writeMetric(&sb, "EBITDA margin %", m.EBITDAMargin)
	writeMetric(&sb, "revenue growth 3y %", m.RevenueGrowth3Y)
	writeMetric(&sb, "earnings growth 1y %", m.EarningsGrowth1Y)
	writeMetric(&sb, "debt/equity", m.DebtToEquity)
	writeMetric(&sb, "debt/EBITDA", m.DebtToEBITDA)
	writeMetric(&sb, "current ratio", m.CurrentRatio)

	sb.WriteString("\n## Task:\n")
	sb.WriteString("Judge whether any category score misrepresents the underlying numbers.\n")
	sb.WriteString(`Respond with JSON: {"scores": {"valuation": 0-100, "profitability": 0-100, "growth": 0-100, "leverage": 0-100}, "confidence": 0-100, "rationale": "..."}.`)
	sb.WriteString("\nOnly include categories you would adjust.\n")

	return sb.String()
}

func writeMetric(sb *strings.Builder, label string, v *float64) {
	if v != nil {
		sb.WriteString(fmt.Sprintf("- %s: %.2f\n", label, *v))
	}
}

const refinementSystemPrompt = `You are a Brazilian equity analyst reviewing mechanical fundamental scores for B3 listed companies.

The deterministic scorer compares each ratio to a sector benchmark and averages the results per category. It can miss context: cyclical sectors at peak earnings, banks whose leverage is structural, turnarounds where trailing growth understates momentum.

Suggest adjusted category scores only where the mechanical score is clearly misleading, and state your confidence from 0 to 100. A confidence above 70 means you are sure the adjustment improves the assessment. Always respond with valid JSON and nothing else.`
