package analyzer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ftorres/b3score/internal/core"
	"github.com/ftorres/b3score/internal/sector"
)

// defaultConcurrency bounds the batch worker pool.
const defaultConcurrency = 5

// Failure records one stock that could not be analyzed. Failures never abort
// the rest of the batch.
type Failure struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// BatchResult aggregates one batch run.
type BatchResult struct {
	ID          string                 `json:"id"`
	Analyses    []core.QualityAnalysis `json:"analyses"`
	Failures    []Failure              `json:"failures,omitempty"`
	Sectors     sector.Result          `json:"sectors"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// AnalyzeBatch runs the pipeline over many records with a bounded worker
// pool, then ranks the results by sector. Analyses come back sorted by stock
// code so batch output is deterministic regardless of scheduling.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, records []core.FinancialRecord, concurrency int) BatchResult {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	res := BatchResult{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(rec core.FinancialRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			analysis, err := a.Analyze(ctx, rec)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures = append(res.Failures, Failure{Code: rec.Code, Error: err.Error()})
				return
			}
			res.Analyses = append(res.Analyses, analysis)
		}(rec)
	}
	wg.Wait()

	sort.Slice(res.Analyses, func(i, j int) bool {
		return res.Analyses[i].Code < res.Analyses[j].Code
	})
	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].Code < res.Failures[j].Code
	})

	entries := make([]sector.Entry, len(res.Analyses))
	for i, an := range res.Analyses {
		entries[i] = sector.Entry{Code: an.Code, Sector: an.Sector, Score: an.Composite.Value}
	}
	res.Sectors = a.comparator.Compare(entries)

	a.log.Info("batch analyzed",
		zap.String("batch_id", res.ID),
		zap.Int("analyzed", len(res.Analyses)),
		zap.Int("failed", len(res.Failures)),
		zap.Int("sectors", len(res.Sectors.Statistics)))

	return res
}
