// Package collector defines how financial records enter the system.
package collector

import (
	"context"
	"sync"

	"github.com/ftorres/b3score/internal/core"
)

// Fundamentals fetches one company's financial record by its B3 code.
type Fundamentals interface {
	Name() string
	Fetch(ctx context.Context, code string) (core.FinancialRecord, error)
}

// Registry holds named collectors so the app can pick one by configuration.
type Registry struct {
	collectors map[string]Fundamentals
}

// NewRegistry creates an empty collector registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[string]Fundamentals)}
}

func (r *Registry) Register(c Fundamentals) {
	r.collectors[c.Name()] = c
}

func (r *Registry) Get(name string) (Fundamentals, bool) {
	c, ok := r.collectors[name]
	return c, ok
}

// FetchAll fetches records for all codes with at most limit requests in
// flight. Per-code failures are returned alongside the successful records,
// never aborting the rest of the batch. The optional observe callback fires
// once per completed fetch.
func FetchAll(ctx context.Context, fund Fundamentals, codes []string, limit int, observe func(code string, err error)) ([]core.FinancialRecord, map[string]error) {
	if limit <= 0 {
		limit = 5
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records []core.FinancialRecord
		failed  = make(map[string]error)
	)
	sem := make(chan struct{}, limit)

	for _, code := range codes {
		wg.Add(1)
		sem <- struct{}{}
		go func(code string) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := fund.Fetch(ctx, code)
			mu.Lock()
			defer mu.Unlock()
			if observe != nil {
				observe(code, err)
			}
			if err != nil {
				failed[code] = err
				return
			}
			records = append(records, rec)
		}(code)
	}
	wg.Wait()

	return records, failed
}
