// Package report keeps finished analyses queryable in memory. The store is
// bounded; old entries fall off as new ones arrive.
package report

import (
	"context"
	"sync"

	"github.com/ftorres/b3score/internal/core"
)

// ListFilter narrows List and Count results. Zero fields match everything.
type ListFilter struct {
	Sector         string
	Recommendation core.Recommendation
	Tier           core.QualityTier
	MinScore       float64
	Limit          int
	Offset         int
}

// Store is the analysis retention interface the API serves from.
type Store interface {
	Save(ctx context.Context, analysis core.QualityAnalysis) error
	Latest(ctx context.Context, code string) (core.QualityAnalysis, error)
	List(ctx context.Context, filter ListFilter) ([]core.QualityAnalysis, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// MemoryStore is an in-memory Store with bounded capacity.
type MemoryStore struct {
	mu       sync.RWMutex
	analyses []core.QualityAnalysis
	latest   map[string]int // code -> index into analyses
	maxSize  int
}

// NewMemoryStore creates a store retaining at most maxSize analyses.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryStore{
		analyses: make([]core.QualityAnalysis, 0, maxSize),
		latest:   make(map[string]int),
		maxSize:  maxSize,
	}
}

// Save appends an analysis, evicting the oldest entries over capacity.
func (m *MemoryStore) Save(_ context.Context, analysis core.QualityAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.analyses = append(m.analyses, analysis)
	if len(m.analyses) > m.maxSize {
		m.analyses = m.analyses[len(m.analyses)-m.maxSize:]
	}
	m.reindex()
	return nil
}

// reindex rebuilds the per-code latest map. Called with the lock held.
func (m *MemoryStore) reindex() {
	m.latest = make(map[string]int, len(m.analyses))
	for i, a := range m.analyses {
		m.latest[a.Code] = i
	}
}

// Latest returns the most recent analysis for a stock code.
func (m *MemoryStore) Latest(_ context.Context, code string) (core.QualityAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.latest[code]
	if !ok {
		return core.QualityAnalysis{}, core.ErrStockNotFound
	}
	return m.analyses[i], nil
}

// List returns analyses matching the filter, newest first.
func (m *MemoryStore) List(_ context.Context, filter ListFilter) ([]core.QualityAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.QualityAnalysis
	for i := len(m.analyses) - 1; i >= 0; i-- {
		if matches(m.analyses[i], filter) {
			result = append(result, m.analyses[i])
		}
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []core.QualityAnalysis{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Count returns how many stored analyses match the filter.
func (m *MemoryStore) Count(_ context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, a := range m.analyses {
		if matches(a, filter) {
			count++
		}
	}
	return count, nil
}

func matches(a core.QualityAnalysis, filter ListFilter) bool {
	if filter.Sector != "" && a.Sector != filter.Sector {
		return false
	}
	if filter.Recommendation != "" && a.Recommendation != filter.Recommendation {
		return false
	}
	if filter.Tier != "" && a.Tier != filter.Tier {
		return false
	}
	if filter.MinScore > 0 && a.Composite.Value < filter.MinScore {
		return false
	}
	return true
}
