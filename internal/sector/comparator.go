// Package sector groups scored stocks by sector and ranks them against their
// peers. Statistics are only published for sectors with enough members to be
// meaningful, and repeated comparisons of the same batch are served from a
// TTL cache.
package sector

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ftorres/b3score/internal/core"
)

const (
	// minSampleSize is the smallest sector that gets statistics at all.
	minSampleSize = 2
	// minOutlierSample is the smallest sector where outlier detection is
	// statistically defensible.
	minOutlierSample = 4

	defaultOutlierK = 2.0
	defaultCacheTTL = 15 * time.Minute
)

// Entry is one scored stock entering a comparison.
type Entry struct {
	Code   string  `json:"code"`
	Sector string  `json:"sector"`
	Score  float64 `json:"score"`
}

// Result is the full output of one batch comparison.
type Result struct {
	Statistics  map[string]core.SectorStatistics `json:"statistics"`
	Rankings    []core.SectorRanking             `json:"rankings"`
	BestSector  string                           `json:"best_sector,omitempty"`
	WorstSector string                           `json:"worst_sector,omitempty"`
}

// Comparator computes per-sector statistics and rankings.
type Comparator struct {
	outlierK float64
	cache    *cache
	observe  func(hit bool)
	log      *zap.Logger
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithOutlierK overrides the stddev multiple used for outlier detection.
func WithOutlierK(k float64) Option {
	return func(c *Comparator) {
		if k > 0 {
			c.outlierK = k
		}
	}
}

// WithCacheTTL overrides how long comparison results stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Comparator) {
		if ttl > 0 {
			c.cache = newCache(ttl)
		}
	}
}

// WithLogger sets the comparator's logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Comparator) { c.log = log }
}

// WithCacheObserver registers a callback fired on every cache lookup, so
// callers can export hit rates without the comparator knowing about metrics.
func WithCacheObserver(fn func(hit bool)) Option {
	return func(c *Comparator) { c.observe = fn }
}

// NewComparator builds a comparator with default outlier threshold and cache.
func NewComparator(opts ...Option) *Comparator {
	c := &Comparator{
		outlierK: defaultOutlierK,
		cache:    newCache(defaultCacheTTL),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare groups entries by sector and produces statistics and rankings for
// every sector with at least two members. Smaller sectors are silently
// dropped. Identical batches within the cache TTL return the cached result.
func (c *Comparator) Compare(entries []Entry) Result {
	key := batchKey(entries)
	cached, ok := c.cache.get(key)
	if c.observe != nil {
		c.observe(ok)
	}
	if ok {
		c.log.Debug("sector comparison served from cache", zap.Int("entries", len(entries)))
		return cached
	}

	bySector := make(map[string][]Entry)
	for _, e := range entries {
		if e.Sector == "" {
			continue
		}
		bySector[e.Sector] = append(bySector[e.Sector], e)
	}

	res := Result{Statistics: make(map[string]core.SectorStatistics)}
	bestMean := math.Inf(-1)
	worstMean := math.Inf(1)

	for name, members := range bySector {
		if len(members) < minSampleSize {
			c.log.Debug("sector below minimum sample size",
				zap.String("sector", name), zap.Int("size", len(members)))
			continue
		}

		stats := describe(name, members)
		res.Statistics[name] = stats
		res.Rankings = append(res.Rankings, c.rank(members, stats)...)

		if stats.Mean > bestMean {
			bestMean, res.BestSector = stats.Mean, name
		}
		if stats.Mean < worstMean {
			worstMean, res.WorstSector = stats.Mean, name
		}
	}

	sort.Slice(res.Rankings, func(i, j int) bool {
		a, b := res.Rankings[i], res.Rankings[j]
		if a.Sector != b.Sector {
			return a.Sector < b.Sector
		}
		return a.Rank < b.Rank
	})

	c.cache.put(key, res)
	return res
}

// ClearCache drops all cached comparison results.
func (c *Comparator) ClearCache() { c.cache.clear() }

// CacheStats reports the cache's size and hit counters.
func (c *Comparator) CacheStats() CacheStats { return c.cache.stats() }

// describe computes summary statistics over one sector's scores.
func describe(name string, members []Entry) core.SectorStatistics {
	scores := make([]float64, len(members))
	for i, m := range members {
		scores[i] = m.Score
	}
	sort.Float64s(scores)

	n := float64(len(scores))
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / n

	var sq float64
	for _, s := range scores {
		sq += (s - mean) * (s - mean)
	}
	// sample standard deviation; sectors always have n >= 2 here
	stddev := math.Sqrt(sq / (n - 1))

	return core.SectorStatistics{
		Sector:     name,
		SampleSize: len(scores),
		Mean:       mean,
		Median:     percentile(scores, 50),
		StdDev:     stddev,
		P25:        percentile(scores, 25),
		P50:        percentile(scores, 50),
		P75:        percentile(scores, 75),
		P90:        percentile(scores, 90),
		Min:        scores[0],
		Max:        scores[len(scores)-1],
	}
}

// rank orders one sector's members by score descending and annotates each
// with its position, quartile flags and outlier status.
func (c *Comparator) rank(members []Entry, stats core.SectorStatistics) []core.SectorRanking {
	sorted := make([]Entry, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Code < sorted[j].Code
	})

	n := len(sorted)
	out := make([]core.SectorRanking, 0, n)
	for i, m := range sorted {
		rank := i + 1
		pct := 100.0
		if n > 1 {
			pct = float64(n-rank) / float64(n-1) * 100
		}
		r := core.SectorRanking{
			Code:             m.Code,
			Sector:           m.Sector,
			Rank:             rank,
			Percentile:       pct,
			TotalCompanies:   n,
			Score:            m.Score,
			VsSectorMean:     m.Score - stats.Mean,
			VsSectorMedian:   m.Score - stats.Median,
			IsSectorLeader:   rank == 1,
			IsTopQuartile:    pct >= 75,
			IsBottomQuartile: pct <= 25,
		}
		if n >= minOutlierSample && stats.StdDev > 0 {
			r.IsOutlier = math.Abs(m.Score-stats.Mean) > c.outlierK*stats.StdDev
		}
		out = append(out, r)
	}
	return out
}

// percentile computes the p-th percentile of sorted values by linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// batchKey hashes the identity of an input batch for cache lookup. Entry
// order does not matter.
func batchKey(entries []Entry) uint64 {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s|%s|%.6f", e.Code, e.Sector, e.Score)
	}
	sort.Strings(lines)

	h := fnv.New64a()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return h.Sum64()
}
