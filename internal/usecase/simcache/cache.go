// Package simcache memoizes oracle similarities for a single worker.
package simcache

import (
	"context"
	"fmt"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// DefaultReportEvery is the number of lookups between hit-ratio log lines.
const DefaultReportEvery = 100000

// Oracle scores two senses; ok=false means unrelated.
type Oracle interface {
	Similarity(ctx context.Context, a, b domain.Sense) (float64, bool, error)
}

type store interface {
	Get(key domain.SensePair) (float64, bool)
	Add(key domain.SensePair, score float64)
	Len() int
}

// Options configures a Cache.
type Options struct {
	Worker      int // worker id used in log lines
	MaxEntries  int // 0 = unbounded
	ReportEvery int
	CacheTotal  *prometheus.CounterVec // label "result": "hit"/"miss"; may be nil
	Logger      *zap.Logger
}

// Cache is a per-worker memo over an Oracle keyed by unordered sense pairs.
// It is not safe for concurrent use: each worker owns its own instance.
type Cache struct {
	oracle      Oracle
	entries     store
	worker      int
	reportEvery uint64
	cacheTotal  *prometheus.CounterVec
	logger      *zap.Logger

	calls  uint64
	misses uint64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Calls   uint64
	Misses  uint64
	Entries int
}

// HitRatio returns the fraction of lookups served from the cache.
func (s Stats) HitRatio() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Calls-s.Misses) / float64(s.Calls)
}

// New creates a cache in front of oracle.
func New(oracle Oracle, opts Options) (*Cache, error) {
	var entries store = mapStore{}
	if opts.MaxEntries > 0 {
		lru, err := simplelru.NewLRU[domain.SensePair, float64](opts.MaxEntries, nil)
		if err != nil {
			return nil, fmt.Errorf("create lru: %w", err)
		}
		entries = lruStore{lru: lru}
	}
	if opts.ReportEvery <= 0 {
		opts.ReportEvery = DefaultReportEvery
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache{
		oracle:      oracle,
		entries:     entries,
		worker:      opts.Worker,
		reportEvery: uint64(opts.ReportEvery),
		cacheTotal:  opts.CacheTotal,
		logger:      opts.Logger,
	}, nil
}

// Score returns the similarity of a and b, treating unrelated senses as 0.
// (a,b) and (b,a) share one entry.
func (c *Cache) Score(ctx context.Context, a, b domain.Sense) (float64, error) {
	key := domain.NewSensePair(a, b)

	c.calls++
	defer c.report()

	if score, ok := c.entries.Get(key); ok {
		c.inc("hit")
		return score, nil
	}

	c.misses++
	c.inc("miss")

	score, ok, err := c.oracle.Similarity(ctx, key.A, key.B)
	if err != nil {
		return 0, fmt.Errorf("similarity %s: %w", key.Key(), err)
	}
	if !ok {
		score = 0
	}
	c.entries.Add(key, score)
	return score, nil
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{Calls: c.calls, Misses: c.misses, Entries: c.entries.Len()}
}

func (c *Cache) report() {
	if c.calls%c.reportEvery != 0 {
		return
	}
	s := c.Stats()
	c.logger.Info("Similarity cache",
		zap.Int("worker", c.worker),
		zap.Uint64("calls", s.Calls),
		zap.Uint64("misses", s.Misses),
		zap.Float64("hit_ratio", s.HitRatio()),
		zap.Int("entries", s.Entries),
	)
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

type mapStore map[domain.SensePair]float64

func (m mapStore) Get(key domain.SensePair) (float64, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapStore) Add(key domain.SensePair, score float64) { m[key] = score }

func (m mapStore) Len() int { return len(m) }

type lruStore struct {
	lru *simplelru.LRU[domain.SensePair, float64]
}

func (s lruStore) Get(key domain.SensePair) (float64, bool) { return s.lru.Get(key) }

func (s lruStore) Add(key domain.SensePair, score float64) { s.lru.Add(key, score) }

func (s lruStore) Len() int { return s.lru.Len() }
