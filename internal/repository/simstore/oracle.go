// Package simstore shares oracle similarities across runs through a key-value store.
package simstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snipgram/internal/db"
	"github.com/kailas-cloud/snipgram/internal/domain"
)

// DefaultKeyPrefix namespaces memo keys.
const DefaultKeyPrefix = "snipgram:"

// undefinedMarker is stored for sense pairs the oracle does not relate.
var undefinedMarker = []byte{'u'}

// Compile-time check: CachedOracle implements domain.Oracle.
var _ domain.Oracle = (*CachedOracle)(nil)

// store is the consumer interface for the memo (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedOracle memoizes Similarity in a shared store. Store failures fall back
// to the inner oracle.
type CachedOracle struct {
	inner      domain.Oracle
	store      store
	prefix     string
	storeTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a memoizing decorator.
// storeTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(
	inner domain.Oracle,
	s store,
	prefix string,
	storeTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedOracle {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedOracle{
		inner:      inner,
		store:      s,
		prefix:     prefix,
		storeTotal: storeTotal,
		logger:     logger,
	}
}

// SensesOf delegates to the inner oracle.
func (c *CachedOracle) SensesOf(token string) []domain.Sense {
	return c.inner.SensesOf(token)
}

// Similarity returns a memoized score or asks the inner oracle and stores the answer.
func (c *CachedOracle) Similarity(ctx context.Context, a, b domain.Sense) (float64, bool, error) {
	pair := domain.NewSensePair(a, b)
	key := c.Key(pair)

	if score, ok, hit := c.get(ctx, key); hit {
		c.inc("hit")
		return score, ok, nil
	}
	c.inc("miss")

	score, ok, err := c.inner.Similarity(ctx, pair.A, pair.B)
	if err != nil {
		return 0, false, fmt.Errorf("similarity %s: %w", pair.Key(), err)
	}

	c.put(ctx, key, score, ok)
	return score, ok, nil
}

// Key returns the store key of a sense pair.
func (c *CachedOracle) Key(p domain.SensePair) string {
	return c.prefix + "sim:" + p.Key()
}

func (c *CachedOracle) get(ctx context.Context, key string) (score float64, ok, hit bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.inc("error")
			c.logger.Warn("Failed to get cached similarity", zap.String("key", key), zap.Error(err))
		}
		return 0, false, false
	}

	score, ok, err = decodeScore(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached similarity", zap.String("key", key), zap.Error(err))
		return 0, false, false
	}
	return score, ok, true
}

func (c *CachedOracle) put(ctx context.Context, key string, score float64, ok bool) {
	if err := c.store.Set(ctx, key, encodeScore(score, ok)); err != nil {
		c.inc("error")
		c.logger.Warn("Failed to cache similarity", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedOracle) inc(result string) {
	if c.storeTotal != nil {
		c.storeTotal.WithLabelValues(result).Inc()
	}
}

func encodeScore(score float64, ok bool) []byte {
	if !ok {
		return undefinedMarker
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(score))
	return buf
}

func decodeScore(data []byte) (float64, bool, error) {
	switch len(data) {
	case 1:
		if data[0] == undefinedMarker[0] {
			return 0, false, nil
		}
	case 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(data)), true, nil
	}
	return 0, false, fmt.Errorf("invalid similarity cache data: len=%d", len(data))
}
