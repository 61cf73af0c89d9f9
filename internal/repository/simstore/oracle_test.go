package simstore

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/snipgram/internal/db/redis"
	"github.com/kailas-cloud/snipgram/internal/domain"
)

func newOracle() *mockOracle {
	return &mockOracle{scores: map[domain.SensePair]float64{
		domain.NewSensePair("game.n.01", "poker.n.01"): 0.5,
	}}
}

func TestSimilarity_MissThenHit(t *testing.T) {
	inner := newOracle()
	st := newMemStore()
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_store"}, []string{"result"})
	c := New(inner, st, "", total, nil)

	for range 2 {
		score, ok, err := c.Similarity(context.Background(), "poker.n.01", "game.n.01")
		if err != nil || !ok || score != 0.5 {
			t.Fatalf("got %v, %v, %v", score, ok, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if _, ok := st.data["snipgram:sim:game.n.01|poker.n.01"]; !ok {
		t.Errorf("expected canonical key, got %v", st.data)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}

func TestSimilarity_UndefinedIsMemoized(t *testing.T) {
	inner := newOracle()
	c := New(inner, newMemStore(), "run:", nil, nil)

	for range 3 {
		_, ok, err := c.Similarity(context.Background(), "island.n.01", "game.n.01")
		if err != nil || ok {
			t.Fatalf("expected undefined, got ok=%v err=%v", ok, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
}

func TestSimilarity_InnerErrorNotCached(t *testing.T) {
	inner := newOracle()
	inner.err = errors.New("graph unavailable")
	st := newMemStore()
	c := New(inner, st, "", nil, nil)

	if _, _, err := c.Similarity(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected error")
	}
	if len(st.data) != 0 {
		t.Errorf("errors must not be stored: %v", st.data)
	}
}

func TestSimilarity_StoreFailureDegrades(t *testing.T) {
	inner := newOracle()
	st := newMemStore()
	st.getErr = errors.New("connection refused")
	st.setErr = errors.New("connection refused")
	core, logs := observer.New(zap.WarnLevel)
	c := New(inner, st, "", nil, zap.New(core))

	score, ok, err := c.Similarity(context.Background(), "game.n.01", "poker.n.01")
	if err != nil || !ok || score != 0.5 {
		t.Fatalf("got %v, %v, %v", score, ok, err)
	}
	if logs.FilterMessage("Failed to get cached similarity").Len() != 1 {
		t.Error("expected get warning")
	}
	if logs.FilterMessage("Failed to cache similarity").Len() != 1 {
		t.Error("expected set warning")
	}
}

func TestSimilarity_CorruptEntryFallsBack(t *testing.T) {
	inner := newOracle()
	st := newMemStore()
	c := New(inner, st, "", nil, nil)
	st.data[c.Key(domain.NewSensePair("game.n.01", "poker.n.01"))] = []byte("xyz")

	score, ok, err := c.Similarity(context.Background(), "game.n.01", "poker.n.01")
	if err != nil || !ok || score != 0.5 {
		t.Fatalf("got %v, %v, %v", score, ok, err)
	}
	if inner.calls != 1 {
		t.Errorf("expected inner call for corrupt entry")
	}
}

func TestSensesOf_Delegates(t *testing.T) {
	c := New(newOracle(), newMemStore(), "", nil, nil)
	if got := c.SensesOf("poker"); len(got) != 1 || got[0] != "poker.n.01" {
		t.Errorf("unexpected senses: %v", got)
	}
}

func TestScoreCodec(t *testing.T) {
	for _, v := range []float64{0, 1.0 / 3, 1} {
		got, ok, err := decodeScore(encodeScore(v, true))
		if err != nil || !ok || got != v {
			t.Errorf("codec(%v) = %v, %v, %v", v, got, ok, err)
		}
	}
	if _, ok, err := decodeScore(encodeScore(0, false)); err != nil || ok {
		t.Errorf("undefined marker decoded as ok=%v err=%v", ok, err)
	}
	if _, _, err := decodeScore([]byte{'x'}); err == nil {
		t.Error("expected error for unknown marker")
	}
}

// TestSimilarity_RedisStore exercises the decorator over the rueidis-backed store.
func TestSimilarity_RedisStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	key := "snipgram:sim:game.n.01|poker.n.01"

	gomock.InOrder(
		client.EXPECT().
			Do(gomock.Any(), mock.Match("GET", key)).
			Return(mock.Result(mock.RedisNil())),
		client.EXPECT().
			Do(gomock.Any(), mock.Match("SET", key, string(encodeScore(0.5, true)))).
			Return(mock.Result(mock.RedisString("OK"))),
		client.EXPECT().
			Do(gomock.Any(), mock.Match("GET", key)).
			Return(mock.Result(mock.RedisBlobString(string(encodeScore(0.5, true))))),
	)

	inner := newOracle()
	var s store = redis.NewStoreForTest(client)
	c := New(inner, s, "", nil, nil)

	for range 2 {
		score, ok, err := c.Similarity(context.Background(), "game.n.01", "poker.n.01")
		if err != nil || !ok || score != 0.5 {
			t.Fatalf("got %v, %v, %v", score, ok, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
}
