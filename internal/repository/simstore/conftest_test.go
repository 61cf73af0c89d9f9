package simstore

import (
	"context"
	"sync"

	"github.com/kailas-cloud/snipgram/internal/db"
	"github.com/kailas-cloud/snipgram/internal/domain"
)

// mockOracle scores fixed pairs and counts calls.
type mockOracle struct {
	scores map[domain.SensePair]float64
	err    error
	calls  int
}

func (m *mockOracle) SensesOf(token string) []domain.Sense {
	return []domain.Sense{domain.Sense(token + ".n.01")}
}

func (m *mockOracle) Similarity(_ context.Context, a, b domain.Sense) (float64, bool, error) {
	m.calls++
	if m.err != nil {
		return 0, false, m.err
	}
	v, ok := m.scores[domain.NewSensePair(a, b)]
	return v, ok, nil
}

// memStore is an in-memory store implementing the consumer interface.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}
