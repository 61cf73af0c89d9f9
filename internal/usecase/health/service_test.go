package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockStorePinger struct {
	err error
}

func (m *mockStorePinger) Ping(_ context.Context) error { return m.err }

type mockLexicon struct {
	size int
}

func (m mockLexicon) Len() int { return m.size }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockStorePinger{}, mockLexicon{size: 10})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["similarity_store"] != CheckOK {
		t.Errorf("expected similarity_store %q, got %q", CheckOK, r.Checks["similarity_store"])
	}
	if r.Checks["lexicon"] != CheckOK {
		t.Errorf("expected lexicon %q, got %q", CheckOK, r.Checks["lexicon"])
	}
}

func TestCheck_StoreError(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("conn refused")}, mockLexicon{size: 10})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["similarity_store"] != CheckError {
		t.Errorf("expected similarity_store %q, got %q", CheckError, r.Checks["similarity_store"])
	}
}

func TestCheck_EmptyLexicon(t *testing.T) {
	svc := New(nil, mockLexicon{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["lexicon"] != CheckError {
		t.Error("expected lexicon error")
	}
}

func TestCheck_NoStore(t *testing.T) {
	svc := New(nil, mockLexicon{size: 1})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["similarity_store"]; ok {
		t.Error("similarity_store check should be absent when store is nil")
	}
}
