package domain

import (
	"math"
	"testing"
)

func TestNewGram_SymmetricMustBeSquare(t *testing.T) {
	if _, err := NewGram(2, 3, true); err == nil {
		t.Fatal("expected error for non-square symmetric gram")
	}
}

func TestGram_SetMirrorsWhenSymmetric(t *testing.T) {
	g, err := NewGram(3, 3, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Set(2, 0, 0.25)
	if g.At(0, 2) != 0.25 || g.At(2, 0) != 0.25 {
		t.Fatalf("expected mirrored value, got %v / %v", g.At(0, 2), g.At(2, 0))
	}
}

func TestGram_SetNoMirrorWhenRectangular(t *testing.T) {
	g, _ := NewGram(2, 2, false)
	g.Set(1, 0, 0.5)
	if g.At(0, 1) != 0 {
		t.Fatalf("expected (0,1) untouched, got %v", g.At(0, 1))
	}
}

func TestGram_EmptyDims(t *testing.T) {
	g, _ := NewGram(0, 5, false)
	r, c := g.Dims()
	if r != 0 || c != 0 {
		t.Fatalf("expected 0x0, got %dx%d", r, c)
	}
}

func TestGram_BinaryRoundTripIsBitExact(t *testing.T) {
	g, _ := NewGram(2, 3, false)
	vals := []float64{1.0 / 3, math.Pi, 0, 1, 1e-300, 0.1 + 0.2}
	for k, v := range vals {
		g.Set(k/3, k%3, v)
	}

	data, err := g.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Gram
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for k, v := range vals {
		if got := back.At(k/3, k%3); math.Float64bits(got) != math.Float64bits(v) {
			t.Errorf("cell %d: got %v, want %v", k, got, v)
		}
	}
	if back.Symmetric() {
		t.Error("expected rectangular flag to survive")
	}
}
