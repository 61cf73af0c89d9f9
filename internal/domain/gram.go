package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Gram is an N×M matrix of kernel scores between two snippet collections.
type Gram struct {
	data      *mat.Dense
	symmetric bool
}

// NewGram allocates a zero Gram matrix. Symmetric matrices must be square.
func NewGram(rows, cols int, symmetric bool) (*Gram, error) {
	if symmetric && rows != cols {
		return nil, fmt.Errorf("symmetric gram must be square, got %dx%d", rows, cols)
	}
	g := &Gram{symmetric: symmetric}
	// mat.NewDense panics on zero dimensions.
	if rows > 0 && cols > 0 {
		g.data = mat.NewDense(rows, cols, nil)
	}
	return g, nil
}

// Dims returns the matrix shape.
func (g *Gram) Dims() (rows, cols int) {
	if g.data == nil {
		return 0, 0
	}
	return g.data.Dims()
}

// Symmetric reports whether the matrix was computed against a single collection.
func (g *Gram) Symmetric() bool { return g.symmetric }

// At returns the score at (i, j).
func (g *Gram) At(i, j int) float64 { return g.data.At(i, j) }

// Set writes v at (i, j) and, for symmetric matrices, at (j, i).
func (g *Gram) Set(i, j int, v float64) {
	g.data.Set(i, j, v)
	if g.symmetric && i != j {
		g.data.Set(j, i, v)
	}
}

// Matrix exposes the underlying dense matrix (nil for an empty Gram).
func (g *Gram) Matrix() *mat.Dense { return g.data }

// RawRow returns a copy of row i.
func (g *Gram) RawRow(i int) []float64 {
	_, cols := g.Dims()
	row := make([]float64, cols)
	mat.Row(row, i, g.data)
	return row
}

// MarshalBinary encodes the shape flag and the dense payload.
func (g *Gram) MarshalBinary() ([]byte, error) {
	flag := byte(0)
	if g.symmetric {
		flag = 1
	}
	if g.data == nil {
		return []byte{flag}, nil
	}
	payload, err := g.data.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal gram: %w", err)
	}
	return append([]byte{flag}, payload...), nil
}

// UnmarshalBinary decodes data written by MarshalBinary.
func (g *Gram) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("unmarshal gram: empty payload")
	}
	g.symmetric = data[0] == 1
	g.data = nil
	if len(data) == 1 {
		return nil
	}
	var d mat.Dense
	if err := d.UnmarshalBinary(data[1:]); err != nil {
		return fmt.Errorf("unmarshal gram: %w", err)
	}
	g.data = &d
	return nil
}
