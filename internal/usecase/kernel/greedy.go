package kernel

import (
	"context"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// Greedy repeatedly takes the highest-scoring remaining pair until one side runs out.
// Ties go to the first pair encountered scanning xs in the outer loop and ys in the inner;
// when every remaining pair scores 0 the first remaining pair is taken.
type Greedy struct{}

// Match implements Matcher. Each distinct (i, j) is scored once.
func (Greedy) Match(ctx context.Context, xs, ys []domain.Sense, s Scorer) (float64, int, error) {
	if len(xs) == 0 || len(ys) == 0 {
		return 0, 0, nil
	}

	scores := make([]float64, len(xs)*len(ys))
	for i, x := range xs {
		for j, y := range ys {
			v, err := s.Score(ctx, x, y)
			if err != nil {
				return 0, 0, err
			}
			scores[i*len(ys)+j] = v
		}
	}

	usedX := make([]bool, len(xs))
	usedY := make([]bool, len(ys))
	rounds := min(len(xs), len(ys))

	var sum float64
	for range rounds {
		bi, bj := -1, -1
		best := 0.0
		for i := range xs {
			if usedX[i] {
				continue
			}
			for j := range ys {
				if usedY[j] {
					continue
				}
				v := scores[i*len(ys)+j]
				if bi < 0 || v > best {
					bi, bj, best = i, j, v
				}
			}
		}
		usedX[bi] = true
		usedY[bj] = true
		sum += best
	}
	return sum, rounds, nil
}
