package kernel

import (
	"context"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// Scorer returns the similarity of two senses, 0 for unrelated ones.
type Scorer interface {
	Score(ctx context.Context, a, b domain.Sense) (float64, error)
}

// Matcher pairs senses from xs and ys and returns the sum of matched scores
// and the number of recorded pairs.
type Matcher interface {
	Match(ctx context.Context, xs, ys []domain.Sense, s Scorer) (sum float64, pairs int, err error)
}
