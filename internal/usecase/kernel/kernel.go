// Package kernel implements the pairwise semantic snippet kernel.
package kernel

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// Kernel scores two token lists by matching their canonical senses.
// A Kernel is owned by one worker; its Scorer is usually that worker's cache.
type Kernel struct {
	resolver domain.SenseResolver
	scorer   Scorer
	matcher  Matcher
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithMatcher replaces the default greedy matcher.
func WithMatcher(m Matcher) Option {
	return func(k *Kernel) { k.matcher = m }
}

// New creates a kernel resolving tokens with resolver and scoring senses with scorer.
func New(resolver domain.SenseResolver, scorer Scorer, opts ...Option) *Kernel {
	k := &Kernel{resolver: resolver, scorer: scorer, matcher: Greedy{}}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Compute returns the kernel value of x and y in [0,1].
// Empty operands score 0; identical token lists score 1 without consulting the oracle.
func (k *Kernel) Compute(ctx context.Context, x, y []string) (float64, error) {
	if len(x) == 0 || len(y) == 0 {
		return 0, nil
	}
	if slices.Equal(x, y) {
		return 1, nil
	}

	xs := k.resolve(x)
	ys := k.resolve(y)

	sum, pairs, err := k.matcher.Match(ctx, xs, ys, k.scorer)
	if err != nil {
		return 0, fmt.Errorf("match senses: %w", err)
	}
	if pairs == 0 {
		return 0, nil
	}
	return sum / float64(pairs), nil
}

// ComputeSnippets is Compute over snippet tokens.
func (k *Kernel) ComputeSnippets(ctx context.Context, a, b domain.Snippet) (float64, error) {
	return k.Compute(ctx, a.Tokens, b.Tokens)
}

// resolve maps tokens to their first sense, dropping tokens without one.
func (k *Kernel) resolve(tokens []string) []domain.Sense {
	senses := make([]domain.Sense, 0, len(tokens))
	for _, t := range tokens {
		if s, ok := domain.CanonicalSense(k.resolver, t); ok {
			senses = append(senses, s)
		}
	}
	return senses
}

// OracleScorer scores senses straight from an oracle, without memoization.
type OracleScorer struct {
	oracle domain.Oracle
}

// NewOracleScorer wraps oracle as a Scorer.
func NewOracleScorer(oracle domain.Oracle) *OracleScorer {
	return &OracleScorer{oracle: oracle}
}

// Score queries the oracle in canonical pair order; unrelated senses score 0.
func (s *OracleScorer) Score(ctx context.Context, a, b domain.Sense) (float64, error) {
	key := domain.NewSensePair(a, b)
	score, ok, err := s.oracle.Similarity(ctx, key.A, key.B)
	if err != nil {
		return 0, fmt.Errorf("similarity %s: %w", key.Key(), err)
	}
	if !ok {
		return 0, nil
	}
	return score, nil
}
