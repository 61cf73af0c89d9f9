// Package enrich appends hidden topic features to snippets.
package enrich

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snipgram/internal/domain"
	"github.com/kailas-cloud/snipgram/internal/domain/topic"
)

// Default smoothing constants.
const (
	DefaultAlpha = 0.5
	DefaultBeta  = 0.1
)

// Options configures an Engine.
type Options struct {
	Alpha       float64
	Beta        float64
	TokensTotal prometheus.Counter // may be nil
	Logger      *zap.Logger
}

// Engine scores every topic against every snippet and replicates topic ids
// according to the discretized probability.
type Engine struct {
	alpha       float64
	beta        float64
	tokensTotal prometheus.Counter
	logger      *zap.Logger
}

// New creates an enrichment engine.
func New(opts Options) *Engine {
	if opts.Alpha <= 0 {
		opts.Alpha = DefaultAlpha
	}
	if opts.Beta <= 0 {
		opts.Beta = DefaultBeta
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		alpha:       opts.Alpha,
		beta:        opts.Beta,
		tokensTotal: opts.TokensTotal,
		logger:      opts.Logger,
	}
}

// pass holds the running topic assignments of one Enrich call.
type pass struct {
	table    *topic.Table
	static   topic.Index
	assigned map[string]int // topic → assignment list length
	index    topic.Index    // word → topic → assignments
}

// Enrich returns new snippets made of the original tokens followed by
// replicated topic ids, topics emitted in table order.
//
// Assignments accumulate in input order: after a snippet is scored, its words
// belonging to each topic that received at least one replica are assigned to
// that topic, so only earlier snippets influence later scores. The input is not modified.
func (e *Engine) Enrich(snippets []domain.Snippet, table *topic.Table) []domain.Snippet {
	p := &pass{
		table:    table,
		static:   table.Invert(),
		assigned: make(map[string]int, table.Len()),
		index:    make(topic.Index),
	}

	out := make([]domain.Snippet, len(snippets))
	var added int
	for i, s := range snippets {
		var extra, hit []string
		for _, id := range table.IDs() {
			n := Replicas(e.probability(p, s.Tokens, id))
			for range n {
				extra = append(extra, id)
			}
			if n > 0 {
				hit = append(hit, id)
			}
		}
		out[i] = s.WithTokens(extra)
		added += len(extra)
		p.assign(s.Tokens, hit)
	}

	if e.tokensTotal != nil {
		e.tokensTotal.Add(float64(added))
	}
	e.logger.Info("Snippets enriched",
		zap.Int("snippets", len(snippets)),
		zap.Int("topics", table.Len()),
		zap.Int("topic_tokens", added),
	)
	return out
}

// Probability exposes the smoothed score of one topic for a snippet scored in isolation.
func (e *Engine) Probability(words []string, table *topic.Table, id string) float64 {
	p := &pass{
		table:    table,
		static:   table.Invert(),
		assigned: map[string]int{},
		index:    make(topic.Index),
	}
	return e.probability(p, words, id)
}

func (e *Engine) probability(p *pass, words []string, id string) float64 {
	nmTot := float64(len(words))
	nkTot := float64(len(p.table.Words(id)))
	if nmTot == 0 || nkTot == 0 {
		return 0
	}

	var nk, nkAssigned, nm float64
	for _, w := range words {
		nk += float64(p.static.Count(w, id))
		if c := p.index.Count(w, id); c > 0 {
			nkAssigned++
			nm += float64(c)
		}
	}
	nkAssignedTot := float64(p.assigned[id])

	den1 := nkTot + nkAssignedTot + e.beta
	den2 := nmTot - 1 + e.alpha
	if den1 <= 0 || den2 <= 0 {
		return 0
	}

	prob := (nk + nkAssigned + e.beta) / den1 * (nm + e.alpha) / den2
	if math.IsNaN(prob) || math.IsInf(prob, 0) || prob < 0 {
		return 0
	}
	return prob
}

func (p *pass) assign(words, topics []string) {
	for _, id := range topics {
		for _, w := range words {
			if p.static.Count(w, id) == 0 {
				continue
			}
			p.index.Add(w, id)
			p.assigned[id]++
		}
	}
}
