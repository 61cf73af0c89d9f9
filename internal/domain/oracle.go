package domain

import "context"

// Sense is a canonical lexical-sense identifier.
type Sense string

// SenseResolver maps a surface token to its candidate senses.
// The order must be deterministic: callers take the first sense as canonical.
type SenseResolver interface {
	SensesOf(token string) []Sense
}

// Oracle is the lexical-ontology contract shared between layers.
// Similarity returns ok=false when the senses are unrelated in the ontology graph.
type Oracle interface {
	SenseResolver
	Similarity(ctx context.Context, a, b Sense) (score float64, ok bool, err error)
}

// CanonicalSense returns the first sense of token, if any.
func CanonicalSense(r SenseResolver, token string) (Sense, bool) {
	senses := r.SensesOf(token)
	if len(senses) == 0 {
		return "", false
	}
	return senses[0], true
}

// SensePair is an unordered pair of senses stored in canonical (A <= B) order.
type SensePair struct {
	A, B Sense
}

// NewSensePair orders a and b so that (a,b) and (b,a) produce the same pair.
func NewSensePair(a, b Sense) SensePair {
	if b < a {
		a, b = b, a
	}
	return SensePair{A: a, B: b}
}

// Key renders the pair as a stable string key.
func (p SensePair) Key() string {
	return string(p.A) + "|" + string(p.B)
}
