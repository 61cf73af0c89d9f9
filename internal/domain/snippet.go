package domain

import "slices"

// Snippet is a short text reduced to an ordered list of feature tokens.
// After enrichment Tokens holds the canonical terms followed by replicated topic ids.
type Snippet struct {
	Tokens []string
	Label  string
}

// NewSnippet creates a snippet. The token slice is copied.
func NewSnippet(tokens []string, label string) Snippet {
	return Snippet{Tokens: slices.Clone(tokens), Label: label}
}

// Len returns the number of feature tokens.
func (s Snippet) Len() int { return len(s.Tokens) }

// IsEmpty reports whether the snippet has no tokens (no term was recognised).
func (s Snippet) IsEmpty() bool { return len(s.Tokens) == 0 }

// Equal reports whether both snippets carry the same tokens in the same order.
// Labels are ignored.
func (s Snippet) Equal(other Snippet) bool {
	return slices.Equal(s.Tokens, other.Tokens)
}

// WithTokens returns a copy of the snippet with extra tokens appended.
func (s Snippet) WithTokens(extra []string) Snippet {
	tokens := make([]string, 0, len(s.Tokens)+len(extra))
	tokens = append(tokens, s.Tokens...)
	tokens = append(tokens, extra...)
	return Snippet{Tokens: tokens, Label: s.Label}
}
