package lexicon

import (
	"context"
	"strings"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// TopicSensePrefix marks pseudo-senses created for topic tokens.
const TopicSensePrefix = "topic#"

// TopicSet reports whether a token is a topic id.
type TopicSet interface {
	Has(id string) bool
}

// TopicAware lets replicated topic tokens take part in matching.
// A topic token resolves to a single pseudo-sense; two equal topic senses score 1,
// any other pair involving a topic sense is unrelated.
type TopicAware struct {
	inner  domain.Oracle
	topics TopicSet
}

// NewTopicAware wraps inner with topic pseudo-senses.
func NewTopicAware(inner domain.Oracle, topics TopicSet) *TopicAware {
	return &TopicAware{inner: inner, topics: topics}
}

// SensesOf resolves topic ids to their pseudo-sense and delegates other tokens.
func (t *TopicAware) SensesOf(token string) []domain.Sense {
	if t.topics.Has(token) {
		return []domain.Sense{domain.Sense(TopicSensePrefix + token)}
	}
	return t.inner.SensesOf(token)
}

// Similarity scores topic pseudo-senses and delegates word senses.
func (t *TopicAware) Similarity(ctx context.Context, a, b domain.Sense) (float64, bool, error) {
	if isTopicSense(a) || isTopicSense(b) {
		if a == b {
			return 1, true, nil
		}
		return 0, false, nil
	}
	return t.inner.Similarity(ctx, a, b) //nolint:wrapcheck // transparent decorator
}

func isTopicSense(s domain.Sense) bool {
	return strings.HasPrefix(string(s), TopicSensePrefix)
}
