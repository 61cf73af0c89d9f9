package dataset

import (
	"context"

	"github.com/kailas-cloud/snipgram/internal/domain"
	domds "github.com/kailas-cloud/snipgram/internal/domain/dataset"
	"github.com/kailas-cloud/snipgram/internal/domain/topic"
)

// Enricher appends topic features to snippets.
type Enricher interface {
	Enrich(snippets []domain.Snippet, table *topic.Table) []domain.Snippet
}

// GramBuilder computes kernel matrices.
type GramBuilder interface {
	Build(ctx context.Context, first, second []domain.Snippet) (*domain.Gram, error)
}

// Repository persists datasets.
type Repository interface {
	Save(ds *domds.Dataset) (string, error)
	Load(path string) (*domds.Dataset, error)
}
