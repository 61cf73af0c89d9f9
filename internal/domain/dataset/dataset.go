// Package dataset describes the enriched train/test collections and their Gram matrices.
package dataset

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// Dataset is the persisted snapshot handed to the classifier.
type Dataset struct {
	ID         string
	NumClasses int
	Labels     []string // distinct test labels, sorted

	Train []domain.Snippet
	Test  []domain.Snippet

	GramTrain *domain.Gram // train × train
	GramTest  *domain.Gram // test × train
}

// FileName returns the blob name used inside an export directory.
func (d *Dataset) FileName() string {
	return fmt.Sprintf("dataset.classes_%d.db", d.NumClasses)
}

// DistinctLabels returns the sorted set of labels in snippets.
func DistinctLabels(snippets []domain.Snippet) []string {
	seen := make(map[string]struct{}, len(snippets))
	var labels []string
	for _, s := range snippets {
		if _, ok := seen[s.Label]; ok {
			continue
		}
		seen[s.Label] = struct{}{}
		labels = append(labels, s.Label)
	}
	slices.Sort(labels)
	return labels
}
