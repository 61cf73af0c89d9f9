package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/kailas-cloud/snipgram/internal/domain"
	domds "github.com/kailas-cloud/snipgram/internal/domain/dataset"
	"github.com/kailas-cloud/snipgram/internal/domain/topic"
	dsrepo "github.com/kailas-cloud/snipgram/internal/repository/dataset"
	"github.com/kailas-cloud/snipgram/internal/usecase/enrich"
)

// --- Mocks ---

// suffixEnricher appends a marker token so enrichment is observable.
type suffixEnricher struct{}

func (suffixEnricher) Enrich(snippets []domain.Snippet, _ *topic.Table) []domain.Snippet {
	out := make([]domain.Snippet, len(snippets))
	for i, s := range snippets {
		out[i] = s.WithTokens([]string{"T0"})
	}
	return out
}

type buildCall struct {
	rows, cols int
	same       bool
}

// recordingBuilder returns zero matrices and records call shapes.
type recordingBuilder struct {
	calls []buildCall
	err   error
}

func (b *recordingBuilder) Build(_ context.Context, first, second []domain.Snippet) (*domain.Gram, error) {
	same := len(first) == len(second) && (len(first) == 0 || &first[0] == &second[0])
	b.calls = append(b.calls, buildCall{rows: len(first), cols: len(second), same: same})
	if b.err != nil {
		return nil, b.err
	}
	return domain.NewGram(len(first), len(second), same)
}

type memRepo struct {
	saved *domds.Dataset
	err   error
}

func (r *memRepo) Save(ds *domds.Dataset) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.saved = ds
	return "/export/" + ds.FileName(), nil
}

func (r *memRepo) Load(string) (*domds.Dataset, error) {
	if r.saved == nil {
		return nil, domain.ErrDatasetNotFound
	}
	return r.saved, nil
}

func testInput() Input {
	table := topic.NewTable()
	table.Add("T0", "game")
	return Input{
		Train: []domain.Snippet{
			domain.NewSnippet([]string{"poker"}, "sports"),
			domain.NewSnippet([]string{"stock"}, "business"),
			domain.NewSnippet([]string{"game"}, "sports"),
		},
		Test: []domain.Snippet{
			domain.NewSnippet([]string{"market"}, "business"),
			domain.NewSnippet([]string{"ball"}, "sports"),
		},
		Topics: table,
	}
}

// --- Tests ---

func TestBuild(t *testing.T) {
	builder := &recordingBuilder{}
	svc := New(suffixEnricher{}, builder, &memRepo{}, nil)

	ds, err := svc.Build(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uuid.Parse(ds.ID); err != nil {
		t.Errorf("expected uuid id, got %q", ds.ID)
	}
	if ds.NumClasses != 2 {
		t.Errorf("NumClasses = %d, want 2", ds.NumClasses)
	}
	if !slices.Equal(ds.Labels, []string{"business", "sports"}) {
		t.Errorf("Labels = %v", ds.Labels)
	}
	if last := ds.Train[0].Tokens[len(ds.Train[0].Tokens)-1]; last != "T0" {
		t.Errorf("train not enriched: %v", ds.Train[0].Tokens)
	}
	if last := ds.Test[1].Tokens[len(ds.Test[1].Tokens)-1]; last != "T0" {
		t.Errorf("test not enriched: %v", ds.Test[1].Tokens)
	}

	want := []buildCall{{rows: 3, cols: 3, same: true}, {rows: 2, cols: 3, same: false}}
	if !slices.Equal(builder.calls, want) {
		t.Errorf("builder calls = %+v, want %+v", builder.calls, want)
	}
	if !ds.GramTrain.Symmetric() || ds.GramTest.Symmetric() {
		t.Error("unexpected matrix shapes")
	}
}

func TestBuild_GramFailure(t *testing.T) {
	builder := &recordingBuilder{err: domain.ErrBuildFailed}
	svc := New(suffixEnricher{}, builder, &memRepo{}, nil)

	_, err := svc.Build(context.Background(), testInput())
	if !errors.Is(err, domain.ErrBuildFailed) {
		t.Fatalf("expected ErrBuildFailed, got %v", err)
	}
	if len(builder.calls) != 1 {
		t.Errorf("expected build to stop after first failure, got %d calls", len(builder.calls))
	}
}

func TestSerializeDeserialize(t *testing.T) {
	repo := &memRepo{}
	svc := New(suffixEnricher{}, &recordingBuilder{}, repo, nil)

	ds, err := svc.Build(context.Background(), testInput())
	if err != nil {
		t.Fatal(err)
	}
	path, err := svc.Serialize(context.Background(), ds)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if path != "/export/dataset.classes_2.db" {
		t.Errorf("unexpected path %s", path)
	}
	got, err := svc.Deserialize(path)
	if err != nil || got.ID != ds.ID {
		t.Errorf("deserialize = %v, %v", got, err)
	}
}

func TestSerialize_Error(t *testing.T) {
	svc := New(suffixEnricher{}, &recordingBuilder{}, &memRepo{err: errors.New("disk full")}, nil)
	ds := &domds.Dataset{ID: "x"}
	if _, err := svc.Serialize(context.Background(), ds); err == nil {
		t.Error("expected error")
	}
}

// TestPipeline_RealComponents runs enrichment and persistence end to end.
func TestPipeline_RealComponents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "datasets")
	svc := New(enrich.New(enrich.Options{}), &recordingBuilder{}, dsrepo.New(dir, "bolt"), nil)

	ds, err := svc.Build(context.Background(), testInput())
	if err != nil {
		t.Fatal(err)
	}
	path, err := svc.Serialize(context.Background(), ds)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := svc.Deserialize(path)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.ID != ds.ID || len(got.Train) != 3 || len(got.Test) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	for i := range ds.Train {
		if !got.Train[i].Equal(ds.Train[i]) {
			t.Errorf("train[%d] = %v, want %v", i, got.Train[i].Tokens, ds.Train[i].Tokens)
		}
	}
}
