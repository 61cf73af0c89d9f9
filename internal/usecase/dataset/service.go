// Package dataset prepares enriched train/test collections with their Gram matrices.
package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snipgram/internal/domain"
	domds "github.com/kailas-cloud/snipgram/internal/domain/dataset"
	"github.com/kailas-cloud/snipgram/internal/domain/topic"
	"github.com/kailas-cloud/snipgram/internal/logger"
)

// Input is the raw material of one dataset build.
type Input struct {
	Train  []domain.Snippet
	Test   []domain.Snippet
	Topics *topic.Table
}

// Service coordinates enrichment, Gram construction and persistence.
type Service struct {
	enricher Enricher
	builder  GramBuilder
	repo     Repository
	logger   *zap.Logger
}

// New creates a Service.
func New(enricher Enricher, builder GramBuilder, repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{enricher: enricher, builder: builder, repo: repo, logger: logger}
}

// Build enriches both collections, then computes train×train and test×train matrices.
func (s *Service) Build(ctx context.Context, in Input) (*domds.Dataset, error) {
	id := uuid.NewString()
	log := logger.FromContext(ctx, s.logger).With(zap.String("dataset_id", id))
	start := time.Now()

	log.Info("Preparing dataset",
		zap.Int("train", len(in.Train)),
		zap.Int("test", len(in.Test)),
		zap.Int("topics", in.Topics.Len()),
	)

	train := s.enricher.Enrich(in.Train, in.Topics)
	test := s.enricher.Enrich(in.Test, in.Topics)

	gramTrain, err := s.builder.Build(ctx, train, train)
	if err != nil {
		return nil, fmt.Errorf("build train gram: %w", err)
	}
	log.Info("Train Gram matrix ready", zap.Duration("elapsed", time.Since(start)))

	gramTest, err := s.builder.Build(ctx, test, train)
	if err != nil {
		return nil, fmt.Errorf("build test gram: %w", err)
	}
	log.Info("Test Gram matrix ready", zap.Duration("elapsed", time.Since(start)))

	ds := &domds.Dataset{
		ID:         id,
		NumClasses: len(domds.DistinctLabels(train)),
		Labels:     domds.DistinctLabels(test),
		Train:      train,
		Test:       test,
		GramTrain:  gramTrain,
		GramTest:   gramTest,
	}
	log.Info("Dataset prepared",
		zap.Int("classes", ds.NumClasses),
		zap.Strings("labels", ds.Labels),
	)
	return ds, nil
}

// Serialize stores ds and returns the written file path.
func (s *Service) Serialize(ctx context.Context, ds *domds.Dataset) (string, error) {
	path, err := s.repo.Save(ds)
	if err != nil {
		return "", fmt.Errorf("serialize dataset %s: %w", ds.ID, err)
	}
	logger.FromContext(ctx, s.logger).Info("Dataset serialized",
		zap.String("dataset_id", ds.ID),
		zap.String("path", path),
	)
	return path, nil
}

// Deserialize loads a dataset written by Serialize.
func (s *Service) Deserialize(path string) (*domds.Dataset, error) {
	ds, err := s.repo.Load(path)
	if err != nil {
		return nil, fmt.Errorf("deserialize dataset: %w", err)
	}
	return ds, nil
}
