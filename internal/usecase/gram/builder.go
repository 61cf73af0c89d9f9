// Package gram builds kernel Gram matrices with a fixed pool of workers.
package gram

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/huichen/murmur"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// Dispatch policies.
const (
	DispatchFIFO     = "fifo"
	DispatchAffinity = "affinity"
)

// DefaultProgressEvery is the number of pairs between progress log lines.
const DefaultProgressEvery = 1000

// Options configures a Builder.
type Options struct {
	Workers       int
	BatchSize     int
	Dispatch      string
	ProgressEvery int
	NewKernel     KernelFactory

	PairsTotal    *prometheus.CounterVec   // label "shape"; may be nil
	BuildDuration *prometheus.HistogramVec // labels "shape", "status"; may be nil
	WorkersGauge  prometheus.Gauge         // may be nil
	Logger        *zap.Logger
}

// Builder computes Gram matrices. Each Build creates fresh worker kernels.
type Builder struct {
	workers       int
	batchSize     int
	dispatch      string
	progressEvery int
	newKernel     KernelFactory

	pairsTotal    *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	workersGauge  prometheus.Gauge
	logger        *zap.Logger
}

// New validates opts and creates a Builder.
func New(opts Options) (*Builder, error) {
	if opts.NewKernel == nil {
		return nil, fmt.Errorf("kernel factory is required")
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	switch opts.Dispatch {
	case "":
		opts.Dispatch = DispatchFIFO
	case DispatchFIFO, DispatchAffinity:
	default:
		return nil, fmt.Errorf("unknown dispatch policy %q", opts.Dispatch)
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Builder{
		workers:       opts.Workers,
		batchSize:     opts.BatchSize,
		dispatch:      opts.Dispatch,
		progressEvery: opts.ProgressEvery,
		newKernel:     opts.NewKernel,
		pairsTotal:    opts.PairsTotal,
		buildDuration: opts.BuildDuration,
		workersGauge:  opts.WorkersGauge,
		logger:        opts.Logger,
	}, nil
}

// unit is one matrix cell to compute.
type unit struct {
	row, col int
}

type result struct {
	row, col int
	value    float64
}

// Build returns the Gram matrix of first × second. Passing the same slice
// twice builds a symmetric matrix from the lower triangle only.
// Any kernel error, worker panic or context cancellation fails the whole
// build; no partial matrix is returned.
func (b *Builder) Build(ctx context.Context, first, second []domain.Snippet) (*domain.Gram, error) {
	symmetric := sameCollection(first, second)
	shape := "rectangular"
	if symmetric {
		shape = "symmetric"
	}

	start := time.Now()
	g, err := b.build(ctx, first, second, symmetric, start)
	status := "ok"
	if err != nil {
		status = "error"
	}
	if b.buildDuration != nil {
		b.buildDuration.WithLabelValues(shape, status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBuildFailed, err)
	}
	if b.pairsTotal != nil {
		b.pairsTotal.WithLabelValues(shape).Add(float64(TotalPairs(len(first), len(second), symmetric)))
	}
	return g, nil
}

func (b *Builder) build(
	ctx context.Context, first, second []domain.Snippet, symmetric bool, start time.Time,
) (*domain.Gram, error) {
	n, m := len(first), len(second)
	gram, err := domain.NewGram(n, m, symmetric)
	if err != nil {
		return nil, err
	}
	total := TotalPairs(n, m, symmetric)

	workers := b.workers
	if total > 0 && total < workers {
		workers = total
	}
	if b.workersGauge != nil {
		b.workersGauge.Set(float64(workers))
	}
	b.logger.Info("Building Gram matrix",
		zap.Int("workers", workers),
		zap.Int("rows", n),
		zap.Int("cols", m),
		zap.Bool("symmetric", symmetric),
		zap.Int("total", total),
		zap.String("dispatch", b.dispatch),
	)
	if total == 0 {
		return gram, nil
	}

	kernels := make([]PairKernel, workers)
	for w := range kernels {
		k, err := b.newKernel(w)
		if err != nil {
			return nil, fmt.Errorf("create kernel for worker %d: %w", w, err)
		}
		kernels[w] = k
	}

	queues := b.queues(workers)
	results := make(chan []result, workers)

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return b.produce(egctx, queues, first, n, m, symmetric)
	})
	for w, k := range kernels {
		queue := queues[w%len(queues)]
		eg.Go(func() error {
			return work(egctx, w, k, queue, results, first, second)
		})
	}

	var waitErr error
	done := make(chan struct{})
	go func() {
		waitErr = eg.Wait()
		close(results)
		close(done)
	}()

	completed, nextReport := 0, b.progressEvery
	for batch := range results {
		for _, r := range batch {
			gram.Set(r.row, r.col, r.value)
		}
		completed += len(batch)
		if completed >= nextReport {
			b.logProgress(completed, total, start)
			for nextReport <= completed {
				nextReport += b.progressEvery
			}
		}
	}
	<-done

	if waitErr != nil {
		return nil, waitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if completed != total {
		return nil, fmt.Errorf("computed %d of %d pairs", completed, total)
	}
	b.logProgress(completed, total, start)
	return gram, nil
}

func (b *Builder) queues(workers int) []chan []unit {
	count := 1
	if b.dispatch == DispatchAffinity {
		count = workers
	}
	queues := make([]chan []unit, count)
	for i := range queues {
		queues[i] = make(chan []unit, workers)
	}
	return queues
}

// produce enumerates cells row-major and sends them in batches.
func (b *Builder) produce(
	ctx context.Context, queues []chan []unit, first []domain.Snippet, n, m int, symmetric bool,
) error {
	defer func() {
		for _, q := range queues {
			close(q)
		}
	}()

	rowQueue := func(row int) chan []unit {
		if len(queues) == 1 {
			return queues[0]
		}
		return queues[RowHash(first[row])%uint32(len(queues))]
	}

	send := func(batch []unit) error {
		select {
		case rowQueue(batch[0].row) <- batch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	batch := make([]unit, 0, b.batchSize)
	for i := range n {
		cols := m
		if symmetric {
			cols = i + 1
		}
		for j := range cols {
			batch = append(batch, unit{row: i, col: j})
			if len(batch) == b.batchSize {
				if err := send(batch); err != nil {
					return err
				}
				batch = make([]unit, 0, b.batchSize)
			}
		}
		// affinity batches never span rows
		if len(queues) > 1 && len(batch) > 0 {
			if err := send(batch); err != nil {
				return err
			}
			batch = make([]unit, 0, b.batchSize)
		}
	}
	if len(batch) > 0 {
		return send(batch)
	}
	return nil
}

func work(
	ctx context.Context,
	worker int,
	k PairKernel,
	queue <-chan []unit,
	results chan<- []result,
	first, second []domain.Snippet,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d panic: %v", worker, r)
		}
	}()

	for batch := range queue {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := make([]result, len(batch))
		for i, u := range batch {
			v, err := k.Compute(ctx, first[u.row].Tokens, second[u.col].Tokens)
			if err != nil {
				return &domain.PairError{Row: u.row, Col: u.col, Err: err}
			}
			out[i] = result{row: u.row, col: u.col, value: v}
		}
		select {
		case results <- out:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *Builder) logProgress(completed, total int, start time.Time) {
	b.logger.Info("Gram progress",
		zap.Int("completed", completed),
		zap.Int("total", total),
		zap.Float64("elapsed_sec", time.Since(start).Seconds()),
	)
}

// TotalPairs is the number of kernel evaluations for an n×m build.
func TotalPairs(n, m int, symmetric bool) int {
	if symmetric {
		return n * (n + 1) / 2
	}
	return n * m
}

// RowHash routes a row snippet to a worker under affinity dispatch.
func RowHash(s domain.Snippet) uint32 {
	return murmur.Murmur3([]byte(strings.Join(s.Tokens, " ")))
}

// sameCollection reports whether a and b share their backing array.
func sameCollection(a, b []domain.Snippet) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
