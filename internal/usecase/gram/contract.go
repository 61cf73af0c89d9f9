package gram

import "context"

// PairKernel evaluates the kernel for one pair of token lists.
type PairKernel interface {
	Compute(ctx context.Context, x, y []string) (float64, error)
}

// KernelFactory builds the kernel owned by one worker.
type KernelFactory func(worker int) (PairKernel, error)
