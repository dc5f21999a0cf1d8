package evaluator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
)

// Evaluator runs sandbox snippets on pooled goja runtimes.
type Evaluator struct {
	pool   *Pool
	logger *zap.Logger
}

// New creates an evaluator backed by size runtimes.
func New(config Config, size int, logger *zap.Logger) (*Evaluator, error) {
	pool, err := NewPool(config, size)
	if err != nil {
		return nil, fmt.Errorf("create runtime pool: %w", err)
	}
	return &Evaluator{pool: pool, logger: logging.OrNop(logger)}, nil
}

// Evaluate implements sandbox.Evaluator.
func (e *Evaluator) Evaluate(ctx context.Context, source string, bindings sandbox.Bindings) (sandbox.Output, error) {
	rt, err := e.pool.Acquire(ctx)
	if err != nil {
		e.logger.Warn("no runtime available", zap.Error(err))
		return sandbox.Output{}, fmt.Errorf("evaluator unavailable: %w", err)
	}
	defer func() {
		if err := e.pool.Release(rt); err != nil {
			e.logger.Error("failed to recycle runtime", zap.Error(err))
		}
	}()

	out, err := rt.Execute(ctx, source, bindings)
	for _, line := range out.Console {
		e.logger.Debug("snippet console", zap.String("line", line))
	}
	return out, err
}

// Stats returns runtime pool statistics.
func (e *Evaluator) Stats() PoolStats {
	return e.pool.Stats()
}

// Close releases every runtime.
func (e *Evaluator) Close() error {
	return e.pool.Close()
}
