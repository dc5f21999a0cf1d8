package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrPoolClosed     = errors.New("evaluator pool is closed")
	ErrAcquireTimeout = errors.New("evaluator runtime acquisition timeout")
)

// DefaultAcquireTimeout bounds how long a run waits for a free runtime.
const DefaultAcquireTimeout = 5 * time.Second

// Pool hands out pre-built runtimes, one run at a time each. A released
// runtime gets a fresh VM before anyone else can use it, so no snippet sees
// globals left by the previous one.
type Pool struct {
	config Config
	idle   chan *Runtime
	wait   time.Duration

	done      chan struct{}
	closeOnce sync.Once

	live       atomic.Int64
	acquired   atomic.Uint64
	waited     atomic.Uint64
	timeouts   atomic.Uint64
	resets     atomic.Uint64
	resetNanos atomic.Int64
	replaced   atomic.Uint64
}

// NewPool builds size runtimes up front.
func NewPool(config Config, size int) (*Pool, error) {
	if size <= 0 {
		size = 4
	}

	p := &Pool{
		config: config,
		idle:   make(chan *Runtime, size),
		wait:   DefaultAcquireTimeout,
		done:   make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		rt, err := NewRuntime(config)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("runtime %d: %w", i, err)
		}
		p.idle <- rt
		p.live.Add(1)
	}
	return p, nil
}

// Acquire takes an idle runtime, waiting up to the acquire timeout when all
// are busy.
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}

	select {
	case rt := <-p.idle:
		p.acquired.Add(1)
		return rt, nil
	default:
	}

	p.waited.Add(1)
	timer := time.NewTimer(p.wait)
	defer timer.Stop()

	select {
	case rt := <-p.idle:
		p.acquired.Add(1)
		return rt, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		p.timeouts.Add(1)
		return nil, ErrAcquireTimeout
	}
}

// Release resets rt and makes it available again. A runtime that cannot be
// reset is replaced; if that fails too the pool shrinks by one.
func (p *Pool) Release(rt *Runtime) error {
	select {
	case <-p.done:
		p.live.Add(-1)
		return rt.Close()
	default:
	}

	start := time.Now()
	err := rt.Reset()
	p.resets.Add(1)
	p.resetNanos.Add(int64(time.Since(start)))

	if err != nil {
		rt.Close()
		fresh, ferr := NewRuntime(p.config)
		if ferr != nil {
			p.live.Add(-1)
			return errors.Join(fmt.Errorf("reset runtime: %w", err), fmt.Errorf("replace runtime: %w", ferr))
		}
		p.replaced.Add(1)
		rt = fresh
		err = fmt.Errorf("reset runtime: %w", err)
	}

	p.idle <- rt

	// Close may have drained the channel while rt was out.
	select {
	case <-p.done:
		p.drain()
	default:
	}
	return err
}

// Close stops handing out runtimes and closes the idle ones. Runtimes still
// in use are closed when released.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		p.drain()
	})
	return nil
}

func (p *Pool) drain() {
	for {
		select {
		case rt := <-p.idle:
			p.live.Add(-1)
			rt.Close()
		default:
			return
		}
	}
}

// PoolStats describes pool occupancy and how runs have been waiting on it.
type PoolStats struct {
	Size       int     `json:"size"`
	Available  int     `json:"available"`
	InUse      int     `json:"in_use"`
	Closed     bool    `json:"closed"`
	Acquired   uint64  `json:"acquired"`
	Waited     uint64  `json:"waited"`
	Timeouts   uint64  `json:"timeouts"`
	Replaced   uint64  `json:"replaced"`
	AvgResetMs float64 `json:"avg_reset_ms"`
}

// Stats returns pool statistics
func (p *Pool) Stats() PoolStats {
	closed := false
	select {
	case <-p.done:
		closed = true
	default:
	}

	size := int(p.live.Load())
	available := len(p.idle)
	inUse := size - available
	if inUse < 0 {
		inUse = 0
	}

	var avgReset float64
	if n := p.resets.Load(); n > 0 {
		avgReset = float64(p.resetNanos.Load()) / float64(n) / float64(time.Millisecond)
	}

	return PoolStats{
		Size:       size,
		Available:  available,
		InUse:      inUse,
		Closed:     closed,
		Acquired:   p.acquired.Load(),
		Waited:     p.waited.Load(),
		Timeouts:   p.timeouts.Load(),
		Replaced:   p.replaced.Load(),
		AvgResetMs: avgReset,
	}
}
