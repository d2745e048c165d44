package catalog

// limiter.go bounds the number of batch operations running at once.
// Imports and bulk updates hold the store for many sequential writes; an
// unbounded number of concurrent administrators would exhaust the
// connection pool. The limiter is a semaphore with a bounded wait: when
// all slots are busy, a new batch waits up to maxWait and then fails
// with ErrTooManyBatches.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyBatches is returned when all batch slots are occupied and
// the wait timeout expires. Callers should retry after a short delay.
var ErrTooManyBatches = errors.New("too many concurrent batch operations, please try again later")

// DefaultMaxConcurrentBatches limits parallel batch operations.
const DefaultMaxConcurrentBatches = 5

// DefaultBatchMaxWait is how long to wait for a slot before rejecting.
const DefaultBatchMaxWait = 30 * time.Second

// BatchLimiter controls concurrent batch processing.
type BatchLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewBatchLimiter creates a limiter allowing at most maxConcurrent
// simultaneous batch operations.
func NewBatchLimiter(maxConcurrent int, maxWait time.Duration) *BatchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentBatches
	}
	if maxWait <= 0 {
		maxWait = DefaultBatchMaxWait
	}
	return &BatchLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire blocks for a slot. Returns nil on success, ErrTooManyBatches
// when the wait expires. The caller must Release exactly once after a
// successful Acquire.
func (l *BatchLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyBatches
	}
}

// Release frees a previously acquired slot.
func (l *BatchLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// Active returns the number of batch operations currently running.
func (l *BatchLimiter) Active() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until all active batches complete or ctx ends.
// Used during graceful shutdown.
func (l *BatchLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Active() == 0 {
				return nil
			}
		}
	}
}
