package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBatchLimiter_AcquireRelease(t *testing.T) {
	l := NewBatchLimiter(2, time.Second)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if got := l.Active(); got != 2 {
		t.Errorf("Active() = %d, want 2", got)
	}

	l.Release()
	l.Release()
	if got := l.Active(); got != 0 {
		t.Errorf("Active() after release = %d, want 0", got)
	}
}

func TestBatchLimiter_RejectsWhenFull(t *testing.T) {
	l := NewBatchLimiter(1, 50*time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer l.Release()

	err := l.Acquire(context.Background())
	if !errors.Is(err, ErrTooManyBatches) {
		t.Fatalf("Acquire() on full limiter error = %v, want ErrTooManyBatches", err)
	}
}

func TestBatchLimiter_CancelledContext(t *testing.T) {
	l := NewBatchLimiter(1, time.Minute)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Acquire(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestBatchLimiter_SlotFreesAfterRelease(t *testing.T) {
	l := NewBatchLimiter(1, time.Second)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	l.Release()

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	l.Release()
}

func TestBatchLimiter_WaitForDrain(t *testing.T) {
	l := NewBatchLimiter(1, time.Second)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	go func() {
		time.Sleep(150 * time.Millisecond)
		l.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := l.WaitForDrain(ctx); err != nil {
		t.Fatalf("WaitForDrain() error = %v", err)
	}
	if got := l.Active(); got != 0 {
		t.Errorf("Active() after drain = %d, want 0", got)
	}
}

func TestBatchLimiter_WaitForDrainTimeout(t *testing.T) {
	l := NewBatchLimiter(1, time.Second)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := l.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitForDrain() error = %v, want deadline exceeded", err)
	}
}
