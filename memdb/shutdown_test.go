package memdb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeCloser struct {
	mu     sync.Mutex
	closed int
	err    error
	delay  time.Duration
}

func (f *fakeCloser) Close() error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return f.err
}

func (f *fakeCloser) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestCloseAll_ClosesEveryHandle(t *testing.T) {
	t.Parallel()

	a := &fakeCloser{}
	b := &fakeCloser{delay: 10 * time.Millisecond}
	c := &fakeCloser{}

	if err := CloseAll(context.Background(), a, nil, b, c); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	for i, f := range []*fakeCloser{a, b, c} {
		if got := f.closeCount(); got != 1 {
			t.Fatalf("handle %d closed %d times, want 1", i, got)
		}
	}
}

func TestCloseAll_NoHandles(t *testing.T) {
	t.Parallel()

	if err := CloseAll(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestCloseAll_SurfacesCloseError(t *testing.T) {
	t.Parallel()

	want := errors.New("close failed")
	ok := &fakeCloser{}
	bad := &fakeCloser{err: want}

	if err := CloseAll(context.Background(), ok, bad); !errors.Is(err, want) {
		t.Fatalf("expected the close error, got %v", err)
	}
	if ok.closeCount() != 1 {
		t.Fatalf("healthy handle must still be closed")
	}
}

func TestCloseAll_ContextDeadlineWins(t *testing.T) {
	t.Parallel()

	slow := &fakeCloser{delay: 500 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := CloseAll(ctx, slow); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
}
