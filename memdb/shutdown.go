package memdb

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"
)

// CloseAll closes every handle concurrently and waits until all closes
// finish or ctx expires. It returns the first close error, or the context
// error when the deadline wins. Nil handles are skipped.
func CloseAll(ctx context.Context, handles ...io.Closer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var g errgroup.Group
	for _, h := range handles {
		if h == nil {
			continue
		}
		g.Go(h.Close)
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
