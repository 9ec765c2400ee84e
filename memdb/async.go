package memdb

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ConnectResult is the outcome of a ConnectAsync call.
type ConnectResult struct {
	Client redis.UniversalClient
	Err    error
}

// ConnectAsync runs the same connect path as Connect in its own goroutine
// and delivers the single result on the returned channel. The channel is
// buffered, so the result is kept even when the caller reads late, and it
// is closed after delivery.
func (c *Connector) ConnectAsync(ctx context.Context, opts ...ConnectOption) <-chan ConnectResult {
	out := make(chan ConnectResult, 1)
	go func() {
		client, err := c.connect(ctx, opts...)
		out <- ConnectResult{Client: client, Err: err}
		close(out)
	}()
	return out
}
