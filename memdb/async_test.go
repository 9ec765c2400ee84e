package memdb

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

func TestConnectAsync_DeliversTheConnectResult(t *testing.T) {
	want := deadClient()
	restore := stubNewStoreClient(t, func(opt *goredis.Options) goredis.UniversalClient {
		return want
	})
	defer restore()
	restorePing := stubPingClient(t, func(ctx context.Context, c goredis.UniversalClient) error {
		return nil
	})
	defer restorePing()

	c, err := New(Config{URI: "redis://localhost:6379"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ch := c.ConnectAsync(context.Background(), WithDB(1))

	select {
	case res := <-ch:
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Client != want {
			t.Fatalf("expected the same handle Connect would return")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no result delivered")
	}

	// Exactly one result: the channel is closed after delivery.
	if _, ok := <-ch; ok {
		t.Fatalf("expected the channel to be closed after the single result")
	}
}

func TestConnectAsync_DeliversErrors(t *testing.T) {
	want := errors.New("connection refused")
	restore := stubNewStoreClient(t, func(opt *goredis.Options) goredis.UniversalClient {
		return deadClient()
	})
	defer restore()
	restorePing := stubPingClient(t, func(ctx context.Context, c goredis.UniversalClient) error {
		return want
	})
	defer restorePing()

	c, err := New(Config{URI: "redis://localhost:6379"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := <-c.ConnectAsync(context.Background())
	if !errors.Is(res.Err, want) {
		t.Fatalf("expected the connect error unmodified, got %v", res.Err)
	}
	if res.Client != nil {
		t.Fatalf("expected no handle on failure")
	}
}
