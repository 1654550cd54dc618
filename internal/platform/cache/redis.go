package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client and verifies connectivity.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

var (
	sharedMu     sync.Mutex
	sharedClient *redis.Client
	sharedAddr   string
)

// Configure records the address used by the shared client. Must be called
// before the first Shared call.
func Configure(addr string) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedAddr = addr
}

// Shared returns the process-wide Redis client, dialing it on first use.
// Business logic never holds raw connection state; everything goes through
// this accessor so the connection can be replaced or shut down in one
// place.
func Shared(ctx context.Context) (*redis.Client, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedClient != nil {
		return sharedClient, nil
	}
	if sharedAddr == "" {
		return nil, fmt.Errorf("platform/cache: shared client not configured")
	}
	client, err := New(ctx, sharedAddr)
	if err != nil {
		return nil, err
	}
	sharedClient = client
	return sharedClient, nil
}

// Shutdown closes the shared client if it was ever dialed.
func Shutdown() error {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedClient == nil {
		return nil
	}
	err := sharedClient.Close()
	sharedClient = nil
	return err
}
