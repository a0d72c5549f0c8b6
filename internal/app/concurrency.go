package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// loadEach calls load once per key with at most limit calls in flight. The
// first failure cancels the context handed to the calls still running and is
// returned wrapped with its key.
func loadEach[K comparable, V any](
	ctx context.Context,
	limit int,
	keys []K,
	load func(context.Context, K) (V, error),
) (map[K]V, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var mu sync.Mutex

	out := make(map[K]V, len(keys))

	for _, key := range keys {
		g.Go(func() error {
			v, err := load(gctx, key)
			if err != nil {
				return fmt.Errorf("loading %v: %w", key, err)
			}

			mu.Lock()
			out[key] = v
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
