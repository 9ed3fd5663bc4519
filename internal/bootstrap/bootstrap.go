// Package bootstrap opens the backing services named by the configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"littleforest/internal/config"
	"littleforest/pkg/postgrest"
	"littleforest/pkg/store"
)

// OpenStore returns the Store selected by cfg.StorageBackend.
func OpenStore(cfg config.FileConfig) (store.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendREST:
		client, err := postgrest.New(postgrest.Config{
			ProjectURL: cfg.SupabaseURL,
			AnonKey:    cfg.SupabaseAnonKey,
			ServiceKey: cfg.SupabaseServiceRoleKey,
		})
		if err != nil {
			return nil, err
		}
		return store.NewRestStore(client), nil
	case config.BackendPostgres:
		return store.NewGormStore(cfg.DatabaseURL)
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

type tableProber interface {
	ProbeTable(ctx context.Context, table string) error
}

// ProbeTables checks every table concurrently and returns the ones that could
// not be read. Backends that migrate their own schema are skipped.
func ProbeTables(ctx context.Context, s store.Store) []string {
	p, ok := s.(tableProber)
	if !ok {
		return nil
	}
	var (
		mu      sync.Mutex
		missing []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for _, table := range store.Tables {
		g.Go(func() error {
			if err := p.ProbeTable(gctx, table); err != nil {
				slog.Warn("table probe failed", "table", table, "err", err)
				mu.Lock()
				missing = append(missing, table)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return sortedLike(store.Tables, missing)
}

func sortedLike(order, subset []string) []string {
	if len(subset) == 0 {
		return nil
	}
	in := make(map[string]bool, len(subset))
	for _, s := range subset {
		in[s] = true
	}
	out := make([]string, 0, len(subset))
	for _, s := range order {
		if in[s] {
			out = append(out, s)
		}
	}
	return out
}

// OpenRedis returns nil when no address is configured.
func OpenRedis(ctx context.Context, cfg config.FileConfig) (redis.UniversalClient, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
