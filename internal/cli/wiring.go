package cli

import (
	"fmt"

	"monu/config"
	"monu/internal/adapter/cache"
	"monu/internal/adapter/oracle"
	"monu/internal/adapter/store"
	"monu/internal/logging"
	"monu/internal/port"
)

// buildOracle creates the configured oracle behind the configured cache.
// The history is nil when caching is off. The returned cleanup must be
// called when done.
func buildOracle(cfg *config.Config, dir string) (port.Oracle, port.CorrectionHistory, func(), error) {
	o, err := oracle.New(cfg.Oracle)
	if err != nil {
		return nil, nil, nil, err
	}

	switch cfg.Cache.Backend {
	case "memory":
		mc := cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.TTL())
		return cache.NewCachedOracle(o, mc), mc, func() {}, nil
	case "bolt":
		st, err := openStore(cfg, dir)
		if err != nil {
			return nil, nil, nil, err
		}
		return cache.NewCachedOracle(o, st), st, func() { st.Close() }, nil
	default:
		return o, nil, func() {}, nil
	}
}

// openHistory opens the persistent history for commands that run outside
// the serving process. Only the bolt backend outlives a process.
func openHistory(cfg *config.Config, dir string) (port.CorrectionHistory, func(), error) {
	if cfg.Cache.Backend != "bolt" {
		return nil, nil, fmt.Errorf("history needs cache.backend: bolt (got %q); a memory cache is only visible through the server's /history endpoint", cfg.Cache.Backend)
	}
	st, err := openStore(cfg, dir)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { st.Close() }, nil
}

func openStore(cfg *config.Config, dir string) (*store.BoltStore, error) {
	path := config.CacheDBPath(dir, cfg)
	if err := config.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	st, err := store.NewBoltStore(path, cfg.Cache.TTL())
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	logging.Debug("opened cache store", "path", path)
	return st, nil
}
