package cache

import (
	"context"
	"time"

	"monu/internal/domain"
	"monu/internal/logging"
	"monu/internal/metrics"
	"monu/internal/port"
)

// CachedOracle serves repeated texts from a cache and only stores
// successful corrections.
type CachedOracle struct {
	oracle port.Oracle
	cache  port.CorrectionCache
}

func NewCachedOracle(oracle port.Oracle, cache port.CorrectionCache) *CachedOracle {
	return &CachedOracle{
		oracle: oracle,
		cache:  cache,
	}
}

func (o *CachedOracle) Correct(ctx context.Context, text string) (domain.Correction, error) {
	c, _, err := o.CorrectTracked(ctx, text)
	return c, err
}

// CorrectTracked is Correct that also reports a cache hit.
func (o *CachedOracle) CorrectTracked(ctx context.Context, text string) (domain.Correction, bool, error) {
	key := Key(o.oracle.Provider(), o.oracle.ModelName(), text)

	if c, hit := o.cache.Get(key); hit {
		metrics.ObserveCacheLookup(true)
		return c, true, nil
	}
	metrics.ObserveCacheLookup(false)

	c, err := o.oracle.Correct(ctx, text)
	if err != nil {
		return domain.Correction{}, false, err
	}

	rec := domain.CorrectionRecord{
		Key:       key,
		Provider:  o.oracle.Provider(),
		Model:     o.oracle.ModelName(),
		CreatedAt: time.Now().UTC(),
		Result:    c,
	}
	if err := o.cache.Put(key, rec); err != nil {
		logging.FromContext(ctx).Warn("failed to cache correction", "error", err)
	}
	return c, false, nil
}

func (o *CachedOracle) Provider() string {
	return o.oracle.Provider()
}

func (o *CachedOracle) ModelName() string {
	return o.oracle.ModelName()
}
