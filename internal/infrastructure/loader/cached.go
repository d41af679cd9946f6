package loader

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/port"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/metrics"
)

// DefaultLoadTimeout bounds a shared load once it is detached from callers.
const DefaultLoadTimeout = 30 * time.Second

// CachedLoader keeps the last successful load for ttl. Concurrent misses
// share one call to the underlying source. When a reload fails and an older
// snapshot exists, the stale snapshot is served.
type CachedLoader struct {
	next        port.ProductLoader
	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
	group       singleflight.Group

	mu       sync.RWMutex
	products []model.ProductAttributes
	loadedAt time.Time
}

// NewCachedLoader wraps next with a TTL cache. A non-positive ttl disables
// caching: every Load reaches next.
func NewCachedLoader(next port.ProductLoader, ttl time.Duration, logger *slog.Logger) *CachedLoader {
	return &CachedLoader{
		next:        next,
		ttl:         ttl,
		loadTimeout: DefaultLoadTimeout,
		now:         time.Now,
		logger:      logger,
	}
}

// WithLoadTimeout bounds each shared load. Non-positive values are ignored.
func (c *CachedLoader) WithLoadTimeout(d time.Duration) *CachedLoader {
	if d > 0 {
		c.loadTimeout = d
	}
	return c
}

// Load implements port.ProductLoader. The returned slice is a copy.
func (c *CachedLoader) Load(ctx context.Context) ([]model.ProductAttributes, error) {
	c.mu.RLock()
	fresh := c.products != nil && c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl
	products := c.products
	c.mu.RUnlock()

	if fresh {
		metrics.CacheLoads.WithLabelValues("hit").Inc()
		return slices.Clone(products), nil
	}
	metrics.CacheLoads.WithLabelValues("miss").Inc()
	return c.Refresh(ctx)
}

// Refresh reloads from the underlying source regardless of age. The shared
// load outlives any single caller's cancellation and is bounded by
// loadTimeout; a caller whose ctx ends first returns ctx.Err() while the
// load continues for the others.
func (c *CachedLoader) Refresh(ctx context.Context) ([]model.ProductAttributes, error) {
	ch := c.group.DoChan("products", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		products, err := c.next.Load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.products = products
		c.loadedAt = c.now()
		c.mu.Unlock()
		return products, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	v, err := res.Val, res.Err
	if err != nil {
		c.mu.RLock()
		stale := c.products
		c.mu.RUnlock()
		if stale == nil {
			return nil, err
		}
		metrics.CacheLoads.WithLabelValues("stale").Inc()
		c.logger.WarnContext(ctx, "product reload failed, serving stale snapshot", slog.String("error", err.Error()))
		return slices.Clone(stale), nil
	}

	return slices.Clone(v.([]model.ProductAttributes)), nil
}

// Refresher returns a loader whose Load always calls Refresh. Training uses
// it so the served snapshot matches the data the model was fitted on.
func (c *CachedLoader) Refresher() port.ProductLoader {
	return refresher{c}
}

type refresher struct {
	c *CachedLoader
}

func (r refresher) Load(ctx context.Context) ([]model.ProductAttributes, error) {
	return r.c.Refresh(ctx)
}
