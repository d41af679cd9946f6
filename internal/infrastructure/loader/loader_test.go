package loader_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/loader"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubLoader struct {
	mu       sync.Mutex
	products []model.ProductAttributes
	err      error
	calls    atomic.Int32
}

func (s *stubLoader) Load(_ context.Context) ([]model.ProductAttributes, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func (s *stubLoader) set(products []model.ProductAttributes, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.err = err
}

func TestSyntheticLoader(t *testing.T) {
	l := loader.NewSyntheticLoader(0, 42)

	products, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, loader.DefaultSyntheticCount)

	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "SKU-0001", products[0].SKU)
	assert.Equal(t, "Demo Product 10", products[9].Name)

	for _, p := range products {
		require.NoError(t, p.Validate())
		assert.Equal(t, model.UnknownLabel, p.Category)
		assert.Equal(t, model.UnknownLabel, p.Warehouse)
		assert.GreaterOrEqual(t, p.StockLevel, 50.0)
		assert.Less(t, p.StockLevel, 800.0)
		assert.GreaterOrEqual(t, p.StockAgeDays, 5.0)
		assert.Less(t, p.StockAgeDays, 260.0)
		assert.GreaterOrEqual(t, p.RestockFrequency, 7.0)
		assert.Less(t, p.RestockFrequency, 90.0)
		assert.Less(t, p.ClickThroughRate, 0.1)
		assert.Less(t, p.ConversionRate, 0.05)
		assert.Less(t, p.TrendScore, 1.0)
		assert.Contains(t, []float64{0, 1}, p.HolidayFlag)
		assert.Contains(t, []float64{0, 1}, p.SeasonalityFlag)
	}

	again, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, products, again)

	other, err := loader.NewSyntheticLoader(0, 7).Load(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, products, other)
}

func TestFallbackLoader(t *testing.T) {
	live := []model.ProductAttributes{{ID: 100, SKU: "REAL"}}
	fallback := loader.NewSyntheticLoader(3, 1)

	t.Run("primary success", func(t *testing.T) {
		l := loader.NewFallbackLoader(&stubLoader{products: live}, fallback, "synthetic", discardLogger())

		products, err := l.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, live, products)
	})

	t.Run("primary unavailable", func(t *testing.T) {
		primary := &stubLoader{err: model.ErrDataUnavailable}
		l := loader.NewFallbackLoader(primary, fallback, "synthetic", discardLogger())

		products, err := l.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})

	t.Run("primary empty", func(t *testing.T) {
		l := loader.NewFallbackLoader(&stubLoader{}, fallback, "synthetic", discardLogger())

		products, err := l.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})

	t.Run("other errors are not masked", func(t *testing.T) {
		boom := errors.New("scan failed")
		l := loader.NewFallbackLoader(&stubLoader{err: boom}, fallback, "synthetic", discardLogger())

		_, err := l.Load(context.Background())
		require.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		l := loader.NewFallbackLoader(&stubLoader{err: model.ErrDataUnavailable}, fallback, "synthetic", discardLogger())

		_, err := l.Load(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestBreakerLoader_OpensAfterConsecutiveFailures(t *testing.T) {
	primary := &stubLoader{err: errors.New("connection refused")}
	l := loader.NewBreakerLoader(primary, loader.BreakerConfig{
		Name:                "test-open",
		Timeout:             time.Hour,
		ConsecutiveFailures: 2,
	}, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := l.Load(context.Background())
		require.Error(t, err)
		assert.False(t, errors.Is(err, model.ErrDataUnavailable))
	}
	assert.Equal(t, gobreaker.StateOpen, l.State())

	_, err := l.Load(context.Background())
	require.ErrorIs(t, err, model.ErrDataUnavailable)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), primary.calls.Load())
}

func TestBreakerLoader_SuccessKeepsClosed(t *testing.T) {
	primary := &stubLoader{products: []model.ProductAttributes{{ID: 1}}}
	l := loader.NewBreakerLoader(primary, loader.BreakerConfig{Name: "test-closed"}, discardLogger())

	products, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, gobreaker.StateClosed, l.State())
}

func TestBreakerLoader_FeedsFallback(t *testing.T) {
	primary := &stubLoader{err: errors.New("timeout")}
	breaker := loader.NewBreakerLoader(primary, loader.BreakerConfig{
		Name:                "test-fallback",
		Timeout:             time.Hour,
		ConsecutiveFailures: 1,
	}, discardLogger())
	_, _ = breaker.Load(context.Background())

	l := loader.NewFallbackLoader(breaker, loader.NewSyntheticLoader(4, 1), "synthetic", discardLogger())
	products, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestCachedLoader_ServesWithinTTL(t *testing.T) {
	primary := &stubLoader{products: []model.ProductAttributes{{ID: 1}}}
	c := loader.NewCachedLoader(primary, time.Hour, discardLogger())

	for i := 0; i < 3; i++ {
		products, err := c.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, products, 1)
	}
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestCachedLoader_ZeroTTLAlwaysReloads(t *testing.T) {
	primary := &stubLoader{products: []model.ProductAttributes{{ID: 1}}}
	c := loader.NewCachedLoader(primary, 0, discardLogger())

	_, err := c.Load(context.Background())
	require.NoError(t, err)
	_, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), primary.calls.Load())
}

func TestCachedLoader_RefreshAndStale(t *testing.T) {
	primary := &stubLoader{products: []model.ProductAttributes{{ID: 1}}}
	c := loader.NewCachedLoader(primary, time.Hour, discardLogger())

	_, err := c.Load(context.Background())
	require.NoError(t, err)

	primary.set([]model.ProductAttributes{{ID: 1}, {ID: 2}}, nil)
	products, err := c.Refresher().Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)

	primary.set(nil, model.ErrDataUnavailable)
	products, err = c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestCachedLoader_ErrorWithoutSnapshot(t *testing.T) {
	c := loader.NewCachedLoader(&stubLoader{err: model.ErrDataUnavailable}, time.Hour, discardLogger())

	_, err := c.Load(context.Background())
	require.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestCachedLoader_ReturnsCopies(t *testing.T) {
	primary := &stubLoader{products: []model.ProductAttributes{{ID: 1, SKU: "A"}}}
	c := loader.NewCachedLoader(primary, time.Hour, discardLogger())

	first, err := c.Load(context.Background())
	require.NoError(t, err)
	first[0].SKU = "mutated"

	second, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A", second[0].SKU)
}

// gatedLoader blocks each Load until release is closed or its ctx ends.
type gatedLoader struct {
	entered  chan struct{}
	release  chan struct{}
	finished chan error
	once     sync.Once
	calls    atomic.Int32
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		finished: make(chan error, 8),
	}
}

func (g *gatedLoader) Load(ctx context.Context) ([]model.ProductAttributes, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		err := ctx.Err()
		g.finished <- err
		if err != nil {
			return nil, err
		}
		return []model.ProductAttributes{{ID: 1}, {ID: 2}}, nil
	case <-ctx.Done():
		g.finished <- ctx.Err()
		return nil, ctx.Err()
	}
}

func TestCachedLoader_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	source := newGatedLoader()
	c := loader.NewCachedLoader(source, time.Hour, discardLogger())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Refresh(ctxA)
		errA <- err
	}()
	<-source.entered

	type result struct {
		products []model.ProductAttributes
		err      error
	}
	resB := make(chan result, 1)
	go func() {
		products, err := c.Refresh(context.Background())
		resB <- result{products, err}
	}()

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(source.release)
	require.NoError(t, <-source.finished)

	got := <-resB
	require.NoError(t, got.err)
	assert.Len(t, got.products, 2)
}

func TestCachedLoader_LoadCompletesAfterOnlyCallerCancels(t *testing.T) {
	source := newGatedLoader()
	c := loader.NewCachedLoader(source, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Load(ctx)
		errCh <- err
	}()
	<-source.entered

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	close(source.release)
	require.NoError(t, <-source.finished)

	require.Eventually(t, func() bool {
		products, err := c.Load(context.Background())
		return err == nil && len(products) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestCachedLoader_SharedLoadTimeout(t *testing.T) {
	source := newGatedLoader()
	c := loader.NewCachedLoader(source, time.Hour, discardLogger()).WithLoadTimeout(20 * time.Millisecond)

	_, err := c.Refresh(context.Background())

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, <-source.finished, context.DeadlineExceeded)
}
