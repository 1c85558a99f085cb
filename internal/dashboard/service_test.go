package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/portfolio-intel/internal/catalog"
	"github.com/terra-clan/portfolio-intel/internal/events"
	"github.com/terra-clan/portfolio-intel/internal/models"
)

func newTestService(t *testing.T, opts Options, bus events.Bus) *Service {
	t.Helper()

	c, err := catalog.Default()
	require.NoError(t, err)
	markets, err := catalog.DefaultMarkets(c)
	require.NoError(t, err)

	return NewService(c, markets, opts, bus)
}

func loadedView(t *testing.T) *View {
	t.Helper()

	svc := newTestService(t, Options{Seed: 7}, nil)
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)

	view, err := svc.View()
	require.NoError(t, err)
	return view
}

func TestService_NotLoaded(t *testing.T) {
	svc := newTestService(t, Options{Seed: 1}, nil)

	_, err := svc.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = svc.View()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, svc.Ping(context.Background()), ErrNotLoaded)
}

func TestService_Reload(t *testing.T) {
	bus := events.NewMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	svc := newTestService(t, Options{Seed: 100}, bus)

	first, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Info.Generation)
	assert.Equal(t, int64(100), first.Info.Seed)
	assert.Equal(t, 7, first.Info.Markets)
	assert.NotEmpty(t, first.Info.Version)
	assert.NoError(t, svc.Ping(ctx))

	second, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Info.Generation)
	assert.Equal(t, int64(101), second.Info.Seed)
	assert.NotEqual(t, first.Info.Version, second.Info.Version)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, second, current)

	// the earlier dataset is untouched
	kh, ok := first.Market("kh")
	require.True(t, ok)
	assert.Equal(t, "Cambodia", kh.Country)

	for _, want := range []*Dataset{first, second} {
		select {
		case event := <-sub:
			assert.Equal(t, events.TypeDatasetReloaded, event.Type)
			assert.Equal(t, want.Info.Version, event.Version)
		case <-time.After(time.Second):
			t.Fatal("no reload event")
		}
	}
}

func TestService_SeededReloadIsReproducible(t *testing.T) {
	a := newTestService(t, Options{Seed: 42}, nil)
	b := newTestService(t, Options{Seed: 42}, nil)

	dsA, err := a.Reload(context.Background())
	require.NoError(t, err)
	dsB, err := b.Reload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dsA.Markets(), dsB.Markets())
}

func TestService_OverridesAndInvariants(t *testing.T) {
	svc := newTestService(t, Options{Seed: 3}, nil)
	c := svc.Catalog()

	for i := 0; i < 20; i++ {
		ds, err := svc.Reload(context.Background())
		require.NoError(t, err)

		kh, ok := ds.Market("kh")
		require.True(t, ok)
		assert.False(t, kh.IsProductActive("hd-3"))
		assert.False(t, kh.IsProductActive("dig-1"))
		assert.Equal(t, models.ActionNoteExpert, kh.ActionNote)

		for _, m := range ds.Markets() {
			assert.Len(t, m.Products, c.Len())
			assert.Len(t, m.PillarStats, len(c.Pillars()))
		}
	}
}

func TestService_LoadDelayHonoursContext(t *testing.T) {
	svc := newTestService(t, Options{Seed: 1, LoadDelay: time.Hour}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Reload(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = svc.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestService_ClockSeed(t *testing.T) {
	svc := newTestService(t, Options{}, nil)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	ds, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixed.UnixNano(), ds.Info.Seed)
	assert.Equal(t, fixed, ds.Info.GeneratedAt)
}
