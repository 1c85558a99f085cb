package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/portfolio-intel/internal/catalog"
	"github.com/terra-clan/portfolio-intel/internal/coverage"
	"github.com/terra-clan/portfolio-intel/internal/events"
	"github.com/terra-clan/portfolio-intel/internal/models"
)

// Common errors
var (
	ErrMarketNotFound = errors.New("market not found")
	ErrPillarNotFound = errors.New("pillar not found")
	ErrTooManyMarkets = errors.New("too many markets selected")
	ErrNoMarkets      = errors.New("no markets selected")
	ErrNotLoaded      = errors.New("dataset not loaded")
)

// Options holds dataset generation settings
type Options struct {
	// Seed fixes the random source; 0 seeds from the clock on every reload
	Seed int64

	// LoadDelay simulates the latency of fetching the market list
	LoadDelay time.Duration
}

// Service owns the current dataset and answers dashboard queries against it
type Service struct {
	synth   *coverage.Synthesizer
	catalog *catalog.Catalog
	markets []models.MarketMeta
	opts    Options
	bus     events.Bus

	reloadMu   sync.Mutex
	generation int
	current    atomic.Pointer[Dataset]

	now func() time.Time
}

// NewService creates a dashboard service. bus may be nil.
func NewService(c *catalog.Catalog, markets []models.MarketMeta, opts Options, bus events.Bus) *Service {
	metas := make([]models.MarketMeta, len(markets))
	copy(metas, markets)

	return &Service{
		synth:   coverage.NewSynthesizer(c),
		catalog: c,
		markets: metas,
		opts:    opts,
		bus:     bus,
		now:     time.Now,
	}
}

// Catalog returns the catalog the service was built with
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Reload synthesizes a new dataset and makes it current.
// Readers holding the previous dataset keep a consistent view of it.
func (s *Service) Reload(ctx context.Context) (*Dataset, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.opts.LoadDelay > 0 {
		timer := time.NewTimer(s.opts.LoadDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("dataset load aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}

	generation := s.generation + 1
	seed := s.seedFor(generation)
	src := coverage.NewSeededSource(seed)

	markets := make([]*models.Market, 0, len(s.markets))
	for _, meta := range s.markets {
		markets = append(markets, s.synth.SynthesizeMarket(meta, src))
	}

	ds := newDataset(models.DatasetInfo{
		Version:     uuid.New().String(),
		Seed:        seed,
		Generation:  generation,
		GeneratedAt: s.now().UTC(),
		Markets:     len(markets),
	}, markets)

	s.generation = generation
	s.current.Store(ds)

	slog.Info("dataset reloaded",
		"version", ds.Info.Version,
		"generation", generation,
		"seed", seed,
		"markets", len(markets),
	)

	if s.bus != nil {
		event := events.Event{
			Type:        events.TypeDatasetReloaded,
			Version:     ds.Info.Version,
			Generation:  generation,
			Seed:        seed,
			Markets:     len(markets),
			GeneratedAt: ds.Info.GeneratedAt,
		}
		if err := s.bus.Publish(ctx, event); err != nil {
			slog.Error("failed to publish reload event", "error", err, "version", ds.Info.Version)
		}
	}

	return ds, nil
}

// Current returns the dataset currently served
func (s *Service) Current() (*Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

// View returns a query view pinned to the current dataset
func (s *Service) View() (*View, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return NewView(ds, s.catalog), nil
}

// Ping reports whether the service can answer queries
func (s *Service) Ping(ctx context.Context) error {
	if _, err := s.Current(); err != nil {
		return err
	}
	if s.bus != nil {
		if err := s.bus.HealthCheck(ctx); err != nil {
			return fmt.Errorf("event bus health check failed: %w", err)
		}
	}
	return nil
}

func (s *Service) seedFor(generation int) int64 {
	if s.opts.Seed == 0 {
		return s.now().UnixNano()
	}
	return s.opts.Seed + int64(generation-1)
}

// Dataset is one immutable generation of synthesized markets
type Dataset struct {
	Info    models.DatasetInfo
	markets []*models.Market
	index   map[string]int
}

func newDataset(info models.DatasetInfo, markets []*models.Market) *Dataset {
	index := make(map[string]int, len(markets))
	for i, m := range markets {
		// first match wins, as with a linear scan
		if _, dup := index[m.ID]; !dup {
			index[m.ID] = i
		}
	}
	return &Dataset{Info: info, markets: markets, index: index}
}

// Markets returns the markets in declaration order
func (d *Dataset) Markets() []*models.Market {
	result := make([]*models.Market, len(d.markets))
	copy(result, d.markets)
	return result
}

// Market returns a market by ID
func (d *Dataset) Market(id string) (*models.Market, bool) {
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.markets[i], true
}
