package tracker

import (
	"context"
	"errors"
	"io"
	"sync"

	"price-tracker/internal/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by Initialize and Activate after Close.
var ErrClosed = errors.New("tracker: coordinator closed")

// PriceFetcher loads the current quote for the header.
type PriceFetcher interface {
	FetchCurrentPrice(ctx context.Context) (domain.PriceSummary, error)
}

// SeriesFetcher loads the chart history for one interval.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, iv domain.Interval) (domain.Series, error)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithStateListener registers fn to observe every state transition.
// fn runs with the coordinator lock held and must not call back into it.
func WithStateListener(fn func(State)) Option {
	return func(c *Coordinator) { c.listener = fn }
}

// WithLogger sets the logger; nil keeps the default discard logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l.WithPrefix("tracker")
		}
	}
}

// WithCache makes the coordinator use an existing cache.
func WithCache(cache *SeriesCache) Option {
	return func(c *Coordinator) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// Coordinator switches the chart between intervals, fetching each series
// at most once per session and at most once concurrently.
type Coordinator struct {
	tracer   trace.Tracer
	prices   PriceFetcher
	series   SeriesFetcher
	surface  ChartSurface
	cache    *SeriesCache
	logger   *log.Logger
	listener func(State)

	inflight singleflight.Group
	session  context.Context
	cancel   context.CancelFunc

	mu          sync.Mutex
	active      domain.Interval
	state       State
	summary     *domain.PriceSummary
	priceErr    string
	seriesErr   string
	initialized bool
	closed      bool
}

// NewCoordinator returns a coordinator with an empty cache and the default
// interval active. A nil surface discards render calls.
func NewCoordinator(
	tracer trace.Tracer,
	prices PriceFetcher,
	series SeriesFetcher,
	surface ChartSurface,
	opts ...Option,
) *Coordinator {
	if surface == nil {
		surface = nopSurface{}
	}
	session, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		tracer:  tracer,
		prices:  prices,
		series:  series,
		surface: surface,
		cache:   NewSeriesCache(),
		logger:  log.New(io.Discard),
		session: session,
		cancel:  cancel,
		active:  domain.DefaultInterval,
		state:   State{Phase: PhaseUninitialized},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize fetches the quote and the default interval concurrently.
// Only the first call does anything. A quote failure only sets the last error.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, "tracker.initialize")
	defer span.End()

	var g errgroup.Group
	g.Go(func() error {
		c.RefreshPrice(ctx)
		return nil
	})
	g.Go(func() error {
		return c.activate(ctx, domain.DefaultInterval, true)
	})
	return g.Wait()
}

// RefreshPrice fetches the quote and stores either the summary or the price error.
func (c *Coordinator) RefreshPrice(ctx context.Context) {
	fetchCtx, span := c.tracer.Start(c.session, "tracker.refresh-price",
		trace.WithLinks(trace.LinkFromContext(ctx)))
	defer span.End()

	summary, err := c.prices.FetchCurrentPrice(fetchCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if err != nil {
		span.RecordError(err)
		c.priceErr = domain.UserMessage(&domain.PriceFetchError{Err: err})
		c.logger.Warn("price unavailable", "err", err)
		return
	}
	c.summary = &summary
	c.priceErr = ""
}

// Activate makes iv the visible interval. A cached series renders before
// Activate returns without entering PhaseLoading. Otherwise the series is
// fetched, joining a fetch already in flight for iv. Fetch failures are
// recorded as the last error and never returned.
func (c *Coordinator) Activate(ctx context.Context, iv domain.Interval) error {
	return c.activate(ctx, iv, false)
}

func (c *Coordinator) activate(ctx context.Context, iv domain.Interval, initial bool) error {
	if _, err := domain.DaysFor(iv); err != nil {
		return err
	}

	ctx, span := c.tracer.Start(ctx, "tracker.activate")
	defer span.End()
	span.SetAttributes(
		attribute.String("interval", iv.String()),
		attribute.Bool("initial", initial),
	)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.active = iv
	if s, ok := c.cache.Get(iv); ok {
		c.renderLocked(s)
		c.seriesErr = ""
		c.setStateLocked(State{Phase: PhaseReady, Interval: iv})
		c.mu.Unlock()
		span.SetAttributes(attribute.Bool("cache_hit", true))
		c.logger.Debug("cache hit", "interval", iv)
		return nil
	}
	c.setStateLocked(State{Phase: PhaseLoading, Interval: iv})
	c.mu.Unlock()

	span.SetAttributes(attribute.Bool("cache_hit", false))
	link := trace.LinkFromContext(ctx)
	ch := c.inflight.DoChan(iv.String(), func() (interface{}, error) {
		return c.load(iv, initial, link)
	})

	select {
	case res := <-ch:
		span.SetAttributes(attribute.Bool("shared", res.Shared))
		return nil
	case <-ctx.Done():
		// The fetch keeps running and still populates the cache.
		return ctx.Err()
	}
}

// load runs once per in-flight interval. It always caches a successful
// result but only touches the chart and state if iv is still active.
func (c *Coordinator) load(iv domain.Interval, initial bool, link trace.Link) (domain.Series, error) {
	ctx, span := c.tracer.Start(c.session, "tracker.load-series", trace.WithLinks(link))
	defer span.End()
	span.SetAttributes(attribute.String("interval", iv.String()))

	// A previous flight for iv may have finished after activate missed the cache.
	c.mu.Lock()
	if s, ok := c.cache.Get(iv); ok {
		if !c.closed && c.active == iv {
			c.renderLocked(s)
			c.seriesErr = ""
			c.setStateLocked(State{Phase: PhaseReady, Interval: iv})
		}
		c.mu.Unlock()
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return s, nil
	}
	c.mu.Unlock()

	c.logger.Info("fetching series", "interval", iv, "initial", initial)
	series, err := c.series.FetchSeries(ctx, iv)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		if c.closed || c.active != iv {
			c.logger.Warn("series fetch failed after switching away", "interval", iv, "err", err)
			return domain.Series{}, err
		}
		msg := (&domain.SeriesFetchError{Interval: iv, Initial: initial, Err: err}).UserMessage()
		c.seriesErr = msg
		c.setStateLocked(State{Phase: PhaseError, Interval: iv, Message: msg})
		c.logger.Error("series fetch failed", "interval", iv, "err", err)
		return domain.Series{}, err
	}

	if c.closed {
		return series, nil
	}
	c.cache.Put(iv, series)
	if c.active != iv {
		c.logger.Info("cached series for inactive interval", "interval", iv, "points", series.Len())
		return series, nil
	}
	c.renderLocked(series)
	c.seriesErr = ""
	c.setStateLocked(State{Phase: PhaseReady, Interval: iv})
	c.logger.Info("series ready", "interval", iv, "points", series.Len())
	return series, nil
}

func (c *Coordinator) renderLocked(s domain.Series) {
	payload := s.Payload()
	c.surface.SetPriceData(payload.Price)
	c.surface.SetVolumeData(payload.Volume)
}

func (c *Coordinator) setStateLocked(s State) {
	c.state = s
	if c.listener != nil {
		c.listener(s)
	}
}

// State returns a snapshot of the active interval, last error and phase.
func (c *Coordinator) State() TrackerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TrackerState{
		ActiveInterval: c.active,
		LastError:      c.lastErrorLocked(),
		State:          c.state,
	}
}

// LastError returns the most relevant user-facing error, series first.
func (c *Coordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErrorLocked()
}

func (c *Coordinator) lastErrorLocked() string {
	if c.seriesErr != "" {
		return c.seriesErr
	}
	return c.priceErr
}

// Summary returns the quote once it has been fetched.
func (c *Coordinator) Summary() (domain.PriceSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return domain.PriceSummary{}, false
	}
	return *c.summary, true
}

// Cached reports whether iv has a series in the cache.
func (c *Coordinator) Cached(iv domain.Interval) bool {
	_, ok := c.cache.Get(iv)
	return ok
}

// Close ends the session. In-flight fetches are cancelled and their results dropped.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}
