// Package poller periodically pulls live dashboard metrics and tracks the
// loading, error and staleness state around them.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/absmach/greenboard/pkg/stats"
	"k8s.io/utils/clock"
)

// Fetcher retrieves one live metrics payload.
type Fetcher interface {
	Fetch(ctx context.Context) (stats.Payload, error)
}

// State is what the dashboard renders from. Payload stays set after a failed
// fetch so that stale but valid data is preferred over simulation.
type State struct {
	Payload     *stats.Payload `json:"payload,omitempty"`
	Loading     bool           `json:"loading"`
	Err         string         `json:"error,omitempty"`
	LastUpdated time.Time      `json:"last_updated,omitempty"`
}

type Coordinator struct {
	fetcher    Fetcher
	clk        clock.WithTicker
	logger     *slog.Logger
	staleAfter time.Duration
	onChange   []func(State)

	mu       sync.Mutex
	state    State
	seq      uint64
	applied  uint64
	inFlight int
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// notifyMu serializes observer calls so Stop can wait for one in progress.
	notifyMu sync.Mutex
}

type Option func(*Coordinator)

// WithStaleAfter drops the held payload when a fetch fails and the last
// success is older than d. Zero keeps the payload forever.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Coordinator) {
		c.staleAfter = d
	}
}

// WithOnChange registers fn to be called after every state change.
func WithOnChange(fn func(State)) Option {
	return func(c *Coordinator) {
		c.onChange = append(c.onChange, fn)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func NewCoordinator(fetcher Fetcher, clk clock.WithTicker, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher: fetcher,
		clk:     clk,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start issues a fetch immediately and then one per interval. Ticks that fire
// while a previous fetch is still running are dropped. Start is a no-op when
// disabled, already started or stopped.
func (c *Coordinator) Start(ctx context.Context, interval time.Duration, enabled bool) {
	if !enabled || interval <= 0 {
		return
	}

	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()

		return
	}
	c.started = true
	ctx, c.cancel = context.WithCancel(ctx)
	ticker := c.clk.NewTicker(interval)
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Info("live metrics polling started", slog.Duration("interval", interval))

	go func() {
		defer c.wg.Done()
		defer ticker.Stop()

		c.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				c.poll(ctx)
			}
		}
	}()
}

// Refresh fetches out of band and returns the resulting state.
func (c *Coordinator) Refresh(ctx context.Context) State {
	seq, ok := c.begin(false)
	if ok {
		c.finish(ctx, seq)
	}

	return c.State()
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Stop cancels scheduling and any outstanding fetch, then waits for the poll
// loop and any running observer to return. No state changes are made or
// observed after Stop returns.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()

		return
	}
	c.stopped = true
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.notifyMu.Lock()
	c.notifyMu.Unlock()
	c.wg.Wait()
	c.logger.Info("live metrics polling stopped")
}

func (c *Coordinator) poll(ctx context.Context) {
	seq, ok := c.begin(true)
	if !ok {
		return
	}
	c.finish(ctx, seq)
}

// begin reserves a sequence number and marks the state as loading.
func (c *Coordinator) begin(skipIfBusy bool) (uint64, bool) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()

		return 0, false
	}
	if skipIfBusy && c.inFlight > 0 {
		c.mu.Unlock()
		c.logger.Debug("skipping poll tick, previous fetch still in flight")

		return 0, false
	}
	c.inFlight++
	c.seq++
	seq := c.seq
	c.state.Loading = true
	st := c.state
	c.mu.Unlock()

	c.notify(st)

	return seq, true
}

func (c *Coordinator) finish(ctx context.Context, seq uint64) {
	payload, err := c.fetcher.Fetch(ctx)

	c.mu.Lock()
	c.inFlight--
	if c.stopped {
		c.mu.Unlock()

		return
	}
	c.state.Loading = c.inFlight > 0
	if seq < c.applied {
		st := c.state
		c.mu.Unlock()
		c.notify(st)

		return
	}
	c.applied = seq

	now := c.clk.Now()
	if err == nil {
		c.state.Payload = &payload
		c.state.Err = ""
		c.state.LastUpdated = now
	} else {
		c.state.Err = err.Error()
		if c.state.Payload != nil && c.staleAfter > 0 && now.Sub(c.state.LastUpdated) > c.staleAfter {
			c.state.Payload = nil
			c.logger.Warn("live payload expired", slog.Duration("stale_after", c.staleAfter))
		}
	}
	st := c.state
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("live metrics fetch failed", slog.Any("error", err))
	}
	c.notify(st)
}

func (c *Coordinator) notify(st State) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		return
	}
	for _, fn := range c.onChange {
		fn(st)
	}
}
