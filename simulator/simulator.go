// Package simulator keeps fallback dashboard metrics moving while no live
// metrics source is reachable.
package simulator

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/absmach/greenboard/pkg/stats"
	"k8s.io/utils/clock"
)

const (
	DefLivePeriod   = 5 * time.Second
	DefSystemPeriod = 3 * time.Second
)

// Rand is the subset of *rand.Rand the simulator draws from.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type Simulator struct {
	mu      sync.Mutex
	clk     clock.WithTicker
	rng     Rand
	logger  *slog.Logger
	live    stats.LiveStats
	system  stats.SystemMetrics
	sustain stats.Sustainability

	livePeriod   time.Duration
	systemPeriod time.Duration

	run *run
}

// run tracks the goroutines of one Start/Stop cycle.
type run struct {
	stop chan struct{}
	wg   sync.WaitGroup
}

type Option func(*Simulator)

func WithPeriods(live, system time.Duration) Option {
	return func(s *Simulator) {
		if live > 0 {
			s.livePeriod = live
		}
		if system > 0 {
			s.systemPeriod = system
		}
	}
}

func WithRand(r Rand) Option {
	return func(s *Simulator) {
		s.rng = r
	}
}

func WithInitial(live stats.LiveStats, system stats.SystemMetrics, sustain stats.Sustainability) Option {
	return func(s *Simulator) {
		s.live = live
		s.system = system
		s.sustain = sustain
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

func New(clk clock.WithTicker, opts ...Option) *Simulator {
	s := &Simulator{
		clk:          clk,
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		logger:       slog.Default(),
		live:         stats.DefaultLiveStats(),
		system:       stats.DefaultSystemMetrics(),
		sustain:      stats.DefaultSustainability(),
		livePeriod:   DefLivePeriod,
		systemPeriod: DefSystemPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches both tick loops. It reports false when the simulator is
// already running.
func (s *Simulator) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != nil {
		return false
	}
	r := &run{stop: make(chan struct{})}
	s.run = r

	liveTicker := s.clk.NewTicker(s.livePeriod)
	systemTicker := s.clk.NewTicker(s.systemPeriod)

	r.wg.Add(2)
	go r.loop(liveTicker, s.tickLive)
	go r.loop(systemTicker, s.tickSystem)

	s.logger.Debug("fallback simulation started",
		slog.Duration("live_period", s.livePeriod),
		slog.Duration("system_period", s.systemPeriod),
	)

	return true
}

// Stop halts both loops and waits for them to exit. Values are kept so that a
// later Start resumes from where the simulation left off.
func (s *Simulator) Stop() bool {
	s.mu.Lock()
	r := s.run
	if r == nil {
		s.mu.Unlock()

		return false
	}
	s.run = nil
	close(r.stop)
	s.mu.Unlock()

	r.wg.Wait()
	s.logger.Debug("fallback simulation stopped")

	return true
}

func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.run != nil
}

func (s *Simulator) Snapshot() (stats.LiveStats, stats.SystemMetrics, stats.Sustainability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.live, s.system, s.sustain
}

func (r *run) loop(t clock.Ticker, tick func(stop <-chan struct{})) {
	defer r.wg.Done()
	defer t.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-t.C():
			tick(r.stop)
		}
	}
}

func (s *Simulator) tickLive(stop <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A tick racing with Stop must not land after Stop returned.
	if stopped(stop) {
		return
	}
	s.live = StepLive(s.live, s.rng)
}

func (s *Simulator) tickSystem(stop <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stopped(stop) {
		return
	}
	s.system = StepSystem(s.system, s.rng)
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
