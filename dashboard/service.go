package dashboard

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	pkgcron "github.com/absmach/greenboard/pkg/cron"
	"github.com/absmach/greenboard/pkg/errors"
	"github.com/absmach/greenboard/pkg/mqtt"
	"github.com/absmach/greenboard/pkg/stats"
	"github.com/absmach/greenboard/pkg/storage"
	"github.com/absmach/greenboard/poller"
	"github.com/absmach/greenboard/profiles"
	"github.com/absmach/greenboard/session"
	"github.com/robfig/cron/v3"
	"k8s.io/utils/clock"
)

const evictSchedule = "@every 1h"

var _ Service = (*service)(nil)

type service struct {
	cfg         Config
	coordinator *poller.Coordinator
	simulator   Simulator
	profiles    *profiles.Client
	views       *views
	publisher   mqtt.PubSub
	topic       string
	clk         clock.WithTickerAndDelayedExecution
	logger      *slog.Logger
	cron        *cron.Cron
	schedule    pkgcron.Schedule

	mu       sync.RWMutex
	platform Platform
	stopped  bool

	// sourceMu orders simulator start/stop decisions.
	sourceMu sync.Mutex
}

// Simulator produces fallback metrics while no live payload is held.
type Simulator interface {
	Start() bool
	Stop() bool
	Snapshot() (stats.LiveStats, stats.SystemMetrics, stats.Sustainability)
}

// NewService wires the dashboard. publisher may be nil, in which case
// snapshots are not published.
func NewService(cfg Config, fetcher poller.Fetcher, sim Simulator, client *profiles.Client, kv storage.Storage, publisher mqtt.PubSub, topic string, clk clock.WithTickerAndDelayedExecution, logger *slog.Logger) Service {
	svc := &service{
		cfg:       cfg,
		simulator: sim,
		profiles:  client,
		publisher: publisher,
		topic:     topic,
		clk:       clk,
		logger:    logger,
		cron:      cron.New(cron.WithLogger(cronLogger{logger})),
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithProfileSyncer(client),
	}
	if cfg.SignInURL != "" {
		opts = append(opts, session.WithSignInURL(cfg.SignInURL))
	}
	if cfg.RedirectDelay > 0 {
		opts = append(opts, session.WithRedirectDelay(cfg.RedirectDelay))
	}
	svc.views = newViews(kv, clk, opts...)

	svc.coordinator = poller.NewCoordinator(fetcher, clk,
		poller.WithStaleAfter(cfg.StaleAfter),
		poller.WithLogger(logger),
		poller.WithOnChange(svc.handleState),
	)

	return svc
}

func (svc *service) Start(ctx context.Context) error {
	sched, err := pkgcron.Parse(svc.cfg.StatusSchedule)
	if err != nil {
		return err
	}
	svc.schedule = sched

	svc.simulator.Start()

	if _, err := svc.cron.AddFunc(sched.String(), func() {
		svc.refreshPlatform(context.Background())
	}); err != nil {
		return err
	}
	if svc.cfg.ViewIdleTimeout > 0 {
		if _, err := svc.cron.AddFunc(evictSchedule, func() {
			if n := svc.views.evict(svc.cfg.ViewIdleTimeout); n > 0 {
				svc.logger.Info("evicted idle views", slog.Int("count", n))
			}
		}); err != nil {
			return err
		}
	}

	svc.refreshPlatform(ctx)
	svc.cron.Start()
	svc.coordinator.Start(ctx, svc.cfg.PollInterval, svc.cfg.PollEnabled)

	return nil
}

func (svc *service) Shutdown(ctx context.Context) error {
	svc.mu.Lock()
	if svc.stopped {
		svc.mu.Unlock()

		return nil
	}
	svc.stopped = true
	svc.mu.Unlock()

	svc.coordinator.Stop()
	svc.sourceMu.Lock()
	svc.simulator.Stop()
	svc.sourceMu.Unlock()
	svc.views.close()

	select {
	case <-svc.cron.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if svc.publisher != nil {
		return svc.publisher.Disconnect(ctx)
	}

	return nil
}

func (svc *service) Snapshot(_ context.Context) (Snapshot, error) {
	return svc.snapshot(svc.coordinator.State()), nil
}

func (svc *service) RefreshSnapshot(ctx context.Context) (Snapshot, error) {
	if svc.isStopped() {
		return Snapshot{}, errors.ErrStopped
	}

	return svc.snapshot(svc.coordinator.Refresh(ctx)), nil
}

func (svc *service) EvaluateSession(ctx context.Context, viewID string, entry *url.URL) (session.Evaluation, error) {
	if viewID == "" {
		return session.Evaluation{}, errors.ErrEmptyKey
	}

	return svc.views.get(viewID).store.Evaluate(ctx, entry), nil
}

func (svc *service) SessionStatus(_ context.Context, viewID string) (SessionStatus, error) {
	if viewID == "" {
		return SessionStatus{}, errors.ErrEmptyKey
	}

	v, ok := svc.views.lookup(viewID)
	if !ok {
		return SessionStatus{}, nil
	}

	return svc.status(v), nil
}

func (svc *service) Logout(ctx context.Context, viewID string) (SessionStatus, error) {
	if viewID == "" {
		return SessionStatus{}, errors.ErrEmptyKey
	}
	v, ok := svc.views.lookup(viewID)
	if !ok {
		if err := svc.views.forget(ctx, viewID); err != nil {
			svc.logger.Warn("failed to clear persisted session", slog.String("view_id", viewID), slog.Any("error", err))
		}

		return SessionStatus{Session: session.NewUnauthenticated(), Navigate: svc.signInURL()}, nil
	}
	v.store.Logout(ctx)

	return svc.status(v), nil
}

func (svc *service) ListUsers(ctx context.Context) ([]profiles.Profile, error) {
	return svc.profiles.ListAll(ctx), nil
}

func (svc *service) GetUser(ctx context.Context, externalID string) (profiles.Profile, error) {
	if externalID == "" {
		return profiles.Profile{}, errors.ErrEmptyKey
	}
	p, ok := svc.profiles.LoadByExternalID(ctx, externalID)
	if !ok {
		return profiles.Profile{}, errors.ErrNotFound
	}

	return p, nil
}

func (svc *service) UpsertUser(ctx context.Context, p profiles.Profile) (profiles.Profile, error) {
	saved, ok := svc.profiles.Upsert(ctx, p)
	if !ok {
		return profiles.Profile{}, errors.ErrUnavailable
	}

	return saved, nil
}

func (svc *service) UserStats(ctx context.Context) (profiles.Stats, error) {
	st := svc.profiles.AggregateStats(ctx)

	svc.mu.Lock()
	svc.platform.Users = st
	svc.mu.Unlock()

	return st, nil
}

func (svc *service) DatabaseStatus(ctx context.Context) (Platform, error) {
	return svc.refreshPlatform(ctx), nil
}

func (svc *service) refreshPlatform(ctx context.Context) Platform {
	connected := svc.profiles.TestConnectivity(ctx)
	users := svc.profiles.AggregateStats(ctx)
	now := svc.clk.Now()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.platform = Platform{
		Connected: connected,
		Users:     users,
		CheckedAt: &now,
	}
	if next := svc.schedule.Next(now); !next.IsZero() {
		svc.platform.NextCheckAt = &next
	}

	return svc.platform
}

// handleState keeps exactly one metrics source authoritative: the
// simulator runs only while no live payload is held. Observers may be
// notified out of order, so the decision uses the current state.
func (svc *service) handleState(poller.State) {
	svc.sourceMu.Lock()
	if svc.isStopped() {
		svc.sourceMu.Unlock()

		return
	}
	st := svc.coordinator.State()
	if st.Payload != nil {
		svc.simulator.Stop()
	} else {
		svc.simulator.Start()
	}
	svc.sourceMu.Unlock()

	if svc.publisher == nil {
		return
	}
	if err := svc.publisher.Publish(context.Background(), svc.topic, svc.snapshot(st)); err != nil {
		svc.logger.Warn("failed to publish snapshot", slog.String("topic", svc.topic), slog.Any("error", err))
	}
}

func (svc *service) snapshot(st poller.State) Snapshot {
	snap := Snapshot{
		Loading:         st.Loading,
		Notice:          st.Err,
		ComparisonStats: stats.DefaultComparisonStats(),
	}
	if !st.LastUpdated.IsZero() {
		lu := st.LastUpdated
		snap.LastUpdated = &lu
	}

	if p := st.Payload; p != nil {
		snap.Mode = ModeLive
		snap.LiveStats = p.LiveStats
		snap.SystemMetrics = p.SystemMetrics
		snap.Sustainability = p.Sustainability
		if p.ComparisonStats != nil {
			snap.ComparisonStats = *p.ComparisonStats
		}
	} else {
		snap.Mode = ModeFallback
		snap.LiveStats, snap.SystemMetrics, snap.Sustainability = svc.simulator.Snapshot()
	}
	snap.Health = HealthOf(snap.LiveStats)

	svc.mu.RLock()
	snap.Platform = svc.platform
	svc.mu.RUnlock()

	return snap
}

func (svc *service) status(v *view) SessionStatus {
	st := SessionStatus{
		Session:     v.store.Session(),
		Redirecting: v.store.Redirecting(),
		Navigate:    v.nav.take(),
	}
	if id, ok := st.Session.Identity(); ok && id.ExternalID != "" {
		if p, ok := svc.profiles.Cached(id.ExternalID); ok {
			st.Profile = &p
		}
	}

	return st
}

func (svc *service) signInURL() string {
	if svc.cfg.SignInURL == "" {
		return session.DefSignInURL
	}

	return svc.cfg.SignInURL
}

func (svc *service) isStopped() bool {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	return svc.stopped
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
