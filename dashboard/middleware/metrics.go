package middleware

import (
	"context"
	"net/url"
	"time"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/profiles"
	"github.com/absmach/greenboard/session"
	"github.com/go-kit/kit/metrics"
)

var _ dashboard.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     dashboard.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc dashboard.Service) dashboard.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-snapshot").Add(1)
		mm.latency.With("method", "get-snapshot").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Snapshot(ctx)
}

func (mm *metricsMiddleware) RefreshSnapshot(ctx context.Context) (dashboard.Snapshot, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "refresh-snapshot").Add(1)
		mm.latency.With("method", "refresh-snapshot").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.RefreshSnapshot(ctx)
}

func (mm *metricsMiddleware) EvaluateSession(ctx context.Context, viewID string, entry *url.URL) (session.Evaluation, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "evaluate-session").Add(1)
		mm.latency.With("method", "evaluate-session").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.EvaluateSession(ctx, viewID, entry)
}

func (mm *metricsMiddleware) SessionStatus(ctx context.Context, viewID string) (dashboard.SessionStatus, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "session-status").Add(1)
		mm.latency.With("method", "session-status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.SessionStatus(ctx, viewID)
}

func (mm *metricsMiddleware) Logout(ctx context.Context, viewID string) (dashboard.SessionStatus, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "logout").Add(1)
		mm.latency.With("method", "logout").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Logout(ctx, viewID)
}

func (mm *metricsMiddleware) ListUsers(ctx context.Context) ([]profiles.Profile, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-users").Add(1)
		mm.latency.With("method", "list-users").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListUsers(ctx)
}

func (mm *metricsMiddleware) GetUser(ctx context.Context, externalID string) (profiles.Profile, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-user").Add(1)
		mm.latency.With("method", "get-user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.GetUser(ctx, externalID)
}

func (mm *metricsMiddleware) UpsertUser(ctx context.Context, p profiles.Profile) (profiles.Profile, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "upsert-user").Add(1)
		mm.latency.With("method", "upsert-user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.UpsertUser(ctx, p)
}

func (mm *metricsMiddleware) UserStats(ctx context.Context) (profiles.Stats, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "user-stats").Add(1)
		mm.latency.With("method", "user-stats").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.UserStats(ctx)
}

func (mm *metricsMiddleware) DatabaseStatus(ctx context.Context) (dashboard.Platform, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "database-status").Add(1)
		mm.latency.With("method", "database-status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.DatabaseStatus(ctx)
}

func (mm *metricsMiddleware) Start(ctx context.Context) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "start").Add(1)
		mm.latency.With("method", "start").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Start(ctx)
}

func (mm *metricsMiddleware) Shutdown(ctx context.Context) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "shutdown").Add(1)
		mm.latency.With("method", "shutdown").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Shutdown(ctx)
}
