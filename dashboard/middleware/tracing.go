package middleware

import (
	"context"
	"net/url"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/profiles"
	"github.com/absmach/greenboard/session"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ dashboard.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    dashboard.Service
}

func Tracing(tracer trace.Tracer, svc dashboard.Service) dashboard.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	ctx, span := tm.tracer.Start(ctx, "get-snapshot")
	defer span.End()

	return tm.svc.Snapshot(ctx)
}

func (tm *tracing) RefreshSnapshot(ctx context.Context) (dashboard.Snapshot, error) {
	ctx, span := tm.tracer.Start(ctx, "refresh-snapshot")
	defer span.End()

	return tm.svc.RefreshSnapshot(ctx)
}

func (tm *tracing) EvaluateSession(ctx context.Context, viewID string, entry *url.URL) (session.Evaluation, error) {
	attrs := []attribute.KeyValue{attribute.String("view_id", viewID)}
	if entry != nil {
		attrs = append(attrs, attribute.String("path", entry.Path))
	}
	ctx, span := tm.tracer.Start(ctx, "evaluate-session", trace.WithAttributes(attrs...))
	defer span.End()

	return tm.svc.EvaluateSession(ctx, viewID, entry)
}

func (tm *tracing) SessionStatus(ctx context.Context, viewID string) (dashboard.SessionStatus, error) {
	ctx, span := tm.tracer.Start(ctx, "session-status", trace.WithAttributes(
		attribute.String("view_id", viewID),
	))
	defer span.End()

	return tm.svc.SessionStatus(ctx, viewID)
}

func (tm *tracing) Logout(ctx context.Context, viewID string) (dashboard.SessionStatus, error) {
	ctx, span := tm.tracer.Start(ctx, "logout", trace.WithAttributes(
		attribute.String("view_id", viewID),
	))
	defer span.End()

	return tm.svc.Logout(ctx, viewID)
}

func (tm *tracing) ListUsers(ctx context.Context) ([]profiles.Profile, error) {
	ctx, span := tm.tracer.Start(ctx, "list-users")
	defer span.End()

	return tm.svc.ListUsers(ctx)
}

func (tm *tracing) GetUser(ctx context.Context, externalID string) (profiles.Profile, error) {
	ctx, span := tm.tracer.Start(ctx, "get-user", trace.WithAttributes(
		attribute.String("auth0_id", externalID),
	))
	defer span.End()

	return tm.svc.GetUser(ctx, externalID)
}

func (tm *tracing) UpsertUser(ctx context.Context, p profiles.Profile) (profiles.Profile, error) {
	ctx, span := tm.tracer.Start(ctx, "upsert-user", trace.WithAttributes(
		attribute.String("auth0_id", p.ExternalID),
		attribute.String("email", p.Email),
	))
	defer span.End()

	return tm.svc.UpsertUser(ctx, p)
}

func (tm *tracing) UserStats(ctx context.Context) (profiles.Stats, error) {
	ctx, span := tm.tracer.Start(ctx, "user-stats")
	defer span.End()

	return tm.svc.UserStats(ctx)
}

func (tm *tracing) DatabaseStatus(ctx context.Context) (dashboard.Platform, error) {
	ctx, span := tm.tracer.Start(ctx, "database-status")
	defer span.End()

	return tm.svc.DatabaseStatus(ctx)
}

func (tm *tracing) Start(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "start")
	defer span.End()

	return tm.svc.Start(ctx)
}

func (tm *tracing) Shutdown(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "shutdown")
	defer span.End()

	return tm.svc.Shutdown(ctx)
}
