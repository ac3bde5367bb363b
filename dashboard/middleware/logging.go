package middleware

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/profiles"
	"github.com/absmach/greenboard/session"
)

var _ dashboard.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    dashboard.Service
}

func Logging(logger *slog.Logger, svc dashboard.Service) dashboard.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Snapshot(ctx context.Context) (resp dashboard.Snapshot, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("mode", string(resp.Mode)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get snapshot failed", args...)

			return
		}
		lm.logger.Debug("Get snapshot completed successfully", args...)
	}(time.Now())

	return lm.svc.Snapshot(ctx)
}

func (lm *loggingMiddleware) RefreshSnapshot(ctx context.Context) (resp dashboard.Snapshot, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("mode", string(resp.Mode)),
		}
		if resp.Notice != "" {
			args = append(args, slog.String("notice", resp.Notice))
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Refresh snapshot failed", args...)

			return
		}
		lm.logger.Info("Refresh snapshot completed successfully", args...)
	}(time.Now())

	return lm.svc.RefreshSnapshot(ctx)
}

func (lm *loggingMiddleware) EvaluateSession(ctx context.Context, viewID string, entry *url.URL) (resp session.Evaluation, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("view_id", viewID),
				slog.String("state", resp.Session.Kind().String()),
				slog.String("source", string(resp.Source)),
				slog.Bool("trusted", resp.Trusted),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Evaluate session failed", args...)

			return
		}
		lm.logger.Info("Evaluate session completed successfully", args...)
	}(time.Now())

	return lm.svc.EvaluateSession(ctx, viewID, entry)
}

func (lm *loggingMiddleware) SessionStatus(ctx context.Context, viewID string) (resp dashboard.SessionStatus, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("view_id", viewID),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get session status failed", args...)

			return
		}
		lm.logger.Debug("Get session status completed successfully", args...)
	}(time.Now())

	return lm.svc.SessionStatus(ctx, viewID)
}

func (lm *loggingMiddleware) Logout(ctx context.Context, viewID string) (resp dashboard.SessionStatus, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("view_id", viewID),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Logout failed", args...)

			return
		}
		lm.logger.Info("Logout completed successfully", args...)
	}(time.Now())

	return lm.svc.Logout(ctx, viewID)
}

func (lm *loggingMiddleware) ListUsers(ctx context.Context) (resp []profiles.Profile, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("count", len(resp)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List users failed", args...)

			return
		}
		lm.logger.Info("List users completed successfully", args...)
	}(time.Now())

	return lm.svc.ListUsers(ctx)
}

func (lm *loggingMiddleware) GetUser(ctx context.Context, externalID string) (resp profiles.Profile, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("user",
				slog.String("auth0_id", externalID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get user failed", args...)

			return
		}
		lm.logger.Info("Get user completed successfully", args...)
	}(time.Now())

	return lm.svc.GetUser(ctx, externalID)
}

func (lm *loggingMiddleware) UpsertUser(ctx context.Context, p profiles.Profile) (resp profiles.Profile, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("user",
				slog.String("auth0_id", p.ExternalID),
				slog.String("id", resp.ID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Upsert user failed", args...)

			return
		}
		lm.logger.Info("Upsert user completed successfully", args...)
	}(time.Now())

	return lm.svc.UpsertUser(ctx, p)
}

func (lm *loggingMiddleware) UserStats(ctx context.Context) (resp profiles.Stats, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("total_users", resp.TotalUsers),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get user stats failed", args...)

			return
		}
		lm.logger.Info("Get user stats completed successfully", args...)
	}(time.Now())

	return lm.svc.UserStats(ctx)
}

func (lm *loggingMiddleware) DatabaseStatus(ctx context.Context) (resp dashboard.Platform, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Bool("connected", resp.Connected),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get database status failed", args...)

			return
		}
		lm.logger.Info("Get database status completed successfully", args...)
	}(time.Now())

	return lm.svc.DatabaseStatus(ctx)
}

func (lm *loggingMiddleware) Start(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Start dashboard failed", args...)

			return
		}
		lm.logger.Info("Start dashboard completed successfully", args...)
	}(time.Now())

	return lm.svc.Start(ctx)
}

func (lm *loggingMiddleware) Shutdown(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Shutdown dashboard failed", args...)

			return
		}
		lm.logger.Info("Shutdown dashboard completed successfully", args...)
	}(time.Now())

	return lm.svc.Shutdown(ctx)
}
