package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/pkg/api"
	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const externalIDKey = "externalID"

func MakeHandler(svc dashboard.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Route("/snapshot", func(r chi.Router) {
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			snapshotEndpoint(svc),
			decodeSnapshotReq(false),
			api.EncodeResponse,
			opts...,
		), "get-snapshot").ServeHTTP)
		r.Post("/refresh", otelhttp.NewHandler(kithttp.NewServer(
			snapshotEndpoint(svc),
			decodeSnapshotReq(true),
			api.EncodeResponse,
			opts...,
		), "refresh-snapshot").ServeHTTP)
	})

	mux.Route("/session", func(r chi.Router) {
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			evaluateSessionEndpoint(svc),
			decodeEvaluateSessionReq,
			api.EncodeResponse,
			opts...,
		), "evaluate-session").ServeHTTP)
		r.Get("/status", otelhttp.NewHandler(kithttp.NewServer(
			sessionStatusEndpoint(svc),
			decodeViewReq,
			api.EncodeResponse,
			opts...,
		), "session-status").ServeHTTP)
		r.Post("/logout", otelhttp.NewHandler(kithttp.NewServer(
			logoutEndpoint(svc),
			decodeViewReq,
			api.EncodeResponse,
			opts...,
		), "logout").ServeHTTP)
	})

	mux.Route("/users", func(r chi.Router) {
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			listUsersEndpoint(svc),
			kithttp.NopRequestDecoder,
			api.EncodeResponse,
			opts...,
		), "list-users").ServeHTTP)
		r.Put("/", otelhttp.NewHandler(kithttp.NewServer(
			upsertUserEndpoint(svc),
			decodeUpsertUserReq,
			api.EncodeResponse,
			opts...,
		), "upsert-user").ServeHTTP)
		r.Get("/stats", otelhttp.NewHandler(kithttp.NewServer(
			userStatsEndpoint(svc),
			kithttp.NopRequestDecoder,
			api.EncodeResponse,
			opts...,
		), "user-stats").ServeHTTP)
		r.Get("/{"+externalIDKey+"}", otelhttp.NewHandler(kithttp.NewServer(
			getUserEndpoint(svc),
			decodeUserReq,
			api.EncodeResponse,
			opts...,
		), "get-user").ServeHTTP)
	})

	mux.Get("/database/status", otelhttp.NewHandler(kithttp.NewServer(
		databaseStatusEndpoint(svc),
		kithttp.NopRequestDecoder,
		api.EncodeResponse,
		opts...,
	), "database-status").ServeHTTP)

	mux.Get("/health", supermq.Health("greenboard", instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeSnapshotReq(refresh bool) kithttp.DecodeRequestFunc {
	return func(_ context.Context, _ *http.Request) (any, error) {
		return snapshotReq{refresh: refresh}, nil
	}
}

// decodeEvaluateSessionReq issues a view id to requests that carry none.
// The entry address comes from the entry query parameter, or the request
// itself when absent.
func decodeEvaluateSessionReq(_ context.Context, r *http.Request) (any, error) {
	req := evaluateSessionReq{
		viewID: viewID(r),
		entry:  r.URL,
	}
	if req.viewID == "" {
		req.viewID = uuid.NewString()
		req.issued = true
	}

	if raw := r.URL.Query().Get(api.EntryKey); raw != "" {
		entry, err := url.Parse(raw)
		if err != nil {
			return nil, errors.Join(apiutil.ErrValidation, err)
		}
		req.entry = entry
	}

	return req, nil
}

func decodeViewReq(_ context.Context, r *http.Request) (any, error) {
	return viewReq{viewID: viewID(r)}, nil
}

func decodeUserReq(_ context.Context, r *http.Request) (any, error) {
	id, err := url.PathUnescape(chi.URLParam(r, externalIDKey))
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	return userReq{externalID: id}, nil
}

func decodeUpsertUserReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req upsertUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

func viewID(r *http.Request) string {
	if c, err := r.Cookie(api.ViewCookie); err == nil && c.Value != "" {
		return c.Value
	}

	return r.Header.Get(api.ViewHeader)
}
