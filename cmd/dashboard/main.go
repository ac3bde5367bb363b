package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/dashboard/api"
	"github.com/absmach/greenboard/dashboard/middleware"
	"github.com/absmach/greenboard/pkg/mqtt"
	"github.com/absmach/greenboard/pkg/storage"
	"github.com/absmach/greenboard/pkg/storage/postgres"
	"github.com/absmach/greenboard/pkg/storage/sqlite"
	"github.com/absmach/greenboard/poller"
	"github.com/absmach/greenboard/profiles"
	"github.com/absmach/greenboard/simulator"
	"github.com/absmach/supermq/pkg/jaeger"
	"github.com/absmach/supermq/pkg/prometheus"
	"github.com/absmach/supermq/pkg/server"
	httpserver "github.com/absmach/supermq/pkg/server/http"
	"github.com/caarlos0/env/v11"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
)

const (
	svcName      = "greenboard"
	defHTTPPort  = "9090"
	envPrefix    = "GREENBOARD_"
	pathEnv      = ".env"
	shutdownWait = 10 * time.Second
)

type envConfig struct {
	LogLevel        string  `env:"GREENBOARD_LOG_LEVEL"        envDefault:"info"`
	InstanceID      string  `env:"GREENBOARD_INSTANCE_ID"`
	ProfilesBackend string  `env:"GREENBOARD_PROFILES_BACKEND" envDefault:"memory"`
	SQLitePath      string  `env:"GREENBOARD_SQLITE_PATH"      envDefault:"./data/greenboard.db"`
	OTELURL         url.URL `env:"GREENBOARD_OTEL_URL"`
	TraceRatio      float64 `env:"GREENBOARD_TRACE_RATIO"      envDefault:"0"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := jaeger.NewProvider(ctx, svcName, cfg.OTELURL, cfg.InstanceID, cfg.TraceRatio)
		if err != nil {
			logger.Error("failed to initialize opentelemetry", slog.String("error", err.Error()))

			return
		}
		defer func() {
			if err := sdktp.Shutdown(ctx); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	dashCfg := dashboard.Config{}
	if err := env.ParseWithOptions(&dashCfg, env.Options{Prefix: envPrefix}); err != nil {
		logger.Error("failed to load dashboard configuration", slog.String("error", err.Error()))

		return
	}

	storeCfg := storage.Config{}
	if err := env.ParseWithOptions(&storeCfg, env.Options{Prefix: envPrefix + "SESSION_STORE_"}); err != nil {
		logger.Error("failed to load session store configuration", slog.String("error", err.Error()))

		return
	}
	kv, kvCloser, err := storage.New(storeCfg)
	if err != nil {
		logger.Error("failed to initialize session store", slog.String("type", storeCfg.Type), slog.String("error", err.Error()))

		return
	}
	if kvCloser != nil {
		defer closeQuietly(logger, "session store", kvCloser)
	}

	repo, repoCloser, err := newProfilesRepository(cfg)
	if err != nil {
		logger.Error("failed to initialize profiles repository", slog.String("backend", cfg.ProfilesBackend), slog.String("error", err.Error()))

		return
	}
	if repoCloser != nil {
		defer closeQuietly(logger, "profiles repository", repoCloser)
	}
	degraded := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: svcName,
		Subsystem: "profiles",
		Name:      "degraded_total",
		Help:      "Profile operations that fell back to a neutral result.",
	}, []string{"operation"})
	profilesClient := profiles.NewClient(repo, logger, degraded, clock.RealClock{})

	liveCfg := poller.HTTPConfig{}
	if err := env.ParseWithOptions(&liveCfg, env.Options{Prefix: envPrefix + "LIVE_"}); err != nil {
		logger.Error("failed to load live metrics configuration", slog.String("error", err.Error()))

		return
	}
	fetcher := poller.NewHTTPFetcher(liveCfg)

	sim := simulator.New(clock.RealClock{}, simulator.WithLogger(logger))

	publisher, topic, err := newPublisher(logger)
	if err != nil {
		logger.Error("failed to initialize mqtt pubsub", slog.String("error", err.Error()))

		return
	}

	svc := dashboard.NewService(dashCfg, fetcher, sim, profilesClient, kv, publisher, topic, clock.RealClock{}, logger)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	if err := svc.Start(ctx); err != nil {
		logger.Error("failed to start dashboard", slog.String("error", err.Error()))

		return
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownWait)
		defer scancel()
		if err := svc.Shutdown(sctx); err != nil {
			logger.Error("failed to shut down dashboard", slog.Any("error", err))
		}
	}()

	httpServerConfig := server.Config{Port: defHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefix + "HTTP_"}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err.Error()))

		return
	}

	hs := httpserver.NewServer(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}
}

func newProfilesRepository(cfg envConfig) (profiles.Repository, io.Closer, error) {
	switch cfg.ProfilesBackend {
	case "memory":
		return profiles.NewMemoryRepository(), nil, nil
	case "postgres":
		dbCfg := postgres.Config{}
		if err := env.ParseWithOptions(&dbCfg, env.Options{Prefix: envPrefix + "DB_"}); err != nil {
			return nil, nil, err
		}
		db, err := postgres.NewDatabase(dbCfg)
		if err != nil {
			return nil, nil, err
		}

		return profiles.NewSQLRepository(db.DB), db, nil
	case "sqlite":
		db, err := sqlite.NewDatabase(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		return profiles.NewSQLRepository(db.DB), db, nil
	case "postgrest":
		restCfg := profiles.PostgRESTConfig{}
		if err := env.ParseWithOptions(&restCfg, env.Options{Prefix: envPrefix + "POSTGREST_"}); err != nil {
			return nil, nil, err
		}

		return profiles.NewPostgRESTRepository(restCfg), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown profiles backend %q", cfg.ProfilesBackend)
	}
}

// newPublisher returns a nil publisher when no broker is configured.
func newPublisher(logger *slog.Logger) (mqtt.PubSub, string, error) {
	mqttCfg := mqtt.Config{}
	if err := env.ParseWithOptions(&mqttCfg, env.Options{Prefix: envPrefix + "MQTT_"}); err != nil {
		return nil, "", err
	}
	if mqttCfg.URL == "" {
		return nil, "", nil
	}

	ps, err := mqtt.NewPubSub(mqttCfg, logger)
	if err != nil {
		return nil, "", err
	}

	return ps, mqtt.SnapshotTopic(mqttCfg.DomainID, mqttCfg.ChannelID), nil
}

func closeQuietly(logger *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close "+name, slog.Any("error", err))
	}
}
