package poller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/absmach/greenboard/pkg/stats"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defTimeout = 10 * time.Second

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrUnreachable      = errors.New("live metrics source unreachable")
)

var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher reads the live metrics endpoint. Retries are left to the
// polling interval.
type HTTPFetcher struct {
	client *resty.Client
	url    string
}

type HTTPConfig struct {
	URL     string        `env:"URL"     envDefault:"http://localhost:8000/api/stats/live"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Token   string        `env:"TOKEN"`
}

func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defTimeout
	}

	client := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &HTTPFetcher{
		client: client,
		url:    cfg.URL,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (stats.Payload, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(f.url)
	if err != nil {
		return stats.Payload{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if !resp.IsSuccess() {
		return stats.Payload{}, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status())
	}

	return stats.DecodePayload(resp.Body())
}
