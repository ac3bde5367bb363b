package profiles

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	pkgerrors "github.com/absmach/greenboard/pkg/errors"
	"github.com/go-kit/kit/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"k8s.io/utils/clock"
)

var validate = validator.New()

// Client wraps a Repository so that no call fails. Backend errors are logged,
// counted per operation and replaced with a neutral result.
type Client struct {
	repo     Repository
	logger   *slog.Logger
	degraded metrics.Counter
	clk      clock.PassiveClock

	mu    sync.RWMutex
	cache map[string]Profile
}

func NewClient(repo Repository, logger *slog.Logger, degraded metrics.Counter, clk clock.PassiveClock) *Client {
	return &Client{
		repo:     repo,
		logger:   logger,
		degraded: degraded,
		clk:      clk,
		cache:    make(map[string]Profile),
	}
}

func (c *Client) LoadByExternalID(ctx context.Context, externalID string) (Profile, bool) {
	p, err := c.repo.GetByExternalID(ctx, externalID)
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return Profile{}, false
	case err != nil:
		c.degrade("load", err, slog.String("auth0_id", externalID))

		return Profile{}, false
	}
	c.remember(p)

	return p, true
}

// Upsert creates or updates the profile keyed by its external id and stamps
// the update time. Invalid profiles are rejected without touching the backend.
func (c *Client) Upsert(ctx context.Context, p Profile) (Profile, bool) {
	if err := validate.Struct(p); err != nil {
		c.degrade("upsert", errors.Join(pkgerrors.ErrInvalidData, err))

		return Profile{}, false
	}

	now := c.clk.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	saved, err := c.repo.Upsert(ctx, p)
	if err != nil {
		c.degrade("upsert", err, slog.String("auth0_id", p.ExternalID))

		return Profile{}, false
	}
	c.remember(saved)

	return saved, true
}

func (c *Client) TestConnectivity(ctx context.Context) bool {
	if err := c.repo.Ping(ctx); err != nil {
		c.degrade("connectivity", err)

		return false
	}

	return true
}

func (c *Client) ListAll(ctx context.Context) []Profile {
	ps, err := c.repo.List(ctx)
	if err != nil {
		c.degrade("list", err)

		return []Profile{}
	}

	return ps
}

func (c *Client) AggregateStats(ctx context.Context) Stats {
	ps, err := c.repo.List(ctx)
	if err != nil {
		c.degrade("stats", err)

		return Stats{}
	}

	return ComputeStats(ps, c.clk.Now())
}

// Sync reloads the profile of an external identity into the cache.
func (c *Client) Sync(ctx context.Context, externalID string) {
	c.LoadByExternalID(ctx, externalID)
}

func (c *Client) Cached(externalID string) (Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.cache[externalID]

	return p, ok
}

func (c *Client) remember(p Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[p.ExternalID] = p
}

func (c *Client) degrade(op string, err error, attrs ...any) {
	c.degraded.With("operation", op).Add(1)
	args := append([]any{slog.String("operation", op), slog.Any("error", err)}, attrs...)
	c.logger.Warn("profile backend degraded", args...)
}
