package profiles

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	pkgerrors "github.com/absmach/greenboard/pkg/errors"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const usersPath = "/rest/v1/users"

var ErrUnexpectedStatus = errors.New("unexpected response status")

type PostgRESTConfig struct {
	URL     string        `env:"URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

var _ Repository = (*postgrestRepository)(nil)

// postgrestRepository talks to a hosted PostgREST endpoint such as Supabase.
type postgrestRepository struct {
	client *resty.Client
}

type upsertBody struct {
	ExternalID    string    `json:"auth0_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Picture       string    `json:"picture,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// restRow is a users row as returned by PostgREST. Nullable columns decode
// to their zero value.
type restRow struct {
	ID            string    `json:"id"`
	ExternalID    string    `json:"auth0_id"   validate:"required"`
	Email         string    `json:"email"      validate:"required"`
	Name          string    `json:"name"`
	Picture       string    `json:"picture"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at" validate:"required"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewPostgRESTRepository(cfg PostgRESTConfig) Repository {
	client := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("apikey", cfg.APIKey).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &postgrestRepository{client: client}
}

func (r *postgrestRepository) GetByExternalID(ctx context.Context, externalID string) (Profile, error) {
	var rows []restRow
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select":   "*",
			"auth0_id": "eq." + externalID,
		}).
		SetResult(&rows).
		Get(usersPath)
	if err := checkResponse(resp, err); err != nil {
		return Profile{}, err
	}
	if len(rows) == 0 {
		return Profile{}, pkgerrors.ErrNotFound
	}

	return rowProfile(rows[0], externalID)
}

func (r *postgrestRepository) Upsert(ctx context.Context, p Profile) (Profile, error) {
	var rows []restRow
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("on_conflict", "auth0_id").
		SetHeader("Prefer", "resolution=merge-duplicates,return=representation").
		SetBody(upsertBody{
			ExternalID:    p.ExternalID,
			Email:         p.Email,
			Name:          p.Name,
			Picture:       p.Picture,
			EmailVerified: p.EmailVerified,
			UpdatedAt:     p.UpdatedAt,
		}).
		SetResult(&rows).
		Post(usersPath)
	if err := checkResponse(resp, err); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrUpsert, err)
	}
	if len(rows) == 0 {
		return Profile{}, fmt.Errorf("%w: empty representation", ErrUpsert)
	}
	saved, err := rowProfile(rows[0], p.ExternalID)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrUpsert, err)
	}

	return saved, nil
}

func (r *postgrestRepository) List(ctx context.Context) ([]Profile, error) {
	var rows []restRow
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "*",
			"order":  "created_at.desc",
		}).
		SetResult(&rows).
		Get(usersPath)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	ps := make([]Profile, 0, len(rows))
	for _, row := range rows {
		p, err := rowProfile(row, "")
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}

	return ps, nil
}

func (r *postgrestRepository) Ping(ctx context.Context) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("select", "count").
		Get(usersPath)

	return checkResponse(resp, err)
}

// rowProfile validates a decoded row. A non-empty externalID must match the
// row's auth0_id.
func rowProfile(row restRow, externalID string) (Profile, error) {
	if err := validate.Struct(row); err != nil {
		return Profile{}, fmt.Errorf("%w: malformed row: %w", ErrDBQuery, err)
	}
	if externalID != "" && row.ExternalID != externalID {
		return Profile{}, fmt.Errorf("%w: row auth0_id %q does not match %q", ErrDBQuery, row.ExternalID, externalID)
	}

	return Profile{
		ID:            row.ID,
		ExternalID:    row.ExternalID,
		Email:         row.Email,
		Name:          row.Name,
		Picture:       row.Picture,
		EmailVerified: row.EmailVerified,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDBQuery, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status())
	}

	return nil
}
