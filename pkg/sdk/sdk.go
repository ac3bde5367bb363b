package sdk

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/pkg/api"
	"github.com/absmach/greenboard/profiles"
	"github.com/absmach/greenboard/session"
)

const CTJSON string = "application/json"

var ErrUnexpectedStatus = errors.New("unexpected response code")

type SDK interface {
	// Snapshot returns the dashboard as last observed by the service.
	//
	// example:
	//  snap, _ := sdk.Snapshot()
	//  fmt.Println(snap.Mode, snap.LiveStats.SystemLoad)
	Snapshot() (dashboard.Snapshot, error)

	// RefreshSnapshot fetches live metrics out of band and returns the
	// resulting dashboard.
	RefreshSnapshot() (dashboard.Snapshot, error)

	// EvaluateSession resolves the session of a view opened at entry. An
	// empty viewID asks the service to issue one.
	//
	// example:
	//  ev, _ := sdk.EvaluateSession("", "/?auth=true&name=Ada&email=ada@example.com")
	//  fmt.Println(ev.ViewID, ev.Session.Kind())
	EvaluateSession(viewID, entry string) (Evaluation, error)

	// SessionStatus reports the session of a view and any pending navigation.
	SessionStatus(viewID string) (dashboard.SessionStatus, error)

	// Logout forgets the session of a view.
	Logout(viewID string) (dashboard.SessionStatus, error)

	// ListUsers lists stored user profiles, newest first.
	ListUsers() (UsersPage, error)

	// GetUser gets a profile by its identity provider id.
	//
	// example:
	//  p, _ := sdk.GetUser("auth0|65f1c0")
	//  fmt.Println(p.Email)
	GetUser(externalID string) (profiles.Profile, error)

	// UpsertUser creates or updates a profile keyed by its external id.
	UpsertUser(p profiles.Profile) (profiles.Profile, error)

	// UserStats aggregates the stored profiles.
	UserStats() (profiles.Stats, error)

	// DatabaseStatus checks connectivity to the profile database.
	DatabaseStatus() (dashboard.Platform, error)
}

// Evaluation is a session evaluation together with the view it belongs to.
type Evaluation struct {
	session.Evaluation
	ViewID string `json:"view_id"`
}

type UsersPage struct {
	Total int                `json:"total"`
	Users []profiles.Profile `json:"users"`
}

type greenSDK struct {
	dashboardURL string
	client       *http.Client
}

type Config struct {
	DashboardURL    string
	TLSVerification bool
}

func NewSDK(cfg Config) SDK {
	return &greenSDK{
		dashboardURL: cfg.DashboardURL,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (sdk *greenSDK) processRequest(method, reqURL string, data []byte, headers map[string]string, expectedRespCode int) ([]byte, error) {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(data))
	if err != nil {
		return []byte{}, err
	}

	req.Header.Add("Content-Type", CTJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := sdk.client.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode != expectedRespCode {
		var e struct {
			Err string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Err != "" {
			return []byte{}, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, e.Err)
		}

		return []byte{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return body, nil
}

func viewHeader(viewID string) map[string]string {
	if viewID == "" {
		return nil
	}

	return map[string]string{api.ViewHeader: viewID}
}

func entryQuery(entry string) string {
	if entry == "" {
		return ""
	}

	return "?" + api.EntryKey + "=" + url.QueryEscape(entry)
}
