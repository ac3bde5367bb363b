package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

const (
	paramName       = "name"
	paramEmail      = "email"
	paramPicture    = "picture"
	paramAuth       = "auth"
	paramExternalID = "auth0_id"
)

var ErrInvalidRecord = errors.New("invalid session record")

// Record is the persisted form of an authenticated session.
type Record struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
	Auth       bool   `json:"auth"`
	ExternalID string `json:"auth0_id,omitempty"`
}

func NewRecord(id Identity) Record {
	return Record{
		Name:       id.Name,
		Email:      id.Email,
		Picture:    id.Picture,
		Auth:       true,
		ExternalID: id.ExternalID,
	}
}

func (r Record) Identity() Identity {
	return Identity{
		Name:       r.Name,
		Email:      r.Email,
		Picture:    r.Picture,
		ExternalID: r.ExternalID,
	}
}

// DecodeRecord parses a persisted record. A record that is not authenticated
// or lacks a name or email is rejected.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if !r.Auth || r.Name == "" || r.Email == "" {
		return Record{}, ErrInvalidRecord
	}

	return r, nil
}

// RedirectIdentity extracts the identity carried by sign-in redirect
// parameters. auth must be exactly "true" and name and email non-empty.
func RedirectIdentity(q url.Values) (Identity, bool) {
	if q.Get(paramAuth) != "true" {
		return Identity{}, false
	}
	id := Identity{
		Name:       q.Get(paramName),
		Email:      q.Get(paramEmail),
		Picture:    q.Get(paramPicture),
		ExternalID: q.Get(paramExternalID),
	}
	if id.Name == "" || id.Email == "" {
		return Identity{}, false
	}

	return id, true
}

// StripRedirectParams returns the address the viewer should see after a
// redirect has been consumed: the path alone.
func StripRedirectParams(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.Path == "" {
		return "/"
	}

	return u.Path
}
