// Package session resolves who is viewing the dashboard from identity
// provider redirects or a persisted record, and sends unauthenticated
// viewers to sign-in.
package session

import "encoding/json"

type Kind uint8

const (
	Unchecked Kind = iota
	Authenticated
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unchecked"
	}
}

type Identity struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
	ExternalID string `json:"auth0_id,omitempty"`
}

// Session is a tagged variant. Only an Authenticated session carries an
// identity. The zero value is Unchecked.
type Session struct {
	kind     Kind
	identity Identity
}

func NewAuthenticated(id Identity) Session {
	return Session{kind: Authenticated, identity: id}
}

func NewUnauthenticated() Session {
	return Session{kind: Unauthenticated}
}

func (s Session) Kind() Kind {
	return s.kind
}

func (s Session) Identity() (Identity, bool) {
	return s.identity, s.kind == Authenticated
}

func (s Session) MarshalJSON() ([]byte, error) {
	out := struct {
		State string    `json:"state"`
		User  *Identity `json:"user,omitempty"`
	}{
		State: s.kind.String(),
	}
	if id, ok := s.Identity(); ok {
		out.User = &id
	}

	return json.Marshal(out)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var in struct {
		State string    `json:"state"`
		User  *Identity `json:"user"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.State {
	case Authenticated.String():
		if in.User == nil {
			return ErrInvalidRecord
		}
		*s = NewAuthenticated(*in.User)
	case Unauthenticated.String():
		*s = NewUnauthenticated()
	default:
		*s = Session{}
	}

	return nil
}
