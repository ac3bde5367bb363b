package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	pkgerrors "github.com/absmach/greenboard/pkg/errors"
	"k8s.io/utils/clock"
)

const (
	DefSignInURL     = "/signin"
	DefRedirectDelay = time.Second
)

type Source string

const (
	SourceNone      Source = "none"
	SourceRedirect  Source = "redirect"
	SourcePersisted Source = "persisted"
)

// Navigator moves the viewer to another address.
type Navigator interface {
	Navigate(ctx context.Context, dest string)
}

// ProfileSyncer refreshes the stored profile of an external identity.
type ProfileSyncer interface {
	Sync(ctx context.Context, externalID string)
}

// Evaluation is the outcome of resolving a session on entry.
// Restored sessions are never Trusted: the record is viewer controlled.
type Evaluation struct {
	Session Session `json:"session"`
	Address string  `json:"address"`
	Source  Source  `json:"source"`
	Trusted bool    `json:"trusted"`
}

type Store struct {
	persister Persister
	nav       Navigator
	clk       clock.WithDelayedExecution
	logger    *slog.Logger
	syncer    ProfileSyncer
	signInURL string
	delay     time.Duration

	mu          sync.Mutex
	session     Session
	redirecting bool
	timer       clock.Timer
}

type Option func(*Store)

func WithSignInURL(u string) Option {
	return func(s *Store) {
		s.signInURL = u
	}
}

func WithRedirectDelay(d time.Duration) Option {
	return func(s *Store) {
		s.delay = d
	}
}

func WithProfileSyncer(ps ProfileSyncer) Option {
	return func(s *Store) {
		s.syncer = ps
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(persister Persister, nav Navigator, clk clock.WithDelayedExecution, opts ...Option) *Store {
	s := &Store{
		persister: persister,
		nav:       nav,
		clk:       clk,
		logger:    slog.Default(),
		signInURL: DefSignInURL,
		delay:     DefRedirectDelay,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Evaluate resolves the session for an entry address. Redirect parameters
// win over a persisted record and overwrite it. An unauthenticated result
// schedules the sign-in redirect.
func (s *Store) Evaluate(ctx context.Context, entry *url.URL) Evaluation {
	ev := Evaluation{
		Session: NewUnauthenticated(),
		Source:  SourceNone,
	}
	if entry != nil {
		ev.Address = entry.String()
	}

	if id, ok := s.fromRedirect(entry); ok {
		s.persist(ctx, id)
		ev.Session = NewAuthenticated(id)
		ev.Address = StripRedirectParams(entry)
		ev.Source = SourceRedirect
		ev.Trusted = true
	} else if id, ok := s.restore(ctx); ok {
		ev.Session = NewAuthenticated(id)
		ev.Source = SourcePersisted
		s.logger.Info("session restored from persisted record",
			slog.String("email", id.Email),
			slog.Bool("trusted", false),
		)
	}

	s.mu.Lock()
	s.session = ev.Session
	if ev.Session.Kind() == Authenticated {
		s.cancelRedirect()
	}
	s.mu.Unlock()

	if id, ok := ev.Session.Identity(); ok && id.ExternalID != "" && s.syncer != nil {
		s.syncer.Sync(ctx, id.ExternalID)
	}
	if ev.Session.Kind() == Unauthenticated {
		s.RequireAuth(ctx)
	}

	return ev
}

func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session
}

// RequireAuth schedules one delayed navigation to sign-in. It reports false
// when a redirect is already pending.
func (s *Store) RequireAuth(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.redirecting {
		return false
	}
	s.redirecting = true

	ctx = context.WithoutCancel(ctx)
	s.timer = s.clk.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if !s.redirecting {
			s.mu.Unlock()

			return
		}
		s.redirecting = false
		s.timer = nil
		s.mu.Unlock()

		s.nav.Navigate(ctx, s.signInURL)
	})

	return true
}

// Redirecting reports whether a sign-in redirect is pending.
func (s *Store) Redirecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.redirecting
}

// Logout forgets the session and navigates to sign-in immediately.
func (s *Store) Logout(ctx context.Context) {
	if err := s.persister.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear persisted session", slog.Any("error", err))
	}

	s.mu.Lock()
	s.session = NewUnauthenticated()
	s.cancelRedirect()
	s.mu.Unlock()

	s.nav.Navigate(ctx, s.signInURL)
}

// Close cancels a pending redirect.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelRedirect()
}

func (s *Store) cancelRedirect() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.redirecting = false
}

func (s *Store) fromRedirect(entry *url.URL) (Identity, bool) {
	if entry == nil {
		return Identity{}, false
	}

	return RedirectIdentity(entry.Query())
}

func (s *Store) persist(ctx context.Context, id Identity) {
	data, err := json.Marshal(NewRecord(id))
	if err == nil {
		err = s.persister.Save(ctx, data)
	}
	if err != nil {
		s.logger.Warn("failed to persist session", slog.Any("error", err))
	}
}

func (s *Store) restore(ctx context.Context) (Identity, bool) {
	data, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return Identity{}, false
	case err != nil:
		s.logger.Warn("failed to load persisted session", slog.Any("error", err))

		return Identity{}, false
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		s.logger.Info("discarding persisted session", slog.Any("error", err))
		if err := s.persister.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear persisted session", slog.Any("error", err))
		}

		return Identity{}, false
	}

	return rec.Identity(), true
}
