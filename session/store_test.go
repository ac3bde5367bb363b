package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	pkgerrors "github.com/absmach/greenboard/pkg/errors"
	"github.com/absmach/greenboard/pkg/storage"
	"github.com/absmach/greenboard/session"
	"github.com/absmach/greenboard/session/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

const scope = "view-1"

var alice = session.Identity{Name: "A", Email: "a@x.com"}

type fixture struct {
	kv    storage.Storage
	nav   *mocks.Navigator
	clk   *clocktesting.FakeClock
	store *session.Store
}

func newFixture(t *testing.T, opts ...session.Option) fixture {
	t.Helper()

	f := fixture{
		kv:  storage.NewInMemoryStorage(),
		nav: new(mocks.Navigator),
		clk: clocktesting.NewFakeClock(time.Now()),
	}
	f.nav.On("Navigate", mock.Anything, session.DefSignInURL).Return()
	f.store = session.NewStore(session.NewKVPersister(f.kv, scope), f.nav, f.clk, opts...)
	t.Cleanup(f.store.Close)

	return f
}

func (f fixture) persisted(t *testing.T) (session.Record, bool) {
	t.Helper()

	data, err := f.kv.Get(context.Background(), scope+"/"+session.RecordKey)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return session.Record{}, false
	}
	require.NoError(t, err)

	var rec session.Record
	require.NoError(t, json.Unmarshal(data, &rec))

	return rec, true
}

func (f fixture) seed(t *testing.T, raw string) {
	t.Helper()

	require.NoError(t, f.kv.Set(context.Background(), scope+"/"+session.RecordKey, []byte(raw)))
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)

	return u
}

func TestEvaluateRestore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc    string
		record  string
		kind    session.Kind
		cleared bool
	}{
		{
			desc:   "valid record",
			record: `{"auth":true,"name":"A","email":"a@x.com"}`,
			kind:   session.Authenticated,
		},
		{
			desc:    "auth false",
			record:  `{"auth":false,"name":"A","email":"a@x.com"}`,
			kind:    session.Unauthenticated,
			cleared: true,
		},
		{
			desc:    "empty record",
			record:  `{}`,
			kind:    session.Unauthenticated,
			cleared: true,
		},
		{
			desc:    "missing email",
			record:  `{"auth":true,"name":"A"}`,
			kind:    session.Unauthenticated,
			cleared: true,
		},
		{
			desc:    "malformed record",
			record:  `{"auth":`,
			kind:    session.Unauthenticated,
			cleared: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.seed(t, tc.record)

			ev := f.store.Evaluate(context.Background(), mustParse(t, "/dashboard"))
			assert.Equal(t, tc.kind, ev.Session.Kind())
			assert.Equal(t, tc.kind, f.store.Session().Kind())
			assert.False(t, ev.Trusted)

			_, ok := f.persisted(t)
			assert.Equal(t, !tc.cleared, ok)

			if tc.kind == session.Authenticated {
				id, ok := ev.Session.Identity()
				require.True(t, ok)
				assert.Equal(t, alice, id)
				assert.Equal(t, session.SourcePersisted, ev.Source)
				assert.False(t, f.store.Redirecting())
			}
		})
	}
}

func TestEvaluateRedirectParams(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, `{"auth":true,"name":"Old","email":"old@x.com"}`)

	entry := mustParse(t, "/dashboard?name=A&email=a%40x.com&picture=p.png&auth=true&auth0_id=ext-1")
	ev := f.store.Evaluate(context.Background(), entry)

	require.Equal(t, session.Authenticated, ev.Session.Kind())
	assert.Equal(t, session.SourceRedirect, ev.Source)
	assert.True(t, ev.Trusted)
	assert.Equal(t, "/dashboard", ev.Address)

	id, _ := ev.Session.Identity()
	assert.Equal(t, session.Identity{Name: "A", Email: "a@x.com", Picture: "p.png", ExternalID: "ext-1"}, id)

	rec, ok := f.persisted(t)
	require.True(t, ok)
	assert.Equal(t, session.Record{Name: "A", Email: "a@x.com", Picture: "p.png", Auth: true, ExternalID: "ext-1"}, rec)
}

func TestEvaluateRejectsIncompleteRedirect(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc  string
		entry string
	}{
		{desc: "auth not literally true", entry: "/?name=A&email=a%40x.com&auth=TRUE"},
		{desc: "auth missing", entry: "/?name=A&email=a%40x.com"},
		{desc: "empty name", entry: "/?name=&email=a%40x.com&auth=true"},
		{desc: "no email", entry: "/?name=A&auth=true"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ev := f.store.Evaluate(context.Background(), mustParse(t, tc.entry))
			assert.Equal(t, session.Unauthenticated, ev.Session.Kind())
			assert.Equal(t, session.SourceNone, ev.Source)
			assert.Equal(t, tc.entry, ev.Address)

			_, ok := f.persisted(t)
			assert.False(t, ok)
		})
	}
}

func TestRequireAuthSchedulesOneNavigation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	ev := f.store.Evaluate(ctx, nil)
	require.Equal(t, session.Unauthenticated, ev.Session.Kind())
	assert.True(t, f.store.Redirecting())
	assert.False(t, f.store.RequireAuth(ctx))
	assert.False(t, f.store.RequireAuth(ctx))

	f.clk.Step(500 * time.Millisecond)
	f.nav.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)

	f.clk.Step(session.DefRedirectDelay)
	f.nav.AssertNumberOfCalls(t, "Navigate", 1)
	assert.False(t, f.store.Redirecting())

	f.clk.Step(10 * session.DefRedirectDelay)
	f.nav.AssertNumberOfCalls(t, "Navigate", 1)
}

func TestAuthenticationCancelsPendingRedirect(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	f.store.Evaluate(ctx, mustParse(t, "/"))
	require.True(t, f.store.Redirecting())

	f.store.Evaluate(ctx, mustParse(t, "/?name=A&email=a%40x.com&auth=true"))
	assert.False(t, f.store.Redirecting())

	f.clk.Step(2 * session.DefRedirectDelay)
	f.nav.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
}

func TestCloseCancelsPendingRedirect(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.Evaluate(context.Background(), nil)
	f.store.Close()

	f.clk.Step(2 * session.DefRedirectDelay)
	f.nav.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, `{"auth":true,"name":"A","email":"a@x.com"}`)

	require.Equal(t, session.Authenticated, f.store.Evaluate(ctx, nil).Session.Kind())

	f.store.Logout(ctx)
	f.nav.AssertNumberOfCalls(t, "Navigate", 1)
	assert.Equal(t, session.Unauthenticated, f.store.Session().Kind())
	_, ok := f.persisted(t)
	assert.False(t, ok)

	assert.Equal(t, session.Unauthenticated, f.store.Evaluate(ctx, nil).Session.Kind())
}

func TestCustomSignInAndDelay(t *testing.T) {
	t.Parallel()

	nav := new(mocks.Navigator)
	nav.On("Navigate", mock.Anything, "/login").Return()
	clk := clocktesting.NewFakeClock(time.Now())
	s := session.NewStore(
		session.NewKVPersister(storage.NewInMemoryStorage(), ""),
		nav, clk,
		session.WithSignInURL("/login"),
		session.WithRedirectDelay(5*time.Second),
	)
	defer s.Close()

	s.Evaluate(context.Background(), nil)
	clk.Step(4 * time.Second)
	nav.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
	clk.Step(time.Second)
	nav.AssertCalled(t, "Navigate", mock.Anything, "/login")
}

func TestProfileSync(t *testing.T) {
	t.Parallel()

	syncer := new(mocks.ProfileSyncer)
	syncer.On("Sync", mock.Anything, "ext-1").Return()

	f := newFixture(t, session.WithProfileSyncer(syncer))
	ctx := context.Background()

	f.store.Evaluate(ctx, mustParse(t, "/?name=A&email=a%40x.com&auth=true&auth0_id=ext-1"))
	f.store.Evaluate(ctx, mustParse(t, "/"))
	syncer.AssertNumberOfCalls(t, "Sync", 2)

	f.store.Logout(ctx)
	f.seed(t, `{"auth":true,"name":"A","email":"a@x.com"}`)
	f.store.Evaluate(ctx, mustParse(t, "/"))
	syncer.AssertNumberOfCalls(t, "Sync", 2)
}

func TestPersisterFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	errStore := errors.New("disk full")
	p := new(mocks.Persister)
	p.On("Save", mock.Anything, mock.Anything).Return(errStore)
	p.On("Load", mock.Anything).Return(nil, errStore)
	p.On("Clear", mock.Anything).Return(errStore)

	nav := new(mocks.Navigator)
	nav.On("Navigate", mock.Anything, mock.Anything).Return()
	s := session.NewStore(p, nav, clocktesting.NewFakeClock(time.Now()))
	defer s.Close()

	ctx := context.Background()
	ev := s.Evaluate(ctx, mustParse(t, "/?name=A&email=a%40x.com&auth=true"))
	assert.Equal(t, session.Authenticated, ev.Session.Kind())

	s.Logout(ctx)
	assert.Equal(t, session.Unauthenticated, s.Evaluate(ctx, nil).Session.Kind())
	p.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSessionJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		s    session.Session
		want string
	}{
		{
			desc: "unchecked",
			s:    session.Session{},
			want: `{"state":"unchecked"}`,
		},
		{
			desc: "unauthenticated",
			s:    session.NewUnauthenticated(),
			want: `{"state":"unauthenticated"}`,
		},
		{
			desc: "authenticated",
			s:    session.NewAuthenticated(alice),
			want: `{"state":"authenticated","user":{"name":"A","email":"a@x.com","picture":""}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(tc.s)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))

			var back session.Session
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tc.s, back)
		})
	}
}

func TestSessionUnmarshalRejectsMissingUser(t *testing.T) {
	t.Parallel()

	var s session.Session
	err := json.Unmarshal([]byte(`{"state":"authenticated"}`), &s)
	assert.ErrorIs(t, err, session.ErrInvalidRecord)
}
