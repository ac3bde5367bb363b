package cli

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/dashboard/api"
	"github.com/absmach/greenboard/dashboard/mocks"
	"github.com/absmach/greenboard/pkg/mqtt"
	mqttmocks "github.com/absmach/greenboard/pkg/mqtt/mocks"
	"github.com/absmach/greenboard/pkg/sdk"
	"github.com/absmach/greenboard/profiles"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// The commands share package state, so these tests do not run in parallel.
func setup(t *testing.T) *mocks.MockService {
	t.Helper()

	svc := new(mocks.MockService)
	ts := httptest.NewServer(api.MakeHandler(svc, slog.Default(), "test-instance"))
	t.Cleanup(ts.Close)
	SetSDK(sdk.NewSDK(sdk.Config{DashboardURL: ts.URL}))
	viewID = ""

	return svc
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, string) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())

	return out.String(), errOut.String()
}

func TestSnapshotCmd(t *testing.T) {
	svc := setup(t)
	svc.On("RefreshSnapshot", mock.Anything).Return(dashboard.Snapshot{
		Mode:   dashboard.ModeFallback,
		Notice: "live metrics source unreachable",
	}, nil)

	out, errOut := run(t, NewSnapshotCmd(), "--refresh")
	assert.Empty(t, errOut)
	assert.Contains(t, out, "mode: fallback (live metrics source unreachable)")
	assert.Contains(t, out, `"mode": "fallback"`)
}

func TestUsersCmd(t *testing.T) {
	svc := setup(t)
	svc.On("UpsertUser", mock.Anything, profiles.Profile{
		ExternalID:    "auth0|ada",
		Email:         "ada@example.com",
		Name:          "Ada",
		EmailVerified: true,
	}).Return(profiles.Profile{ID: "id-1", ExternalID: "auth0|ada", Email: "ada@example.com"}, nil)

	out, errOut := run(t, NewUsersCmd(), "upsert", "auth0|ada", "ada@example.com", "--name", "Ada", "--verified")
	assert.Empty(t, errOut)
	assert.Contains(t, out, `"id": "id-1"`)

	out, _ = run(t, NewUsersCmd(), "view")
	assert.Contains(t, out, "usage: view <auth0_id>")
}

func TestSessionCmdRequiresView(t *testing.T) {
	setup(t)

	_, errOut := run(t, NewSessionCmd(), "status")
	assert.Contains(t, errOut, errNoViewID.Error())
}

func TestSessionCmdLogout(t *testing.T) {
	svc := setup(t)
	svc.On("Logout", mock.Anything, "view-1").Return(dashboard.SessionStatus{Navigate: "/signin"}, nil)

	out, errOut := run(t, NewSessionCmd(), "logout", "--view", "view-1")
	assert.Empty(t, errOut)
	assert.Contains(t, out, "ok")
}

func TestSubscribeAndPrint(t *testing.T) {
	const topic = "m/d/c/c/dashboard/snapshot"

	ps := new(mqttmocks.MockPubSub)
	ps.On("Subscribe", mock.Anything, topic, mock.Anything).Run(func(args mock.Arguments) {
		h := args.Get(2).(mqtt.Handler)
		_ = h(topic, map[string]any{"mode": "live"})
	}).Return(nil)
	ps.On("Unsubscribe", mock.Anything, topic).Return(nil)

	var out bytes.Buffer
	cmd := cobra.Command{}
	cmd.SetOut(&out)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, subscribeAndPrint(ctx, cmd, ps, topic))
	assert.Contains(t, out.String(), `"mode": "live"`)
	assert.Contains(t, out.String(), "watching "+topic)
	ps.AssertExpectations(t)
}
