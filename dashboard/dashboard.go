// Package dashboard serves the model comparison and sustainability view:
// live metrics when the backend provides them, simulated ones otherwise,
// plus viewer sessions and user statistics.
package dashboard

import (
	"context"
	"net/url"
	"time"

	"github.com/absmach/greenboard/pkg/stats"
	"github.com/absmach/greenboard/profiles"
	"github.com/absmach/greenboard/session"
)

type Mode string

const (
	ModeLive     Mode = "live"
	ModeFallback Mode = "fallback"
)

type Level string

const (
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

type Health struct {
	SystemLoad Level `json:"systemLoad"`
	ErrorRate  Level `json:"errorRate"`
}

// HealthOf grades system load above 80 and error rate above 2 as critical,
// load above 60 and error rate above 1 as warning.
func HealthOf(ls stats.LiveStats) Health {
	return Health{
		SystemLoad: grade(ls.SystemLoad, 60, 80),
		ErrorRate:  grade(ls.ErrorRate, 1, 2),
	}
}

func grade(v, warn, crit float64) Level {
	switch {
	case v > crit:
		return LevelCritical
	case v > warn:
		return LevelWarning
	default:
		return LevelNormal
	}
}

// Platform is the last observed state of the profile database.
type Platform struct {
	Connected bool           `json:"connected"`
	Users     profiles.Stats `json:"users"`
	CheckedAt *time.Time     `json:"checkedAt,omitempty"`

	// NextCheckAt is when the scheduled status check runs next.
	NextCheckAt *time.Time `json:"nextCheckAt,omitempty"`
}

type Snapshot struct {
	Mode            Mode                  `json:"mode"`
	LiveStats       stats.LiveStats       `json:"liveStats"`
	SystemMetrics   stats.SystemMetrics   `json:"systemMetrics"`
	Sustainability  stats.Sustainability  `json:"sustainability"`
	ComparisonStats stats.ComparisonStats `json:"comparisonStats"`
	Health          Health                `json:"health"`
	Loading         bool                  `json:"loading"`
	Notice          string                `json:"notice,omitempty"`
	LastUpdated     *time.Time            `json:"lastUpdated,omitempty"`
	Platform        Platform              `json:"platform"`
}

// SessionStatus describes one view. Navigate is reported once per
// navigation and is empty afterwards.
type SessionStatus struct {
	Session     session.Session   `json:"session"`
	Redirecting bool              `json:"redirecting"`
	Navigate    string            `json:"navigate,omitempty"`
	Profile     *profiles.Profile `json:"profile,omitempty"`
}

type Config struct {
	PollInterval    time.Duration `env:"POLL_INTERVAL"     envDefault:"3s"`
	PollEnabled     bool          `env:"POLL_ENABLED"      envDefault:"true"`
	StaleAfter      time.Duration `env:"STALE_AFTER"       envDefault:"0s"`
	StatusSchedule  string        `env:"STATUS_SCHEDULE"   envDefault:"@every 1m"`
	SignInURL       string        `env:"SIGNIN_URL"        envDefault:"/signin"`
	RedirectDelay   time.Duration `env:"REDIRECT_DELAY"    envDefault:"1s"`
	ViewIdleTimeout time.Duration `env:"VIEW_IDLE_TIMEOUT" envDefault:"24h"`
}

type Service interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	RefreshSnapshot(ctx context.Context) (Snapshot, error)

	// EvaluateSession is the only call that registers a view. SessionStatus
	// reports an unchecked session for unknown views, and Logout of an unknown
	// view only clears its persisted record.
	EvaluateSession(ctx context.Context, viewID string, entry *url.URL) (session.Evaluation, error)
	SessionStatus(ctx context.Context, viewID string) (SessionStatus, error)
	Logout(ctx context.Context, viewID string) (SessionStatus, error)

	ListUsers(ctx context.Context) ([]profiles.Profile, error)
	GetUser(ctx context.Context, externalID string) (profiles.Profile, error)
	UpsertUser(ctx context.Context, p profiles.Profile) (profiles.Profile, error)
	UserStats(ctx context.Context) (profiles.Stats, error)
	DatabaseStatus(ctx context.Context) (Platform, error)

	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
