// Package profiles keeps viewer profiles in a hosted database and exposes a
// client that degrades to neutral results instead of failing.
package profiles

import (
	"context"
	"time"
)

type Profile struct {
	ID            string    `json:"id"`
	ExternalID    string    `json:"auth0_id"          validate:"required"`
	Email         string    `json:"email"             validate:"required,email"`
	Name          string    `json:"name,omitempty"`
	Picture       string    `json:"picture,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Stats struct {
	TotalUsers       int     `json:"totalUsers"`
	VerifiedUsers    int     `json:"verifiedUsers"`
	RecentUsers      int     `json:"recentUsers"`
	VerificationRate float64 `json:"verificationRate"`
}

// Repository is a profile table keyed by external identity.
// GetByExternalID returns errors.ErrNotFound when no row matches.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID string) (Profile, error)
	Upsert(ctx context.Context, p Profile) (Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Ping(ctx context.Context) error
}

const RecentWindow = 7 * 24 * time.Hour

// ComputeStats aggregates profiles. Recent users were created strictly after
// now minus RecentWindow.
func ComputeStats(profiles []Profile, now time.Time) Stats {
	var st Stats
	since := now.Add(-RecentWindow)
	for _, p := range profiles {
		st.TotalUsers++
		if p.EmailVerified {
			st.VerifiedUsers++
		}
		if p.CreatedAt.After(since) {
			st.RecentUsers++
		}
	}
	if st.TotalUsers > 0 {
		st.VerificationRate = float64(st.VerifiedUsers) / float64(st.TotalUsers) * 100
	}

	return st
}
