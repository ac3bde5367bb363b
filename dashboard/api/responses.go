package api

import (
	"net/http"
	"time"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/pkg/api"
	"github.com/absmach/greenboard/profiles"
	"github.com/absmach/greenboard/session"
	"github.com/absmach/supermq"
)

var (
	_ supermq.Response = (*snapshotRes)(nil)
	_ supermq.Response = (*evaluationRes)(nil)
	_ supermq.Response = (*sessionStatusRes)(nil)
	_ supermq.Response = (*userRes)(nil)
	_ supermq.Response = (*listUsersRes)(nil)
	_ supermq.Response = (*userStatsRes)(nil)
	_ supermq.Response = (*platformRes)(nil)
)

// viewCookieAge bounds how long a browser keeps its view id.
const viewCookieAge = 30 * 24 * time.Hour

type snapshotRes struct {
	dashboard.Snapshot
}

func (res snapshotRes) Code() int {
	return http.StatusOK
}

func (res snapshotRes) Headers() map[string]string {
	return map[string]string{}
}

func (res snapshotRes) Empty() bool {
	return false
}

type evaluationRes struct {
	session.Evaluation
	ViewID string `json:"view_id"`
	issued bool
}

func (res evaluationRes) Code() int {
	return http.StatusOK
}

func (res evaluationRes) Headers() map[string]string {
	if !res.issued {
		return map[string]string{}
	}
	cookie := &http.Cookie{
		Name:     api.ViewCookie,
		Value:    res.ViewID,
		Path:     "/",
		MaxAge:   int(viewCookieAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return map[string]string{
		"Set-Cookie": cookie.String(),
	}
}

func (res evaluationRes) Empty() bool {
	return false
}

type sessionStatusRes struct {
	dashboard.SessionStatus
}

func (res sessionStatusRes) Code() int {
	return http.StatusOK
}

func (res sessionStatusRes) Headers() map[string]string {
	return map[string]string{}
}

func (res sessionStatusRes) Empty() bool {
	return false
}

type userRes struct {
	profiles.Profile
}

func (res userRes) Code() int {
	return http.StatusOK
}

func (res userRes) Headers() map[string]string {
	return map[string]string{}
}

func (res userRes) Empty() bool {
	return false
}

type listUsersRes struct {
	Total int                `json:"total"`
	Users []profiles.Profile `json:"users"`
}

func (res listUsersRes) Code() int {
	return http.StatusOK
}

func (res listUsersRes) Headers() map[string]string {
	return map[string]string{}
}

func (res listUsersRes) Empty() bool {
	return false
}

type userStatsRes struct {
	profiles.Stats
}

func (res userStatsRes) Code() int {
	return http.StatusOK
}

func (res userStatsRes) Headers() map[string]string {
	return map[string]string{}
}

func (res userStatsRes) Empty() bool {
	return false
}

type platformRes struct {
	dashboard.Platform
}

func (res platformRes) Code() int {
	return http.StatusOK
}

func (res platformRes) Headers() map[string]string {
	return map[string]string{}
}

func (res platformRes) Empty() bool {
	return false
}
