package sdk

import (
	"encoding/json"
	"net/http"

	"github.com/absmach/greenboard/dashboard"
)

const (
	snapshotEndpoint = "/snapshot"
	sessionEndpoint  = "/session"
	databaseEndpoint = "/database/status"
)

func (sdk *greenSDK) Snapshot() (dashboard.Snapshot, error) {
	return sdk.snapshot(http.MethodGet, sdk.dashboardURL+snapshotEndpoint)
}

func (sdk *greenSDK) RefreshSnapshot() (dashboard.Snapshot, error) {
	return sdk.snapshot(http.MethodPost, sdk.dashboardURL+snapshotEndpoint+"/refresh")
}

func (sdk *greenSDK) snapshot(method, url string) (dashboard.Snapshot, error) {
	body, err := sdk.processRequest(method, url, nil, nil, http.StatusOK)
	if err != nil {
		return dashboard.Snapshot{}, err
	}

	var s dashboard.Snapshot
	if err := json.Unmarshal(body, &s); err != nil {
		return dashboard.Snapshot{}, err
	}

	return s, nil
}

func (sdk *greenSDK) EvaluateSession(viewID, entry string) (Evaluation, error) {
	url := sdk.dashboardURL + sessionEndpoint + entryQuery(entry)

	body, err := sdk.processRequest(http.MethodGet, url, nil, viewHeader(viewID), http.StatusOK)
	if err != nil {
		return Evaluation{}, err
	}

	var ev Evaluation
	if err := json.Unmarshal(body, &ev); err != nil {
		return Evaluation{}, err
	}

	return ev, nil
}

func (sdk *greenSDK) SessionStatus(viewID string) (dashboard.SessionStatus, error) {
	return sdk.sessionStatus(http.MethodGet, sdk.dashboardURL+sessionEndpoint+"/status", viewID)
}

func (sdk *greenSDK) Logout(viewID string) (dashboard.SessionStatus, error) {
	return sdk.sessionStatus(http.MethodPost, sdk.dashboardURL+sessionEndpoint+"/logout", viewID)
}

func (sdk *greenSDK) sessionStatus(method, url, viewID string) (dashboard.SessionStatus, error) {
	body, err := sdk.processRequest(method, url, nil, viewHeader(viewID), http.StatusOK)
	if err != nil {
		return dashboard.SessionStatus{}, err
	}

	var st dashboard.SessionStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return dashboard.SessionStatus{}, err
	}

	return st, nil
}

func (sdk *greenSDK) DatabaseStatus() (dashboard.Platform, error) {
	body, err := sdk.processRequest(http.MethodGet, sdk.dashboardURL+databaseEndpoint, nil, nil, http.StatusOK)
	if err != nil {
		return dashboard.Platform{}, err
	}

	var p dashboard.Platform
	if err := json.Unmarshal(body, &p); err != nil {
		return dashboard.Platform{}, err
	}

	return p, nil
}
