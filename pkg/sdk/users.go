package sdk

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/absmach/greenboard/profiles"
)

const usersEndpoint = "/users"

func (sdk *greenSDK) ListUsers() (UsersPage, error) {
	body, err := sdk.processRequest(http.MethodGet, sdk.dashboardURL+usersEndpoint, nil, nil, http.StatusOK)
	if err != nil {
		return UsersPage{}, err
	}

	var page UsersPage
	if err := json.Unmarshal(body, &page); err != nil {
		return UsersPage{}, err
	}

	return page, nil
}

func (sdk *greenSDK) GetUser(externalID string) (profiles.Profile, error) {
	reqURL := sdk.dashboardURL + usersEndpoint + "/" + url.PathEscape(externalID)

	body, err := sdk.processRequest(http.MethodGet, reqURL, nil, nil, http.StatusOK)
	if err != nil {
		return profiles.Profile{}, err
	}

	var p profiles.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return profiles.Profile{}, err
	}

	return p, nil
}

func (sdk *greenSDK) UpsertUser(p profiles.Profile) (profiles.Profile, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return profiles.Profile{}, err
	}

	body, err := sdk.processRequest(http.MethodPut, sdk.dashboardURL+usersEndpoint, data, nil, http.StatusOK)
	if err != nil {
		return profiles.Profile{}, err
	}

	var saved profiles.Profile
	if err := json.Unmarshal(body, &saved); err != nil {
		return profiles.Profile{}, err
	}

	return saved, nil
}

func (sdk *greenSDK) UserStats() (profiles.Stats, error) {
	body, err := sdk.processRequest(http.MethodGet, sdk.dashboardURL+usersEndpoint+"/stats", nil, nil, http.StatusOK)
	if err != nil {
		return profiles.Stats{}, err
	}

	var st profiles.Stats
	if err := json.Unmarshal(body, &st); err != nil {
		return profiles.Stats{}, err
	}

	return st, nil
}
