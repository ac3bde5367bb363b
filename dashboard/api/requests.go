package api

import (
	"errors"
	"net/url"

	"github.com/absmach/greenboard/profiles"
	apiutil "github.com/absmach/supermq/api/http/util"
)

var (
	errMissingExternalID = errors.New("missing external id")
	errMissingEmail      = errors.New("missing email")
)

type snapshotReq struct {
	refresh bool
}

func (req snapshotReq) validate() error {
	return nil
}

type evaluateSessionReq struct {
	viewID string
	issued bool
	entry  *url.URL
}

func (req evaluateSessionReq) validate() error {
	if req.viewID == "" {
		return apiutil.ErrMissingID
	}

	return nil
}

type viewReq struct {
	viewID string
}

func (req viewReq) validate() error {
	if req.viewID == "" {
		return apiutil.ErrMissingID
	}

	return nil
}

type userReq struct {
	externalID string
}

func (req userReq) validate() error {
	if req.externalID == "" {
		return errMissingExternalID
	}

	return nil
}

type upsertUserReq struct {
	profiles.Profile `json:",inline"`
}

func (req upsertUserReq) validate() error {
	if req.ExternalID == "" {
		return errMissingExternalID
	}
	if req.Email == "" {
		return errMissingEmail
	}

	return nil
}
