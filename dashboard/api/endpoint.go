package api

import (
	"context"
	"errors"

	"github.com/absmach/greenboard/dashboard"
	pkgerrors "github.com/absmach/greenboard/pkg/errors"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"
)

func snapshotEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(snapshotReq)
		if !ok {
			return snapshotRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return snapshotRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		get := svc.Snapshot
		if req.refresh {
			get = svc.RefreshSnapshot
		}
		snap, err := get(ctx)
		if err != nil {
			return snapshotRes{}, err
		}

		return snapshotRes{Snapshot: snap}, nil
	}
}

func evaluateSessionEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(evaluateSessionReq)
		if !ok {
			return evaluationRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return evaluationRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		ev, err := svc.EvaluateSession(ctx, req.viewID, req.entry)
		if err != nil {
			return evaluationRes{}, err
		}

		return evaluationRes{
			Evaluation: ev,
			ViewID:     req.viewID,
			issued:     req.issued,
		}, nil
	}
}

func sessionStatusEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(viewReq)
		if !ok {
			return sessionStatusRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return sessionStatusRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		st, err := svc.SessionStatus(ctx, req.viewID)
		if err != nil {
			return sessionStatusRes{}, err
		}

		return sessionStatusRes{SessionStatus: st}, nil
	}
}

func logoutEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(viewReq)
		if !ok {
			return sessionStatusRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return sessionStatusRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		st, err := svc.Logout(ctx, req.viewID)
		if err != nil {
			return sessionStatusRes{}, err
		}

		return sessionStatusRes{SessionStatus: st}, nil
	}
}

func listUsersEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		users, err := svc.ListUsers(ctx)
		if err != nil {
			return listUsersRes{}, err
		}

		return listUsersRes{
			Total: len(users),
			Users: users,
		}, nil
	}
}

func getUserEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(userReq)
		if !ok {
			return userRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return userRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		p, err := svc.GetUser(ctx, req.externalID)
		if err != nil {
			return userRes{}, err
		}

		return userRes{Profile: p}, nil
	}
}

func upsertUserEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(upsertUserReq)
		if !ok {
			return userRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return userRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		p, err := svc.UpsertUser(ctx, req.Profile)
		if err != nil {
			return userRes{}, err
		}

		return userRes{Profile: p}, nil
	}
}

func userStatsEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		st, err := svc.UserStats(ctx)
		if err != nil {
			return userStatsRes{}, err
		}

		return userStatsRes{Stats: st}, nil
	}
}

func databaseStatusEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		p, err := svc.DatabaseStatus(ctx)
		if err != nil {
			return platformRes{}, err
		}

		return platformRes{Platform: p}, nil
	}
}
