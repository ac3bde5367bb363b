package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/absmach/greenboard/pkg/api"
	pkgerrors "github.com/absmach/greenboard/pkg/errors"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createdRes struct {
	ID string `json:"id"`
}

func (createdRes) Code() int                  { return http.StatusCreated }
func (createdRes) Headers() map[string]string { return map[string]string{"Location": "/users/1"} }
func (createdRes) Empty() bool                { return false }

func TestEncodeResponse(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	require.NoError(t, api.EncodeResponse(context.Background(), w, createdRes{ID: "1"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/users/1", w.Header().Get("Location"))
	assert.Equal(t, api.ContentType, w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"1"}`, w.Body.String())
}

func TestEncodeError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc   string
		err    error
		status int
	}{
		{desc: "validation", err: errors.Join(apiutil.ErrValidation, apiutil.ErrMissingID), status: http.StatusBadRequest},
		{desc: "invalid data", err: pkgerrors.ErrInvalidData, status: http.StatusBadRequest},
		{desc: "unauthorized", err: pkgerrors.ErrUnauthorized, status: http.StatusUnauthorized},
		{desc: "not found", err: pkgerrors.ErrNotFound, status: http.StatusNotFound},
		{desc: "stopped", err: pkgerrors.ErrStopped, status: http.StatusServiceUnavailable},
		{desc: "unavailable", err: pkgerrors.ErrUnavailable, status: http.StatusServiceUnavailable},
		{desc: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			api.EncodeError(context.Background(), tc.err, w)
			assert.Equal(t, tc.status, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.err.Error(), body["error"])
		})
	}
}
