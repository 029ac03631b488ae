// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/tokendist/builtin/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"bad request", BadRequest(errors.New("x")), http.StatusBadRequest},
		{"explicit", HTTPError(errors.New("x"), http.StatusTeapot), http.StatusTeapot},
		{"invalid input", reverts.New(reverts.InvalidInput, "x"), http.StatusBadRequest},
		{"unauthorized", reverts.New(reverts.Unauthorized, "x"), http.StatusForbidden},
		{"state", errors.WithMessage(reverts.New(reverts.StateViolation, "x"), "wrapped"), http.StatusConflict},
		{"capacity", reverts.New(reverts.CapacityExceeded, "x"), http.StatusUnprocessableEntity},
		{"stale", reverts.New(reverts.StaleExternalData, "x"), http.StatusServiceUnavailable},
		{"external", reverts.New(reverts.ExternalCallFailure, "x"), http.StatusBadGateway},
		{"internal", errors.New("disk"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
				if tt.err == nil {
					return WriteJSON(w, M{"ok": true})
				}
				return tt.err
			})
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestQueryUint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=7&offset=-1", nil)

	v, err := QueryUint(req, "limit", 100)
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), v)

	v, err = QueryUint(req, "missing", 100)
	assert.NoError(t, err)
	assert.Equal(t, uint64(100), v)

	_, err = QueryUint(req, "offset", 0)
	assert.Equal(t, "offset: strconv.ParseUint: parsing \"-1\": invalid syntax", err.Error())
}
