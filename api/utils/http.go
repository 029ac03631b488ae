// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/log"
)

var logger = log.WithContext("pkg", "api")

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusNotFound,
	}
}

var kindStatus = map[reverts.Kind]int{
	reverts.InvalidInput:        http.StatusBadRequest,
	reverts.Unauthorized:        http.StatusForbidden,
	reverts.StateViolation:      http.StatusConflict,
	reverts.CapacityExceeded:    http.StatusUnprocessableEntity,
	reverts.StaleExternalData:   http.StatusServiceUnavailable,
	reverts.ExternalCallFailure: http.StatusBadGateway,
}

// StatusOf maps a rejected operation to its response status.
// Errors that are not rejections map to 500.
func StatusOf(err error) int {
	if status, ok := kindStatus[reverts.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandlerFunc like http.HandlerFunc, bu it returns an error.
// If the returned error is httpError type, httpError.status will be responded,
// rejected operations are responded by kind, otherwise http.StatusInternalServerError.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) {
			if he.cause != nil {
				http.Error(w, he.cause.Error(), he.status)
			} else {
				w.WriteHeader(he.status)
			}
			return
		}
		status := StatusOf(err)
		if status == http.StatusInternalServerError {
			logger.Warn("request failed", "uri", r.URL.String(), "err", err)
		}
		http.Error(w, err.Error(), status)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// QueryUint parses an optional unsigned query parameter.
func QueryUint(r *http.Request, name string, def uint64) (uint64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}

// M shortcut for type map[string]any.
type M map[string]any
