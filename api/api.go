// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/tokendist/api/holders"
	"github.com/vechain/tokendist/api/sale"
	"github.com/vechain/tokendist/api/staking"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/metrics"
)

var logger = log.WithContext("pkg", "api")

// Reader is the read surface of a distribution.
type Reader interface {
	holders.Reader
	sale.Reader
	staking.Reader
}

type Options struct {
	AllowedOrigins  string
	EnableMetrics   bool
	EnableReqLogger bool
	// Clock returns the unix time views are evaluated at.
	Clock func() uint64
}

// New return api router
func New(reader Reader, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	holders.New(reader, opts.Clock).
		Mount(router, "/holders")
	sale.New(reader, opts.Clock).
		Mount(router, "/sale")
	staking.New(reader, opts.Clock).
		Mount(router, "/staking")

	if opts.EnableMetrics {
		router.Path("/metrics").Name("metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}
	return handler.ServeHTTP
}
