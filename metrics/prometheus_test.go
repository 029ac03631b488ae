// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	m.GetOrCreateCountMeter("noop").Add(1)
	m.GetOrCreateGaugeMeter("noop").Set(1)
	m.GetOrCreateCountVecMeter("noop", []string{"a"}).AddWithLabel(1, map[string]string{"a": "b"})
	m.GetOrCreateHistogramVecMeter("noop", []string{"a"}, Bucket1s).ObserveWithLabels(1, map[string]string{"a": "b"})
}

func TestPrometheusMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	count := Counter("test_purchases_count")
	count.Add(2)
	assert.Same(t, count, Counter("test_purchases_count"), "meters are created once")

	CounterVec("test_ops_count", []string{"op"}).AddWithLabel(1, map[string]string{"op": "stake"})
	Gauge("test_tokens_sold").Set(42)
	HistogramVec("test_op_duration", []string{"op"}, Bucket1s).ObserveWithLabels(15, map[string]string{"op": "claim"})

	srv := httptest.NewServer(HTTPHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	for _, want := range []string{
		namespace + "_test_purchases_count 2",
		namespace + `_test_ops_count{op="stake"} 1`,
		namespace + "_test_tokens_sold 42",
		namespace + `_test_op_duration_count{op="claim"} 1`,
	} {
		assert.True(t, strings.Contains(text, want), want)
	}
}
