// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokendist/api/holders"
	"github.com/vechain/tokendist/api/sale"
	"github.com/vechain/tokendist/api/staking"
	"github.com/vechain/tokendist/distributor"
	"github.com/vechain/tokendist/genesis"
	"github.com/vechain/tokendist/lvldb"
	"github.com/vechain/tokendist/metrics"
	"github.com/vechain/tokendist/thor"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

const launch = uint64(1_700_000_000)

var alice = genesis.DevAccounts()[4].Address

func newTestServer(t *testing.T) (*httptest.Server, *distributor.Distributor) {
	gen := genesis.Devnet(launch)
	cfg, boot, err := gen.Build()
	require.NoError(t, err)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := func() uint64 { return launch + 10 }
	feed, err := gen.FixedFeed(clock)
	require.NoError(t, err)
	d, err := distributor.New(db, cfg, feed)
	require.NoError(t, err)
	require.NoError(t, d.Bootstrap(boot))
	require.NoError(t, d.StartSale(genesis.DevAccounts()[0].Address, launch))

	_, err = d.Purchase(alice, big.NewInt(1_000_000), launch+1)
	require.NoError(t, err)

	ts := httptest.NewServer(New(d, Options{
		AllowedOrigins: "*",
		EnableMetrics:  true,
		Clock:          clock,
	}))
	t.Cleanup(ts.Close)
	return ts, d
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}

func getJSON(t *testing.T, url string, v any) {
	body, code := httpGet(t, url)
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}

func TestHolders(t *testing.T) {
	ts, _ := newTestServer(t)

	var h holders.Holder
	getJSON(t, ts.URL+"/holders/"+alice.String(), &h)
	assert.Equal(t, alice, h.Address)
	assert.Equal(t, thor.Tokens(10), (*big.Int)(h.Balance))
	require.Len(t, h.Vesting, 5)
	assert.Equal(t, "sale", h.Vesting[0].Source)
	assert.Equal(t, thor.Tokens(10), (*big.Int)(h.Vesting[0].Locked))
	assert.Equal(t, 0, (*big.Int)(h.Transferable).Sign())
	assert.False(t, h.Migration.Migrated)

	var v holders.Vesting
	getJSON(t, ts.URL+"/holders/"+alice.String()+"/vesting/sale", &v)
	require.Len(t, v.SubAllocations, 1)
	assert.Equal(t, uint64(1), v.SubAllocations[0].Tag)
	assert.Equal(t, "linearAfterCliff", v.Mode)

	_, code := httpGet(t, ts.URL+"/holders/0x")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpGet(t, ts.URL+"/holders/"+alice.String()+"/vesting/airdrop")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpGet(t, ts.URL+"/holders/"+alice.String()+"/vesting/sale?limit=1000")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSale(t *testing.T) {
	ts, _ := newTestServer(t)

	var st sale.State
	getJSON(t, ts.URL+"/sale", &st)
	assert.True(t, st.Active)
	assert.Equal(t, uint64(1), st.Phase)
	assert.Equal(t, uint64(5), st.Phases)
	assert.Equal(t, thor.Tokens(10), (*big.Int)(st.Sold))

	var q sale.Quote
	getJSON(t, ts.URL+"/sale/quote?payment=100000", &q)
	assert.Equal(t, thor.OneToken, (*big.Int)(q.Tokens))
	require.Len(t, q.Fills, 1)
	assert.Equal(t, uint64(1), q.Fills[0].Phase)

	for _, query := range []string{"", "?payment=abc", "?payment=0"} {
		_, code := httpGet(t, ts.URL+"/sale/quote"+query)
		assert.Equal(t, http.StatusBadRequest, code, query)
	}
	_, code := httpGet(t, ts.URL+"/sale/quote?payment=1000000000000000")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestStaking(t *testing.T) {
	ts, d := newTestServer(t)

	var totals staking.Totals
	getJSON(t, ts.URL+"/staking", &totals)
	assert.True(t, totals.Enabled)
	assert.Equal(t, uint64(20_000), totals.APR)
	assert.Equal(t, thor.Tokens(620_000_000), (*big.Int)(totals.Supply))

	_, err := d.AddBooster(genesis.DevAccounts()[0].Address, launch+100, launch+200, 200)
	require.NoError(t, err)

	var boosters []staking.Booster
	getJSON(t, ts.URL+"/staking/boosters", &boosters)
	require.Len(t, boosters, 1)
	assert.Equal(t, staking.Booster{Index: 0, Start: launch + 100, End: launch + 200, Multiplier: 200}, boosters[0])

	_, code := httpGet(t, ts.URL+"/staking/boosters?offset=x")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCORS(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/sale", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.org")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsMiddleware(t *testing.T) {
	ts, _ := newTestServer(t)

	httpGet(t, ts.URL+"/sale")
	httpGet(t, ts.URL+"/holders/0x")
	httpGet(t, ts.URL+"/holders/0x")

	body, code := httpGet(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	m := families["tokendist_metrics_api_request_count"].GetMetric()
	counts := map[string]float64{}
	for _, metric := range m {
		var name, code string
		for _, l := range metric.GetLabel() {
			switch l.GetName() {
			case "name":
				name = l.GetValue()
			case "code":
				code = l.GetValue()
			}
		}
		counts[name+"/"+code] = metric.GetCounter().GetValue()
	}
	assert.GreaterOrEqual(t, counts["sale_get_state/200"], float64(1))
	assert.GreaterOrEqual(t, counts["holders_get_holder/400"], float64(2))

	assert.Contains(t, families, "tokendist_metrics_distributor_op_duration_us")
}
