// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/vechain/tokendist/metrics"

var (
	metricStakeOps = metrics.LazyLoadCounterVec("staking_ops_count", []string{"op"})
	metricClaims   = metrics.LazyLoadCounter("staking_claims_count")
	metricBoosters = metrics.LazyLoadGauge("staking_boosters_gauge")
)
