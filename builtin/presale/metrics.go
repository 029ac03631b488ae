// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package presale

import "github.com/vechain/tokendist/metrics"

var (
	metricPurchases  = metrics.LazyLoadCounterVec("presale_purchases_count", []string{"phases"})
	metricTokensSold = metrics.LazyLoadCounter("presale_tokens_sold_count")
)
