// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import "github.com/vechain/tokendist/metrics"

var (
	metricOpDuration = metrics.LazyLoadHistogramVec("distributor_op_duration_us", []string{"op", "outcome"}, metrics.Bucket1s)
	metricRejected   = metrics.LazyLoadCounterVec("distributor_rejected_count", []string{"op", "kind"})
	metricCommits    = metrics.LazyLoadCounter("distributor_commits_count")
)
