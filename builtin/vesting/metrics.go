// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import "github.com/vechain/tokendist/metrics"

var (
	metricLockedFloorHits = metrics.LazyLoadCounter("vesting_locked_floor_hits_count")
	metricAllocations     = metrics.LazyLoadCounterVec("vesting_allocations_count", []string{"source"})
)
