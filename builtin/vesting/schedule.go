// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"math/big"

	"github.com/vechain/tokendist/thor"
)

// unlockedBySchedule returns the part of total released at now under the schedule.
// saleEnd of zero means the sale is still open and nothing is released.
func unlockedBySchedule(total *big.Int, s Schedule, saleEnd, now uint64) *big.Int {
	if saleEnd == 0 || total.Sign() == 0 {
		return new(big.Int)
	}
	start := saleEnd + s.Cliff
	if now < start {
		return new(big.Int)
	}
	if s.Mode == FixedAtCliff || s.Duration == 0 {
		return new(big.Int).Set(total)
	}
	elapsed := min(now-start, s.Duration)
	return linear(total, elapsed, s.Duration)
}

// unlockedByTranche returns the part of amount released at now under the tranche terms.
func unlockedByTranche(amount *big.Int, tr Tranche, delay, saleEnd, now uint64) *big.Int {
	if saleEnd == 0 || now < saleEnd || amount.Sign() == 0 {
		return new(big.Int)
	}
	immediate := new(big.Int).Mul(amount, new(big.Int).SetUint64(tr.ImmediatePct))
	immediate.Div(immediate, new(big.Int).SetUint64(thor.PercentScale))

	start := saleEnd + delay
	if now < start {
		return immediate
	}
	rest := new(big.Int).Sub(amount, immediate)
	if tr.LinearDuration == 0 {
		return immediate.Add(immediate, rest)
	}
	elapsed := min(now-start, tr.LinearDuration)
	return immediate.Add(immediate, linear(rest, elapsed, tr.LinearDuration))
}

// linear returns amount * elapsed / duration, rounded down.
func linear(amount *big.Int, elapsed, duration uint64) *big.Int {
	v := new(big.Int).Mul(amount, new(big.Int).SetUint64(elapsed))
	return v.Div(v, new(big.Int).SetUint64(duration))
}
