// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
)

// Time constants, all in seconds.
const (
	SecondsPerDay  uint64 = 86400
	SecondsPerYear uint64 = 365 * SecondsPerDay
)

// Scales of fixed point quantities.
const (
	TokenDecimals = 18
	RateScale     uint64 = 10_000 // APR in basis points
	BoostScale    uint64 = 100    // booster multiplier, 100 = 1x
	MaxBoost      uint64 = 100 * BoostScale
	PercentScale  uint64 = 100
)

// Keys of governance params.
var (
	KeyMaxPurchase     = BytesToBytes32([]byte("max-purchase"))
	KeyStakingCap      = BytesToBytes32([]byte("staking-cap"))
	KeyMinMigratePhase = BytesToBytes32([]byte("min-migrate-phase"))
	KeyMaxStaleness    = BytesToBytes32([]byte("max-staleness"))
)

var (
	// OneToken is 1e18 base units.
	OneToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil)

	InitialMaxPurchase  = new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e6)) // 1M settlement units of 6 decimals
	InitialStakingCap   = new(big.Int).Mul(big.NewInt(500_000_000), OneToken)
	InitialMaxStaleness = big.NewInt(3600)
)

// Days converts a day count into seconds.
func Days(n uint64) uint64 {
	return n * SecondsPerDay
}

// Tokens converts whole tokens into base units.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), OneToken)
}
