// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/tokendist/thor"
)

// Stake is the position of one holder. Staked tokens never leave the holder's balance.
type Stake struct {
	Principal  *big.Int
	LastUpdate uint64
	RewardDebt *big.Int
}

// IsEmpty returns true when there is neither principal nor owed reward.
func (s *Stake) IsEmpty() bool {
	return s.Principal.Sign() == 0 && s.RewardDebt.Sign() == 0
}

// Booster multiplies the base reward inside [Start, End). Multiplier is scaled by 100.
type Booster struct {
	Start      uint64
	End        uint64
	Multiplier uint64
}

// Totals is the global staking state.
type Totals struct {
	TotalStaked *big.Int
	Cap         *big.Int
	Enabled     bool
	StoppedAt   uint64
	EarlyClaim  bool
	Boosters    uint64
}

// Config is the reward curve. APRs are in basis points of RateScale.
type Config struct {
	StakingStart   uint64
	InitialAPR     uint64
	PlateauAPR     uint64
	FloorAPR       uint64
	DecayDays      uint64 // initial to plateau
	PlateauDays    uint64 // plateau to floor
	MaxAccrualDays uint64
	MaxBoosters    uint64
}

// DefaultConfig returns the launch curve starting at stakingStart.
func DefaultConfig(stakingStart uint64) Config {
	return Config{
		StakingStart:   stakingStart,
		InitialAPR:     20_000,
		PlateauAPR:     5_000,
		FloorAPR:       1_000,
		DecayDays:      30,
		PlateauDays:    180,
		MaxAccrualDays: 730,
		MaxBoosters:    256,
	}
}

// APR returns the annual rate of the given day since staking start.
func (c *Config) APR(day uint64) uint64 {
	switch {
	case day < c.DecayDays:
		return c.InitialAPR - (c.InitialAPR-c.PlateauAPR)*day/c.DecayDays
	case day < c.DecayDays+c.PlateauDays:
		return c.PlateauAPR - (c.PlateauAPR-c.FloorAPR)*(day-c.DecayDays)/c.PlateauDays
	default:
		return c.FloorAPR
	}
}

var boostedDivisor = new(big.Int).SetUint64(thor.SecondsPerYear * thor.RateScale * thor.BoostScale)
