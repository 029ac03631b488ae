// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/tokendist/thor"
)

// accrual computes rewards over whole-day buckets anchored at the staking start.
type accrual struct {
	config    *Config
	stoppedAt uint64
	boosters  []*Booster
}

// end returns where accrual stops for a call made at now.
func (a *accrual) end(now uint64) uint64 {
	if a.stoppedAt != 0 && now > a.stoppedAt {
		return a.stoppedAt
	}
	return now
}

// accrue returns the reward earned by stake since its last update and the
// cursor accrual reached. At most MaxAccrualDays buckets are walked, a later
// call continues from the cursor.
func (a *accrual) accrue(stake *Stake, now uint64) (*big.Int, uint64) {
	reward := new(big.Int)
	end := a.end(now)
	if stake.LastUpdate >= end {
		return reward, stake.LastUpdate
	}
	if stake.Principal.Sign() == 0 || end <= a.config.StakingStart {
		return reward, end
	}

	t := max(stake.LastUpdate, a.config.StakingStart)
	for buckets := uint64(0); t < end && buckets < a.config.MaxAccrualDays; buckets++ {
		day := (t - a.config.StakingStart) / thor.SecondsPerDay
		segEnd := min(a.config.StakingStart+(day+1)*thor.SecondsPerDay, end)

		rate := new(big.Int).Mul(stake.Principal, new(big.Int).SetUint64(a.config.APR(day)))
		reward.Add(reward, a.contribution(rate, segEnd-t, thor.BoostScale))

		for _, b := range a.boosters {
			from, to := max(t, b.Start), min(segEnd, b.End)
			if from >= to || b.Multiplier <= thor.BoostScale {
				continue
			}
			// replace the base contribution of the overlap by multiplier times it
			reward.Add(reward, a.contribution(rate, to-from, b.Multiplier-thor.BoostScale))
		}
		t = segEnd
	}
	return reward, t
}

// contribution returns rate * seconds * scale / (SecondsPerYear * RateScale * BoostScale).
func (a *accrual) contribution(rate *big.Int, seconds, scale uint64) *big.Int {
	v := new(big.Int).Mul(rate, new(big.Int).SetUint64(seconds))
	v.Mul(v, new(big.Int).SetUint64(scale))
	return v.Div(v, boostedDivisor)
}
