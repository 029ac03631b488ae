// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tokendist/builtin/params"
	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/thor"
)

var (
	logger = log.WithContext("pkg", "staking")

	slotStakes      = thor.BytesToBytes32([]byte("stakes"))
	slotTotalStaked = thor.BytesToBytes32([]byte("total-staked"))
	slotEnabled     = thor.BytesToBytes32([]byte("enabled"))
	slotStoppedAt   = thor.BytesToBytes32([]byte("stopped-at"))
	slotEarlyClaim  = thor.BytesToBytes32([]byte("early-claim"))
	slotBoosters    = thor.BytesToBytes32([]byte("boosters"))
)

// SaleEndReader reports the sale end time, 0 while the sale is open.
type SaleEndReader interface {
	SaleEnd() (uint64, error)
}

// Book keeps stakes and the reward accrual state.
type Book struct {
	config  Config
	params  *params.Params
	saleEnd SaleEndReader

	stakes      *solidity.Mapping[thor.Address, *Stake]
	totalStaked *solidity.Uint256
	enabled     *solidity.Raw[bool]
	stoppedAt   *solidity.Uint256
	earlyClaim  *solidity.Raw[bool]
	boosters    *solidity.Array[*Booster]
}

func New(sctx *solidity.Context, config Config, params *params.Params, saleEnd SaleEndReader) *Book {
	return &Book{
		config:      config,
		params:      params,
		saleEnd:     saleEnd,
		stakes:      solidity.NewMapping[thor.Address, *Stake](sctx, slotStakes),
		totalStaked: solidity.NewUint256(sctx, slotTotalStaked),
		enabled:     solidity.NewRaw[bool](sctx, slotEnabled),
		stoppedAt:   solidity.NewUint256(sctx, slotStoppedAt),
		earlyClaim:  solidity.NewRaw[bool](sctx, slotEarlyClaim),
		boosters:    solidity.NewArray[*Booster](sctx, slotBoosters),
	}
}

// Config returns the reward curve.
func (b *Book) Config() Config {
	return b.config
}

func (b *Book) getStake(holder thor.Address) (*Stake, error) {
	s, err := b.stakes.Get(holder)
	if err != nil {
		return nil, err
	}
	if s.Principal == nil {
		s.Principal = new(big.Int)
	}
	if s.RewardDebt == nil {
		s.RewardDebt = new(big.Int)
	}
	return s, nil
}

// GetStake returns the stored position of holder.
func (b *Book) GetStake(holder thor.Address) (*Stake, error) {
	return b.getStake(holder)
}

func (b *Book) accrual() (*accrual, error) {
	stopped, err := b.stoppedAt.Get()
	if err != nil {
		return nil, err
	}
	var boosters []*Booster
	if err := b.boosters.Range(func(_ uint64, booster *Booster) (bool, error) {
		boosters = append(boosters, booster)
		return true, nil
	}); err != nil {
		return nil, err
	}
	return &accrual{config: &b.config, stoppedAt: stopped.Uint64(), boosters: boosters}, nil
}

// Accrue returns the reward earned by holder since the last update and the
// cursor accrual reached, without writing.
func (b *Book) Accrue(holder thor.Address, now uint64) (*big.Int, uint64, error) {
	s, err := b.getStake(holder)
	if err != nil {
		return nil, 0, err
	}
	acc, err := b.accrual()
	if err != nil {
		return nil, 0, err
	}
	delta, cursor := acc.accrue(s, now)
	return delta, cursor, nil
}

// Update moves accrued reward into the holder's debt and advances the cursor.
// It returns whether accrual caught up with now.
func (b *Book) Update(holder thor.Address, now uint64) (bool, error) {
	_, caughtUp, err := b.update(holder, now)
	return caughtUp, err
}

func (b *Book) update(holder thor.Address, now uint64) (*Stake, bool, error) {
	s, err := b.getStake(holder)
	if err != nil {
		return nil, false, err
	}
	acc, err := b.accrual()
	if err != nil {
		return nil, false, err
	}
	delta, cursor := acc.accrue(s, now)
	s.RewardDebt.Add(s.RewardDebt, delta)
	s.LastUpdate = cursor
	if err := b.stakes.Set(holder, s); err != nil {
		return nil, false, err
	}
	return s, cursor >= acc.end(now), nil
}

// settle updates the stake and requires accrual to be complete, so principal
// changes never reprice time already elapsed.
func (b *Book) settle(holder thor.Address, now uint64) (*Stake, error) {
	s, caughtUp, err := b.update(holder, now)
	if err != nil {
		return nil, err
	}
	if !caughtUp {
		return nil, reverts.Newf(reverts.StateViolation, "accrual of %v lags at %d, update the stake first", holder, s.LastUpdate)
	}
	return s, nil
}

func (b *Book) stakingCap() (*big.Int, error) {
	return b.params.GetOr(thor.KeyStakingCap, thor.InitialStakingCap)
}

func (b *Book) saleEnded(now uint64) (bool, error) {
	end, err := b.saleEnd.SaleEnd()
	if err != nil {
		return false, errors.WithMessage(err, "sale end")
	}
	return end != 0 && now >= end, nil
}

// Stake adds amount to the holder's principal. available is the part of the
// holder's balance that is neither staked nor otherwise reserved.
func (b *Book) Stake(holder thor.Address, amount, available *big.Int, now uint64) error {
	logger.Debug("stake", "holder", holder, "amount", amount, "available", available)
	if holder.IsZero() {
		return reverts.New(reverts.InvalidInput, "zero holder")
	}
	if amount == nil || amount.Sign() <= 0 {
		return reverts.New(reverts.InvalidInput, "stake amount must be positive")
	}
	enabled, err := b.enabled.Get()
	if err != nil {
		return err
	}
	if !enabled {
		return reverts.New(reverts.StateViolation, "staking is disabled")
	}
	if amount.Cmp(available) > 0 {
		return reverts.Newf(reverts.InvalidInput, "stake %v exceeds available balance %v", amount, available)
	}
	total, err := b.totalStaked.Get()
	if err != nil {
		return err
	}
	stakingCap, err := b.stakingCap()
	if err != nil {
		return err
	}
	total.Add(total, amount)
	if total.Cmp(stakingCap) > 0 {
		return reverts.Newf(reverts.CapacityExceeded, "total stake %v would exceed cap %v", total, stakingCap)
	}

	s, err := b.settle(holder, now)
	if err != nil {
		return err
	}
	if s.Principal.Sign() == 0 {
		s.LastUpdate = max(s.LastUpdate, now)
	}
	s.Principal.Add(s.Principal, amount)
	if err := b.stakes.Set(holder, s); err != nil {
		return err
	}
	b.totalStaked.Set(total)

	if total.Cmp(stakingCap) == 0 {
		if err := b.enabled.Upsert(false); err != nil {
			return err
		}
		logger.Info("staking cap reached, staking disabled", "total", total)
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "stake"})
	logger.Info("staked", "holder", holder, "amount", amount, "principal", s.Principal)
	return nil
}

// Unstake reduces the holder's principal. Allowed once the sale has ended.
func (b *Book) Unstake(holder thor.Address, amount *big.Int, now uint64) error {
	logger.Debug("unstake", "holder", holder, "amount", amount)
	if amount == nil || amount.Sign() <= 0 {
		return reverts.New(reverts.InvalidInput, "unstake amount must be positive")
	}
	ended, err := b.saleEnded(now)
	if err != nil {
		return err
	}
	if !ended {
		return reverts.New(reverts.StateViolation, "unstake before sale end")
	}
	s, err := b.settle(holder, now)
	if err != nil {
		return err
	}
	if amount.Cmp(s.Principal) > 0 {
		return reverts.Newf(reverts.InvalidInput, "unstake %v exceeds principal %v", amount, s.Principal)
	}
	s.Principal.Sub(s.Principal, amount)
	if err := b.stakes.Set(holder, s); err != nil {
		return err
	}
	if err := b.totalStaked.Sub(amount); err != nil {
		return errors.WithMessage(err, "total staked")
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "unstake"})
	logger.Info("unstaked", "holder", holder, "amount", amount, "principal", s.Principal)
	return nil
}

// Claim zeroes the holder's reward debt and returns it. Allowed once the sale
// has ended or while early claim is enabled.
func (b *Book) Claim(holder thor.Address, now uint64) (*big.Int, error) {
	ended, err := b.saleEnded(now)
	if err != nil {
		return nil, err
	}
	if !ended {
		early, err := b.earlyClaim.Get()
		if err != nil {
			return nil, err
		}
		if !early {
			return nil, reverts.New(reverts.StateViolation, "claim before sale end")
		}
	}
	s, _, err := b.update(holder, now)
	if err != nil {
		return nil, err
	}
	amount := s.RewardDebt
	if amount.Sign() == 0 {
		return nil, reverts.New(reverts.InvalidInput, "nothing to claim")
	}
	s.RewardDebt = new(big.Int)
	if err := b.stakes.Set(holder, s); err != nil {
		return nil, err
	}
	metricClaims().Add(1)
	logger.Info("claimed", "holder", holder, "amount", amount)
	return amount, nil
}

// PendingRewards returns the holder's debt plus everything accrued up to now.
func (b *Book) PendingRewards(holder thor.Address, now uint64) (*big.Int, error) {
	s, err := b.getStake(holder)
	if err != nil {
		return nil, err
	}
	acc, err := b.accrual()
	if err != nil {
		return nil, err
	}
	pending := new(big.Int).Set(s.RewardDebt)
	end := acc.end(now)
	for {
		delta, cursor := acc.accrue(s, now)
		pending.Add(pending, delta)
		if cursor >= end || cursor == s.LastUpdate {
			return pending, nil
		}
		s.LastUpdate = cursor
	}
}

// ResetStake zeroes the holder's principal without accruing or moving tokens.
func (b *Book) ResetStake(holder thor.Address, now uint64) (*big.Int, error) {
	s, err := b.getStake(holder)
	if err != nil {
		return nil, err
	}
	principal := s.Principal
	if principal.Sign() == 0 {
		return principal, nil
	}
	if err := b.totalStaked.Sub(principal); err != nil {
		return nil, errors.WithMessage(err, "total staked")
	}
	s.Principal = new(big.Int)
	s.LastUpdate = max(s.LastUpdate, now)
	if err := b.stakes.Set(holder, s); err != nil {
		return nil, err
	}
	metricStakeOps().AddWithLabel(1, map[string]string{"op": "reset"})
	logger.Info("stake reset", "holder", holder, "principal", principal)
	return principal, nil
}

// AddBooster appends a booster period. Boosters are never removed.
func (b *Book) AddBooster(start, end, multiplier uint64) (uint64, error) {
	if end <= start {
		return 0, reverts.Newf(reverts.InvalidInput, "booster end %d not after start %d", end, start)
	}
	if multiplier < thor.BoostScale {
		return 0, reverts.Newf(reverts.InvalidInput, "booster multiplier %d below %d", multiplier, thor.BoostScale)
	}
	if multiplier > thor.MaxBoost {
		return 0, reverts.Newf(reverts.InvalidInput, "booster multiplier %d above %d", multiplier, thor.MaxBoost)
	}
	n, err := b.boosters.Len()
	if err != nil {
		return 0, err
	}
	if n >= b.config.MaxBoosters {
		return 0, reverts.Newf(reverts.CapacityExceeded, "%d boosters registered", n)
	}
	index, err := b.boosters.Push(&Booster{Start: start, End: end, Multiplier: multiplier})
	if err != nil {
		return 0, err
	}
	metricBoosters().Set(int64(index + 1))
	logger.Info("booster added", "index", index, "start", start, "end", end, "multiplier", multiplier)
	return index, nil
}

// Boosters returns at most limit boosters starting at offset.
func (b *Book) Boosters(offset, limit uint64) ([]*Booster, error) {
	return b.boosters.Slice(offset, limit)
}

// SetEnabled opens or closes staking to new stakes.
func (b *Book) SetEnabled(enabled bool) error {
	logger.Info("set staking enabled", "enabled", enabled)
	return b.enabled.Upsert(enabled)
}

// StopRewards permanently ends accrual at t.
func (b *Book) StopRewards(t uint64) error {
	if t == 0 {
		return reverts.New(reverts.InvalidInput, "stop time is zero")
	}
	stopped, err := b.stoppedAt.Get()
	if err != nil {
		return err
	}
	if stopped.Sign() != 0 {
		return reverts.Newf(reverts.StateViolation, "rewards already stopped at %v", stopped)
	}
	b.stoppedAt.Set(new(big.Int).SetUint64(t))
	logger.Info("rewards stopped", "time", t)
	return nil
}

// SetEarlyClaim toggles claiming before the sale end.
func (b *Book) SetEarlyClaim(enabled bool) error {
	logger.Info("set early claim", "enabled", enabled)
	return b.earlyClaim.Upsert(enabled)
}

// Totals returns the global staking state.
func (b *Book) Totals() (*Totals, error) {
	total, err := b.totalStaked.Get()
	if err != nil {
		return nil, err
	}
	stakingCap, err := b.stakingCap()
	if err != nil {
		return nil, err
	}
	enabled, err := b.enabled.Get()
	if err != nil {
		return nil, err
	}
	stopped, err := b.stoppedAt.Get()
	if err != nil {
		return nil, err
	}
	early, err := b.earlyClaim.Get()
	if err != nil {
		return nil, err
	}
	n, err := b.boosters.Len()
	if err != nil {
		return nil, err
	}
	return &Totals{
		TotalStaked: total,
		Cap:         stakingCap,
		Enabled:     enabled,
		StoppedAt:   stopped.Uint64(),
		EarlyClaim:  early,
		Boosters:    n,
	}, nil
}
