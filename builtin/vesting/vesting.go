// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"math/big"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/thor"
)

var (
	logger = log.WithContext("pkg", "vesting")

	slotSaleEnd = thor.BytesToBytes32([]byte("sale-end"))
	slotTotals  = thor.BytesToBytes32([]byte("totals"))
	slotSubs    = thor.BytesToBytes32([]byte("sub-allocations"))
)

type allocKey struct {
	holder thor.Address
	source Source
}

func (k allocKey) Bytes() []byte {
	return append(k.holder.Bytes(), byte(k.source))
}

// Book keeps the locked allocations of every holder. Locked and unlocked amounts
// are derived from the stored totals and the sale end time, never stored.
type Book struct {
	sctx    *solidity.Context
	config  Config
	saleEnd *solidity.Uint256
	totals  *solidity.Mapping[allocKey, *big.Int]

	floorHits atomic.Uint64
}

func New(sctx *solidity.Context, config Config) *Book {
	return &Book{
		sctx:    sctx,
		config:  config,
		saleEnd: solidity.NewUint256(sctx, slotSaleEnd),
		totals:  solidity.NewMapping[allocKey, *big.Int](sctx, slotTotals),
	}
}

func (b *Book) subs(key allocKey) *solidity.Array[*SubAllocation] {
	return solidity.NewArray[*SubAllocation](b.sctx, thor.Blake2b(slotSubs.Bytes(), key.Bytes()))
}

// Config returns the release terms.
func (b *Book) Config() Config {
	return b.config
}

// FloorHits returns how many times LockedAmount had to floor a negative result.
// Valid states never do so.
func (b *Book) FloorHits() uint64 {
	return b.floorHits.Load()
}

// SaleEnd returns the release anchor, 0 while the sale is open.
func (b *Book) SaleEnd() (uint64, error) {
	v, err := b.saleEnd.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// SetSaleEnd writes the release anchor. It can be written once.
func (b *Book) SetSaleEnd(t uint64) error {
	if t == 0 {
		return reverts.New(reverts.InvalidInput, "sale end time is zero")
	}
	current, err := b.SaleEnd()
	if err != nil {
		return err
	}
	if current != 0 {
		return reverts.Newf(reverts.StateViolation, "sale end already set to %d", current)
	}
	b.saleEnd.Set(new(big.Int).SetUint64(t))
	logger.Info("sale end set", "time", t)
	return nil
}

// Allocation returns the stored allocation of holder for source.
func (b *Book) Allocation(holder thor.Address, source Source) (*Allocation, error) {
	if !source.Valid() {
		return nil, reverts.Newf(reverts.InvalidInput, "unknown source %d", source)
	}
	total, err := b.totals.Get(allocKey{holder, source})
	if err != nil {
		return nil, err
	}
	alloc := &Allocation{Source: source, Total: total, Mode: LinearAfterCliff}
	if s, ok := b.config.schedule(source); ok {
		alloc.Cliff, alloc.Duration, alloc.Mode = s.Cliff, s.Duration, s.Mode
		return alloc, nil
	}
	// tranche sources release over the longest tranche
	tranches := b.config.SaleTranches
	if source == SourceGamingCredit {
		tranches = []Tranche{b.config.Gaming}
	}
	for _, tr := range tranches {
		alloc.Duration = max(alloc.Duration, b.config.LinearDelay+tr.LinearDuration)
	}
	return alloc, nil
}

// SubAllocations returns at most limit contribution events of a sale or gaming allocation.
func (b *Book) SubAllocations(holder thor.Address, source Source, offset, limit uint64) ([]*SubAllocation, error) {
	if source != SourceSale && source != SourceGamingCredit {
		return nil, reverts.Newf(reverts.InvalidInput, "source %v has no sub-allocations", source)
	}
	return b.subs(allocKey{holder, source}).Slice(offset, limit)
}

// UnlockedAmount returns the released part of the holder's allocation for source at now.
func (b *Book) UnlockedAmount(holder thor.Address, source Source, now uint64) (*big.Int, error) {
	if !source.Valid() {
		return nil, reverts.Newf(reverts.InvalidInput, "unknown source %d", source)
	}
	saleEnd, err := b.SaleEnd()
	if err != nil {
		return nil, err
	}
	key := allocKey{holder, source}

	switch source {
	case SourceSale, SourceGamingCredit:
		unlocked := new(big.Int)
		if saleEnd == 0 {
			return unlocked, nil
		}
		err := b.subs(key).Range(func(_ uint64, sub *SubAllocation) (bool, error) {
			tr, err := b.tranche(source, sub.Tag)
			if err != nil {
				return false, err
			}
			unlocked.Add(unlocked, unlockedByTranche(sub.Amount, tr, b.config.LinearDelay, saleEnd, now))
			return true, nil
		})
		return unlocked, err
	default:
		total, err := b.totals.Get(key)
		if err != nil {
			return nil, err
		}
		s, _ := b.config.schedule(source)
		return unlockedBySchedule(total, s, saleEnd, now), nil
	}
}

// LockedAmount returns total minus unlocked, floored at zero.
func (b *Book) LockedAmount(holder thor.Address, source Source, now uint64) (*big.Int, error) {
	unlocked, err := b.UnlockedAmount(holder, source, now)
	if err != nil {
		return nil, err
	}
	total, err := b.totals.Get(allocKey{holder, source})
	if err != nil {
		return nil, err
	}
	locked := total.Sub(total, unlocked)
	if locked.Sign() < 0 {
		b.floorHits.Add(1)
		metricLockedFloorHits().Add(1)
		logger.Warn("locked amount floored at zero", "holder", holder, "source", source, "locked", locked)
		return new(big.Int), nil
	}
	return locked, nil
}

// LockedBySource returns the locked amount of every source.
func (b *Book) LockedBySource(holder thor.Address, now uint64) ([NumSources]*big.Int, error) {
	var out [NumSources]*big.Int
	for _, source := range Sources() {
		v, err := b.LockedAmount(holder, source, now)
		if err != nil {
			return out, err
		}
		out[source] = v
	}
	return out, nil
}

// UnlockedBySource returns the unlocked amount of every source.
func (b *Book) UnlockedBySource(holder thor.Address, now uint64) ([NumSources]*big.Int, error) {
	var out [NumSources]*big.Int
	for _, source := range Sources() {
		v, err := b.UnlockedAmount(holder, source, now)
		if err != nil {
			return out, err
		}
		out[source] = v
	}
	return out, nil
}

// TotalLocked sums the locked amount over every source.
func (b *Book) TotalLocked(holder thor.Address, now uint64) (*big.Int, error) {
	bySource, err := b.LockedBySource(holder, now)
	if err != nil {
		return nil, err
	}
	return sum(bySource), nil
}

// TotalUnlocked sums the unlocked amount over every source.
func (b *Book) TotalUnlocked(holder thor.Address, now uint64) (*big.Int, error) {
	bySource, err := b.UnlockedBySource(holder, now)
	if err != nil {
		return nil, err
	}
	return sum(bySource), nil
}

// AddSale records a purchase made in the given 1 based sale phase.
func (b *Book) AddSale(holder thor.Address, phase uint64, amount *big.Int) error {
	if phase == 0 || phase > uint64(len(b.config.SaleTranches)) {
		return reverts.Newf(reverts.InvalidInput, "no vesting terms for sale phase %d", phase)
	}
	return b.addSub(holder, SourceSale, &SubAllocation{Amount: amount, Tag: phase})
}

// AddGamingCredit records a gaming credit issued at timestamp.
func (b *Book) AddGamingCredit(holder thor.Address, amount *big.Int, timestamp uint64) error {
	return b.addSub(holder, SourceGamingCredit, &SubAllocation{Amount: amount, Tag: timestamp})
}

// AddFixed grows a fixed-release allocation, marketing or staking reward.
func (b *Book) AddFixed(holder thor.Address, source Source, amount *big.Int) error {
	if source != SourceMarketing && source != SourceStakingReward {
		return reverts.Newf(reverts.InvalidInput, "source %v is not fixed release", source)
	}
	return b.addTotal(holder, source, amount)
}

// AddGrant grows the long-term grant allocation.
func (b *Book) AddGrant(holder thor.Address, amount *big.Int) error {
	return b.addTotal(holder, SourceLongTermGrant, amount)
}

func (b *Book) addSub(holder thor.Address, source Source, sub *SubAllocation) error {
	key := allocKey{holder, source}
	list := b.subs(key)
	n, err := list.Len()
	if err != nil {
		return err
	}
	if n >= b.config.MaxSubAllocations {
		return reverts.Newf(reverts.CapacityExceeded, "holder has %d %v sub-allocations", n, source)
	}
	if err := b.addTotal(holder, source, sub.Amount); err != nil {
		return err
	}
	if _, err := list.Push(sub); err != nil {
		return errors.WithMessage(err, "push sub-allocation")
	}
	return nil
}

func (b *Book) addTotal(holder thor.Address, source Source, amount *big.Int) error {
	if holder.IsZero() {
		return reverts.New(reverts.InvalidInput, "zero holder")
	}
	if amount == nil || amount.Sign() <= 0 {
		return reverts.New(reverts.InvalidInput, "allocation amount must be positive")
	}
	key := allocKey{holder, source}
	total, err := b.totals.Get(key)
	if err != nil {
		return err
	}
	if err := b.totals.Set(key, total.Add(total, amount)); err != nil {
		return err
	}
	metricAllocations().AddWithLabel(1, map[string]string{"source": source.String()})
	logger.Debug("allocation added", "holder", holder, "source", source, "amount", amount)
	return nil
}

func (b *Book) tranche(source Source, tag uint64) (Tranche, error) {
	if source == SourceGamingCredit {
		return b.config.Gaming, nil
	}
	if tag == 0 || tag > uint64(len(b.config.SaleTranches)) {
		return Tranche{}, errors.Errorf("sub-allocation with unknown phase %d", tag)
	}
	return b.config.SaleTranches[tag-1], nil
}

func sum(values [NumSources]*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		total.Add(total, v)
	}
	return total
}
