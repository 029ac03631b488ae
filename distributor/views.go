// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"

	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/builtin/migration"
	"github.com/vechain/tokendist/builtin/presale"
	"github.com/vechain/tokendist/builtin/staking"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/thor"
)

// HolderSummary is the position of one holder at a point in time.
type HolderSummary struct {
	Address        thor.Address
	Balance        *big.Int
	Transferable   *big.Int
	Staked         *big.Int
	PendingRewards *big.Int
	Locked         [vesting.NumSources]*big.Int
	Unlocked       [vesting.NumSources]*big.Int
	Migration      *migration.Record
}

// VestingDetail is one allocation with its contribution events.
type VestingDetail struct {
	Allocation     *vesting.Allocation
	Locked         *big.Int
	Unlocked       *big.Int
	SubAllocations []*vesting.SubAllocation
}

// Supply reports the token supply.
type Supply struct {
	Total  *big.Int
	Burned *big.Int
}

// Holder returns the summary of holder at now.
func (d *Distributor) Holder(holder thor.Address, now uint64) (sum *HolderSummary, err error) {
	err = d.view(func() error {
		sum = &HolderSummary{Address: holder}
		if sum.Balance, err = d.token.BalanceOf(holder); err != nil {
			return err
		}
		if sum.Transferable, err = d.transferable(holder, now); err != nil {
			return err
		}
		s, err := d.staking.GetStake(holder)
		if err != nil {
			return err
		}
		sum.Staked = s.Principal
		if sum.PendingRewards, err = d.staking.PendingRewards(holder, now); err != nil {
			return err
		}
		if sum.Locked, err = d.vesting.LockedBySource(holder, now); err != nil {
			return err
		}
		if sum.Unlocked, err = d.vesting.UnlockedBySource(holder, now); err != nil {
			return err
		}
		sum.Migration, err = d.migration.Record(holder)
		return err
	})
	return sum, err
}

// Vesting returns the allocation of holder for source with at most limit sub-allocations.
func (d *Distributor) Vesting(holder thor.Address, source vesting.Source, now uint64, offset, limit uint64) (detail *VestingDetail, err error) {
	err = d.view(func() error {
		detail = &VestingDetail{}
		if detail.Allocation, err = d.vesting.Allocation(holder, source); err != nil {
			return err
		}
		if detail.Locked, err = d.vesting.LockedAmount(holder, source, now); err != nil {
			return err
		}
		if detail.Unlocked, err = d.vesting.UnlockedAmount(holder, source, now); err != nil {
			return err
		}
		if source == vesting.SourceSale || source == vesting.SourceGamingCredit {
			detail.SubAllocations, err = d.vesting.SubAllocations(holder, source, offset, limit)
		}
		return err
	})
	return detail, err
}

// Sale returns the sale state at now.
func (d *Distributor) Sale(now uint64) (st *presale.State, err error) {
	err = d.view(func() error {
		st, err = d.sale.State(now)
		return err
	})
	return st, err
}

// Quote prices a purchase of payment settlement units without applying it.
func (d *Distributor) Quote(payment *big.Int, now uint64) (receipt *presale.Receipt, err error) {
	err = d.view(func() error {
		receipt, err = d.sale.Quote(payment, now)
		return err
	})
	return receipt, err
}

// StakingTotals returns the global staking state.
func (d *Distributor) StakingTotals() (totals *staking.Totals, err error) {
	err = d.view(func() error {
		totals, err = d.staking.Totals()
		return err
	})
	return totals, err
}

// Boosters returns at most limit boosters starting at offset.
func (d *Distributor) Boosters(offset, limit uint64) (boosters []*staking.Booster, err error) {
	err = d.view(func() error {
		boosters, err = d.staking.Boosters(offset, limit)
		return err
	})
	return boosters, err
}

// Supply returns the total and burned token supply.
func (d *Distributor) Supply() (s *Supply, err error) {
	err = d.view(func() error {
		s = &Supply{}
		if s.Total, err = d.token.TotalSupply(); err != nil {
			return err
		}
		s.Burned, err = d.token.TotalBurned()
		return err
	})
	return s, err
}

// SettlementBalance returns the settlement asset balance of addr.
func (d *Distributor) SettlementBalance(addr thor.Address) (bal *big.Int, err error) {
	err = d.view(func() error {
		bal, err = d.settlement.BalanceOf(addr)
		return err
	})
	return bal, err
}

// HasRole reports whether addr holds role.
func (d *Distributor) HasRole(role authority.Role, addr thor.Address) (ok bool, err error) {
	err = d.view(func() error {
		ok, err = d.authority.Has(role, addr)
		return err
	})
	return ok, err
}

// LockedFloorHits returns how often a locked amount had to be floored since the last commit.
func (d *Distributor) LockedFloorHits() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.vesting.FloorHits()
}
