// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/builtin/migration"
	"github.com/vechain/tokendist/builtin/presale"
	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/pricefeed"
	"github.com/vechain/tokendist/thor"
)

func requireHolder(holder thor.Address) error {
	if holder.IsZero() {
		return reverts.New(reverts.InvalidInput, "zero holder")
	}
	return nil
}

func requirePositive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.New(reverts.InvalidInput, "amount must be positive")
	}
	return nil
}

// buy prices payment, vests the tokens per phase and credits them from the sale reserve.
func (d *Distributor) buy(buyer thor.Address, payment *big.Int, now uint64) (*presale.Receipt, error) {
	if err := requireHolder(buyer); err != nil {
		return nil, err
	}
	receipt, err := d.sale.Process(payment, now)
	if err != nil {
		return nil, err
	}
	for _, fill := range receipt.Fills {
		if err := d.vesting.AddSale(buyer, fill.Phase, fill.Tokens); err != nil {
			return nil, err
		}
	}
	if err := d.token.Transfer(d.config.Reserves.Sale, buyer, receipt.Tokens); err != nil {
		return nil, errors.WithMessage(err, "sale reserve")
	}
	return receipt, nil
}

// Purchase buys tokens with payment settlement units pulled from buyer to the treasury.
func (d *Distributor) Purchase(buyer thor.Address, payment *big.Int, now uint64) (*presale.Receipt, error) {
	var receipt *presale.Receipt
	err := d.tx("purchase", func() (err error) {
		if receipt, err = d.buy(buyer, payment, now); err != nil {
			return err
		}
		if err := d.settlement.Transfer(buyer, d.config.Reserves.Treasury, receipt.Cost); err != nil {
			return reverts.Wrap(reverts.ExternalCallFailure, err, "settlement pull")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// toSettlement reads and validates the feed answer for amount native units.
// The feed is queried without holding the lock, so a feed calling back into
// the distributor neither blocks nor observes a half applied mutation.
func (d *Distributor) toSettlement(ctx context.Context, amount *big.Int, now uint64) (*big.Int, error) {
	if d.feed == nil {
		return nil, reverts.New(reverts.StateViolation, "no price feed configured")
	}
	var maxStaleness *big.Int
	if err := d.view(func() (err error) {
		maxStaleness, err = d.params.GetOr(thor.KeyMaxStaleness, thor.InitialMaxStaleness)
		return err
	}); err != nil {
		return nil, err
	}
	checker := pricefeed.NewChecker(d.feed, maxStaleness.Uint64(), d.config.SettlementDecimals)
	return checker.ToSettlement(ctx, amount, now)
}

// PurchaseWithNative buys tokens with native currency converted by the price feed.
// Only the native amount matching the spent settlement units is pulled.
func (d *Distributor) PurchaseWithNative(ctx context.Context, buyer thor.Address, amount *big.Int, now uint64) (*presale.Receipt, error) {
	payment, err := d.toSettlement(ctx, amount, now)
	if err != nil {
		metricRejected().AddWithLabel(1, map[string]string{"op": "purchase-native", "kind": kindLabel(reverts.KindOf(err))})
		return nil, err
	}
	var receipt *presale.Receipt
	err = d.tx("purchase-native", func() (err error) {
		if receipt, err = d.buy(buyer, payment, now); err != nil {
			return err
		}
		// pulled = ceil(amount * cost / payment)
		pulled := new(big.Int).Mul(amount, receipt.Cost)
		pulled.Add(pulled, new(big.Int).Sub(payment, big.NewInt(1)))
		pulled.Div(pulled, payment)
		if err := d.native.Transfer(buyer, d.config.Reserves.Treasury, pulled); err != nil {
			return reverts.Wrap(reverts.ExternalCallFailure, err, "native pull")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// available returns balance minus staked principal.
func (d *Distributor) available(holder thor.Address) (*big.Int, error) {
	bal, err := d.token.BalanceOf(holder)
	if err != nil {
		return nil, err
	}
	s, err := d.staking.GetStake(holder)
	if err != nil {
		return nil, err
	}
	return bal.Sub(bal, s.Principal), nil
}

// transferable returns balance minus locked minus staked, floored at zero.
func (d *Distributor) transferable(holder thor.Address, now uint64) (*big.Int, error) {
	avail, err := d.available(holder)
	if err != nil {
		return nil, err
	}
	locked, err := d.vesting.TotalLocked(holder, now)
	if err != nil {
		return nil, err
	}
	avail.Sub(avail, locked)
	if avail.Sign() < 0 {
		avail.SetUint64(0)
	}
	return avail, nil
}

// Stake locks amount of the holder's own balance into staking.
func (d *Distributor) Stake(holder thor.Address, amount *big.Int, now uint64) error {
	return d.tx("stake", func() error {
		if err := requireHolder(holder); err != nil {
			return err
		}
		avail, err := d.available(holder)
		if err != nil {
			return err
		}
		return d.staking.Stake(holder, amount, avail, now)
	})
}

// Unstake releases amount of staked principal.
func (d *Distributor) Unstake(holder thor.Address, amount *big.Int, now uint64) error {
	return d.tx("unstake", func() error {
		return d.staking.Unstake(holder, amount, now)
	})
}

// SyncStake walks pending accrual of a stake that lags behind now.
func (d *Distributor) SyncStake(holder thor.Address, now uint64) (caughtUp bool, err error) {
	err = d.tx("sync-stake", func() error {
		caughtUp, err = d.staking.Update(holder, now)
		return err
	})
	if err != nil {
		return false, err
	}
	return caughtUp, nil
}

// Claim turns the holder's owed reward into a staking reward allocation paid
// from the reward reserve.
func (d *Distributor) Claim(holder thor.Address, now uint64) (amount *big.Int, err error) {
	err = d.tx("claim", func() error {
		if amount, err = d.staking.Claim(holder, now); err != nil {
			return err
		}
		return d.vestFromReserve(d.config.Reserves.StakingReward, holder, amount, func() error {
			return d.vesting.AddFixed(holder, vesting.SourceStakingReward, amount)
		})
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// vestFromReserve pays amount from reserve and records the allocation.
func (d *Distributor) vestFromReserve(reserve, holder thor.Address, amount *big.Int, record func() error) error {
	if err := requireHolder(holder); err != nil {
		return err
	}
	if err := requirePositive(amount); err != nil {
		return err
	}
	if err := record(); err != nil {
		return err
	}
	if err := d.token.Transfer(reserve, holder, amount); err != nil {
		return errors.WithMessage(err, "reserve")
	}
	return nil
}

// CreditGaming credits a gaming allocation. Gaming controllers only.
func (d *Distributor) CreditGaming(caller, holder thor.Address, amount *big.Int, now uint64) error {
	return d.tx("credit-gaming", func() error {
		if err := d.authority.Require(caller, authority.RoleGamingController); err != nil {
			return err
		}
		return d.vestFromReserve(d.config.Reserves.Gaming, holder, amount, func() error {
			return d.vesting.AddGamingCredit(holder, amount, now)
		})
	})
}

// RequestRewardVesting credits a staking reward allocation. Staking controllers only.
func (d *Distributor) RequestRewardVesting(caller, holder thor.Address, amount *big.Int) error {
	return d.tx("reward-vesting", func() error {
		if err := d.authority.Require(caller, authority.RoleStakingController); err != nil {
			return err
		}
		return d.vestFromReserve(d.config.Reserves.StakingReward, holder, amount, func() error {
			return d.vesting.AddFixed(holder, vesting.SourceStakingReward, amount)
		})
	})
}

// ResetStake force-zeroes a stake. Staking controllers only.
func (d *Distributor) ResetStake(caller, holder thor.Address, now uint64) (principal *big.Int, err error) {
	err = d.tx("reset-stake", func() error {
		if err := d.authority.Require(caller, authority.RoleStakingController); err != nil {
			return err
		}
		principal, err = d.staking.ResetStake(holder, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// DistributeMarketing credits a marketing allocation. Admins only.
func (d *Distributor) DistributeMarketing(caller, holder thor.Address, amount *big.Int) error {
	return d.tx("distribute-marketing", func() error {
		if err := d.authority.Require(caller, authority.RoleAdmin); err != nil {
			return err
		}
		return d.vestFromReserve(d.config.Reserves.Marketing, holder, amount, func() error {
			return d.vesting.AddFixed(holder, vesting.SourceMarketing, amount)
		})
	})
}

// DistributeGrant credits a long-term grant allocation. Admins only.
func (d *Distributor) DistributeGrant(caller, holder thor.Address, amount *big.Int) error {
	return d.tx("distribute-grant", func() error {
		if err := d.authority.Require(caller, authority.RoleAdmin); err != nil {
			return err
		}
		return d.vestFromReserve(d.config.Reserves.Grant, holder, amount, func() error {
			return d.vesting.AddGrant(holder, amount)
		})
	})
}

// Transfer moves tokens that are neither locked nor staked.
func (d *Distributor) Transfer(from, to thor.Address, amount *big.Int, now uint64) error {
	return d.tx("transfer", func() error {
		if err := requirePositive(amount); err != nil {
			return err
		}
		transferable, err := d.transferable(from, now)
		if err != nil {
			return err
		}
		if amount.Cmp(transferable) > 0 {
			return reverts.Newf(reverts.InvalidInput, "transfer %v exceeds transferable %v", amount, transferable)
		}
		return d.token.Transfer(from, to, amount)
	})
}

// Migrate snapshots and burns the holder's position.
func (d *Distributor) Migrate(ctx context.Context, holder thor.Address, now uint64) (rec *migration.Record, err error) {
	err = d.tx("migrate", func() error {
		rec, err = d.migration.Migrate(ctx, holder, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
