// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"

	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/thor"
)

// admin runs fn as a transaction restricted to role.
func (d *Distributor) admin(op string, caller thor.Address, role authority.Role, fn func() error) error {
	return d.tx(op, func() error {
		if err := d.authority.Require(caller, role); err != nil {
			return err
		}
		return fn()
	})
}

// StartSale opens the sale at t.
func (d *Distributor) StartSale(caller thor.Address, t uint64) error {
	return d.admin("start-sale", caller, authority.RoleAdmin, func() error {
		return d.sale.Start(t)
	})
}

// EndSale closes the sale at t and anchors every vesting schedule to it.
func (d *Distributor) EndSale(caller thor.Address, t uint64) error {
	return d.admin("end-sale", caller, authority.RoleAdmin, func() error {
		if err := d.sale.End(t); err != nil {
			return err
		}
		return d.vesting.SetSaleEnd(t)
	})
}

// AdvancePhase moves the sale to its next phase.
func (d *Distributor) AdvancePhase(caller thor.Address) error {
	return d.admin("advance-phase", caller, authority.RoleAdmin, d.sale.AdvancePhase)
}

func (d *Distributor) setParam(op string, caller thor.Address, key thor.Bytes32, value *big.Int) error {
	return d.admin(op, caller, authority.RoleAdmin, func() error {
		if err := requirePositive(value); err != nil {
			return err
		}
		d.params.Set(key, value)
		return nil
	})
}

// SetMaxPurchase sets the per purchase maximum in settlement units.
func (d *Distributor) SetMaxPurchase(caller thor.Address, value *big.Int) error {
	return d.setParam("set-max-purchase", caller, thor.KeyMaxPurchase, value)
}

// SetStakingCap sets the cap of total staked principal.
func (d *Distributor) SetStakingCap(caller thor.Address, value *big.Int) error {
	return d.setParam("set-staking-cap", caller, thor.KeyStakingCap, value)
}

// SetMinMigratePhase sets the sale phase from which migration is allowed.
func (d *Distributor) SetMinMigratePhase(caller thor.Address, value *big.Int) error {
	return d.setParam("set-min-migrate-phase", caller, thor.KeyMinMigratePhase, value)
}

// SetMaxStaleness sets the accepted age of price feed answers, in seconds.
func (d *Distributor) SetMaxStaleness(caller thor.Address, value *big.Int) error {
	return d.setParam("set-max-staleness", caller, thor.KeyMaxStaleness, value)
}

// SetStakingEnabled opens or closes staking.
func (d *Distributor) SetStakingEnabled(caller thor.Address, enabled bool) error {
	return d.admin("set-staking-enabled", caller, authority.RoleAdmin, func() error {
		return d.staking.SetEnabled(enabled)
	})
}

// StopRewards permanently stops reward accrual at t.
func (d *Distributor) StopRewards(caller thor.Address, t uint64) error {
	return d.admin("stop-rewards", caller, authority.RoleAdmin, func() error {
		return d.staking.StopRewards(t)
	})
}

// SetEarlyClaim toggles claiming before the sale end.
func (d *Distributor) SetEarlyClaim(caller thor.Address, enabled bool) error {
	return d.admin("set-early-claim", caller, authority.RoleAdmin, func() error {
		return d.staking.SetEarlyClaim(enabled)
	})
}

// AddBooster registers a reward booster.
func (d *Distributor) AddBooster(caller thor.Address, start, end, multiplier uint64) (index uint64, err error) {
	err = d.admin("add-booster", caller, authority.RoleAdmin, func() error {
		index, err = d.staking.AddBooster(start, end, multiplier)
		return err
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// EnableMigration opens migration for good.
func (d *Distributor) EnableMigration(caller thor.Address) error {
	return d.admin("enable-migration", caller, authority.RoleMigrationController, d.migration.Enable)
}

// GrantRole gives role to addr.
func (d *Distributor) GrantRole(caller thor.Address, role authority.Role, addr thor.Address) error {
	return d.admin("grant-role", caller, authority.RoleAdmin, func() error {
		return d.authority.Grant(role, addr)
	})
}

// RevokeRole takes role from addr.
func (d *Distributor) RevokeRole(caller thor.Address, role authority.Role, addr thor.Address) error {
	return d.admin("revoke-role", caller, authority.RoleAdmin, func() error {
		return d.authority.Revoke(role, addr)
	})
}
