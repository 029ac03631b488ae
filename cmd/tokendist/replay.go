// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/distributor"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/thor"
)

// Op is one recorded operation. Caller is the acting account, Holder the
// subject when it differs from the caller.
type Op struct {
	Op         string                `yaml:"op"`
	Time       uint64                `yaml:"time"`
	Caller     thor.Address          `yaml:"caller"`
	Holder     *thor.Address         `yaml:"holder,omitempty"`
	Amount     *math.HexOrDecimal256 `yaml:"amount,omitempty"`
	Role       string                `yaml:"role,omitempty"`
	Param      string                `yaml:"param,omitempty"`
	Enabled    bool                  `yaml:"enabled,omitempty"`
	Start      uint64                `yaml:"start,omitempty"`
	End        uint64                `yaml:"end,omitempty"`
	Multiplier uint64                `yaml:"multiplier,omitempty"`
}

func parseOps(data []byte) ([]Op, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var ops []Op
	if err := dec.Decode(&ops); err != nil {
		return nil, errors.Wrap(err, "decode operations")
	}
	return ops, nil
}

func loadOps(path string) ([]Op, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read operations")
	}
	return parseOps(data)
}

func (op *Op) holder() thor.Address {
	if op.Holder != nil {
		return *op.Holder
	}
	return op.Caller
}

func (op *Op) amount() (*big.Int, error) {
	if op.Amount == nil {
		return nil, fmt.Errorf("%s: amount required", op.Op)
	}
	return new(big.Int).Set((*big.Int)(op.Amount)), nil
}

type paramSetter func(d *distributor.Distributor, caller thor.Address, v *big.Int) error

var paramSetters = map[string]paramSetter{
	"maxPurchase":     (*distributor.Distributor).SetMaxPurchase,
	"stakingCap":      (*distributor.Distributor).SetStakingCap,
	"minMigratePhase": (*distributor.Distributor).SetMinMigratePhase,
	"maxStaleness":    (*distributor.Distributor).SetMaxStaleness,
}

// apply executes op. Every operation is atomic on its own.
func apply(ctx context.Context, d *distributor.Distributor, op *Op) error {
	amountOp := func(fn func(amount *big.Int) error) error {
		amount, err := op.amount()
		if err != nil {
			return err
		}
		return fn(amount)
	}
	roleOp := func(fn func(role authority.Role, addr thor.Address) error) error {
		role, ok := authority.ParseRole(op.Role)
		if !ok {
			return fmt.Errorf("%s: unknown role %q", op.Op, op.Role)
		}
		return fn(role, op.holder())
	}

	switch op.Op {
	case "startSale":
		return d.StartSale(op.Caller, op.Time)
	case "endSale":
		return d.EndSale(op.Caller, op.Time)
	case "advancePhase":
		return d.AdvancePhase(op.Caller)
	case "purchase":
		return amountOp(func(a *big.Int) error {
			_, err := d.Purchase(op.Caller, a, op.Time)
			return err
		})
	case "purchaseNative":
		return amountOp(func(a *big.Int) error {
			_, err := d.PurchaseWithNative(ctx, op.Caller, a, op.Time)
			return err
		})
	case "stake":
		return amountOp(func(a *big.Int) error { return d.Stake(op.Caller, a, op.Time) })
	case "unstake":
		return amountOp(func(a *big.Int) error { return d.Unstake(op.Caller, a, op.Time) })
	case "syncStake":
		_, err := d.SyncStake(op.Caller, op.Time)
		return err
	case "claim":
		_, err := d.Claim(op.Caller, op.Time)
		return err
	case "creditGaming":
		return amountOp(func(a *big.Int) error { return d.CreditGaming(op.Caller, op.holder(), a, op.Time) })
	case "requestRewardVesting":
		return amountOp(func(a *big.Int) error { return d.RequestRewardVesting(op.Caller, op.holder(), a) })
	case "resetStake":
		_, err := d.ResetStake(op.Caller, op.holder(), op.Time)
		return err
	case "distributeMarketing":
		return amountOp(func(a *big.Int) error { return d.DistributeMarketing(op.Caller, op.holder(), a) })
	case "distributeGrant":
		return amountOp(func(a *big.Int) error { return d.DistributeGrant(op.Caller, op.holder(), a) })
	case "transfer":
		return amountOp(func(a *big.Int) error { return d.Transfer(op.Caller, op.holder(), a, op.Time) })
	case "migrate":
		_, err := d.Migrate(ctx, op.Caller, op.Time)
		return err
	case "setParam":
		set, ok := paramSetters[op.Param]
		if !ok {
			return fmt.Errorf("setParam: unknown param %q", op.Param)
		}
		return amountOp(func(a *big.Int) error { return set(d, op.Caller, a) })
	case "setStakingEnabled":
		return d.SetStakingEnabled(op.Caller, op.Enabled)
	case "stopRewards":
		return d.StopRewards(op.Caller, op.Time)
	case "setEarlyClaim":
		return d.SetEarlyClaim(op.Caller, op.Enabled)
	case "addBooster":
		_, err := d.AddBooster(op.Caller, op.Start, op.End, op.Multiplier)
		return err
	case "enableMigration":
		return d.EnableMigration(op.Caller)
	case "grantRole":
		return roleOp(func(r authority.Role, a thor.Address) error { return d.GrantRole(op.Caller, r, a) })
	case "revokeRole":
		return roleOp(func(r authority.Role, a thor.Address) error { return d.RevokeRole(op.Caller, r, a) })
	}
	return fmt.Errorf("unknown operation %q", op.Op)
}

// opClock reads the time of the operation being replayed. A fixed price
// answer stamped with it is fresh for that operation.
type opClock struct {
	now uint64
}

func (c *opClock) Now() uint64 {
	if c.now == 0 {
		return unixNow()
	}
	return c.now
}

// replay applies ops in order. With keepGoing, failed operations are logged
// and skipped; otherwise the first failure stops the replay. It returns the
// number of applied operations. clock, when not nil, follows the replayed time.
func replay(ctx context.Context, d *distributor.Distributor, ops []Op, clock *opClock, keepGoing bool) (int, error) {
	applied := 0
	for i := range ops {
		op := &ops[i]
		if clock != nil {
			clock.now = op.Time
		}
		if err := apply(ctx, d, op); err != nil {
			if !keepGoing {
				return applied, errors.WithMessagef(err, "op #%d (%s)", i, op.Op)
			}
			log.Warn("operation rejected", "index", i, "op", op.Op, "err", err)
			continue
		}
		applied++
	}
	return applied, nil
}
