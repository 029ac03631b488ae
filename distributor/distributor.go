// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package distributor wires the distribution components on one state and runs
// every mutation as an indivisible transaction.
package distributor

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/tokendist/builtin"
	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/builtin/ledger"
	"github.com/vechain/tokendist/builtin/migration"
	"github.com/vechain/tokendist/builtin/params"
	"github.com/vechain/tokendist/builtin/presale"
	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/builtin/staking"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/kv"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/pricefeed"
	"github.com/vechain/tokendist/state"
	"github.com/vechain/tokendist/thor"
)

var (
	logger = log.WithContext("pkg", "distributor")

	slotBootstrapped = thor.BytesToBytes32([]byte("bootstrapped"))
	selfAddress      = thor.BytesToAddress([]byte("Distributor"))
)

// Distributor is the entry point of every distribution operation.
//
// Mutations take the lock with TryLock: a call arriving while another mutation
// is in progress is rejected. Views share the lock and never observe a half
// applied mutation. External collaborators are only called outside the lock.
type Distributor struct {
	mu      sync.RWMutex
	creator *state.Creator
	config  Config
	pricer  *presale.Pricer
	feed    pricefeed.Feed

	st           *state.State
	bootstrapped *solidity.Raw[bool]
	params       *params.Params
	authority    *authority.Authority
	token        *ledger.Token
	settlement   *ledger.Token
	native       *ledger.Token
	vesting      *vesting.Book
	sale         *presale.Sale
	staking      *staking.Book
	migration    *migration.Recorder
}

// New opens a distributor over db. feed may be nil when native currency
// purchases are not used.
func New(db kv.Store, config Config, feed pricefeed.Feed) (*Distributor, error) {
	pricer, err := presale.NewPricer(config.Phases, config.StepSize)
	if err != nil {
		return nil, errors.WithMessage(err, "sale phases")
	}
	d := &Distributor{
		creator: state.NewCreator(db),
		config:  config,
		pricer:  pricer,
		feed:    feed,
	}
	d.build()
	return d, nil
}

// build binds every component to a fresh state over the committed data.
func (d *Distributor) build() {
	st := d.creator.NewState()
	d.st = st
	d.bootstrapped = solidity.NewRaw[bool](solidity.NewContext(selfAddress, st), slotBootstrapped)
	d.params = builtin.Params.WithState(st)
	d.authority = builtin.Authority.WithState(st)
	d.token = builtin.Token.WithState(st)
	d.settlement = builtin.Settlement.WithState(st)
	d.native = builtin.Native.WithState(st)
	d.vesting = builtin.Vesting.WithState(st, d.config.Vesting)
	d.sale = builtin.Sale.WithState(st, d.pricer, d.params)
	d.staking = builtin.Staking.WithState(st, d.config.Staking, d.params, d.vesting)
	d.migration = builtin.Migration.WithState(st, d.token, d.vesting, d.staking, d.sale, d.params)
}

// Config returns the distribution setup.
func (d *Distributor) Config() Config {
	return d.config
}

// tx runs fn atomically: any error reverts every change fn made.
func (d *Distributor) tx(op string, fn func() error) (err error) {
	if !d.mu.TryLock() {
		metricRejected().AddWithLabel(1, map[string]string{"op": op, "kind": kindLabel(reverts.StateViolation)})
		return reverts.Newf(reverts.StateViolation, "%s rejected: another operation is in progress", op)
	}
	defer d.mu.Unlock()

	start := time.Now()
	checkpoint := d.st.NewCheckpoint()
	defer func() {
		outcome := "ok"
		if err != nil {
			d.st.RevertTo(checkpoint)
			outcome = "reverted"
			metricRejected().AddWithLabel(1, map[string]string{"op": op, "kind": kindLabel(reverts.KindOf(err))})
			logger.Debug("operation reverted", "op", op, "err", err)
		}
		metricOpDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"op": op, "outcome": outcome})
	}()
	return fn()
}

func kindLabel(kind reverts.Kind) string {
	if kind == 0 {
		return "internal"
	}
	return kind.String()
}

// view runs fn under the shared lock.
func (d *Distributor) view(fn func() error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fn()
}

// Commit writes every applied change into the store.
func (d *Distributor) Commit() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stage := d.st.Stage()
	n := stage.Len()
	if err := stage.Commit(); err != nil {
		return errors.WithMessage(err, "commit")
	}
	d.build()
	metricCommits().Add(1)
	logger.Info("committed", "slots", n)
	return nil
}

// Bootstrap applies the one-time initial state.
func (d *Distributor) Bootstrap(b *Bootstrap) error {
	return d.tx("bootstrap", func() error {
		done, err := d.bootstrapped.Get()
		if err != nil {
			return err
		}
		if done {
			return reverts.New(reverts.StateViolation, "already bootstrapped")
		}
		if err := d.bootstrapped.Upsert(true); err != nil {
			return err
		}

		for _, m := range b.Reserves {
			if err := d.token.Mint(m.To, m.Amount); err != nil {
				return errors.WithMessage(err, "fund reserve")
			}
		}
		for _, m := range b.Settlement {
			if err := d.settlement.Mint(m.To, m.Amount); err != nil {
				return errors.WithMessage(err, "settlement balance")
			}
		}
		for _, m := range b.Native {
			if err := d.native.Mint(m.To, m.Amount); err != nil {
				return errors.WithMessage(err, "native balance")
			}
		}

		hasAdmin := false
		for _, g := range b.Roles {
			if err := d.authority.Grant(g.Role, g.Addr); err != nil {
				return err
			}
			hasAdmin = hasAdmin || g.Role == authority.RoleAdmin
		}
		if !hasAdmin {
			return reverts.New(reverts.InvalidInput, "bootstrap grants no admin")
		}

		for key, v := range map[thor.Bytes32]*big.Int{
			thor.KeyMaxPurchase:     b.MaxPurchase,
			thor.KeyStakingCap:      b.StakingCap,
			thor.KeyMinMigratePhase: b.MinMigratePhase,
			thor.KeyMaxStaleness:    b.MaxStaleness,
		} {
			if v != nil {
				d.params.Set(key, v)
			}
		}
		if b.StakingEnabled {
			if err := d.staking.SetEnabled(true); err != nil {
				return err
			}
		}
		logger.Info("bootstrapped", "reserves", len(b.Reserves), "roles", len(b.Roles))
		return nil
	})
}
