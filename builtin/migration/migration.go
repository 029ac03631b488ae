// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package migration takes a one-shot snapshot of a holder's position, then burns it.
package migration

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tokendist/builtin/ledger"
	"github.com/vechain/tokendist/builtin/params"
	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/builtin/staking"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/metrics"
	"github.com/vechain/tokendist/thor"
)

var (
	logger = log.WithContext("pkg", "migration")

	metricMigrations = metrics.LazyLoadCounterVec("migration_count", []string{"outcome"})

	slotEnabled = thor.BytesToBytes32([]byte("enabled"))
	slotRecords = thor.BytesToBytes32([]byte("records"))

	// DefaultMinPhase is the lowest sale phase at which migration opens.
	DefaultMinPhase = big.NewInt(1)
)

// Record is the immutable snapshot taken when a holder migrates.
type Record struct {
	Usable    *big.Int
	Staked    *big.Int
	Locked    []*big.Int // indexed by vesting.Source
	Migrated  bool
	Timestamp uint64
}

// Staking is the stake book as seen by migration.
type Staking interface {
	PendingRewards(holder thor.Address, now uint64) (*big.Int, error)
	GetStake(holder thor.Address) (*staking.Stake, error)
	ResetStake(holder thor.Address, now uint64) (*big.Int, error)
}

// Locks reports locked amounts by source.
type Locks interface {
	LockedBySource(holder thor.Address, now uint64) ([vesting.NumSources]*big.Int, error)
}

// PhaseReader reports the 1 based current sale phase.
type PhaseReader interface {
	CurrentPhase() (uint64, error)
}

// Recorder migrates holders once each.
type Recorder struct {
	ledger  ledger.Ledger
	locks   Locks
	staking Staking
	phase   PhaseReader
	params  *params.Params

	enabled *solidity.Raw[bool]
	records *solidity.Mapping[thor.Address, *Record]
}

func New(
	sctx *solidity.Context,
	ledger ledger.Ledger,
	locks Locks,
	staking Staking,
	phase PhaseReader,
	params *params.Params,
) *Recorder {
	return &Recorder{
		ledger:  ledger,
		locks:   locks,
		staking: staking,
		phase:   phase,
		params:  params,
		enabled: solidity.NewRaw[bool](sctx, slotEnabled),
		records: solidity.NewMapping[thor.Address, *Record](sctx, slotRecords),
	}
}

// Enabled returns whether migration is open.
func (r *Recorder) Enabled() (bool, error) {
	return r.enabled.Get()
}

// Enable opens migration. It cannot be closed again.
func (r *Recorder) Enable() error {
	enabled, err := r.enabled.Get()
	if err != nil {
		return err
	}
	if enabled {
		return reverts.New(reverts.StateViolation, "migration already enabled")
	}
	logger.Info("migration enabled")
	return r.enabled.Upsert(true)
}

// Record returns the stored snapshot of holder. Migrated is false when there is none.
func (r *Recorder) Record(holder thor.Address) (*Record, error) {
	rec, err := r.records.Get(holder)
	if err != nil {
		return nil, err
	}
	if !rec.Migrated {
		return &Record{Usable: new(big.Int), Staked: new(big.Int)}, nil
	}
	return rec, nil
}

func (r *Recorder) checkOpen(holder thor.Address) error {
	enabled, err := r.enabled.Get()
	if err != nil {
		return err
	}
	if !enabled {
		return reverts.New(reverts.StateViolation, "migration is not enabled")
	}
	phase, err := r.phase.CurrentPhase()
	if err != nil {
		return errors.WithMessage(err, "sale phase")
	}
	minPhase, err := r.params.GetOr(thor.KeyMinMigratePhase, DefaultMinPhase)
	if err != nil {
		return err
	}
	if new(big.Int).SetUint64(phase).Cmp(minPhase) < 0 {
		return reverts.Newf(reverts.StateViolation, "sale phase %d below migration phase %v", phase, minPhase)
	}
	migrated, err := r.records.Exists(holder)
	if err != nil {
		return err
	}
	if migrated {
		return reverts.Newf(reverts.StateViolation, "%v already migrated", holder)
	}
	return nil
}

// Migrate snapshots the holder's position, burns the full balance and resets the stake.
func (r *Recorder) Migrate(ctx context.Context, holder thor.Address, now uint64) (*Record, error) {
	logger.Debug("migrate", "holder", holder, "now", now)
	if holder.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "zero holder")
	}
	if err := r.checkOpen(holder); err != nil {
		metricMigrations().AddWithLabel(1, map[string]string{"outcome": "rejected"})
		return nil, err
	}

	// the pending reward check must succeed and return exactly zero
	if err := ctx.Err(); err != nil {
		return nil, reverts.Wrap(reverts.ExternalCallFailure, err, "pending rewards query")
	}
	pending, err := r.staking.PendingRewards(holder, now)
	if err != nil {
		return nil, reverts.Wrap(reverts.ExternalCallFailure, err, "pending rewards query")
	}
	if pending == nil {
		return nil, reverts.New(reverts.ExternalCallFailure, "pending rewards query returned nothing")
	}
	if pending.Sign() != 0 {
		metricMigrations().AddWithLabel(1, map[string]string{"outcome": "rejected"})
		return nil, reverts.Newf(reverts.StateViolation, "%v has %v pending staking rewards", holder, pending)
	}

	balance, err := r.ledger.BalanceOf(holder)
	if err != nil {
		return nil, errors.WithMessage(err, "balance")
	}
	locked, err := r.locks.LockedBySource(holder, now)
	if err != nil {
		return nil, errors.WithMessage(err, "locked by source")
	}
	stake, err := r.staking.GetStake(holder)
	if err != nil {
		return nil, errors.WithMessage(err, "stake")
	}

	usable := new(big.Int).Set(balance)
	for _, l := range locked {
		usable.Sub(usable, l)
	}
	if usable.Sign() < 0 {
		usable.SetUint64(0)
	}
	rec := &Record{
		Usable:    usable,
		Staked:    new(big.Int).Set(stake.Principal),
		Locked:    locked[:],
		Migrated:  true,
		Timestamp: now,
	}
	if err := r.records.Set(holder, rec); err != nil {
		return nil, err
	}

	if balance.Sign() > 0 {
		if err := r.ledger.Burn(holder, balance); err != nil {
			return nil, errors.WithMessage(err, "burn")
		}
	}
	if rec.Staked.Sign() > 0 {
		if _, err := r.staking.ResetStake(holder, now); err != nil {
			return nil, errors.WithMessage(err, "reset stake")
		}
	}
	metricMigrations().AddWithLabel(1, map[string]string{"outcome": "migrated"})
	logger.Info("migrated", "holder", holder, "usable", rec.Usable, "staked", rec.Staked, "burned", balance)
	return rec, nil
}
