// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/builtin/ledger"
	"github.com/vechain/tokendist/builtin/migration"
	"github.com/vechain/tokendist/builtin/params"
	"github.com/vechain/tokendist/builtin/presale"
	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/builtin/staking"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/state"
	"github.com/vechain/tokendist/thor"
)

// Builtin components binding. Each component owns the storage space of its address.
var (
	Params     = &paramsContract{newContract("Params")}
	Authority  = &authorityContract{newContract("Authority")}
	Token      = &tokenContract{newContract("Token")}
	Settlement = &tokenContract{newContract("Settlement")}
	Native     = &tokenContract{newContract("Native")}
	Vesting    = &vestingContract{newContract("Vesting")}
	Sale       = &saleContract{newContract("Sale")}
	Staking    = &stakingContract{newContract("Staking")}
	Migration  = &migrationContract{newContract("Migration")}
)

type contract struct {
	name    string
	Address thor.Address
}

func newContract(name string) *contract {
	return &contract{name, thor.BytesToAddress([]byte(name))}
}

// Name returns the component name.
func (c *contract) Name() string {
	return c.name
}

func (c *contract) context(state *state.State) *solidity.Context {
	return solidity.NewContext(c.Address, state)
}

type (
	paramsContract    struct{ *contract }
	authorityContract struct{ *contract }
	tokenContract     struct{ *contract }
	vestingContract   struct{ *contract }
	saleContract      struct{ *contract }
	stakingContract   struct{ *contract }
	migrationContract struct{ *contract }
)

func (p *paramsContract) WithState(state *state.State) *params.Params {
	return params.New(p.context(state))
}

func (a *authorityContract) WithState(state *state.State) *authority.Authority {
	return authority.New(a.context(state))
}

func (t *tokenContract) WithState(state *state.State) *ledger.Token {
	return ledger.New(t.context(state))
}

func (v *vestingContract) WithState(state *state.State, config vesting.Config) *vesting.Book {
	return vesting.New(v.context(state), config)
}

func (s *saleContract) WithState(state *state.State, pricer *presale.Pricer, params *params.Params) *presale.Sale {
	return presale.New(s.context(state), pricer, params)
}

func (s *stakingContract) WithState(
	state *state.State,
	config staking.Config,
	params *params.Params,
	saleEnd staking.SaleEndReader,
) *staking.Book {
	return staking.New(s.context(state), config, params, saleEnd)
}

func (m *migrationContract) WithState(
	state *state.State,
	ledger ledger.Ledger,
	locks migration.Locks,
	staking migration.Staking,
	phase migration.PhaseReader,
	params *params.Params,
) *migration.Recorder {
	return migration.New(m.context(state), ledger, locks, staking, phase, params)
}
