// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokendist/lvldb"
	"github.com/vechain/tokendist/state"
	"github.com/vechain/tokendist/thor"
)

func TestAddressesAreDistinct(t *testing.T) {
	seen := make(map[thor.Address]string)
	for _, c := range []*contract{
		Params.contract, Authority.contract, Token.contract, Settlement.contract, Native.contract,
		Vesting.contract, Sale.contract, Staking.contract, Migration.contract,
	} {
		prev, dup := seen[c.Address]
		assert.False(t, dup, "%s shares an address with %s", c.Name(), prev)
		seen[c.Address] = c.Name()
	}
}

func TestTokensAreSeparate(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	st := state.NewCreator(db).NewState()

	holder := thor.BytesToAddress([]byte("holder"))
	require.NoError(t, Token.WithState(st).Mint(holder, thor.Tokens(1)))

	bal, err := Settlement.WithState(st).BalanceOf(holder)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())

	bal, err = Token.WithState(st).BalanceOf(holder)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(1), bal)
}
