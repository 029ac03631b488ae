// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/lvldb"
	"github.com/vechain/tokendist/state"
	"github.com/vechain/tokendist/thor"
)

func TestParamsGetSet(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.NewCreator(db).NewState()
	p := New(solidity.NewContext(thor.BytesToAddress([]byte("par")), st))

	setv := big.NewInt(10)
	key := thor.BytesToBytes32([]byte("key"))
	p.Set(key, setv)

	getv, err := p.Get(key)
	require.NoError(t, err)
	assert.Equal(t, setv, getv)

	v, err := p.GetOr(thor.KeyMaxStaleness, thor.InitialMaxStaleness)
	require.NoError(t, err)
	assert.Equal(t, thor.InitialMaxStaleness, v)

	v, err = p.GetOr(key, big.NewInt(99))
	require.NoError(t, err)
	assert.Equal(t, setv, v)

	assert.Equal(t, "max-staleness", string(trimKey(thor.KeyMaxStaleness)))
}
