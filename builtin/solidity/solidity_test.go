// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokendist/lvldb"
	"github.com/vechain/tokendist/state"
	"github.com/vechain/tokendist/thor"
)

type TestStruct struct {
	Field1 uint64
	Amount *big.Int
	Addr1  thor.Address
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(thor.Address{1}, state.NewCreator(db).NewState())
}

func TestRaw(t *testing.T) {
	ctx := newTestContext(t)
	raw := NewRaw[*TestStruct](ctx, thor.Bytes32{1})

	empty, err := raw.Get()
	require.NoError(t, err)
	assert.NotNil(t, empty, "empty slots decode into a zero value")
	assert.Equal(t, uint64(0), empty.Field1)

	value := &TestStruct{Field1: 7, Amount: big.NewInt(100), Addr1: thor.Address{9}}
	require.NoError(t, raw.Upsert(value))

	got, err := raw.Get()
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	mapping := NewMapping[thor.Address, *TestStruct](ctx, thor.Bytes32{2})

	exists, err := mapping.Exists(thor.Address{1})
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, mapping.Set(thor.Address{1}, &TestStruct{Field1: 1, Amount: big.NewInt(1)}))
	require.NoError(t, mapping.Set(thor.Address{2}, &TestStruct{Field1: 2, Amount: big.NewInt(2)}))

	got, err := mapping.Get(thor.Address{1})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Field1)

	got, err = mapping.Get(thor.Address{2})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2), got.Amount)

	exists, err = mapping.Exists(thor.Address{2})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, thor.Bytes32{3})

	value, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, value.Sign())

	u.Set(big.NewInt(1000))
	require.NoError(t, u.Add(big.NewInt(500)))
	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1500), value)

	require.NoError(t, u.Sub(big.NewInt(1500)))
	assert.Error(t, u.Sub(big.NewInt(1)))

	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, value.Sign(), "underflow leaves storage untouched")
}

func TestArray(t *testing.T) {
	ctx := newTestContext(t)
	arr := NewArray[*TestStruct](ctx, thor.Bytes32{4})

	for i := uint64(0); i < 5; i++ {
		idx, err := arr.Push(&TestStruct{Field1: i * 10})
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}

	l, err := arr.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), l)

	item, err := arr.Get(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), item.Field1)

	_, err = arr.Get(5)
	assert.Error(t, err)

	page, err := arr.Slice(1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(10), page[0].Field1)
	assert.Equal(t, uint64(20), page[1].Field1)

	page, err = arr.Slice(4, 10)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, err = arr.Slice(9, 1)
	require.NoError(t, err)
	assert.Empty(t, page)

	var seen []uint64
	require.NoError(t, arr.Range(func(i uint64, v *TestStruct) (bool, error) {
		seen = append(seen, v.Field1)
		return i < 2, nil
	}))
	assert.Equal(t, []uint64{0, 10, 20}, seen)
}

func TestRevertDiscardsWrites(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, thor.Bytes32{5})
	u.Set(big.NewInt(1))

	rev := ctx.State().NewCheckpoint()
	u.Set(big.NewInt(2))
	ctx.State().RevertTo(rev)

	value, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), value)
}
