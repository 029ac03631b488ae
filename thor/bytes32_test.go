// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package thor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesToBytes32(t *testing.T) {
	b := BytesToBytes32([]byte("master"))
	assert.Equal(t, "0x00000000000000000000000000000000000000000000000000006d6173746572", b.String())
	assert.False(t, b.IsZero())
	assert.True(t, Bytes32{}.IsZero())

	long := make([]byte, 40)
	long[8] = 1
	assert.Equal(t, byte(1), BytesToBytes32(long)[0])
}

func TestBytes32Text(t *testing.T) {
	key := BytesToBytes32([]byte("staking-cap"))
	data, err := json.Marshal(key)
	require.NoError(t, err)
	assert.Equal(t, `"`+key.String()+`"`, string(data))

	var back Bytes32
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, key, back)

	assert.EqualError(t, back.UnmarshalText([]byte("0x0102")), "bytes32: invalid length 2")
	assert.Error(t, back.UnmarshalText([]byte("zz")))
}
