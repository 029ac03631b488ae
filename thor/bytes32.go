// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// Bytes32 array of 32 bytes. Storage slots and param keys are Bytes32.
type Bytes32 [32]byte

// String implements stringer
func (b Bytes32) String() string {
	return hexutil.Encode(b[:])
}

// Bytes returns byte slice form of Bytes32.
func (b Bytes32) Bytes() []byte {
	return b[:]
}

// IsZero returns if Bytes32 has all zero bytes.
func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

// MarshalText encodes as 0x prefixed hex.
func (b Bytes32) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes exactly 32 bytes of 0x prefixed hex.
func (b *Bytes32) UnmarshalText(text []byte) error {
	data, err := hexutil.Decode(string(text))
	if err != nil {
		return errors.WithMessage(err, "bytes32")
	}
	if len(data) != len(b) {
		return errors.Errorf("bytes32: invalid length %d", len(data))
	}
	copy(b[:], data)
	return nil
}

// BytesToBytes32 converts bytes slice into Bytes32.
// If b is larger than Bytes32 legnth, b will be cropped (from the left).
// If b is smaller than Bytes32 length, b will be extended (from the left).
func BytesToBytes32(b []byte) Bytes32 {
	var b32 Bytes32
	if len(b) > len(b32) {
		b = b[len(b)-len(b32):]
	}
	copy(b32[len(b32)-len(b):], b)
	return b32
}
