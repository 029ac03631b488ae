// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tokendist/thor"
)

// Array is an append-only list. Items get stable indices and can never be removed.
type Array[V any] struct {
	length *Uint256
	items  *Mapping[index, V]
}

type index uint64

func (i index) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(i))
}

func NewArray[V any](context *Context, pos thor.Bytes32) *Array[V] {
	return &Array[V]{
		length: NewUint256(context, pos),
		items:  NewMapping[index, V](context, thor.Blake2b(pos.Bytes(), []byte("items"))),
	}
}

// Len returns the number of items.
func (a *Array[V]) Len() (uint64, error) {
	l, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return l.Uint64(), nil
}

// Push appends the value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	l, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.items.Set(index(l), value); err != nil {
		return 0, err
	}
	a.length.Set(new(big.Int).SetUint64(l + 1))
	return l, nil
}

// Get returns the item at i.
func (a *Array[V]) Get(i uint64) (value V, err error) {
	l, err := a.Len()
	if err != nil {
		return value, err
	}
	if i >= l {
		return value, errors.Errorf("index %d out of range [0, %d)", i, l)
	}
	return a.items.Get(index(i))
}

// Slice returns at most limit items starting at offset.
func (a *Array[V]) Slice(offset, limit uint64) ([]V, error) {
	l, err := a.Len()
	if err != nil {
		return nil, err
	}
	if offset >= l {
		return nil, nil
	}
	end := l
	if limit > 0 && offset+limit < l {
		end = offset + limit
	}
	values := make([]V, 0, end-offset)
	for i := offset; i < end; i++ {
		v, err := a.items.Get(index(i))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Range iterates every item in order until cb returns false or an error.
func (a *Array[V]) Range(cb func(i uint64, value V) (bool, error)) error {
	l, err := a.Len()
	if err != nil {
		return err
	}
	for i := uint64(0); i < l; i++ {
		v, err := a.items.Get(index(i))
		if err != nil {
			return err
		}
		next, err := cb(i, v)
		if err != nil || !next {
			return err
		}
	}
	return nil
}
