// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tokendist/cache"
	"github.com/vechain/tokendist/kv"
)

const defaultCacheSize = 4096

// Creator is the factory of states sharing one store and one read cache.
type Creator struct {
	db    kv.Store
	cache *cache.LRU[storageKey, rlp.RawValue]
}

// NewCreator create a state creator.
func NewCreator(db kv.Store) *Creator {
	c, _ := cache.NewLRU[storageKey, rlp.RawValue](defaultCacheSize)
	return &Creator{
		db:    storageBucket.NewStore(db),
		cache: c,
	}
}

// NewState create a fresh state on top of the committed data.
func (c *Creator) NewState() *State {
	return newState(c.db, c.cache)
}
