// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tokendist/cache"
	"github.com/vechain/tokendist/kv"
)

// Stage abstracts the pending changes of a state.
type Stage struct {
	db      kv.Store
	cache   *cache.LRU[storageKey, rlp.RawValue]
	changes map[storageKey]rlp.RawValue
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes into the underlying store in a single batch.
func (s *Stage) Commit() error {
	batch := s.db.NewBatch()
	for k, v := range s.changes {
		var err error
		if len(v) == 0 {
			err = batch.Delete(k.bytes())
		} else {
			err = batch.Put(k.bytes(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	if s.cache != nil {
		for k, v := range s.changes {
			s.cache.Add(k, v)
		}
	}
	metricStageCommits().Add(1)
	metricStageSlots().Add(int64(len(s.changes)))
	return nil
}
