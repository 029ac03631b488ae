// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "sync"

// Bucket provides logical bucket for kv store.
type Bucket string

type bucketStore struct {
	prefix Bucket
	src    Store
}

type bucketBatch struct {
	prefix Bucket
	src    Batch
}

// NewStore creates a bucket store from the source store.
// Every key is transparently prefixed with the bucket name.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{b, src}
}

func (s *bucketStore) Get(key []byte) ([]byte, error) {
	buf := bufPool.Get().(*buf)
	defer bufPool.Put(buf)
	buf.k = append(append(buf.k[:0], s.prefix...), key...)

	return s.src.Get(buf.k)
}

func (s *bucketStore) Has(key []byte) (bool, error) {
	buf := bufPool.Get().(*buf)
	defer bufPool.Put(buf)
	buf.k = append(append(buf.k[:0], s.prefix...), key...)

	return s.src.Has(buf.k)
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, val []byte) error {
	return s.src.Put(s.prefix.key(key), val)
}

func (s *bucketStore) Delete(key []byte) error {
	return s.src.Delete(s.prefix.key(key))
}

func (s *bucketStore) NewBatch() Batch {
	return &bucketBatch{s.prefix, s.src.NewBatch()}
}

func (b *bucketBatch) Put(key, val []byte) error {
	return b.src.Put(b.prefix.key(key), val)
}

func (b *bucketBatch) Delete(key []byte) error {
	return b.src.Delete(b.prefix.key(key))
}

func (b *bucketBatch) Len() int     { return b.src.Len() }
func (b *bucketBatch) Write() error { return b.src.Write() }

// key returns a fresh prefixed key. Putters may retain the slice, so the pool is not used.
func (b Bucket) key(key []byte) []byte {
	k := make([]byte, 0, len(b)+len(key))
	return append(append(k, b...), key...)
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
