// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import lru "github.com/hashicorp/golang-lru"

// LRU is a typed, size bounded cache over golang-lru. It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	c *lru.Cache
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c}, nil
}

func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.c.Get(key); ok {
		return v.(V), true
	}
	var zero V
	return zero, false
}

func (l *LRU[K, V]) Add(key K, value V) {
	l.c.Add(key, value)
}

func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

// GetOrLoad first try to get from cache, do load if missed.
// Failed loads are not cached.
func (l *LRU[K, V]) GetOrLoad(key K, loader func(K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return v, err
	}
	l.Add(key, v)
	return v, nil
}
