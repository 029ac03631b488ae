// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlake2b(t *testing.T) {
	joined := Blake2b([]byte("multiple data"))
	assert.Equal(t, joined, Blake2b([]byte("multi"), []byte("ple "), []byte("data")))
	assert.NotEqual(t, joined, Blake2b([]byte("data")))

	h := NewBlake2b()
	h.Write([]byte("multiple data"))
	assert.Equal(t, joined.Bytes(), h.Sum(nil))
}

func TestBlake2bFn(t *testing.T) {
	h := Blake2bFn(func(w io.Writer) {
		w.Write([]byte("custom writer"))
	})
	assert.Equal(t, Blake2b([]byte("custom writer")), h)
}
