// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextResolvesRootLazily(t *testing.T) {
	logger := WithContext("pkg", "vesting")

	var buf bytes.Buffer
	SetDefault(NewJSONHandler(&buf, 3))
	defer SetDefault(NewJSONHandler(&bytes.Buffer{}, 0))

	logger.Info("added allocation", "amount", 10)
	logger.Debug("filtered out")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "added allocation", rec["msg"])
	assert.Equal(t, "vesting", rec["pkg"])
	assert.Equal(t, float64(10), rec["amount"])
}

func TestWithAppendsContext(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewJSONHandler(&buf, 5))
	defer SetDefault(NewJSONHandler(&bytes.Buffer{}, 0))

	l := WithContext("pkg", "staking").With("holder", "0x01")
	assert.True(t, l.Enabled(LevelDebug))
	l.Debug("staked")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "staking", rec["pkg"])
	assert.Equal(t, "0x01", rec["holder"])
}
