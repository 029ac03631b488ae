// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pricefeed

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokendist/builtin/reverts"
)

const now = uint64(1_700_000_000)

type staticFeed struct {
	round *RoundData
	err   error
}

func (s *staticFeed) LatestRoundData(context.Context) (*RoundData, error) { return s.round, s.err }
func (s *staticFeed) Decimals(context.Context) (uint8, error)             { return 8, nil }

func round(answer int64, updatedAt uint64, roundID, answeredIn int64) *RoundData {
	return &RoundData{
		RoundID:         big.NewInt(roundID),
		Answer:          big.NewInt(answer),
		StartedAt:       updatedAt,
		UpdatedAt:       updatedAt,
		AnsweredInRound: big.NewInt(answeredIn),
	}
}

func TestCheckerPrice(t *testing.T) {
	tests := []struct {
		name string
		feed *staticFeed
		kind reverts.Kind
	}{
		{"fresh", &staticFeed{round: round(2_000_00000000, now-10, 5, 5)}, 0},
		{"exactly at window", &staticFeed{round: round(1, now-3600, 5, 5)}, 0},
		{"zero price", &staticFeed{round: round(0, now, 5, 5)}, reverts.StaleExternalData},
		{"negative price", &staticFeed{round: round(-1, now, 5, 5)}, reverts.StaleExternalData},
		{"incomplete round", &staticFeed{round: round(1, 0, 5, 5)}, reverts.StaleExternalData},
		{"answered in older round", &staticFeed{round: round(1, now, 5, 4)}, reverts.StaleExternalData},
		{"stale", &staticFeed{round: round(1, now-3601, 5, 5)}, reverts.StaleExternalData},
		{"updated after now", &staticFeed{round: round(1, now+1, 5, 5)}, reverts.StaleExternalData},
		{"far future", &staticFeed{round: round(1, now+1_000_000, 5, 5)}, reverts.StaleExternalData},
		{"call failure", &staticFeed{err: errors.New("rpc down")}, reverts.ExternalCallFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChecker(tt.feed, 3600, DefaultSettlementDecimals).Price(context.Background(), now)
			if tt.kind == 0 {
				assert.NoError(t, err)
			} else {
				assert.True(t, reverts.IsKind(err, tt.kind), "%v", err)
			}
		})
	}
}

func TestToSettlement(t *testing.T) {
	// 2000.00000000 settlement per native unit, 8 feed decimals
	c := NewChecker(&staticFeed{round: round(2_000_00000000, now, 1, 1)}, 3600, 6)

	v, err := c.ToSettlement(context.Background(), new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil), now)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200_000000), v)

	_, err = c.ToSettlement(context.Background(), new(big.Int), now)
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput))
}

func TestFixed(t *testing.T) {
	f := &Fixed{Answer: big.NewInt(5), Digits: 2, Clock: func() uint64 { return now }}
	c := NewChecker(f, 60, 6)
	price, err := c.Price(context.Background(), now+60)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), price)

	_, err = c.Price(context.Background(), now+61)
	assert.True(t, reverts.IsKind(err, reverts.StaleExternalData))
}

type fakeCaller struct {
	to  common.Address
	err error
}

func (f *fakeCaller) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.to = *call.To
	for name, m := range parsedAggregatorABI.Methods {
		if !bytes.Equal(call.Data[:4], m.ID) {
			continue
		}
		if name == "decimals" {
			return m.Outputs.Pack(uint8(8))
		}
		return m.Outputs.Pack(big.NewInt(7), big.NewInt(123), big.NewInt(int64(now-1)), big.NewInt(int64(now)), big.NewInt(7))
	}
	return nil, errors.New("unknown selector")
}

func TestAggregator(t *testing.T) {
	addr := common.HexToAddress("0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419")
	caller := &fakeCaller{}
	agg := NewAggregator(caller, addr)

	rd, err := agg.LatestRoundData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addr, caller.to)
	assert.Equal(t, big.NewInt(123), rd.Answer)
	assert.Equal(t, now, rd.UpdatedAt)
	assert.Equal(t, big.NewInt(7), rd.AnsweredInRound)

	d, err := agg.Decimals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(8), d)

	caller.err = errors.New("boom")
	_, err = NewChecker(agg, 3600, 6).Price(context.Background(), now)
	assert.True(t, reverts.IsKind(err, reverts.ExternalCallFailure))
}
