// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pricefeed

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const aggregatorABI = `[
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"uint8"}]},
	{"name":"latestRoundData","type":"function","stateMutability":"view","inputs":[],
	 "outputs":[
		{"name":"roundId","type":"uint80"},
		{"name":"answer","type":"int256"},
		{"name":"startedAt","type":"uint256"},
		{"name":"updatedAt","type":"uint256"},
		{"name":"answeredInRound","type":"uint80"}]}
]`

var parsedAggregatorABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(aggregatorABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// Caller executes read-only contract calls, as ethclient.Client does.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Aggregator reads an on-chain aggregator contract.
type Aggregator struct {
	caller Caller
	addr   common.Address
}

var _ Feed = (*Aggregator)(nil)

func NewAggregator(caller Caller, addr common.Address) *Aggregator {
	return &Aggregator{caller: caller, addr: addr}
}

func (a *Aggregator) call(ctx context.Context, method string) ([]any, error) {
	data, err := parsedAggregatorABI.Pack(method)
	if err != nil {
		return nil, err
	}
	out, err := a.caller.CallContract(ctx, ethereum.CallMsg{To: &a.addr, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrap(err, method)
	}
	return parsedAggregatorABI.Unpack(method, out)
}

func (a *Aggregator) LatestRoundData(ctx context.Context) (*RoundData, error) {
	values, err := a.call(ctx, "latestRoundData")
	if err != nil {
		return nil, err
	}
	if len(values) != 5 {
		return nil, errors.Errorf("latestRoundData returned %d values", len(values))
	}
	var (
		roundID, _         = values[0].(*big.Int)
		answer, _          = values[1].(*big.Int)
		startedAt, _       = values[2].(*big.Int)
		updatedAt, _       = values[3].(*big.Int)
		answeredInRound, _ = values[4].(*big.Int)
	)
	if roundID == nil || answer == nil || startedAt == nil || updatedAt == nil || answeredInRound == nil {
		return nil, errors.New("latestRoundData returned unexpected types")
	}
	if !updatedAt.IsUint64() || !startedAt.IsUint64() {
		return nil, errors.New("latestRoundData timestamps overflow")
	}
	return &RoundData{
		RoundID:         roundID,
		Answer:          answer,
		StartedAt:       startedAt.Uint64(),
		UpdatedAt:       updatedAt.Uint64(),
		AnsweredInRound: answeredInRound,
	}, nil
}

func (a *Aggregator) Decimals(ctx context.Context) (uint8, error) {
	values, err := a.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	if len(values) != 1 {
		return 0, errors.Errorf("decimals returned %d values", len(values))
	}
	d, ok := values[0].(uint8)
	if !ok {
		return 0, errors.New("decimals returned unexpected type")
	}
	return d, nil
}
