// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/thor"
)

var logger = log.WithContext("pkg", "params")

// Params stores administrative parameters, one uint256 slot per key.
type Params struct {
	sctx *solidity.Context
}

func New(sctx *solidity.Context) *Params {
	return &Params{sctx}
}

// Get native way to get param.
func (p *Params) Get(key thor.Bytes32) (*big.Int, error) {
	return solidity.NewUint256(p.sctx, key).Get()
}

// Set native way to set param.
func (p *Params) Set(key thor.Bytes32, value *big.Int) {
	logger.Debug("set param", "key", string(trimKey(key)), "value", value)
	solidity.NewUint256(p.sctx, key).Set(value)
}

// GetOr returns the param, or def when it was never set.
func (p *Params) GetOr(key thor.Bytes32, def *big.Int) (*big.Int, error) {
	v, err := p.Get(key)
	if err != nil {
		return nil, err
	}
	if v.Sign() == 0 {
		return new(big.Int).Set(def), nil
	}
	return v, nil
}

func trimKey(key thor.Bytes32) []byte {
	b := key.Bytes()
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	return b
}
