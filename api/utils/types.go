// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// Amount renders a big integer as a hex quantity. Nil renders as zero.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return (*math.HexOrDecimal256)(new(big.Int))
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

// Amounts renders each value with Amount.
func Amounts(vs []*big.Int) []*math.HexOrDecimal256 {
	out := make([]*math.HexOrDecimal256, 0, len(vs))
	for _, v := range vs {
		out = append(out, Amount(v))
	}
	return out
}
