// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger is the fungible balance ledger the distribution components are layered on.
package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/thor"
)

var (
	logger = log.WithContext("pkg", "ledger")

	slotBalances = thor.BytesToBytes32([]byte("balances"))
	slotSupply   = thor.BytesToBytes32([]byte("total-supply"))
	slotBurned   = thor.BytesToBytes32([]byte("total-burned"))
)

// Reader is the read side of a balance ledger.
type Reader interface {
	BalanceOf(addr thor.Address) (*big.Int, error)
	TotalSupply() (*big.Int, error)
}

// Ledger is a fungible balance ledger.
type Ledger interface {
	Reader
	Transfer(from, to thor.Address, amount *big.Int) error
	Mint(to thor.Address, amount *big.Int) error
	Burn(from thor.Address, amount *big.Int) error
}

// Token is a Ledger kept in state storage.
type Token struct {
	balances *solidity.Mapping[thor.Address, *big.Int]
	supply   *solidity.Uint256
	burned   *solidity.Uint256
}

var _ Ledger = (*Token)(nil)

func New(sctx *solidity.Context) *Token {
	return &Token{
		balances: solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		supply:   solidity.NewUint256(sctx, slotSupply),
		burned:   solidity.NewUint256(sctx, slotBurned),
	}
}

func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	return t.balances.Get(addr)
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

// TotalBurned returns the amount removed from supply by Burn.
func (t *Token) TotalBurned() (*big.Int, error) {
	return t.burned.Get()
}

func (t *Token) getAndSetBalance(addr thor.Address, cb func(bal *big.Int) error) error {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return err
	}
	if err := cb(bal); err != nil {
		return err
	}
	return t.balances.Set(addr, bal)
}

func validate(addr thor.Address, amount *big.Int) error {
	if addr.IsZero() {
		return reverts.New(reverts.InvalidInput, "zero address")
	}
	if amount == nil || amount.Sign() < 0 {
		return reverts.New(reverts.InvalidInput, "negative amount")
	}
	return nil
}

func (t *Token) sub(from thor.Address, amount *big.Int) error {
	return t.getAndSetBalance(from, func(bal *big.Int) error {
		if bal.Cmp(amount) < 0 {
			return reverts.Newf(reverts.InvalidInput, "insufficient balance: %v < %v", bal, amount)
		}
		bal.Sub(bal, amount)
		return nil
	})
}

func (t *Token) add(to thor.Address, amount *big.Int) error {
	return t.getAndSetBalance(to, func(bal *big.Int) error {
		bal.Add(bal, amount)
		return nil
	})
}

// Transfer moves amount from one holder to another.
func (t *Token) Transfer(from, to thor.Address, amount *big.Int) error {
	if err := validate(from, amount); err != nil {
		return err
	}
	if err := validate(to, amount); err != nil {
		return err
	}
	if err := t.sub(from, amount); err != nil {
		return err
	}
	if err := t.add(to, amount); err != nil {
		return errors.Wrap(err, "credit")
	}
	logger.Debug("transfer", "from", from, "to", to, "amount", amount)
	return nil
}

// Mint creates amount new tokens for to.
func (t *Token) Mint(to thor.Address, amount *big.Int) error {
	if err := validate(to, amount); err != nil {
		return err
	}
	if err := t.add(to, amount); err != nil {
		return err
	}
	logger.Info("minted", "to", to, "amount", amount)
	return t.supply.Add(amount)
}

// Burn destroys amount tokens of from.
func (t *Token) Burn(from thor.Address, amount *big.Int) error {
	if err := validate(from, amount); err != nil {
		return err
	}
	if err := t.sub(from, amount); err != nil {
		return err
	}
	if err := t.supply.Sub(amount); err != nil {
		return errors.Wrap(err, "supply")
	}
	logger.Info("burned", "from", from, "amount", amount)
	return t.burned.Add(amount)
}
