// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pricefeed converts native currency payments into settlement units using an
// untrusted external price feed.
package pricefeed

import (
	"context"
	"math/big"

	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/metrics"
)

var (
	logger = log.WithContext("pkg", "pricefeed")

	metricRejected = metrics.LazyLoadCounterVec("pricefeed_rejected_count", []string{"reason"})
)

// RoundData is one answer of an aggregator round.
type RoundData struct {
	RoundID         *big.Int
	Answer          *big.Int
	StartedAt       uint64
	UpdatedAt       uint64
	AnsweredInRound *big.Int
}

// Feed reports the price of one native currency unit.
type Feed interface {
	LatestRoundData(ctx context.Context) (*RoundData, error)
	Decimals(ctx context.Context) (uint8, error)
}

// Checker validates feed answers before they are used.
type Checker struct {
	feed               Feed
	maxStaleness       uint64
	settlementDecimals uint8
}

// DefaultSettlementDecimals is the precision of the settlement asset.
const DefaultSettlementDecimals = 6

func NewChecker(feed Feed, maxStaleness uint64, settlementDecimals uint8) *Checker {
	return &Checker{feed: feed, maxStaleness: maxStaleness, settlementDecimals: settlementDecimals}
}

func reject(reason, format string, args ...any) error {
	metricRejected().AddWithLabel(1, map[string]string{"reason": reason})
	err := reverts.Newf(reverts.StaleExternalData, format, args...)
	logger.Info("price rejected", "reason", reason, "err", err)
	return err
}

// Price returns the latest answer after checking it is positive, complete and fresh at now.
// An answer stamped after now is rejected.
func (c *Checker) Price(ctx context.Context, now uint64) (*big.Int, error) {
	round, err := c.feed.LatestRoundData(ctx)
	if err != nil {
		return nil, reverts.Wrap(reverts.ExternalCallFailure, err, "latest round data")
	}
	switch {
	case round.Answer == nil || round.Answer.Sign() <= 0:
		return nil, reject("non-positive", "non-positive price %v", round.Answer)
	case round.UpdatedAt == 0:
		return nil, reject("incomplete", "round %v incomplete", round.RoundID)
	case round.AnsweredInRound == nil || round.RoundID == nil || round.AnsweredInRound.Cmp(round.RoundID) < 0:
		return nil, reject("stale-round", "answered in round %v before round %v", round.AnsweredInRound, round.RoundID)
	case round.UpdatedAt > now:
		return nil, reject("future", "price updated at %d is after %d", round.UpdatedAt, now)
	case now-round.UpdatedAt > c.maxStaleness:
		return nil, reject("stale", "price updated at %d is older than %ds", round.UpdatedAt, c.maxStaleness)
	}
	return round.Answer, nil
}

// ToSettlement converts amount native base units (18 decimals) into settlement base units.
func (c *Checker) ToSettlement(ctx context.Context, amount *big.Int, now uint64) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, reverts.New(reverts.InvalidInput, "amount must be positive")
	}
	price, err := c.Price(ctx, now)
	if err != nil {
		return nil, err
	}
	decimals, err := c.feed.Decimals(ctx)
	if err != nil {
		return nil, reverts.Wrap(reverts.ExternalCallFailure, err, "feed decimals")
	}
	// amount * price * 10^settlement / (10^18 * 10^feed)
	v := new(big.Int).Mul(amount, price)
	v.Mul(v, pow10(c.settlementDecimals))
	v.Div(v, new(big.Int).Mul(pow10(18), pow10(decimals)))
	logger.Debug("converted", "amount", amount, "price", price, "settlement", v)
	return v, nil
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// Fixed is a feed with a constant answer that is always fresh.
type Fixed struct {
	Answer   *big.Int
	Digits   uint8
	Clock    func() uint64
	roundSeq int64
}

func (f *Fixed) LatestRoundData(context.Context) (*RoundData, error) {
	f.roundSeq++
	round := big.NewInt(f.roundSeq)
	return &RoundData{
		RoundID:         round,
		Answer:          new(big.Int).Set(f.Answer),
		StartedAt:       f.Clock(),
		UpdatedAt:       f.Clock(),
		AnsweredInRound: round,
	}, nil
}

func (f *Fixed) Decimals(context.Context) (uint8, error) {
	return f.Digits, nil
}
