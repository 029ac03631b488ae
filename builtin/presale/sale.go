// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package presale

import (
	"math/big"

	"github.com/vechain/tokendist/builtin/params"
	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/thor"
)

var (
	logger = log.WithContext("pkg", "presale")

	slotSold       = thor.BytesToBytes32([]byte("sold"))
	slotPhaseIndex = thor.BytesToBytes32([]byte("phase-index"))
	slotStartTime  = thor.BytesToBytes32([]byte("start-time"))
	slotEndTime    = thor.BytesToBytes32([]byte("end-time"))
)

// Fill is the part of a purchase served by one phase.
type Fill struct {
	Phase  uint64 // 1 based
	Price  *big.Int
	Tokens *big.Int
	Cost   *big.Int
}

// Receipt is the outcome of a purchase.
type Receipt struct {
	Tokens  *big.Int
	Cost    *big.Int
	Unspent *big.Int
	Fills   []Fill
}

// State is a snapshot of the sale.
type State struct {
	Sold          *big.Int
	Phase         uint64 // 1 based, Phases+1 once sold out
	Phases        uint64
	TotalCapacity *big.Int
	StartTime     uint64
	EndTime       uint64
	Active        bool
}

// Sale keeps the cumulative sold counter and the phase index. Both only grow.
type Sale struct {
	pricer     *Pricer
	params     *params.Params
	sold       *solidity.Uint256
	phaseIndex *solidity.Uint256
	startTime  *solidity.Uint256
	endTime    *solidity.Uint256
}

func New(sctx *solidity.Context, pricer *Pricer, params *params.Params) *Sale {
	return &Sale{
		pricer:     pricer,
		params:     params,
		sold:       solidity.NewUint256(sctx, slotSold),
		phaseIndex: solidity.NewUint256(sctx, slotPhaseIndex),
		startTime:  solidity.NewUint256(sctx, slotStartTime),
		endTime:    solidity.NewUint256(sctx, slotEndTime),
	}
}

// Pricer returns the phase pricer.
func (s *Sale) Pricer() *Pricer {
	return s.pricer
}

func (s *Sale) counters() (sold *big.Int, index int, err error) {
	if sold, err = s.sold.Get(); err != nil {
		return nil, 0, err
	}
	idx, err := s.phaseIndex.Get()
	if err != nil {
		return nil, 0, err
	}
	return sold, int(idx.Uint64()), nil
}

func (s *Sale) times() (start, end uint64, err error) {
	st, err := s.startTime.Get()
	if err != nil {
		return 0, 0, err
	}
	en, err := s.endTime.Get()
	if err != nil {
		return 0, 0, err
	}
	return st.Uint64(), en.Uint64(), nil
}

// State returns the sale snapshot at now.
func (s *Sale) State(now uint64) (*State, error) {
	sold, index, err := s.counters()
	if err != nil {
		return nil, err
	}
	start, end, err := s.times()
	if err != nil {
		return nil, err
	}
	return &State{
		Sold:          sold,
		Phase:         uint64(index) + 1,
		Phases:        uint64(s.pricer.Phases()),
		TotalCapacity: s.pricer.TotalCapacity(),
		StartTime:     start,
		EndTime:       end,
		Active:        isActive(start, end, now) && index < s.pricer.Phases(),
	}, nil
}

// CurrentPhase returns the 1 based index of the active phase.
func (s *Sale) CurrentPhase() (uint64, error) {
	_, index, err := s.counters()
	if err != nil {
		return 0, err
	}
	return uint64(index) + 1, nil
}

func isActive(start, end, now uint64) bool {
	return start != 0 && now >= start && (end == 0 || now < end)
}

// Start opens the sale at t.
func (s *Sale) Start(t uint64) error {
	start, _, err := s.times()
	if err != nil {
		return err
	}
	if start != 0 {
		return reverts.New(reverts.StateViolation, "sale already started")
	}
	if t == 0 {
		return reverts.New(reverts.InvalidInput, "start time is zero")
	}
	s.startTime.Set(new(big.Int).SetUint64(t))
	logger.Info("sale started", "time", t)
	return nil
}

// End closes the sale at t. Purchases are rejected from t on.
func (s *Sale) End(t uint64) error {
	start, end, err := s.times()
	if err != nil {
		return err
	}
	if start == 0 {
		return reverts.New(reverts.StateViolation, "sale not started")
	}
	if end != 0 {
		return reverts.New(reverts.StateViolation, "sale already ended")
	}
	if t < start {
		return reverts.Newf(reverts.InvalidInput, "end time %d before start time %d", t, start)
	}
	s.endTime.Set(new(big.Int).SetUint64(t))
	logger.Info("sale ended", "time", t)
	return nil
}

// AdvancePhase moves to the next phase and raises the counter to its start.
func (s *Sale) AdvancePhase() error {
	sold, index, err := s.counters()
	if err != nil {
		return err
	}
	if index+1 >= s.pricer.Phases() {
		return reverts.Newf(reverts.StateViolation, "no phase after phase %d", index+1)
	}
	index++
	if start := s.pricer.Phase(index).Start; sold.Cmp(start) < 0 {
		sold.Set(start)
	}
	s.sold.Set(sold)
	s.phaseIndex.Set(big.NewInt(int64(index)))
	logger.Info("phase advanced", "phase", index+1, "sold", sold)
	return nil
}

// Quote dry-runs a purchase of payment settlement units at now.
func (s *Sale) Quote(payment *big.Int, now uint64) (*Receipt, error) {
	receipt, _, _, err := s.fill(payment, now)
	return receipt, err
}

// Process fills a purchase greedily across phases and advances the counters.
func (s *Sale) Process(payment *big.Int, now uint64) (*Receipt, error) {
	logger.Debug("process purchase", "payment", payment, "now", now)

	receipt, sold, index, err := s.fill(payment, now)
	if err != nil {
		return nil, err
	}
	s.sold.Set(sold)
	s.phaseIndex.Set(big.NewInt(int64(index)))

	metricTokensSold().Add(new(big.Int).Div(receipt.Tokens, thor.OneToken).Int64())
	metricPurchases().AddWithLabel(1, map[string]string{"phases": phasesLabel(len(receipt.Fills))})
	logger.Info("purchase processed", "tokens", receipt.Tokens, "cost", receipt.Cost, "phase", index+1)
	return receipt, nil
}

func (s *Sale) fill(payment *big.Int, now uint64) (*Receipt, *big.Int, int, error) {
	if payment == nil || payment.Sign() <= 0 {
		return nil, nil, 0, reverts.New(reverts.InvalidInput, "payment must be positive")
	}
	maxPurchase, err := s.params.GetOr(thor.KeyMaxPurchase, thor.InitialMaxPurchase)
	if err != nil {
		return nil, nil, 0, err
	}
	if payment.Cmp(maxPurchase) > 0 {
		return nil, nil, 0, reverts.Newf(reverts.CapacityExceeded, "payment %v above maximum %v", payment, maxPurchase)
	}
	start, end, err := s.times()
	if err != nil {
		return nil, nil, 0, err
	}
	if !isActive(start, end, now) {
		return nil, nil, 0, reverts.New(reverts.StateViolation, "sale is not active")
	}
	sold, index, err := s.counters()
	if err != nil {
		return nil, nil, 0, err
	}
	if index >= s.pricer.Phases() {
		return nil, nil, 0, reverts.New(reverts.StateViolation, "sale is sold out")
	}

	receipt := &Receipt{
		Tokens:  new(big.Int),
		Cost:    new(big.Int),
		Unspent: new(big.Int).Set(payment),
	}
	for receipt.Unspent.Sign() > 0 && index < s.pricer.Phases() {
		ph := s.pricer.Phase(index)
		price := s.pricer.PriceAt(index, new(big.Int).Sub(sold, ph.Start))

		tokens, err := mulDiv(receipt.Unspent, thor.OneToken, price, false)
		if err != nil {
			return nil, nil, 0, err
		}
		if remaining := new(big.Int).Sub(ph.End, sold); tokens.Cmp(remaining) > 0 {
			tokens = remaining
		}
		if tokens.Sign() == 0 {
			break
		}
		cost, err := mulDiv(tokens, price, thor.OneToken, true)
		if err != nil {
			return nil, nil, 0, err
		}

		receipt.Unspent.Sub(receipt.Unspent, cost)
		receipt.Tokens.Add(receipt.Tokens, tokens)
		receipt.Cost.Add(receipt.Cost, cost)
		receipt.Fills = append(receipt.Fills, Fill{Phase: uint64(index) + 1, Price: price, Tokens: tokens, Cost: cost})

		sold.Add(sold, tokens)
		if sold.Cmp(ph.End) == 0 {
			index++
			if index < s.pricer.Phases() {
				if next := s.pricer.Phase(index).Start; sold.Cmp(next) < 0 {
					sold.Set(next)
				}
			}
		}
	}
	if receipt.Tokens.Sign() == 0 {
		return nil, nil, 0, reverts.Newf(reverts.InvalidInput, "payment %v buys no tokens", payment)
	}
	return receipt, sold, index, nil
}

func phasesLabel(n int) string {
	if n > 1 {
		return "multi"
	}
	return "single"
}
