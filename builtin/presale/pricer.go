// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package presale

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/thor"
)

// Phase is a priced tranche of the sale. Start and End are positions of the
// cumulative sold counter in token base units, prices are settlement base units
// per whole token.
type Phase struct {
	Start      *big.Int
	End        *big.Int
	StartPrice *big.Int
	EndPrice   *big.Int
}

// Capacity returns End - Start.
func (p *Phase) Capacity() *big.Int {
	return new(big.Int).Sub(p.End, p.Start)
}

// Pricer prices the phases of the sale. It is stateless.
type Pricer struct {
	phases   []Phase
	stepSize *big.Int
}

// DefaultStepSize is the width of a price step, 1,000,000 whole tokens.
var DefaultStepSize = thor.Tokens(1_000_000)

// NewPricer validates the phases and returns a pricer.
func NewPricer(phases []Phase, stepSize *big.Int) (*Pricer, error) {
	if len(phases) == 0 {
		return nil, reverts.New(reverts.InvalidInput, "no sale phases")
	}
	if stepSize == nil || stepSize.Sign() <= 0 {
		return nil, reverts.New(reverts.InvalidInput, "step size must be positive")
	}
	prevEnd := new(big.Int)
	for i, p := range phases {
		switch {
		case p.Start == nil || p.End == nil || p.StartPrice == nil || p.EndPrice == nil:
			return nil, reverts.Newf(reverts.InvalidInput, "phase %d is incomplete", i+1)
		case p.Start.Cmp(prevEnd) < 0:
			return nil, reverts.Newf(reverts.InvalidInput, "phase %d overlaps the previous phase", i+1)
		case p.End.Cmp(p.Start) <= 0:
			return nil, reverts.Newf(reverts.InvalidInput, "phase %d has no capacity", i+1)
		case p.StartPrice.Sign() <= 0 || p.EndPrice.Cmp(p.StartPrice) < 0:
			return nil, reverts.Newf(reverts.InvalidInput, "phase %d prices must be positive and non-decreasing", i+1)
		}
		prevEnd = p.End
	}
	return &Pricer{phases: phases, stepSize: stepSize}, nil
}

// Phases returns the number of phases.
func (p *Pricer) Phases() int {
	return len(p.phases)
}

// Phase returns the phase at the zero based index.
func (p *Pricer) Phase(index int) Phase {
	return p.phases[index]
}

// TotalCapacity is the end of the last phase.
func (p *Pricer) TotalCapacity() *big.Int {
	return new(big.Int).Set(p.phases[len(p.phases)-1].End)
}

// PriceAt returns the unit price in the phase at the zero based index after
// soldInPhase base units have been sold in it.
func (p *Pricer) PriceAt(index int, soldInPhase *big.Int) *big.Int {
	ph := p.phases[index]

	// steps = ceil(capacity / stepSize)
	steps := new(big.Int).Add(ph.Capacity(), p.stepSize)
	steps.Sub(steps, big.NewInt(1)).Div(steps, p.stepSize)
	if steps.Cmp(big.NewInt(1)) <= 0 {
		return new(big.Int).Set(ph.EndPrice)
	}

	stepPrice := new(big.Int).Sub(ph.EndPrice, ph.StartPrice)
	stepPrice.Div(stepPrice, steps.Sub(steps, big.NewInt(1)))

	step := new(big.Int).Div(soldInPhase, p.stepSize)
	price := step.Mul(step, stepPrice).Add(step, ph.StartPrice)
	if price.Cmp(ph.EndPrice) > 0 {
		return new(big.Int).Set(ph.EndPrice)
	}
	return price
}

// mulDiv returns x*y/d rounded down, or up when roundUp is set.
func mulDiv(x, y, d *big.Int, roundUp bool) (*big.Int, error) {
	ux, overflow := uint256.FromBig(x)
	if overflow {
		return nil, reverts.Newf(reverts.InvalidInput, "%v overflows uint256", x)
	}
	uy, overflow := uint256.FromBig(y)
	if overflow {
		return nil, reverts.Newf(reverts.InvalidInput, "%v overflows uint256", y)
	}
	ud := uint256.MustFromBig(d)

	z, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		return nil, reverts.Newf(reverts.InvalidInput, "%v * %v / %v overflows uint256", x, y, d)
	}
	if roundUp && !new(uint256.Int).MulMod(ux, uy, ud).IsZero() {
		z.AddUint64(z, 1)
	}
	return z.ToBig(), nil
}
