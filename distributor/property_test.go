// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/thor"
)

type randomOp struct {
	Kind   uint8
	Holder uint8
	Amount uint32
	Delay  uint16 // hours
	Start  uint16 // hours from now
	Span   uint16 // hours
	Mult   uint16
}

func TestRandomSequencesPreserveInvariants(t *testing.T) {
	holders := []thor.Address{alice, bob, thor.BytesToAddress([]byte("carol"))}

	for seed := int64(0); seed < 8; seed++ {
		d := newDistributor(t, nil, nil)
		f := fuzz.NewWithSeed(seed).NilChance(0)

		now := saleStart
		ended := false
		for step := 0; step < 120; step++ {
			var op randomOp
			f.Fuzz(&op)
			holder := holders[int(op.Holder)%len(holders)]
			amount := new(big.Int).Mul(big.NewInt(int64(op.Amount%50_000)+1), thor.OneToken)
			now += uint64(op.Delay%72) * 3600

			var err error
			switch op.Kind % 8 {
			case 0:
				_, err = d.Purchase(holder, usd(int64(op.Amount%1_000_000)+1), now)
			case 1:
				err = d.Stake(holder, amount, now)
			case 2:
				err = d.Unstake(holder, amount, now)
			case 3:
				_, err = d.Claim(holder, now)
			case 4:
				start := now + uint64(op.Start%240)*3600
				_, err = d.AddBooster(admin, start, start+uint64(op.Span%240+1)*3600, uint64(op.Mult%400)+100)
			case 5:
				err = d.CreditGaming(gamingC, holder, amount, now)
			case 6:
				err = d.Transfer(holder, holders[(int(op.Holder)+1)%len(holders)], amount, now)
			case 7:
				if !ended && now > saleEnd {
					err = d.EndSale(admin, now)
					ended = err == nil
				}
			}
			if err != nil {
				require.True(t, reverts.IsRevertErr(err), "unexpected failure: %v", err)
			}

			supply, err := d.Supply()
			require.NoError(t, err)
			require.LessOrEqual(t, supply.Total.Cmp(initialSupply), 0, "supply grew at step %d", step)

			for _, h := range holders {
				sum, err := d.Holder(h, now)
				require.NoError(t, err)
				require.LessOrEqual(t, sum.Staked.Cmp(sum.Balance), 0, "staked above balance")
				for _, source := range vesting.Sources() {
					detail, err := d.Vesting(h, source, now, 0, 0)
					require.NoError(t, err)
					require.LessOrEqual(t, detail.Unlocked.Cmp(detail.Allocation.Total), 0,
						"unlocked above total for %v at step %d", source, step)
				}
			}
		}
		assert.Zero(t, d.LockedFloorHits())
	}
}
