// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/lvldb"
	"github.com/vechain/tokendist/state"
	"github.com/vechain/tokendist/thor"
)

const saleEnd = uint64(1_700_000_000)

var holder = thor.BytesToAddress([]byte("holder"))

func newBook(t *testing.T, config Config) *Book {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(thor.BytesToAddress([]byte("vesting")), state.NewCreator(db).NewState()), config)
}

func unlocked(t *testing.T, b *Book, source Source, now uint64) *big.Int {
	v, err := b.UnlockedAmount(holder, source, now)
	require.NoError(t, err)
	return v
}

func TestNothingUnlocksWhileSaleOpen(t *testing.T) {
	b := newBook(t, DefaultConfig())
	require.NoError(t, b.AddSale(holder, 1, thor.Tokens(1000)))
	require.NoError(t, b.AddFixed(holder, SourceMarketing, thor.Tokens(10)))
	require.NoError(t, b.AddGrant(holder, thor.Tokens(10)))

	for _, source := range Sources() {
		assert.Zero(t, unlocked(t, b, source, saleEnd*2).Sign(), source.String())
	}
	locked, err := b.TotalLocked(holder, saleEnd*2)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(1020), locked)
}

func TestPhaseOneScenario(t *testing.T) {
	b := newBook(t, DefaultConfig())
	amount := thor.Tokens(1000)
	require.NoError(t, b.AddSale(holder, 1, amount))
	require.NoError(t, b.SetSaleEnd(saleEnd))

	assert.Zero(t, unlocked(t, b, SourceSale, saleEnd-1).Sign())
	assert.Equal(t, thor.Tokens(100), unlocked(t, b, SourceSale, saleEnd))
	assert.Equal(t, thor.Tokens(100), unlocked(t, b, SourceSale, saleEnd+thor.Days(1)))

	// 10% + 90% * 100/200
	assert.Equal(t, thor.Tokens(550), unlocked(t, b, SourceSale, saleEnd+thor.Days(1)+thor.Days(100)))
	assert.Equal(t, amount, unlocked(t, b, SourceSale, saleEnd+thor.Days(1)+thor.Days(200)))
	assert.Equal(t, amount, unlocked(t, b, SourceSale, saleEnd+thor.Days(1000)))
}

func TestSaleSumsPerSubAllocation(t *testing.T) {
	b := newBook(t, DefaultConfig())
	require.NoError(t, b.AddSale(holder, 1, thor.Tokens(100)))
	require.NoError(t, b.AddSale(holder, 5, thor.Tokens(100)))
	require.NoError(t, b.SetSaleEnd(saleEnd))

	// 10 + 30 at sale end
	assert.Equal(t, thor.Tokens(40), unlocked(t, b, SourceSale, saleEnd))
	// phase 5 fully released after 90 days, phase 1 at 90/200
	want := new(big.Int).Div(thor.Tokens(10*(10+100)+90*90*10/200), big.NewInt(10))
	assert.Equal(t, want, unlocked(t, b, SourceSale, saleEnd+thor.Days(91)))

	subs, err := b.SubAllocations(holder, SourceSale, 1, 10)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, uint64(5), subs[0].Tag)
}

func TestGamingAndFixedSources(t *testing.T) {
	b := newBook(t, DefaultConfig())
	require.NoError(t, b.AddGamingCredit(holder, thor.Tokens(100), 42))
	require.NoError(t, b.AddFixed(holder, SourceStakingReward, thor.Tokens(7)))
	require.NoError(t, b.AddGrant(holder, thor.Tokens(720)))
	require.NoError(t, b.SetSaleEnd(saleEnd))

	assert.Equal(t, thor.Tokens(20), unlocked(t, b, SourceGamingCredit, saleEnd))
	assert.Equal(t, thor.Tokens(20+80*75/150), unlocked(t, b, SourceGamingCredit, saleEnd+thor.Days(76)))

	assert.Zero(t, unlocked(t, b, SourceStakingReward, saleEnd+thor.Days(30)-1).Sign())
	assert.Equal(t, thor.Tokens(7), unlocked(t, b, SourceStakingReward, saleEnd+thor.Days(30)))

	assert.Zero(t, unlocked(t, b, SourceLongTermGrant, saleEnd+thor.Days(180)).Sign())
	assert.Equal(t, thor.Tokens(360), unlocked(t, b, SourceLongTermGrant, saleEnd+thor.Days(180+360)))
	assert.Equal(t, thor.Tokens(720), unlocked(t, b, SourceLongTermGrant, saleEnd+thor.Days(5000)))

	alloc, err := b.Allocation(holder, SourceLongTermGrant)
	require.NoError(t, err)
	assert.Equal(t, LinearAfterCliff, alloc.Mode)
	assert.Equal(t, thor.Days(720), alloc.Duration)

	alloc, err = b.Allocation(holder, SourceGamingCredit)
	require.NoError(t, err)
	assert.Equal(t, thor.Days(151), alloc.Duration)
}

func TestMonotoneAndConserved(t *testing.T) {
	b := newBook(t, DefaultConfig())
	f := fuzz.New().NilChance(0)

	for i := 0; i < 20; i++ {
		var n uint32
		f.Fuzz(&n)
		amount := new(big.Int).Add(big.NewInt(int64(n)), thor.OneToken)
		require.NoError(t, b.AddSale(holder, uint64(i%5)+1, amount))
		require.NoError(t, b.AddGamingCredit(holder, amount, uint64(i)))
	}
	require.NoError(t, b.AddFixed(holder, SourceMarketing, thor.Tokens(3)))
	require.NoError(t, b.AddGrant(holder, big.NewInt(1234567)))
	require.NoError(t, b.SetSaleEnd(saleEnd))

	prev := make(map[Source]*big.Int)
	for now := saleEnd - thor.Days(1); now < saleEnd+thor.Days(1000); now += 28807 {
		for _, source := range Sources() {
			u := unlocked(t, b, source, now)
			locked, err := b.LockedAmount(holder, source, now)
			require.NoError(t, err)
			alloc, err := b.Allocation(holder, source)
			require.NoError(t, err)

			assert.Equal(t, alloc.Total, new(big.Int).Add(u, locked), "conservation %v at %d", source, now)
			assert.LessOrEqual(t, u.Cmp(alloc.Total), 0)
			if p, ok := prev[source]; ok {
				assert.GreaterOrEqual(t, u.Cmp(p), 0, "monotone %v at %d", source, now)
			}
			prev[source] = u
		}
	}
	assert.Zero(t, b.FloorHits())
}

func TestLockedFloorIsInstrumented(t *testing.T) {
	config := DefaultConfig()
	config.Gaming.ImmediatePct = 150
	b := newBook(t, config)
	require.NoError(t, b.AddGamingCredit(holder, thor.Tokens(10), 1))
	require.NoError(t, b.SetSaleEnd(saleEnd))

	locked, err := b.LockedAmount(holder, SourceGamingCredit, saleEnd)
	require.NoError(t, err)
	assert.Zero(t, locked.Sign())
	assert.Equal(t, uint64(1), b.FloorHits())
}

func TestBookErrors(t *testing.T) {
	config := DefaultConfig()
	config.MaxSubAllocations = 2
	b := newBook(t, config)

	require.NoError(t, b.AddSale(holder, 1, big.NewInt(1)))
	require.NoError(t, b.AddSale(holder, 2, big.NewInt(1)))

	tests := []struct {
		name string
		err  error
		kind reverts.Kind
	}{
		{"sub-allocation cap", b.AddSale(holder, 3, big.NewInt(1)), reverts.CapacityExceeded},
		{"unknown phase", b.AddSale(holder, 6, big.NewInt(1)), reverts.InvalidInput},
		{"zero amount", b.AddGrant(holder, new(big.Int)), reverts.InvalidInput},
		{"zero holder", b.AddGrant(thor.Address{}, big.NewInt(1)), reverts.InvalidInput},
		{"not fixed", b.AddFixed(holder, SourceLongTermGrant, big.NewInt(1)), reverts.InvalidInput},
		{"zero sale end", b.SetSaleEnd(0), reverts.InvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, reverts.IsKind(tt.err, tt.kind), "%v", tt.err)
		})
	}

	require.NoError(t, b.SetSaleEnd(saleEnd))
	assert.True(t, reverts.IsKind(b.SetSaleEnd(saleEnd+1), reverts.StateViolation))

	_, err := b.SubAllocations(holder, SourceMarketing, 0, 0)
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput))

	s, ok := ParseSource("gamingCredit")
	assert.True(t, ok)
	assert.Equal(t, SourceGamingCredit, s)
}
