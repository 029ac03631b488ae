// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/distributor"
	"github.com/vechain/tokendist/genesis"
	"github.com/vechain/tokendist/lvldb"
	"github.com/vechain/tokendist/thor"
)

const launch = uint64(1_700_000_000)

func newDevDistributor(t *testing.T) (*distributor.Distributor, *opClock) {
	gen := genesis.Devnet(launch)
	cfg, boot, err := gen.Build()
	require.NoError(t, err)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &opClock{now: launch}
	feed, err := gen.FixedFeed(clock.Now)
	require.NoError(t, err)
	d, err := distributor.New(db, cfg, feed)
	require.NoError(t, err)
	require.NoError(t, d.Bootstrap(boot))
	require.NoError(t, storeGenesis(db, gen))
	return d, clock
}

func TestReplay(t *testing.T) {
	d, clock := newDevDistributor(t)
	accs := genesis.DevAccounts()
	admin, gaming, alice, bob := accs[0].Address, accs[1].Address, accs[4].Address, accs[5].Address

	doc := fmt.Sprintf(`
- {op: startSale, caller: "%[1]v", time: %[5]d}
- {op: purchase, caller: "%[3]v", amount: 1000000, time: %[6]d}
- {op: purchaseNative, caller: "%[4]v", amount: 1000000000000000000, time: %[6]d}
- {op: creditGaming, caller: "%[2]v", holder: "%[3]v", amount: 5000000000000000000, time: %[6]d}
- {op: setParam, caller: "%[1]v", param: maxStaleness, amount: 7200}
- {op: addBooster, caller: "%[1]v", start: %[5]d, end: %[7]d, multiplier: 200}
- {op: grantRole, caller: "%[1]v", role: migration-controller, holder: "%[4]v"}
- {op: endSale, caller: "%[1]v", time: %[7]d}
`, admin, gaming, alice, bob, launch, launch+10, launch+20)

	ops, err := parseOps([]byte(doc))
	require.NoError(t, err)
	applied, err := replay(context.Background(), d, ops, clock, false)
	require.NoError(t, err)
	assert.Equal(t, len(ops), applied)
	assert.Equal(t, launch+20, clock.Now())

	sum, err := d.Holder(alice, launch+30)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(15), sum.Balance)

	// 1 native at 2000 buys 20000 tokens at the phase start price
	sum, err = d.Holder(bob, launch+30)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(20_000), sum.Balance)

	ok, err := d.HasRole(authority.RoleMigrationController, bob)
	require.NoError(t, err)
	assert.True(t, ok)

	boosters, err := d.Boosters(0, 10)
	require.NoError(t, err)
	assert.Len(t, boosters, 1)
}

func TestReplayStopsOrSkips(t *testing.T) {
	accs := genesis.DevAccounts()
	alice := accs[4].Address
	doc := fmt.Sprintf(`
- {op: startSale, caller: "%[1]v", time: %[3]d}
- {op: endSale, caller: "%[2]v", time: %[3]d}
- {op: purchase, caller: "%[2]v", amount: 100000, time: %[3]d}
`, accs[0].Address, alice, launch)
	ops, err := parseOps([]byte(doc))
	require.NoError(t, err)

	d, clock := newDevDistributor(t)
	applied, err := replay(context.Background(), d, ops, clock, false)
	assert.True(t, reverts.IsKind(err, reverts.Unauthorized))
	assert.Equal(t, 1, applied)

	d, clock = newDevDistributor(t)
	applied, err = replay(context.Background(), d, ops, clock, true)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	sum, err := d.Holder(alice, launch)
	require.NoError(t, err)
	assert.Equal(t, thor.OneToken, sum.Balance)
}

func TestApplyErrors(t *testing.T) {
	d, _ := newDevDistributor(t)
	admin := genesis.DevAccounts()[0].Address

	tests := []struct {
		op     Op
		errStr string
	}{
		{Op{Op: "mint"}, `unknown operation "mint"`},
		{Op{Op: "purchase", Caller: admin}, "purchase: amount required"},
		{Op{Op: "setParam", Caller: admin, Param: "fee"}, `setParam: unknown param "fee"`},
		{Op{Op: "grantRole", Caller: admin, Role: "root"}, `grantRole: unknown role "root"`},
	}
	for _, tt := range tests {
		err := apply(context.Background(), d, &tt.op)
		assert.EqualError(t, err, tt.errStr)
	}

	_, err := parseOps([]byte("- {op: stake, amout: 1}"))
	assert.Error(t, err)
}

func TestStoredGenesis(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = storedGenesis(db)
	assert.EqualError(t, err, "database not initialized, run init first")

	gen := genesis.Devnet(launch)
	require.NoError(t, storeGenesis(db, gen))
	assert.EqualError(t, storeGenesis(db, gen), "database already initialized")

	back, err := storedGenesis(db)
	require.NoError(t, err)
	assert.Equal(t, gen.LaunchTime, back.LaunchTime)

	cfg1, _, err := gen.Build()
	require.NoError(t, err)
	cfg2, _, err := back.Build()
	require.NoError(t, err)
	assert.Equal(t, cfg1.Reserves, cfg2.Reserves)
	assert.Equal(t, big.NewInt(0).Cmp(cfg2.Phases[0].Start), 0)
}
