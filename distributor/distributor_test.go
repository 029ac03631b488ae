// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/builtin/presale"
	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/kv"
	"github.com/vechain/tokendist/lvldb"
	"github.com/vechain/tokendist/pricefeed"
	"github.com/vechain/tokendist/thor"
)

const (
	saleStart = uint64(1_700_000_000)
	saleEnd   = saleStart + 30*86400
)

var (
	admin    = thor.BytesToAddress([]byte("admin"))
	gamingC  = thor.BytesToAddress([]byte("gaming-controller"))
	stakingC = thor.BytesToAddress([]byte("staking-controller"))
	alice    = thor.BytesToAddress([]byte("alice"))
	bob      = thor.BytesToAddress([]byte("bob"))

	reserves = Reserves{
		Sale:          thor.BytesToAddress([]byte("reserve-sale")),
		Marketing:     thor.BytesToAddress([]byte("reserve-marketing")),
		Grant:         thor.BytesToAddress([]byte("reserve-grant")),
		Gaming:        thor.BytesToAddress([]byte("reserve-gaming")),
		StakingReward: thor.BytesToAddress([]byte("reserve-reward")),
		Treasury:      thor.BytesToAddress([]byte("treasury")),
	}
	initialSupply = thor.Tokens(128_000_000 + 4*10_000_000)
)

// usd returns settlement units of 6 decimals, in cents.
func usd(cents int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(cents), big.NewInt(10_000))
}

func testConfig() Config {
	config := DefaultConfig(saleEnd)
	config.Reserves = reserves
	config.Phases = []presale.Phase{
		{Start: thor.Tokens(0), End: thor.Tokens(64_000_000), StartPrice: usd(10), EndPrice: usd(13)},
		{Start: thor.Tokens(64_000_000), End: thor.Tokens(128_000_000), StartPrice: usd(13), EndPrice: usd(16)},
	}
	return config
}

func testBootstrap() *Bootstrap {
	return &Bootstrap{
		Reserves: []Mint{
			{reserves.Sale, thor.Tokens(128_000_000)},
			{reserves.Marketing, thor.Tokens(10_000_000)},
			{reserves.Grant, thor.Tokens(10_000_000)},
			{reserves.Gaming, thor.Tokens(10_000_000)},
			{reserves.StakingReward, thor.Tokens(10_000_000)},
		},
		Settlement: []Mint{
			{alice, usd(100_000_000)},
			{bob, usd(100_000_000)},
		},
		Native: []Mint{{alice, thor.Tokens(1_000)}},
		Roles: []RoleGrant{
			{authority.RoleAdmin, admin},
			{authority.RoleGamingController, gamingC},
			{authority.RoleStakingController, stakingC},
		},
		StakingEnabled: true,
	}
}

func newDistributor(t *testing.T, db kv.Store, feed pricefeed.Feed) *Distributor {
	if db == nil {
		mem, err := lvldb.NewMem()
		require.NoError(t, err)
		t.Cleanup(func() { mem.Close() })
		db = mem
	}
	d, err := New(db, testConfig(), feed)
	require.NoError(t, err)
	require.NoError(t, d.Bootstrap(testBootstrap()))
	require.NoError(t, d.StartSale(admin, saleStart))
	return d
}

func TestPurchaseVestsAndPullsPayment(t *testing.T) {
	d := newDistributor(t, nil, nil)

	receipt, err := d.Purchase(alice, usd(100_000_00), saleStart)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(1_000_000), receipt.Tokens)

	sum, err := d.Holder(alice, saleStart)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(1_000_000), sum.Balance)
	assert.Equal(t, thor.Tokens(1_000_000), sum.Locked[vesting.SourceSale])
	assert.Zero(t, sum.Transferable.Sign(), "everything is locked while the sale is open")

	treasury, err := d.SettlementBalance(reserves.Treasury)
	require.NoError(t, err)
	assert.Equal(t, usd(100_000_00), treasury)

	require.NoError(t, d.EndSale(admin, saleEnd))
	sum, err = d.Holder(alice, saleEnd)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(100_000), sum.Transferable)

	err = d.Transfer(alice, bob, thor.Tokens(100_001), saleEnd)
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput))
	require.NoError(t, d.Transfer(alice, bob, thor.Tokens(100_000), saleEnd))
}

func TestFailedPurchaseIsAtomic(t *testing.T) {
	d := newDistributor(t, nil, nil)
	poor := thor.BytesToAddress([]byte("poor"))

	receipt, err := d.Purchase(poor, usd(100), saleStart)
	assert.True(t, reverts.IsKind(err, reverts.ExternalCallFailure))
	assert.Nil(t, receipt)

	// native pull fails after the fill
	feed := &pricefeed.Fixed{Answer: big.NewInt(2_000_00000000), Digits: 8, Clock: func() uint64 { return saleStart }}
	d.feed = feed
	receipt, err = d.PurchaseWithNative(context.Background(), poor, thor.OneToken, saleStart)
	assert.True(t, reverts.IsKind(err, reverts.ExternalCallFailure))
	assert.Nil(t, receipt)

	amount, err := d.Claim(poor, saleStart)
	assert.Error(t, err)
	assert.Nil(t, amount)

	st, err := d.Sale(saleStart)
	require.NoError(t, err)
	assert.Zero(t, st.Sold.Sign())

	sum, err := d.Holder(poor, saleStart)
	require.NoError(t, err)
	assert.Zero(t, sum.Balance.Sign())
	assert.Zero(t, sum.Locked[vesting.SourceSale].Sign())
}

func TestStakeClaimVestsReward(t *testing.T) {
	d := newDistributor(t, nil, nil)
	_, err := d.Purchase(alice, usd(36_500_00), saleStart)
	require.NoError(t, err)

	sum, err := d.Holder(alice, saleStart)
	require.NoError(t, err)
	require.NoError(t, d.Stake(alice, sum.Balance, saleStart))
	err = d.Stake(alice, big.NewInt(1), saleStart)
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput), "nothing left to stake")

	require.NoError(t, d.EndSale(admin, saleEnd))
	// staking starts at sale end, day 0 pays 200% APR
	amount, err := d.Claim(alice, saleEnd+thor.Days(1))
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Div(new(big.Int).Mul(sum.Balance, big.NewInt(2)), big.NewInt(365)), amount)

	sum, err = d.Holder(alice, saleEnd+thor.Days(1))
	require.NoError(t, err)
	assert.Equal(t, amount, sum.Locked[vesting.SourceStakingReward])

	supply, err := d.Supply()
	require.NoError(t, err)
	assert.Equal(t, initialSupply, supply.Total, "rewards come from the reserve")
}

func TestRoleChecks(t *testing.T) {
	d := newDistributor(t, nil, nil)

	err := d.CreditGaming(alice, bob, thor.Tokens(1), saleStart)
	assert.True(t, reverts.IsKind(err, reverts.Unauthorized))
	require.NoError(t, d.CreditGaming(gamingC, bob, thor.Tokens(10), saleStart))
	require.NoError(t, d.CreditGaming(admin, bob, thor.Tokens(10), saleStart))

	err = d.RequestRewardVesting(gamingC, bob, thor.Tokens(1))
	assert.True(t, reverts.IsKind(err, reverts.Unauthorized))
	require.NoError(t, d.RequestRewardVesting(stakingC, bob, thor.Tokens(1)))

	err = d.DistributeMarketing(stakingC, bob, thor.Tokens(1))
	assert.True(t, reverts.IsKind(err, reverts.Unauthorized))
	require.NoError(t, d.DistributeMarketing(admin, bob, thor.Tokens(5)))
	require.NoError(t, d.DistributeGrant(admin, bob, thor.Tokens(7)))

	err = d.RevokeRole(admin, authority.RoleAdmin, admin)
	assert.True(t, reverts.IsKind(err, reverts.StateViolation), "last admin")

	sum, err := d.Holder(bob, saleStart)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(20), sum.Locked[vesting.SourceGamingCredit])
	assert.Equal(t, thor.Tokens(33), sum.Balance)

	detail, err := d.Vesting(bob, vesting.SourceGamingCredit, saleStart, 0, 10)
	require.NoError(t, err)
	assert.Len(t, detail.SubAllocations, 2)
}

// reentrantFeed calls back into the distributor while a purchase is running.
type reentrantFeed struct {
	d        *Distributor
	viewErr  error
	stakeErr error
}

func (f *reentrantFeed) LatestRoundData(context.Context) (*pricefeed.RoundData, error) {
	_, f.viewErr = f.d.Sale(saleStart)
	f.stakeErr = f.d.Stake(bob, big.NewInt(1), saleStart)
	return &pricefeed.RoundData{
		RoundID:         big.NewInt(1),
		Answer:          big.NewInt(2_000_00000000),
		StartedAt:       saleStart,
		UpdatedAt:       saleStart,
		AnsweredInRound: big.NewInt(1),
	}, nil
}

func (f *reentrantFeed) Decimals(context.Context) (uint8, error) { return 8, nil }

func TestFeedCallingBackDoesNotBlock(t *testing.T) {
	feed := &reentrantFeed{}
	d := newDistributor(t, nil, feed)
	feed.d = d

	type result struct {
		receipt *presale.Receipt
		err     error
	}
	done := make(chan result, 1)
	go func() {
		receipt, err := d.PurchaseWithNative(context.Background(), alice, thor.OneToken, saleStart)
		done <- result{receipt, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		// 1 native unit at 2000.00 buys 20000 tokens at 0.10
		assert.Equal(t, thor.Tokens(20_000), res.receipt.Tokens)
	case <-time.After(3 * time.Second):
		t.Fatal("purchase did not return")
	}
	assert.NoError(t, feed.viewErr)
	// bob holds no tokens: the nested stake is judged on its own, not refused as concurrent
	assert.True(t, reverts.IsKind(feed.stakeErr, reverts.InvalidInput))
}

func TestConcurrentMutationIsRejected(t *testing.T) {
	d := newDistributor(t, nil, nil)

	d.mu.Lock()
	err := d.Stake(alice, big.NewInt(1), saleStart)
	d.mu.Unlock()
	assert.True(t, reverts.IsKind(err, reverts.StateViolation))
	assert.Contains(t, err.Error(), "another operation is in progress")
}

func TestStaleFeedRejectsNativePurchase(t *testing.T) {
	feed := &pricefeed.Fixed{Answer: big.NewInt(2_000_00000000), Digits: 8, Clock: func() uint64 { return saleStart }}
	d := newDistributor(t, nil, feed)

	_, err := d.PurchaseWithNative(context.Background(), alice, thor.OneToken, saleStart+3601)
	assert.True(t, reverts.IsKind(err, reverts.StaleExternalData))

	st, err := d.Sale(saleStart)
	require.NoError(t, err)
	assert.Zero(t, st.Sold.Sign())
}

func TestMigrateThroughDistributor(t *testing.T) {
	d := newDistributor(t, nil, nil)
	_, err := d.Purchase(alice, usd(100_000_00), saleStart)
	require.NoError(t, err)
	require.NoError(t, d.Stake(alice, thor.Tokens(500_000), saleStart))
	require.NoError(t, d.EndSale(admin, saleEnd))

	_, err = d.Migrate(context.Background(), alice, saleEnd)
	assert.True(t, reverts.IsKind(err, reverts.StateViolation), "not enabled")

	require.NoError(t, d.EnableMigration(admin))
	rec, err := d.Migrate(context.Background(), alice, saleEnd)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(100_000), rec.Usable)
	assert.Equal(t, thor.Tokens(500_000), rec.Staked)

	_, err = d.Migrate(context.Background(), alice, saleEnd+1)
	assert.True(t, reverts.IsKind(err, reverts.StateViolation))

	supply, err := d.Supply()
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(1_000_000), supply.Burned)

	totals, err := d.StakingTotals()
	require.NoError(t, err)
	assert.Zero(t, totals.TotalStaked.Sign())
}

func TestCommitPersists(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	d := newDistributor(t, db, nil)
	_, err = d.Purchase(alice, usd(100_000_00), saleStart)
	require.NoError(t, err)
	require.NoError(t, d.Commit())

	_, err = d.Purchase(bob, usd(100_000_00), saleStart)
	require.NoError(t, err)

	reopened, err := New(db, testConfig(), nil)
	require.NoError(t, err)
	st, err := reopened.Sale(saleStart)
	require.NoError(t, err)
	assert.Equal(t, thor.Tokens(1_000_000), st.Sold, "uncommitted purchase is not visible")

	assert.True(t, reverts.IsKind(reopened.Bootstrap(testBootstrap()), reverts.StateViolation))
}
