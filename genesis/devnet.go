// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/tokendist/thor"
)

// DevAccount is a well-known account of the dev network.
type DevAccount struct {
	Name    string
	Address thor.Address
}

var devAccounts = func() []DevAccount {
	names := []string{"admin", "gaming", "staking", "migration", "alice", "bob"}
	accs := make([]DevAccount, 0, len(names))
	for _, n := range names {
		accs = append(accs, DevAccount{Name: n, Address: thor.BytesToAddress([]byte("dev-" + n))})
	}
	return accs
}()

// DevAccounts returns the dev network accounts: admin, the three controllers,
// then two funded buyers.
func DevAccounts() []DevAccount {
	return append([]DevAccount(nil), devAccounts...)
}

func dec(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

func decBig(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func devReserve(name string, amount int64) Account {
	return Account{Address: thor.BytesToAddress([]byte("dev-reserve-" + name)), Amount: dec(amount)}
}

// Devnet returns a five phase launch with funded dev accounts. Prices are in
// settlement units of six decimals.
func Devnet(launchTime uint64) *Genesis {
	cent := int64(10_000)
	phases := make([]Phase, 0, 5)
	for i := int64(0); i < 5; i++ {
		phases = append(phases, Phase{
			Start:      dec(i * 64_000_000),
			End:        dec((i + 1) * 64_000_000),
			StartPrice: dec((10 + 3*i) * cent),
			EndPrice:   dec((13 + 3*i) * cent),
		})
	}
	usd := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1_000_000))
	native := new(big.Int).Mul(big.NewInt(1_000), thor.OneToken)

	accs := devAccounts
	return &Genesis{
		LaunchTime: launchTime,
		Reserves: Reserves{
			Sale:          devReserve("sale", 320_000_000),
			Marketing:     devReserve("marketing", 50_000_000),
			LongTermGrant: devReserve("grant", 100_000_000),
			Gaming:        devReserve("gaming", 50_000_000),
			StakingReward: devReserve("reward", 100_000_000),
			Treasury:      thor.BytesToAddress([]byte("dev-treasury")),
		},
		Sale:    Sale{Phases: phases},
		Staking: Staking{Cap: dec(500_000_000), Enabled: true},
		Params: Params{
			MaxPurchase:  dec(1_000_000 * 1_000_000),
			MaxStaleness: 3600,
		},
		Feed: Feed{Answer: dec(2_000 * 100_000_000), Decimals: 8},
		Roles: []Role{
			{Role: "admin", Address: accs[0].Address},
			{Role: "gaming-controller", Address: accs[1].Address},
			{Role: "staking-controller", Address: accs[2].Address},
			{Role: "migration-controller", Address: accs[3].Address},
		},
		Settlement: []Account{
			{Address: accs[4].Address, Amount: decBig(usd)},
			{Address: accs[5].Address, Amount: decBig(usd)},
		},
		Native: []Account{
			{Address: accs[4].Address, Amount: decBig(native)},
			{Address: accs[5].Address, Amount: decBig(native)},
		},
	}
}
