// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"

	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/builtin/presale"
	"github.com/vechain/tokendist/builtin/staking"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/pricefeed"
	"github.com/vechain/tokendist/thor"
)

// Reserves are the accounts distributions are paid from, plus the treasury
// receiving sale payments.
type Reserves struct {
	Sale          thor.Address
	Marketing     thor.Address
	Grant         thor.Address
	Gaming        thor.Address
	StakingReward thor.Address
	Treasury      thor.Address
}

// Config is the immutable setup of a distribution.
type Config struct {
	Reserves           Reserves
	Phases             []presale.Phase
	StepSize           *big.Int
	Vesting            vesting.Config
	Staking            staking.Config
	SettlementDecimals uint8
}

// DefaultConfig returns a config with launch terms and no phases.
func DefaultConfig(stakingStart uint64) Config {
	return Config{
		StepSize:           presale.DefaultStepSize,
		Vesting:            vesting.DefaultConfig(),
		Staking:            staking.DefaultConfig(stakingStart),
		SettlementDecimals: pricefeed.DefaultSettlementDecimals,
	}
}

// Mint credits To with Amount at bootstrap.
type Mint struct {
	To     thor.Address
	Amount *big.Int
}

// RoleGrant gives Role to Addr at bootstrap.
type RoleGrant struct {
	Role authority.Role
	Addr thor.Address
}

// Bootstrap is the one-time initial state: reserve funding, settlement and
// native balances, roles and params. Nil params keep their defaults.
type Bootstrap struct {
	Reserves        []Mint
	Settlement      []Mint
	Native          []Mint
	Roles           []RoleGrant
	MaxPurchase     *big.Int
	StakingCap      *big.Int
	MinMigratePhase *big.Int
	MaxStaleness    *big.Int
	StakingEnabled  bool
}
