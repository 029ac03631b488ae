// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/tokendist/builtin/authority"
	"github.com/vechain/tokendist/builtin/presale"
	"github.com/vechain/tokendist/builtin/staking"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/distributor"
	"github.com/vechain/tokendist/pricefeed"
	"github.com/vechain/tokendist/thor"
)

// Genesis is the user supplied launch document.
// Token amounts are whole tokens, settlement amounts and prices are settlement
// base units, native amounts are native base units.
type Genesis struct {
	LaunchTime uint64    `yaml:"launchTime"`
	Reserves   Reserves  `yaml:"reserves"`
	Sale       Sale      `yaml:"sale"`
	Vesting    *Vesting  `yaml:"vesting,omitempty"`
	Staking    Staking   `yaml:"staking"`
	Params     Params    `yaml:"params"`
	Feed       Feed      `yaml:"feed"`
	Roles      []Role    `yaml:"roles"`
	Settlement []Account `yaml:"settlement,omitempty"`
	Native     []Account `yaml:"native,omitempty"`
}

// Account is an address with an amount.
type Account struct {
	Address thor.Address          `yaml:"address"`
	Amount  *math.HexOrDecimal256 `yaml:"amount"`
}

// Reserves are the funded distribution accounts. Treasury only receives.
type Reserves struct {
	Sale          Account      `yaml:"sale"`
	Marketing     Account      `yaml:"marketing"`
	LongTermGrant Account      `yaml:"longTermGrant"`
	Gaming        Account      `yaml:"gaming"`
	StakingReward Account      `yaml:"stakingReward"`
	Treasury      thor.Address `yaml:"treasury"`
}

// Phase bounds are whole tokens of the cumulative sold counter.
type Phase struct {
	Start      *math.HexOrDecimal256 `yaml:"start"`
	End        *math.HexOrDecimal256 `yaml:"end"`
	StartPrice *math.HexOrDecimal256 `yaml:"startPrice"`
	EndPrice   *math.HexOrDecimal256 `yaml:"endPrice"`
}

type Sale struct {
	StepSize *math.HexOrDecimal256 `yaml:"stepSize,omitempty"`
	Phases   []Phase               `yaml:"phases"`
}

type Schedule struct {
	CliffDays    uint64 `yaml:"cliffDays"`
	DurationDays uint64 `yaml:"durationDays"`
	Mode         string `yaml:"mode"`
}

type Tranche struct {
	ImmediatePct uint64 `yaml:"immediatePct"`
	LinearDays   uint64 `yaml:"linearDays"`
}

// Vesting overrides the default release terms as a whole.
type Vesting struct {
	Marketing         Schedule  `yaml:"marketing"`
	LongTermGrant     Schedule  `yaml:"longTermGrant"`
	StakingReward     Schedule  `yaml:"stakingReward"`
	SaleTranches      []Tranche `yaml:"saleTranches"`
	Gaming            Tranche   `yaml:"gaming"`
	LinearDelayDays   uint64    `yaml:"linearDelayDays"`
	MaxSubAllocations uint64    `yaml:"maxSubAllocations"`
}

// Staking zero values keep the defaults.
type Staking struct {
	Start          uint64                `yaml:"start,omitempty"`
	InitialAPR     uint64                `yaml:"initialAPR,omitempty"`
	PlateauAPR     uint64                `yaml:"plateauAPR,omitempty"`
	FloorAPR       uint64                `yaml:"floorAPR,omitempty"`
	DecayDays      uint64                `yaml:"decayDays,omitempty"`
	PlateauDays    uint64                `yaml:"plateauDays,omitempty"`
	MaxAccrualDays uint64                `yaml:"maxAccrualDays,omitempty"`
	MaxBoosters    uint64                `yaml:"maxBoosters,omitempty"`
	Cap            *math.HexOrDecimal256 `yaml:"cap,omitempty"`
	Enabled        bool                  `yaml:"enabled"`
}

type Params struct {
	MaxPurchase     *math.HexOrDecimal256 `yaml:"maxPurchase,omitempty"`
	MinMigratePhase uint64                `yaml:"minMigratePhase,omitempty"`
	MaxStaleness    uint64                `yaml:"maxStaleness,omitempty"`
}

// Feed configures the native price feed. Aggregator, when set, is the address
// of an on-chain aggregator; otherwise the fixed Answer is served.
type Feed struct {
	Answer             *math.HexOrDecimal256 `yaml:"answer,omitempty"`
	Decimals           uint8                 `yaml:"decimals"`
	SettlementDecimals uint8                 `yaml:"settlementDecimals,omitempty"`
	Aggregator         *thor.Address         `yaml:"aggregator,omitempty"`
}

type Role struct {
	Role    string       `yaml:"role"`
	Address thor.Address `yaml:"address"`
}

// Parse decodes a genesis document. Unknown fields are rejected.
func Parse(data []byte) (*Genesis, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var gen Genesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &gen, nil
}

// Load reads and decodes the genesis file at path.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	return Parse(data)
}

// Encode serializes the document back to YAML.
func (g *Genesis) Encode() ([]byte, error) {
	return yaml.Marshal(g)
}

func tokens(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Mul((*big.Int)(v), thor.OneToken)
}

func raw(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(v))
}

func parseMode(s string) (vesting.ReleaseMode, error) {
	switch s {
	case "fixedAtCliff", "":
		return vesting.FixedAtCliff, nil
	case "linearAfterCliff":
		return vesting.LinearAfterCliff, nil
	}
	return 0, fmt.Errorf("unknown release mode %q", s)
}

func (s Schedule) build(name string) (vesting.Schedule, error) {
	mode, err := parseMode(s.Mode)
	if err != nil {
		return vesting.Schedule{}, errors.WithMessage(err, name)
	}
	if mode == vesting.LinearAfterCliff && s.DurationDays == 0 {
		return vesting.Schedule{}, fmt.Errorf("%s: linear release needs a duration", name)
	}
	return vesting.Schedule{
		Cliff:    thor.Days(s.CliffDays),
		Duration: thor.Days(s.DurationDays),
		Mode:     mode,
	}, nil
}

func (t Tranche) build(name string) (vesting.Tranche, error) {
	if t.ImmediatePct > 100 {
		return vesting.Tranche{}, fmt.Errorf("%s: immediate percent above 100", name)
	}
	if t.ImmediatePct < 100 && t.LinearDays == 0 {
		return vesting.Tranche{}, fmt.Errorf("%s: linear release needs a duration", name)
	}
	return vesting.Tranche{ImmediatePct: t.ImmediatePct, LinearDuration: thor.Days(t.LinearDays)}, nil
}

func (v *Vesting) build() (vesting.Config, error) {
	var (
		cfg vesting.Config
		err error
	)
	if cfg.Marketing, err = v.Marketing.build("marketing"); err != nil {
		return cfg, err
	}
	if cfg.LongTermGrant, err = v.LongTermGrant.build("longTermGrant"); err != nil {
		return cfg, err
	}
	if cfg.StakingReward, err = v.StakingReward.build("stakingReward"); err != nil {
		return cfg, err
	}
	if cfg.Gaming, err = v.Gaming.build("gaming"); err != nil {
		return cfg, err
	}
	for i, t := range v.SaleTranches {
		tr, err := t.build(fmt.Sprintf("saleTranches[%d]", i))
		if err != nil {
			return cfg, err
		}
		cfg.SaleTranches = append(cfg.SaleTranches, tr)
	}
	cfg.LinearDelay = thor.Days(v.LinearDelayDays)
	cfg.MaxSubAllocations = v.MaxSubAllocations
	if cfg.MaxSubAllocations == 0 {
		cfg.MaxSubAllocations = vesting.DefaultConfig().MaxSubAllocations
	}
	return cfg, nil
}

func (s *Staking) build(launchTime uint64) (staking.Config, error) {
	start := s.Start
	if start == 0 {
		start = launchTime
	}
	cfg := staking.DefaultConfig(start)
	for _, o := range []struct {
		dst *uint64
		v   uint64
	}{
		{&cfg.InitialAPR, s.InitialAPR},
		{&cfg.PlateauAPR, s.PlateauAPR},
		{&cfg.FloorAPR, s.FloorAPR},
		{&cfg.DecayDays, s.DecayDays},
		{&cfg.PlateauDays, s.PlateauDays},
		{&cfg.MaxAccrualDays, s.MaxAccrualDays},
		{&cfg.MaxBoosters, s.MaxBoosters},
	} {
		if o.v != 0 {
			*o.dst = o.v
		}
	}
	if cfg.InitialAPR < cfg.PlateauAPR || cfg.PlateauAPR < cfg.FloorAPR {
		return cfg, errors.New("staking: APR curve must be non-increasing")
	}
	return cfg, nil
}

func (a Account) mint(name string) (distributor.Mint, error) {
	if a.Address.IsZero() {
		return distributor.Mint{}, fmt.Errorf("%s: address must be set", name)
	}
	if a.Amount == nil || (*big.Int)(a.Amount).Sign() < 0 {
		return distributor.Mint{}, fmt.Errorf("%s: amount must be a non-negative integer", name)
	}
	return distributor.Mint{To: a.Address, Amount: raw(a.Amount)}, nil
}

// Build validates the document and returns the distribution config and the
// bootstrap to apply on a fresh store.
func (g *Genesis) Build() (distributor.Config, *distributor.Bootstrap, error) {
	cfg := distributor.DefaultConfig(g.LaunchTime)
	if g.LaunchTime == 0 {
		return cfg, nil, errors.New("launchTime must be set")
	}

	r := g.Reserves
	if r.Treasury.IsZero() {
		return cfg, nil, errors.New("reserves: treasury must be set")
	}
	boot := &distributor.Bootstrap{}
	for _, e := range []struct {
		name string
		acc  Account
		dst  *thor.Address
	}{
		{"sale", r.Sale, &cfg.Reserves.Sale},
		{"marketing", r.Marketing, &cfg.Reserves.Marketing},
		{"longTermGrant", r.LongTermGrant, &cfg.Reserves.Grant},
		{"gaming", r.Gaming, &cfg.Reserves.Gaming},
		{"stakingReward", r.StakingReward, &cfg.Reserves.StakingReward},
	} {
		m, err := e.acc.mint("reserves." + e.name)
		if err != nil {
			return cfg, nil, err
		}
		m.Amount = tokens(e.acc.Amount)
		*e.dst = m.To
		boot.Reserves = append(boot.Reserves, m)
	}
	cfg.Reserves.Treasury = r.Treasury

	if len(g.Sale.Phases) == 0 {
		return cfg, nil, errors.New("sale: at least one phase")
	}
	for i, p := range g.Sale.Phases {
		if p.Start == nil || p.End == nil || p.StartPrice == nil || p.EndPrice == nil {
			return cfg, nil, fmt.Errorf("sale.phases[%d]: all bounds and prices must be set", i)
		}
		cfg.Phases = append(cfg.Phases, presale.Phase{
			Start:      tokens(p.Start),
			End:        tokens(p.End),
			StartPrice: raw(p.StartPrice),
			EndPrice:   raw(p.EndPrice),
		})
	}
	if g.Sale.StepSize != nil {
		cfg.StepSize = tokens(g.Sale.StepSize)
	}
	if _, err := presale.NewPricer(cfg.Phases, cfg.StepSize); err != nil {
		return cfg, nil, errors.WithMessage(err, "sale")
	}

	if g.Vesting != nil {
		v, err := g.Vesting.build()
		if err != nil {
			return cfg, nil, errors.WithMessage(err, "vesting")
		}
		cfg.Vesting = v
	}
	if len(cfg.Vesting.SaleTranches) < len(cfg.Phases) {
		return cfg, nil, errors.New("vesting: every sale phase needs a tranche")
	}

	st, err := g.Staking.build(g.LaunchTime)
	if err != nil {
		return cfg, nil, err
	}
	cfg.Staking = st
	boot.StakingCap = tokens(g.Staking.Cap)
	boot.StakingEnabled = g.Staking.Enabled

	if g.Feed.SettlementDecimals != 0 {
		cfg.SettlementDecimals = g.Feed.SettlementDecimals
	}
	if g.Feed.Aggregator == nil && g.Feed.Answer == nil {
		return cfg, nil, errors.New("feed: answer or aggregator must be set")
	}

	boot.MaxPurchase = raw(g.Params.MaxPurchase)
	if g.Params.MinMigratePhase != 0 {
		boot.MinMigratePhase = new(big.Int).SetUint64(g.Params.MinMigratePhase)
	}
	if g.Params.MaxStaleness != 0 {
		boot.MaxStaleness = new(big.Int).SetUint64(g.Params.MaxStaleness)
	}

	hasAdmin := false
	for i, ro := range g.Roles {
		role, ok := authority.ParseRole(ro.Role)
		if !ok {
			return cfg, nil, fmt.Errorf("roles[%d]: unknown role %q", i, ro.Role)
		}
		if ro.Address.IsZero() {
			return cfg, nil, fmt.Errorf("roles[%d]: address must be set", i)
		}
		hasAdmin = hasAdmin || role == authority.RoleAdmin
		boot.Roles = append(boot.Roles, distributor.RoleGrant{Role: role, Addr: ro.Address})
	}
	if !hasAdmin {
		return cfg, nil, errors.New("roles: at least one admin")
	}

	for i, a := range g.Settlement {
		m, err := a.mint(fmt.Sprintf("settlement[%d]", i))
		if err != nil {
			return cfg, nil, err
		}
		boot.Settlement = append(boot.Settlement, m)
	}
	for i, a := range g.Native {
		m, err := a.mint(fmt.Sprintf("native[%d]", i))
		if err != nil {
			return cfg, nil, err
		}
		boot.Native = append(boot.Native, m)
	}
	return cfg, boot, nil
}

// FixedFeed returns the constant feed described by the document.
func (g *Genesis) FixedFeed(clock func() uint64) (*pricefeed.Fixed, error) {
	if g.Feed.Answer == nil {
		return nil, errors.New("feed: no fixed answer")
	}
	return &pricefeed.Fixed{Answer: raw(g.Feed.Answer), Digits: g.Feed.Decimals, Clock: clock}, nil
}
