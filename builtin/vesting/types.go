// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"math/big"

	"github.com/vechain/tokendist/thor"
)

// Source tags the origin of a locked allocation.
type Source uint8

const (
	SourceSale Source = iota
	SourceMarketing
	SourceLongTermGrant
	SourceGamingCredit
	SourceStakingReward

	NumSources = 5
)

var sourceNames = [NumSources]string{"sale", "marketing", "longTermGrant", "gamingCredit", "stakingReward"}

func (s Source) String() string {
	if s < NumSources {
		return sourceNames[s]
	}
	return "unknown"
}

// Valid reports whether s is one of the five sources.
func (s Source) Valid() bool { return s < NumSources }

// ParseSource parses a source name.
func ParseSource(name string) (Source, bool) {
	for i, n := range sourceNames {
		if n == name {
			return Source(i), true
		}
	}
	return 0, false
}

// Sources lists every source in storage order.
func Sources() []Source {
	return []Source{SourceSale, SourceMarketing, SourceLongTermGrant, SourceGamingCredit, SourceStakingReward}
}

// ReleaseMode is how a schedule releases once its cliff has passed.
type ReleaseMode uint8

const (
	FixedAtCliff ReleaseMode = iota
	LinearAfterCliff
)

func (m ReleaseMode) String() string {
	if m == FixedAtCliff {
		return "fixedAtCliff"
	}
	return "linearAfterCliff"
}

// Schedule of a source, relative to the sale end time.
type Schedule struct {
	Cliff    uint64 // seconds after sale end
	Duration uint64 // linear release window, seconds
	Mode     ReleaseMode
}

// Tranche releases ImmediatePct percent at sale end and the rest linearly over
// LinearDuration seconds, starting LinearDelay seconds after sale end.
type Tranche struct {
	ImmediatePct   uint64
	LinearDuration uint64
}

// SubAllocation is one contribution event of the sale or gaming source.
// Tag holds the sale phase (1 based) or the credit timestamp.
type SubAllocation struct {
	Amount *big.Int
	Tag    uint64
}

// Allocation is the stored view of one (holder, source) pair.
type Allocation struct {
	Source   Source
	Total    *big.Int
	Cliff    uint64
	Duration uint64
	Mode     ReleaseMode
}

// Config holds the release terms of every source.
type Config struct {
	Marketing     Schedule
	LongTermGrant Schedule
	StakingReward Schedule

	// SaleTranches[i] are the terms of sale phase i+1.
	SaleTranches []Tranche
	Gaming       Tranche
	LinearDelay  uint64

	MaxSubAllocations uint64
}

// DefaultConfig returns the launch terms.
func DefaultConfig() Config {
	return Config{
		Marketing:     Schedule{Cliff: thor.Days(30), Mode: FixedAtCliff},
		LongTermGrant: Schedule{Cliff: thor.Days(180), Duration: thor.Days(720), Mode: LinearAfterCliff},
		StakingReward: Schedule{Cliff: thor.Days(30), Mode: FixedAtCliff},
		SaleTranches: []Tranche{
			{ImmediatePct: 10, LinearDuration: thor.Days(200)},
			{ImmediatePct: 15, LinearDuration: thor.Days(180)},
			{ImmediatePct: 20, LinearDuration: thor.Days(150)},
			{ImmediatePct: 25, LinearDuration: thor.Days(120)},
			{ImmediatePct: 30, LinearDuration: thor.Days(90)},
		},
		Gaming:            Tranche{ImmediatePct: 20, LinearDuration: thor.Days(150)},
		LinearDelay:       thor.Days(1),
		MaxSubAllocations: 1000,
	}
}

// schedule returns the schedule of a single-total source.
func (c *Config) schedule(source Source) (Schedule, bool) {
	switch source {
	case SourceMarketing:
		return c.Marketing, true
	case SourceLongTermGrant:
		return c.LongTermGrant, true
	case SourceStakingReward:
		return c.StakingReward, true
	}
	return Schedule{}, false
}
