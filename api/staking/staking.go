// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tokendist/api/utils"
	"github.com/vechain/tokendist/builtin/staking"
	"github.com/vechain/tokendist/distributor"
	"github.com/vechain/tokendist/thor"
)

// Reader serves global staking state.
type Reader interface {
	StakingTotals() (*staking.Totals, error)
	Boosters(offset, limit uint64) ([]*staking.Booster, error)
	Supply() (*distributor.Supply, error)
	Config() distributor.Config
}

const maxLimit = 100

type Staking struct {
	reader Reader
	clock  func() uint64
}

func New(reader Reader, clock func() uint64) *Staking {
	return &Staking{reader, clock}
}

type Totals struct {
	TotalStaked *math.HexOrDecimal256 `json:"totalStaked"`
	Cap         *math.HexOrDecimal256 `json:"cap"`
	Enabled     bool                  `json:"enabled"`
	StoppedAt   uint64                `json:"stoppedAt"`
	EarlyClaim  bool                  `json:"earlyClaim"`
	Boosters    uint64                `json:"boosters"`
	APR         uint64                `json:"apr"`
	Supply      *math.HexOrDecimal256 `json:"supply"`
	Burned      *math.HexOrDecimal256 `json:"burned"`
	Timestamp   uint64                `json:"timestamp"`
}

type Booster struct {
	Index      uint64 `json:"index"`
	Start      uint64 `json:"start"`
	End        uint64 `json:"end"`
	Multiplier uint64 `json:"multiplier"`
}

func (s *Staking) handleGetTotals(w http.ResponseWriter, _ *http.Request) error {
	totals, err := s.reader.StakingTotals()
	if err != nil {
		return err
	}
	supply, err := s.reader.Supply()
	if err != nil {
		return err
	}
	now := s.clock()
	cfg := s.reader.Config().Staking
	var day uint64
	if now > cfg.StakingStart {
		day = (now - cfg.StakingStart) / thor.SecondsPerDay
	}
	return utils.WriteJSON(w, &Totals{
		TotalStaked: utils.Amount(totals.TotalStaked),
		Cap:         utils.Amount(totals.Cap),
		Enabled:     totals.Enabled,
		StoppedAt:   totals.StoppedAt,
		EarlyClaim:  totals.EarlyClaim,
		Boosters:    totals.Boosters,
		APR:         cfg.APR(day),
		Supply:      utils.Amount(supply.Total),
		Burned:      utils.Amount(supply.Burned),
		Timestamp:   now,
	})
}

func (s *Staking) handleGetBoosters(w http.ResponseWriter, req *http.Request) error {
	offset, err := utils.QueryUint(req, "offset", 0)
	if err != nil {
		return err
	}
	limit, err := utils.QueryUint(req, "limit", maxLimit)
	if err != nil {
		return err
	}
	if limit > maxLimit {
		return utils.BadRequest(errors.Errorf("limit: exceeds %d", maxLimit))
	}
	boosters, err := s.reader.Boosters(offset, limit)
	if err != nil {
		return err
	}
	out := make([]Booster, 0, len(boosters))
	for i, b := range boosters {
		out = append(out, Booster{
			Index:      offset + uint64(i),
			Start:      b.Start,
			End:        b.End,
			Multiplier: b.Multiplier,
		})
	}
	return utils.WriteJSON(w, out)
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("staking_get_totals").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTotals))
	sub.Path("/boosters").
		Methods(http.MethodGet).
		Name("staking_get_boosters").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetBoosters))
}
