// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package holders

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tokendist/api/utils"
	"github.com/vechain/tokendist/builtin/vesting"
	"github.com/vechain/tokendist/distributor"
	"github.com/vechain/tokendist/thor"
)

// Reader serves holder positions.
type Reader interface {
	Holder(holder thor.Address, now uint64) (*distributor.HolderSummary, error)
	Vesting(holder thor.Address, source vesting.Source, now uint64, offset, limit uint64) (*distributor.VestingDetail, error)
}

const maxLimit = 100

type Holders struct {
	reader Reader
	clock  func() uint64
}

func New(reader Reader, clock func() uint64) *Holders {
	return &Holders{reader, clock}
}

type SourceAmounts struct {
	Source   string                `json:"source"`
	Locked   *math.HexOrDecimal256 `json:"locked"`
	Unlocked *math.HexOrDecimal256 `json:"unlocked"`
}

type Migration struct {
	Migrated  bool                    `json:"migrated"`
	Timestamp uint64                  `json:"timestamp"`
	Usable    *math.HexOrDecimal256   `json:"usable"`
	Staked    *math.HexOrDecimal256   `json:"staked"`
	Locked    []*math.HexOrDecimal256 `json:"locked"`
}

type Holder struct {
	Address        thor.Address          `json:"address"`
	Balance        *math.HexOrDecimal256 `json:"balance"`
	Transferable   *math.HexOrDecimal256 `json:"transferable"`
	Staked         *math.HexOrDecimal256 `json:"staked"`
	PendingRewards *math.HexOrDecimal256 `json:"pendingRewards"`
	Vesting        []SourceAmounts       `json:"vesting"`
	Migration      Migration             `json:"migration"`
	Timestamp      uint64                `json:"timestamp"`
}

type SubAllocation struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
	Tag    uint64                `json:"tag"`
}

type Vesting struct {
	Source         string                `json:"source"`
	Total          *math.HexOrDecimal256 `json:"total"`
	Locked         *math.HexOrDecimal256 `json:"locked"`
	Unlocked       *math.HexOrDecimal256 `json:"unlocked"`
	Cliff          uint64                `json:"cliff"`
	Duration       uint64                `json:"duration"`
	Mode           string                `json:"mode"`
	SubAllocations []SubAllocation       `json:"subAllocations"`
	Timestamp      uint64                `json:"timestamp"`
}

func parseAddress(req *http.Request) (thor.Address, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return thor.Address{}, utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return *addr, nil
}

func (h *Holders) handleGetHolder(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	now := h.clock()
	sum, err := h.reader.Holder(addr, now)
	if err != nil {
		return err
	}

	out := &Holder{
		Address:        sum.Address,
		Balance:        utils.Amount(sum.Balance),
		Transferable:   utils.Amount(sum.Transferable),
		Staked:         utils.Amount(sum.Staked),
		PendingRewards: utils.Amount(sum.PendingRewards),
		Timestamp:      now,
	}
	for _, src := range vesting.Sources() {
		out.Vesting = append(out.Vesting, SourceAmounts{
			Source:   src.String(),
			Locked:   utils.Amount(sum.Locked[src]),
			Unlocked: utils.Amount(sum.Unlocked[src]),
		})
	}
	if rec := sum.Migration; rec != nil {
		out.Migration = Migration{
			Migrated:  rec.Migrated,
			Timestamp: rec.Timestamp,
			Usable:    utils.Amount(rec.Usable),
			Staked:    utils.Amount(rec.Staked),
			Locked:    utils.Amounts(rec.Locked),
		}
	}
	return utils.WriteJSON(w, out)
}

func (h *Holders) handleGetVesting(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	src, ok := vesting.ParseSource(mux.Vars(req)["source"])
	if !ok {
		return utils.BadRequest(errors.New("source: unknown"))
	}
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

	now := h.clock()
	detail, err := h.reader.Vesting(addr, src, now, offset, limit)
	if err != nil {
		return err
	}
	a := detail.Allocation
	out := &Vesting{
		Source:         src.String(),
		Total:          utils.Amount(a.Total),
		Locked:         utils.Amount(detail.Locked),
		Unlocked:       utils.Amount(detail.Unlocked),
		Cliff:          a.Cliff,
		Duration:       a.Duration,
		Mode:           a.Mode.String(),
		SubAllocations: make([]SubAllocation, 0, len(detail.SubAllocations)),
		Timestamp:      now,
	}
	for _, s := range detail.SubAllocations {
		out.SubAllocations = append(out.SubAllocations, SubAllocation{Amount: utils.Amount(s.Amount), Tag: s.Tag})
	}
	return utils.WriteJSON(w, out)
}

func (h *Holders) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("holders_get_holder").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHolder))
	sub.Path("/{address}/vesting/{source}").
		Methods(http.MethodGet).
		Name("holders_get_vesting").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetVesting))
}
