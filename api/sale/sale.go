// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sale

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tokendist/api/utils"
	"github.com/vechain/tokendist/builtin/presale"
)

// Reader serves the sale state and quotes.
type Reader interface {
	Sale(now uint64) (*presale.State, error)
	Quote(payment *big.Int, now uint64) (*presale.Receipt, error)
}

type Sale struct {
	reader Reader
	clock  func() uint64
}

func New(reader Reader, clock func() uint64) *Sale {
	return &Sale{reader, clock}
}

type State struct {
	Sold          *math.HexOrDecimal256 `json:"sold"`
	Phase         uint64                `json:"phase"`
	Phases        uint64                `json:"phases"`
	TotalCapacity *math.HexOrDecimal256 `json:"totalCapacity"`
	StartTime     uint64                `json:"startTime"`
	EndTime       uint64                `json:"endTime"`
	Active        bool                  `json:"active"`
	Timestamp     uint64                `json:"timestamp"`
}

type Fill struct {
	Phase  uint64                `json:"phase"`
	Price  *math.HexOrDecimal256 `json:"price"`
	Tokens *math.HexOrDecimal256 `json:"tokens"`
	Cost   *math.HexOrDecimal256 `json:"cost"`
}

type Quote struct {
	Payment *math.HexOrDecimal256 `json:"payment"`
	Tokens  *math.HexOrDecimal256 `json:"tokens"`
	Cost    *math.HexOrDecimal256 `json:"cost"`
	Unspent *math.HexOrDecimal256 `json:"unspent"`
	Fills   []Fill                `json:"fills"`
}

func (s *Sale) handleGetState(w http.ResponseWriter, _ *http.Request) error {
	now := s.clock()
	st, err := s.reader.Sale(now)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &State{
		Sold:          utils.Amount(st.Sold),
		Phase:         st.Phase,
		Phases:        st.Phases,
		TotalCapacity: utils.Amount(st.TotalCapacity),
		StartTime:     st.StartTime,
		EndTime:       st.EndTime,
		Active:        st.Active,
		Timestamp:     now,
	})
}

func (s *Sale) handleGetQuote(w http.ResponseWriter, req *http.Request) error {
	raw := req.URL.Query().Get("payment")
	if raw == "" {
		return utils.BadRequest(errors.New("payment: required"))
	}
	payment, ok := math.ParseBig256(raw)
	if !ok {
		return utils.BadRequest(errors.New("payment: invalid number"))
	}
	receipt, err := s.reader.Quote(payment, s.clock())
	if err != nil {
		return err
	}
	out := &Quote{
		Payment: utils.Amount(payment),
		Tokens:  utils.Amount(receipt.Tokens),
		Cost:    utils.Amount(receipt.Cost),
		Unspent: utils.Amount(receipt.Unspent),
		Fills:   make([]Fill, 0, len(receipt.Fills)),
	}
	for _, f := range receipt.Fills {
		out.Fills = append(out.Fills, Fill{
			Phase:  f.Phase,
			Price:  utils.Amount(f.Price),
			Tokens: utils.Amount(f.Tokens),
			Cost:   utils.Amount(f.Cost),
		})
	}
	return utils.WriteJSON(w, out)
}

func (s *Sale) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("sale_get_state").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetState))
	sub.Path("/quote").
		Methods(http.MethodGet).
		Name("sale_get_quote").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetQuote))
}
