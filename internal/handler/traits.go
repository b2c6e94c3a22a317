package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/xiantools/sbt-sync/internal/client"
	"github.com/xiantools/sbt-sync/internal/model"
	"github.com/xiantools/sbt-sync/traits"
)

// ChainReader reads trait state straight from the chain's GraphQL endpoint
type ChainReader interface {
	OnChainTraits(ctx context.Context, contract, address string) (map[string]any, error)
}

// TraitHandler exposes the compare-and-update workflow over HTTP
type TraitHandler struct {
	ctrl     *traits.Controller
	bridge   *client.BridgeClient
	chain    ChainReader
	contract string
}

// NewTraitHandler creates a new TraitHandler
func NewTraitHandler(ctrl *traits.Controller, bridge *client.BridgeClient, chain ChainReader, contract string) *TraitHandler {
	return &TraitHandler{
		ctrl:     ctrl,
		bridge:   bridge,
		chain:    chain,
		contract: contract,
	}
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy to a status code and error body
func writeError(w http.ResponseWriter, err error) {
	var om *model.OwnershipMismatchError
	if errors.As(err, &om) {
		writeJSON(w, http.StatusForbidden, model.ErrorResponse{Error: om.Error(), Code: model.CodeOwnershipMismatch})
		return
	}

	switch {
	case errors.Is(err, model.ErrNoAddress):
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: model.CodeInputMissing})
	case errors.Is(err, model.ErrWalletUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, model.ErrorResponse{Error: err.Error(), Code: model.CodeWalletUnavailable})
	case errors.Is(err, model.ErrAPIFailure):
		writeJSON(w, http.StatusBadGateway, model.ErrorResponse{Error: err.Error(), Code: model.CodeAPIFailure})
	case errors.Is(err, model.ErrTransactionFailed):
		writeJSON(w, http.StatusBadGateway, model.ErrorResponse{Error: err.Error(), Code: model.CodeTransactionFailure})
	case errors.Is(err, model.ErrNoComparison):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{Error: err.Error(), Code: model.CodeNoComparison})
	case errors.Is(err, model.ErrNothingToUpdate):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{Error: err.Error(), Code: model.CodeNothingToUpdate})
	case errors.Is(err, model.ErrUpdateInFlight):
		writeJSON(w, http.StatusTooManyRequests, model.ErrorResponse{Error: err.Error(), Code: model.CodeUpdateInFlight})
	case errors.Is(err, model.ErrUpdateDebounced):
		writeJSON(w, http.StatusTooManyRequests, model.ErrorResponse{Error: err.Error(), Code: model.CodeUpdateDebounced})
	default:
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
	}
}

// Connect handles POST /wallet/connect
// @Summary      Connect wallet
// @Description  Requests the wallet identity from the bridge daemon and opens a session
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ConnectResponse
// @Failure      503  {object}  model.ErrorResponse
// @Router       /wallet/connect [post]
func (h *TraitHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	session, err := h.ctrl.Connect(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	qr, err := traits.AddressQR(session.Address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ConnectResponse{
		Address:        session.Address,
		DisplayAddress: session.DisplayAddress,
		QR:             qr,
	})
}

// Compare handles GET /traits/compare
// @Summary      Compare traits
// @Description  Compares off-chain database traits against on-chain state for an address
// @Tags         traits
// @Produce      json
// @Param        address  query     string  false  "Address to compare (defaults to the connected wallet)"
// @Success      200  {object}  model.CompareOutcome
// @Failure      400  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /traits/compare [get]
func (h *TraitHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	outcome, err := h.ctrl.Compare(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// ChainTraits handles GET /traits/chain
// @Summary      Read on-chain traits
// @Description  Reads the raw on-chain trait values for an address from chain state
// @Tags         traits
// @Produce      json
// @Param        address  query     string  false  "Address to read (defaults to the connected wallet)"
// @Success      200  {object}  model.ChainTraitsResponse
// @Failure      400  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /traits/chain [get]
func (h *TraitHandler) ChainTraits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		if session := h.ctrl.Session(); session != nil {
			address = session.Address
		}
	}
	if address == "" {
		writeError(w, model.ErrNoAddress)
		return
	}

	values, err := h.chain.OnChainTraits(r.Context(), h.contract, address)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", model.ErrAPIFailure, err))
		return
	}

	writeJSON(w, http.StatusOK, model.ChainTraitsResponse{
		Address: address,
		Traits:  values,
	})
}

// Update handles POST /traits/update
// @Summary      Update on-chain traits
// @Description  Submits one batched trait update for the compared address through the wallet bridge
// @Tags         traits
// @Produce      json
// @Success      200  {object}  model.UpdateResponse
// @Failure      403  {object}  model.ErrorResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      429  {object}  model.ErrorResponse
// @Router       /traits/update [post]
func (h *TraitHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	resp, err := h.ctrl.Update(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /status
// @Summary      Service status
// @Description  Reports bridge readiness and the current wallet session
// @Tags         status
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /status [get]
func (h *TraitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{
		BridgeReady: h.bridge.IsReady(),
		Session:     h.ctrl.Session(),
	})
}
