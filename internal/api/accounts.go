package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ico-sale-engine/internal/ledger"
)

type accountResponse struct {
	Address string `json:"address"`
	Asset   string `json:"asset"`
	Owner   string `json:"owner"`
	Balance uint64 `json:"balance"`
}

func toAccountResponse(a *ledger.Account) accountResponse {
	return accountResponse{Address: a.Address, Asset: a.Asset, Owner: a.Owner, Balance: a.Balance}
}

// GetAccount returns one custody account with its balance.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetLedgerAccount(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toAccountResponse(account))
}

type createAccountRequest struct {
	Address string `json:"address"`
	Asset   string `json:"asset"`
	Owner   string `json:"owner"`
}

// CreateAccount provisions a custody account. Creating an existing
// account with the same asset and owner is a no-op.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.CreateLedgerAccount(r.Context(), req.Address, req.Asset, req.Owner); err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.service.GetLedgerAccount(r.Context(), req.Address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

type mintRequest struct {
	Amount uint64 `json:"amount"`
}

// Mint credits units out of thin air onto an account. This is the
// test-bench faucet standing in for the substrate's mint authority.
func (h *Handler) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	address := chi.URLParam(r, "address")
	if err := h.service.MintTokens(r.Context(), address, req.Amount); err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.service.GetLedgerAccount(r.Context(), address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toAccountResponse(account))
}
