package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ico-sale-engine/internal/domain"
)

type purchaseRequest struct {
	Buyer  string `json:"buyer"`
	Amount uint64 `json:"amount"`
}

type contributionResponse struct {
	Address         string `json:"address"`
	User            string `json:"user"`
	Sale            string `json:"sale"`
	TokensPurchased uint64 `json:"tokens_purchased"`
	SolContributed  uint64 `json:"sol_contributed"`
	CreatedAt       int64  `json:"created_at"`
	UpdatedAt       int64  `json:"updated_at"`
}

func toContributionResponse(c *domain.Contribution) contributionResponse {
	return contributionResponse{
		Address:         c.Address,
		User:            c.User,
		Sale:            c.Sale,
		TokensPurchased: c.TokensPurchased,
		SolContributed:  c.SolContributed,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type purchaseResponse struct {
	Sale         saleResponse         `json:"sale"`
	Contribution contributionResponse `json:"contribution"`
	Cost         uint64               `json:"cost"`
}

// Purchase sells tokens from the sale vault to the buyer named in the
// request body.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.service.PurchaseTokens(r.Context(), chi.URLParam(r, "address"), req.Buyer, req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("purchase settled",
		zap.String("sale", res.Sale.Address),
		zap.String("buyer", req.Buyer),
		zap.Uint64("amount", req.Amount),
		zap.Uint64("cost", res.Cost))

	h.writeJSON(w, http.StatusOK, purchaseResponse{
		Sale:         toSaleResponse(res.Sale),
		Contribution: toContributionResponse(res.Contribution),
		Cost:         res.Cost,
	})
}

// GetContribution returns one buyer's cumulative position in a sale.
func (h *Handler) GetContribution(w http.ResponseWriter, r *http.Request) {
	contrib, err := h.service.GetContribution(r.Context(), chi.URLParam(r, "address"), chi.URLParam(r, "user"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toContributionResponse(contrib))
}

// ListContributions returns every contribution recorded for a sale.
func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	contribs, err := h.service.ListContributions(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]contributionResponse, 0, len(contribs))
	for _, c := range contribs {
		resp = append(resp, toContributionResponse(c))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type eventResponse struct {
	Sale         string `json:"sale"`
	Kind         string `json:"kind"`
	Actor        string `json:"actor"`
	TokenAmount  uint64 `json:"token_amount"`
	NativeAmount uint64 `json:"native_amount"`
	TokensSold   uint64 `json:"tokens_sold"`
	TotalRaised  uint64 `json:"total_raised"`
	Price        uint64 `json:"price"`
	MaxTokens    uint64 `json:"max_tokens"`
	MinPurchase  uint64 `json:"min_purchase"`
	MaxPurchase  uint64 `json:"max_purchase"`
	StartTime    int64  `json:"start_time"`
	EndTime      int64  `json:"end_time"`
	Paused       bool   `json:"paused"`
	OccurredAt   int64  `json:"occurred_at"`
}

// ListEvents returns the append-only event log of a sale in order.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, eventResponse{
			Sale:         ev.Sale,
			Kind:         string(ev.Kind),
			Actor:        ev.Actor,
			TokenAmount:  ev.TokenAmount,
			NativeAmount: ev.NativeAmount,
			TokensSold:   ev.TokensSold,
			TotalRaised:  ev.TotalRaised,
			Price:        ev.Price,
			MaxTokens:    ev.MaxTokens,
			MinPurchase:  ev.MinPurchase,
			MaxPurchase:  ev.MaxPurchase,
			StartTime:    ev.StartTime,
			EndTime:      ev.EndTime,
			Paused:       ev.Paused,
			OccurredAt:   ev.OccurredAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}
