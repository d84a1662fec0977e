package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/engine"
)

type saleResponse struct {
	Address       string `json:"address"`
	Authority     string `json:"authority"`
	TokenMint     string `json:"token_mint"`
	Treasury      string `json:"treasury"`
	Vault         string `json:"vault"`
	PriceOracle   string `json:"price_oracle,omitempty"`
	Pricing       string `json:"pricing"`
	TokenPrice    uint64 `json:"token_price,omitempty"`
	TokenPriceUSD uint64 `json:"token_price_usd,omitempty"`
	MaxPriceAge   int64  `json:"max_price_age,omitempty"`
	MaxTokens     uint64 `json:"max_tokens"`
	MinPurchase   uint64 `json:"min_purchase"`
	MaxPurchase   uint64 `json:"max_purchase"`
	TokensSold    uint64 `json:"tokens_sold"`
	TotalRaised   uint64 `json:"total_raised"`
	StartTime     int64  `json:"start_time"`
	EndTime       int64  `json:"end_time"`
	IsActive      bool   `json:"is_active"`
	IsPaused      bool   `json:"is_paused"`
	Bump          uint8  `json:"bump"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

func toSaleResponse(s *domain.Sale) saleResponse {
	return saleResponse{
		Address:       s.Address,
		Authority:     s.Authority,
		TokenMint:     s.TokenMint,
		Treasury:      s.Treasury,
		Vault:         s.Vault,
		PriceOracle:   s.PriceOracle,
		Pricing:       string(s.Pricing),
		TokenPrice:    s.TokenPrice,
		TokenPriceUSD: s.TokenPriceUSD,
		MaxPriceAge:   s.MaxPriceAge,
		MaxTokens:     s.MaxTokens,
		MinPurchase:   s.MinPurchase,
		MaxPurchase:   s.MaxPurchase,
		TokensSold:    s.TokensSold,
		TotalRaised:   s.TotalRaised,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		IsActive:      s.IsActive,
		IsPaused:      s.IsPaused,
		Bump:          s.Bump,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

type createSaleRequest struct {
	Authority     string `json:"authority"`
	TokenMint     string `json:"token_mint"`
	Treasury      string `json:"treasury"`
	PriceOracle   string `json:"price_oracle"`
	Pricing       string `json:"pricing"`
	TokenPrice    uint64 `json:"token_price"`
	TokenPriceUSD uint64 `json:"token_price_usd"`
	MaxPriceAge   int64  `json:"max_price_age"`
	MaxTokens     uint64 `json:"max_tokens"`
	MinPurchase   uint64 `json:"min_purchase"`
	MaxPurchase   uint64 `json:"max_purchase"`
	Duration      int64  `json:"duration"`
}

// CreateSale initializes a sale and provisions its vault and treasury.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	kind := domain.PricingKind(req.Pricing)
	if req.Pricing == "" {
		kind = domain.PricingFixed
	}

	sale, err := h.service.InitializeSale(r.Context(), engine.InitializeSaleRequest{
		Authority:   req.Authority,
		TokenMint:   req.TokenMint,
		Treasury:    req.Treasury,
		PriceOracle: req.PriceOracle,
		Params: domain.SaleParams{
			Pricing:       kind,
			TokenPrice:    req.TokenPrice,
			TokenPriceUSD: req.TokenPriceUSD,
			MaxPriceAge:   req.MaxPriceAge,
			MaxTokens:     req.MaxTokens,
			MinPurchase:   req.MinPurchase,
			MaxPurchase:   req.MaxPurchase,
			Duration:      req.Duration,
		},
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toSaleResponse(sale))
}

// GetSale returns one sale record by address.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service.GetSale(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

// ListSales returns every sale record.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ListSales(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]saleResponse, 0, len(sales))
	for _, s := range sales {
		resp = append(resp, toSaleResponse(s))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type updateParamsRequest struct {
	Authority     string  `json:"authority"`
	TokenPrice    *uint64 `json:"token_price"`
	TokenPriceUSD *uint64 `json:"token_price_usd"`
	MaxPriceAge   *int64  `json:"max_price_age"`
	MaxTokens     *uint64 `json:"max_tokens"`
	MinPurchase   *uint64 `json:"min_purchase"`
	MaxPurchase   *uint64 `json:"max_purchase"`
}

// UpdateParams applies a partial parameter update before the sale starts.
// Absent fields keep their current values.
func (h *Handler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	var req updateParamsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sale, err := h.service.UpdateSaleParams(r.Context(), chi.URLParam(r, "address"), req.Authority,
		domain.SaleParamsUpdate{
			TokenPrice:    req.TokenPrice,
			TokenPriceUSD: req.TokenPriceUSD,
			MaxPriceAge:   req.MaxPriceAge,
			MaxTokens:     req.MaxTokens,
			MinPurchase:   req.MinPurchase,
			MaxPurchase:   req.MaxPurchase,
		})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

type authorityRequest struct {
	Authority string `json:"authority"`
}

// TogglePause flips the sale's paused flag.
func (h *Handler) TogglePause(w http.ResponseWriter, r *http.Request) {
	var req authorityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sale, err := h.service.TogglePause(r.Context(), chi.URLParam(r, "address"), req.Authority)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("sale pause toggled",
		zap.String("sale", sale.Address), zap.Bool("paused", sale.IsPaused))
	h.writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

// EndSale deactivates the sale. Ending an already ended sale succeeds
// and changes nothing.
func (h *Handler) EndSale(w http.ResponseWriter, r *http.Request) {
	var req authorityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sale, err := h.service.EndSale(r.Context(), chi.URLParam(r, "address"), req.Authority)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

type withdrawResponse struct {
	Sale        saleResponse `json:"sale"`
	Amount      uint64       `json:"amount"`
	Destination string       `json:"destination"`
}

// Withdraw drains the unsold tokens from a concluded sale's vault into
// the authority's token account.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req authorityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.service.WithdrawRemainingTokens(r.Context(), chi.URLParam(r, "address"), req.Authority)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, withdrawResponse{
		Sale:        toSaleResponse(res.Sale),
		Amount:      res.Amount,
		Destination: res.Destination,
	})
}
