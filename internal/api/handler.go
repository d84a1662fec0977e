// Package api exposes the sale engine over HTTP. Instructions are POSTed
// with the caller identity (authority or buyer) in the request body; the
// surface trusts that identity, since signature verification belongs to
// the settlement substrate, not the engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/engine"
	"ico-sale-engine/internal/ledger"
	"ico-sale-engine/internal/pricing"
	"ico-sale-engine/internal/storage"
)

// Service is the engine contract the HTTP handlers consume.
type Service interface {
	InitializeSale(ctx context.Context, req engine.InitializeSaleRequest) (*domain.Sale, error)
	UpdateSaleParams(ctx context.Context, saleAddr, authority string, update domain.SaleParamsUpdate) (*domain.Sale, error)
	TogglePause(ctx context.Context, saleAddr, authority string) (*domain.Sale, error)
	EndSale(ctx context.Context, saleAddr, authority string) (*domain.Sale, error)
	PurchaseTokens(ctx context.Context, saleAddr, buyer string, amount uint64) (*engine.PurchaseResult, error)
	WithdrawRemainingTokens(ctx context.Context, saleAddr, authority string) (*engine.WithdrawResult, error)

	GetSale(ctx context.Context, address string) (*domain.Sale, error)
	ListSales(ctx context.Context) ([]*domain.Sale, error)
	GetContribution(ctx context.Context, saleAddr, user string) (*domain.Contribution, error)
	ListContributions(ctx context.Context, saleAddr string) ([]*domain.Contribution, error)
	ListEvents(ctx context.Context, saleAddr string) ([]*domain.SaleEvent, error)

	GetLedgerAccount(ctx context.Context, address string) (*ledger.Account, error)
	CreateLedgerAccount(ctx context.Context, address, asset, owner string) error
	MintTokens(ctx context.Context, address string, amount uint64) error
}

// Handler implements the HTTP handlers of the sale API.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates the handler set around the given engine.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: s, logger: logger}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForError maps an engine error to an HTTP status. Lifecycle
// conflicts are 409, parameter and limit violations 422, and oracle
// failures 503 since a later retry may find a fresh quote.
func statusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, storage.ErrDuplicateKey),
		errors.Is(err, ledger.ErrAccountExists),
		errors.Is(err, domain.ErrSaleNotActive),
		errors.Is(err, domain.ErrSalePaused),
		errors.Is(err, domain.ErrSaleNotStarted),
		errors.Is(err, domain.ErrSaleEnded),
		errors.Is(err, domain.ErrSaleStillActive),
		errors.Is(err, domain.ErrSaleAlreadyStarted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidMaxTokens),
		errors.Is(err, domain.ErrInvalidPurchaseLimits),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidMaxAge),
		errors.Is(err, domain.ErrInvalidPricingKind),
		errors.Is(err, domain.ErrBelowMinimumPurchase),
		errors.Is(err, domain.ErrExceedsMaximumPurchase),
		errors.Is(err, domain.ErrExceedsMaxTokens),
		errors.Is(err, domain.ErrExceedsUserLimit),
		errors.Is(err, domain.ErrMathOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStalePriceData),
		errors.Is(err, domain.ErrPriceFeedMismatch),
		errors.Is(err, domain.ErrInvalidPriceData):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrMissingReference),
		errors.Is(err, pricing.ErrMissingOracle),
		errors.Is(err, ledger.ErrInvalidAccount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// codeForError picks the stable error code for the response body.
func codeForError(err error) string {
	if code := domain.ErrorCode(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, ledger.ErrAccountNotFound):
		return "NOT_FOUND"
	case errors.Is(err, storage.ErrDuplicateKey), errors.Is(err, ledger.ErrAccountExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, engine.ErrMissingReference), errors.Is(err, pricing.ErrMissingOracle),
		errors.Is(err, ledger.ErrInvalidAccount):
		return "INVALID_REQUEST"
	default:
		return "INTERNAL"
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

// writeError renders an engine error. Internal failures are logged and
// reported without the underlying message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err),
			zap.String("method", r.Method), zap.String("path", r.URL.Path))
		msg = http.StatusText(http.StatusInternalServerError)
	}
	h.writeJSON(w, status, errorResponse{Code: codeForError(err), Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	return true
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
