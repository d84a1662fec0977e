package domain

import "errors"

// Error is a sale-program error with a stable, enumerable code.
// Instances are package-level sentinels; compare with errors.Is.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ErrorCode extracts the stable code from err's chain, or "" if err does
// not carry a sale-program error.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Parameter validity errors, raised by InitializeSale and UpdateSaleParams.
var (
	ErrInvalidPrice          = newError("INVALID_PRICE", "token price must be greater than zero")
	ErrInvalidMaxTokens      = newError("INVALID_MAX_TOKENS", "max tokens must be greater than zero")
	ErrInvalidPurchaseLimits = newError("INVALID_PURCHASE_LIMITS", "min purchase must be positive and not exceed max purchase")
	ErrInvalidDuration       = newError("INVALID_DURATION", "sale duration must be greater than zero")
	ErrInvalidMaxAge         = newError("INVALID_MAX_AGE", "max price age must be positive and within the allowed bound")
	ErrInvalidPricingKind    = newError("INVALID_PRICING_KIND", "pricing parameter does not match the sale's pricing kind")
)

// Authorization errors.
var (
	ErrUnauthorized = newError("UNAUTHORIZED", "caller is not the sale authority")
)

// State-window errors, reflecting the sale lifecycle.
var (
	ErrSaleAlreadyStarted = newError("SALE_ALREADY_STARTED", "sale has already started")
	ErrSaleNotActive      = newError("SALE_NOT_ACTIVE", "sale is not active")
	ErrSalePaused         = newError("SALE_PAUSED", "sale is paused")
	ErrSaleNotStarted     = newError("SALE_NOT_STARTED", "sale has not started yet")
	ErrSaleEnded          = newError("SALE_ENDED", "sale has ended")
	ErrSaleStillActive    = newError("SALE_STILL_ACTIVE", "sale is still active")
)

// Limit errors, a function of the request and current totals.
var (
	ErrBelowMinimumPurchase   = newError("BELOW_MINIMUM_PURCHASE", "amount is below the minimum purchase")
	ErrExceedsMaximumPurchase = newError("EXCEEDS_MAXIMUM_PURCHASE", "amount exceeds the maximum purchase")
	ErrExceedsMaxTokens       = newError("EXCEEDS_MAX_TOKENS", "purchase would exceed the sale supply")
	ErrExceedsUserLimit       = newError("EXCEEDS_USER_LIMIT", "purchase would exceed the per-user limit")
)

// Arithmetic errors. These never saturate or wrap silently.
var (
	ErrMathOverflow = newError("MATH_OVERFLOW", "arithmetic overflow")
)

// Oracle errors, transient until a fresh quote is available.
var (
	ErrStalePriceData    = newError("STALE_PRICE_DATA", "price data is stale")
	ErrPriceFeedMismatch = newError("PRICE_FEED_MISMATCH", "price feed does not match the sale's oracle")
	ErrInvalidPriceData  = newError("INVALID_PRICE_DATA", "price data is invalid")
)
