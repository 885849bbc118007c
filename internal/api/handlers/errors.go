package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/homecook/homecook-backend/internal/api/httpx"
	"github.com/homecook/homecook-backend/internal/api/validate"
	"github.com/homecook/homecook-backend/internal/services"
)

// writeServiceError maps service sentinels onto HTTP statuses so every
// handler reports failures the same way.
func writeServiceError(w http.ResponseWriter, err error) {
	var verrs validate.Errs
	switch {
	case errors.As(err, &verrs):
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", verrs)

	case errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrMealNotFound),
		errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrWalletNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", err.Error(), nil)

	case errors.Is(err, services.ErrNotAllowed):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", err.Error(), nil)

	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)

	case errors.Is(err, services.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusPaymentRequired, "insufficient_funds", err.Error(), nil)

	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrQuantityUnavailable),
		errors.Is(err, services.ErrTransactionNotPending),
		errors.Is(err, services.ErrNotRefundable),
		errors.Is(err, services.ErrAlreadyRated),
		errors.Is(err, services.ErrNotCompleted):
		httpx.WriteError(w, http.StatusConflict, "conflict", err.Error(), nil)

	case errors.Is(err, services.ErrAmountNotPositive),
		errors.Is(err, services.ErrSelfPayment),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrPickupInPast),
		errors.Is(err, services.ErrInvalidRating):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)

	default:
		slog.Error("handler error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
