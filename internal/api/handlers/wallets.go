package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/homecook/homecook-backend/internal/api/httpx"
	"github.com/homecook/homecook-backend/internal/middleware"
	"github.com/homecook/homecook-backend/internal/money"
	"github.com/homecook/homecook-backend/internal/services"
)

type WalletsHandler struct {
	payments *services.PaymentService
}

func NewWalletsHandler(ps *services.PaymentService) *WalletsHandler {
	return &WalletsHandler{payments: ps}
}

func (h *WalletsHandler) Current(w http.ResponseWriter, r *http.Request) {
	u := middleware.FromCtx(r.Context())
	wallet, err := h.payments.InitWallet(r.Context(), u.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wallet)
}

type amountReq struct {
	Amount string `json:"amount"` // decimal string, e.g. "25.00"
}

func (h *WalletsHandler) parseAmount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req amountReq
	if !httpx.Decode(w, r, &req) {
		return 0, false
	}
	cents, err := money.Parse(req.Amount)
	if err != nil || cents == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid amount", nil)
		return 0, false
	}
	return cents, true
}

func (h *WalletsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	cents, ok := h.parseAmount(w, r)
	if !ok {
		return
	}
	u := middleware.FromCtx(r.Context())
	tx, err := h.payments.Deposit(r.Context(), u.UserID, cents, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tx)
}

func (h *WalletsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	cents, ok := h.parseAmount(w, r)
	if !ok {
		return
	}
	u := middleware.FromCtx(r.Context())
	tx, err := h.payments.Withdraw(r.Context(), u.UserID, cents, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tx)
}

func (h *WalletsHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.payments.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	u := middleware.FromCtx(r.Context())
	if !txInvolves(tx.FromUserID, u.UserID) && !txInvolves(tx.ToUserID, u.UserID) {
		writeServiceError(w, services.ErrNotAllowed)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func txInvolves(id *string, userID string) bool { return id != nil && *id == userID }

func (h *WalletsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	u := middleware.FromCtx(r.Context())
	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	out, err := h.payments.ListByUser(r.Context(), u.UserID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
