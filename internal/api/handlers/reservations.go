package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homecook/homecook-backend/internal/api/httpx"
	"github.com/homecook/homecook-backend/internal/middleware"
	"github.com/homecook/homecook-backend/internal/models"
	"github.com/homecook/homecook-backend/internal/services"
)

type ReservationsHandler struct {
	reservations *services.ReservationService
}

func NewReservationsHandler(rs *services.ReservationService) *ReservationsHandler {
	return &ReservationsHandler{reservations: rs}
}

type createReservationReq struct {
	MealID     string    `json:"meal_id"`
	Quantity   int       `json:"quantity"`
	PickupTime time.Time `json:"pickup_time"`
}

func (h *ReservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationReq
	if !httpx.Decode(w, r, &req) {
		return
	}
	u := middleware.FromCtx(r.Context())
	rv, err := h.reservations.Create(r.Context(), services.CreateReservationInput{
		MealID:     req.MealID,
		CustomerID: u.UserID,
		Quantity:   req.Quantity,
		PickupTime: req.PickupTime,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rv)
}

func (h *ReservationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rv, err := h.reservations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	u := middleware.FromCtx(r.Context())
	if u.UserID != rv.CustomerID && u.UserID != rv.CookID {
		writeServiceError(w, services.ErrNotAllowed)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}

// List is role-scoped: cooks see incoming orders, customers their own.
func (h *ReservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	u := middleware.FromCtx(r.Context())
	var (
		out []models.Reservation
		err error
	)
	if u.Role == models.RoleCook {
		out, err = h.reservations.ListByCook(r.Context(), u.UserID)
	} else {
		out, err = h.reservations.ListByCustomer(r.Context(), u.UserID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *ReservationsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if !httpx.Decode(w, r, &req) {
		return
	}
	u := middleware.FromCtx(r.Context())
	rv, err := h.reservations.UpdateStatus(r.Context(),
		chi.URLParam(r, "id"), models.ReservationStatus(req.Status), u.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}

type ratingReq struct {
	Rating int `json:"rating"`
}

func (h *ReservationsHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	var req ratingReq
	if !httpx.Decode(w, r, &req) {
		return
	}
	u := middleware.FromCtx(r.Context())
	rv, err := h.reservations.SubmitRating(r.Context(), chi.URLParam(r, "id"), u.UserID, req.Rating)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}
