package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/homecook/homecook-backend/internal/api/httpx"
	"github.com/homecook/homecook-backend/internal/api/validate"
	"github.com/homecook/homecook-backend/internal/middleware"
	"github.com/homecook/homecook-backend/internal/models"
	"github.com/homecook/homecook-backend/internal/money"
	"github.com/homecook/homecook-backend/internal/services"
)

type MealsHandler struct {
	meals *services.MealService
}

func NewMealsHandler(ms *services.MealService) *MealsHandler {
	return &MealsHandler{meals: ms}
}

type mealReq struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Price             string `json:"price"` // decimal string, e.g. "12.50"
	AvailableQuantity int    `json:"available_quantity"`
}

func (h *MealsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req mealReq
	if !httpx.Decode(w, r, &req) {
		return
	}
	if err := validate.Collect(
		validate.Required("title", req.Title),
		validate.Required("price", req.Price),
	); err != nil {
		writeServiceError(w, err)
		return
	}
	price, err := money.Parse(req.Price)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid price", nil)
		return
	}
	u := middleware.FromCtx(r.Context())
	m, err := h.meals.Create(r.Context(), models.Meal{
		CookID:            u.UserID,
		Title:             req.Title,
		Description:       req.Description,
		PriceCents:        price,
		AvailableQuantity: req.AvailableQuantity,
	})
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

func (h *MealsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req mealReq
	if !httpx.Decode(w, r, &req) {
		return
	}
	price, err := money.Parse(req.Price)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid price", nil)
		return
	}
	u := middleware.FromCtx(r.Context())
	m, err := h.meals.Update(r.Context(), u.UserID, models.Meal{
		ID:                chi.URLParam(r, "id"),
		Title:             req.Title,
		Description:       req.Description,
		PriceCents:        price,
		AvailableQuantity: req.AvailableQuantity,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *MealsHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.meals.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *MealsHandler) List(w http.ResponseWriter, r *http.Request) {
	if cookID := r.URL.Query().Get("cook_id"); cookID != "" {
		out, err := h.meals.ListByCook(r.Context(), cookID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, out)
		return
	}
	out, err := h.meals.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
