package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/homecook/homecook-backend/internal/api/handlers"
	"github.com/homecook/homecook-backend/internal/config"
	"github.com/homecook/homecook-backend/internal/metrics"
	"github.com/homecook/homecook-backend/internal/middleware"
	"github.com/homecook/homecook-backend/internal/models"
	"github.com/homecook/homecook-backend/internal/services"
)

func NewRouter(cfg config.Config, us *services.UserService, ms *services.MealService, rs *services.ReservationService, ps *services.PaymentService, am *middleware.AuthMiddleware) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(us)
	mealsH := handlers.NewMealsHandler(ms)
	resH := handlers.NewReservationsHandler(rs)
	walH := handlers.NewWalletsHandler(ps)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// public catalog
		r.Get("/meals", mealsH.List)
		r.Get("/meals/{id}", mealsH.Get)

		r.Group(func(r chi.Router) {
			r.Use(am.Auth)

			r.With(middleware.RequireRole(models.RoleCook)).Post("/meals", mealsH.Create)
			r.With(middleware.RequireRole(models.RoleCook)).Put("/meals/{id}", mealsH.Update)

			r.Post("/reservations", resH.Create)
			r.Get("/reservations", resH.List)
			r.Get("/reservations/{id}", resH.Get)
			r.Patch("/reservations/{id}/status", resH.UpdateStatus)
			r.Post("/reservations/{id}/rating", resH.SubmitRating)

			r.Get("/wallets/current", walH.Current)
			r.Post("/wallets/deposit", walH.Deposit)
			r.Post("/wallets/withdraw", walH.Withdraw)
			r.Get("/transactions", walH.ListTransactions)
			r.Get("/transactions/{id}", walH.GetTransaction)
		})
	})

	return r
}
