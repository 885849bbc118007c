package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homecook/homecook-backend/internal/api"
	"github.com/homecook/homecook-backend/internal/auth"
	"github.com/homecook/homecook-backend/internal/cache"
	"github.com/homecook/homecook-backend/internal/config"
	"github.com/homecook/homecook-backend/internal/db"
	"github.com/homecook/homecook-backend/internal/logger"
	"github.com/homecook/homecook-backend/internal/metrics"
	"github.com/homecook/homecook-backend/internal/middleware"
	"github.com/homecook/homecook-backend/internal/notify"
	"github.com/homecook/homecook-backend/internal/repository/postgres"
	"github.com/homecook/homecook-backend/internal/services"
	"github.com/homecook/homecook-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(cfg.Workers)
	defer wp.Stop()

	rdb := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	publisher := notify.NewPublisher(cfg.AMQPURL)
	if publisher == nil {
		log.Warn("AMQP_URL not set, order notifications disabled")
	}

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)

	userSvc := services.NewUserService(repos.Users, repos.Wallets, tm)
	mealSvc := services.NewMealService(repos.Meals, rdb)
	paySvc := services.NewPaymentService(repos.Transactions, repos.Wallets, repos.AuditLogs)
	resSvc := services.NewReservationService(repos.Reservations, repos.Meals, repos.Users,
		paySvc, repos.AuditLogs, wp, publisher)

	r := api.NewRouter(cfg, userSvc, mealSvc, resSvc, paySvc, middleware.NewAuthMiddleware(tm))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
