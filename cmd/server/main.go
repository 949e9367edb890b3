package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/yonetake/cafe-pos/internal/billing"
	"github.com/yonetake/cafe-pos/internal/config"
	"github.com/yonetake/cafe-pos/internal/database"
	"github.com/yonetake/cafe-pos/internal/handler"
	"github.com/yonetake/cafe-pos/internal/middleware"
	"github.com/yonetake/cafe-pos/internal/queue"
	"github.com/yonetake/cafe-pos/internal/repository"
	"github.com/yonetake/cafe-pos/internal/router"
	"github.com/yonetake/cafe-pos/internal/service"
	"github.com/yonetake/cafe-pos/internal/terminal"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	store := repository.NewStore(db)
	users := repository.NewUserRepo(db)

	sessions := service.NewSessionService(store).WithTaxRate(cfg.TaxRatePercent)
	orders := service.NewOrderService(store).WithTaxRate(cfg.TaxRatePercent)
	consolidation := service.NewConsolidationService(store)
	settlement := service.NewSettlementService(
		store,
		terminal.AutoApprove{},
		billing.PercentPolicy{RatePercent: int64(cfg.PointsRatePercent)},
		queue.NewPublisher(),
	)

	// Receipt log consumer runs for the life of the process and
	// reconnects on broker failure.
	go queue.StartPaymentConsumer()

	rdb := config.NewRedisClient()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)
	router.RegisterFloor(e, handler.NewFloorHandler(store, sessions), cfg.JWTSecret, limiter)
	router.RegisterSessions(e, handler.NewSessionHandler(sessions), cfg.JWTSecret, limiter)
	router.RegisterOrders(e, handler.NewOrderHandler(orders, consolidation, settlement), cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
