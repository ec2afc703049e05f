package main // Entry point package

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // loads .env for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/confhall/waitlist-service/internal/config"
	"github.com/confhall/waitlist-service/internal/database"
	"github.com/confhall/waitlist-service/internal/handler"
	"github.com/confhall/waitlist-service/internal/middleware"
	"github.com/confhall/waitlist-service/internal/repository"
	"github.com/confhall/waitlist-service/internal/router"
	"github.com/confhall/waitlist-service/internal/scheduler"
	"github.com/confhall/waitlist-service/internal/service"
)

const shutdownGrace = 10 * time.Second

func main() {
	// Best-effort: a deployed instance supplies env vars directly and
	// has no .env file, so a missing file is not fatal here.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName,
		cfg.Scheduler.DBPoolMax, cfg.Scheduler.DBPoolMinIdle)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; rate limiting and the conference advisory lock are degraded")
	}

	conferences := repository.NewConferenceRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	publisher := service.NewPublisher()

	s := scheduler.New(db, conferences, bookings, users, publisher, cfg.Scheduler.ConfirmWindow)
	s.Redis = rdb

	if cfg.Scheduler.EnableConsumers {
		service.StartConsumers(ctx, s)
		log.Print("bus consumers started")
	} else {
		log.Print("consumers disabled; running as an API-only instance")
	}

	e := echo.New()
	router.UseIdentity(e, cfg.JWTSecret)
	router.RegisterHealth(e)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterScheduler(e, handler.NewSchedulerHandler(s), rateLimit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		log.Print("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	if err := e.Start(addr); err != nil && err.Error() != "http: Server closed" {
		log.Fatal(err)
	}
}
