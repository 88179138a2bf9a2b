package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/garden-directory/internal/config"
	"github.com/iliyamo/garden-directory/internal/database"
	"github.com/iliyamo/garden-directory/internal/handler"
	"github.com/iliyamo/garden-directory/internal/middleware"
	"github.com/iliyamo/garden-directory/internal/queue"
	"github.com/iliyamo/garden-directory/internal/repository"
	"github.com/iliyamo/garden-directory/internal/router"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tags := repository.NewTagRepo(db)
	gardens := repository.NewGardenRepo(db, tags)
	memberships := repository.NewMembershipRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Redis-backed middleware degrade to no-ops when redis is absent.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.ResponseCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterUsers(e, handler.NewUserHandler(cfg, users))
	router.RegisterGardens(e, handler.NewGardenHandler(gardens, tags))
	router.RegisterMemberships(e, handler.NewMembershipHandler(users, gardens, memberships))

	// Membership events land in logs/membership.log via the broker.
	go func() {
		if err := queue.StartMembershipConsumer(); err != nil {
			log.Printf("membership consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
