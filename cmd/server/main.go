package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/medisync/hospital-api/internal/config"
	"github.com/medisync/hospital-api/internal/database"
	"github.com/medisync/hospital-api/internal/handler"
	"github.com/medisync/hospital-api/internal/middleware"
	"github.com/medisync/hospital-api/internal/queue"
	"github.com/medisync/hospital-api/internal/repository"
	"github.com/medisync/hospital-api/internal/router"
	"github.com/medisync/hospital-api/internal/service"
	"github.com/medisync/hospital-api/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, database.Pool{
		MaxOpen:     cfg.DBMaxOpen,
		MaxIdle:     cfg.DBMaxIdle,
		MaxLifetime: cfg.DBConnLife,
		PingTimeout: cfg.DBPingTimeout,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs revocation, slot locking and rate limiting. Without
	// it each concern falls back to its in-process variant.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; using in-process revocation set and slot locks")
	}

	var revocation token.RevocationStore
	var locker service.SlotLocker
	if rdb != nil {
		revocation = token.NewRedisRevocationStore(rdb)
		locker = service.NewRedisSlotLocker(rdb, cfg.SlotLockTTL)
	}

	tokens := token.NewService(cfg.JWTSecret, cfg.TokenValidity, revocation)

	principals := repository.NewPrincipalRepo(db)
	appointments := repository.NewAppointmentRepo(db)
	specializations := repository.NewSpecializationRepo(db)

	authSvc := service.NewAuthService(principals, tokens, cfg.BcryptCost)
	apptSvc := service.NewAppointmentService(appointments, locker, service.NewAMQPNotifier())

	// Drain appointment events into the notification outbox.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Auth:         handler.NewAuthHandler(authSvc),
		Appointments: handler.NewAppointmentHandler(apptSvc),
		Directory:    handler.NewDirectoryHandler(principals, specializations),
		Tokens:       tokens,
		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
