package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99minutos/parcel-portal/internal/api"
	"github.com/99minutos/parcel-portal/internal/api/handler"
	"github.com/99minutos/parcel-portal/internal/api/session"
	"github.com/99minutos/parcel-portal/internal/config"
	"github.com/99minutos/parcel-portal/internal/core/service"
	mongodb "github.com/99minutos/parcel-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/parcel-portal/internal/infrastructure/db/redis"
	"github.com/99minutos/parcel-portal/internal/infrastructure/queue"
	"github.com/99minutos/parcel-portal/internal/ui/signin"
	"github.com/99minutos/parcel-portal/pkg/logger"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 15 * time.Second
)

// @title        Parcel Portal API
// @version      1.0
// @description  Sign-in and parcel request portal. The JSON routes cover registration, login and request lookup; the HTML pages are not listed.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "parcel-portal",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() {
		if err := mongodb.Disconnect(mongoClient, shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("disconnect mongodb")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	// --- Repositories ---
	userRepo := mongodb.NewAuthRepository(db)
	requestRepo := mongodb.NewParcelRequestRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes")
	}
	if err := requestRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure parcel request indexes")
	}

	limiter := redisdb.NewAttemptLimiter(rdb, cfg.SignIn.MaxAttempts, cfg.SignIn.LockoutWindow)
	tokens := redisdb.NewVerificationTokens(rdb, cfg.Verify.TokenTTL)
	dedup := redisdb.NewSubmissionDedup(rdb, cfg.Submit.DedupTTL)

	// --- Outbox ---
	outbox := queue.NewDispatcher(cfg.Verify.MailWorkers, queue.NewLogMailer(logger.Component("mailer")), logger.Component("outbox"))
	outbox.Start(ctx)

	// --- Services ---
	verifySvc := service.NewVerificationService(userRepo, tokens, outbox, cfg.Verify.BaseURL, logger.Component("verification"))
	authSvc := service.NewAuthService(userRepo, limiter, verifySvc, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	requestSvc := service.NewParcelRequestService(requestRepo, dedup, logger.Component("parcel_requests"))
	resender := service.Resender(verifySvc)

	// --- Sessions ---
	sessions := session.NewStore(cfg.SessionTTL, func(sess *session.Session) {
		sess.Auth = session.NewTokenAuthenticator(authSvc)
		sess.SignIn = signin.New(sess.Auth, resender, sess.Nav, log)
	})
	go sessions.Run(ctx, sweepInterval)

	e, err := api.NewRouter(api.Deps{
		Log:            log,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		SecureCookies:  cfg.IsProduction(),
		Sessions:       sessions,
		Auth:           authSvc,
		Verification:   verifySvc,
		ParcelRequests: requestSvc,
		HealthChecks: map[string]handler.Check{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("parcel portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
