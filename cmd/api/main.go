// Package main is the entry point for the catalog API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/gkats/catalog-api/docs"
	"github.com/gkats/catalog-api/internal/api"
	"github.com/gkats/catalog-api/internal/core/service"
	"github.com/gkats/catalog-api/internal/infrastructure/config"
	mongostore "github.com/gkats/catalog-api/internal/infrastructure/db/mongo"
	redisstore "github.com/gkats/catalog-api/internal/infrastructure/db/redis"
	infrahttp "github.com/gkats/catalog-api/internal/infrastructure/http"
	"github.com/gkats/catalog-api/internal/infrastructure/http/handlers"
	"github.com/gkats/catalog-api/internal/infrastructure/queue"
	"github.com/gkats/catalog-api/pkg/logger"
)

// @title Catalog API
// @version 1.0
// @description Product catalog with registration, login and bearer-token authorization.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "catalog-api",
	})

	// Validated by config.Load.
	key, _ := cfg.SigningKey()
	log.Info().Int("key_bytes", len(key)).Dur("ttl", cfg.JWT.TTL).Msg("token signing configured")

	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongostore.NewUserRepository(db)
	products := mongostore.NewProductRepository(db)
	audits := mongostore.NewAuditRepository(db)
	if err := mongostore.EnsureIndexes(ctx, users, products, audits); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	// --- Identity ---
	hasher := service.NewBcryptHasher(bcrypt.DefaultCost)
	if err := service.EnsureAdmin(ctx, users, hasher, service.AdminAccount{
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}, logger.Component("bootstrap")); err != nil {
		return err
	}

	tokens, err := service.NewJWTService(key, cfg.JWT.TTL)
	if err != nil {
		return err
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, 0, audits, logger.Component("audit"))
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	authService, err := service.NewAuthService(users, hasher, tokens, logger.Component("auth"),
		service.WithThrottle(redisstore.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)),
		service.WithAudit(dispatcher),
	)
	if err != nil {
		return err
	}
	productService := service.NewProductService(products, logger.Component("catalog"))

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Users:      users,
		Tokens:     tokens,
		Auth:       authService,
		Products:   productService,
		Logger:     logger.Component("http"),
		Registerer: prometheus.DefaultRegisterer,
	})
	infrahttp.RegisterOpsRoutes(e, prometheus.DefaultGatherer,
		handlers.MongoCheck(db),
		handlers.RedisCheck(rdb),
	)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("catalog api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}
