package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/auth-api/internal/api"
	"github.com/99minutos/auth-api/internal/api/handler"
	"github.com/99minutos/auth-api/internal/api/middleware"
	"github.com/99minutos/auth-api/internal/core/service"
	mongostore "github.com/99minutos/auth-api/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/auth-api/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-api/internal/infrastructure/security"
	"github.com/99minutos/auth-api/internal/pkg/config"
	"github.com/99minutos/auth-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Connect to MongoDB (and Redis when REDIS_ADDR is set), ensure indexes
and serve the API until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "auth-api",
		Env:     cfg.Env,
	})

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer disconnectMongo(client)
	log.Info().Str("database", db.Name()).Msg("connected to MongoDB")

	app, cleanup, err := buildApp(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// buildApp wires repositories, services and the router. The returned cleanup
// releases the optional Redis client.
func buildApp(ctx context.Context, cfg *config.Config, db *mongo.Database, log zerolog.Logger) (http.Handler, func(), error) {
	cleanup := func() {}

	users := mongostore.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, cleanup, fmt.Errorf("ensure indexes: %w", err)
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens, err := security.NewJWTIssuer(security.TokenConfig{
		Secret: cfg.Auth.TokenSecret,
		TTL:    cfg.Auth.TokenTTL.Std(),
	})
	if err != nil {
		return nil, cleanup, err
	}

	authService, err := service.NewAuthService(users, hasher, tokens, log)
	if err != nil {
		return nil, cleanup, err
	}
	userService := service.NewUserService(users, hasher, log)

	checks := map[string]handler.Check{"mongodb": handler.MongoCheck(db)}

	var store echomiddleware.RateLimiterStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout.Std(),
		})
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { closeRedis(rdb) }
		store = redisstore.NewRateLimitStore(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window.Std(), log)
		checks["redis"] = handler.RedisCheck(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("rate limiting backed by Redis")
	} else {
		store = middleware.NewMemoryRateLimitStore(cfg.RateLimit.Max, cfg.RateLimit.Window.Std())
	}

	router := api.NewRouter(
		api.Options{
			ExposeErrors: !cfg.IsProduction(),
			CORSOrigin:   cfg.CORSOrigin,
		},
		api.Dependencies{
			Logger:         log,
			AuthService:    authService,
			UserService:    userService,
			Tokens:         tokens,
			Users:          users,
			RateLimitStore: store,
			HealthChecks:   checks,
		},
	)
	return router, cleanup, nil
}

// disconnectMongo and closeRedis run from defers after the process logger
// has been initialised, so they read it back from the singleton.
func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Msg("mongo disconnect")
	}
}

func closeRedis(rdb *goredis.Client) {
	if err := rdb.Close(); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Msg("redis close")
	}
}
