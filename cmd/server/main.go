// Command server runs the accounts HTTP API.
//
//	@title						Accounts API
//	@version					1.0
//	@description				User accounts, authentication and access control.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/workdesk/accounts-api/internal/api"
	"github.com/workdesk/accounts-api/internal/api/handler"
	"github.com/workdesk/accounts-api/internal/core/ports"
	"github.com/workdesk/accounts-api/internal/core/service"
	mongodb "github.com/workdesk/accounts-api/internal/infrastructure/db/mongo"
	mysqldb "github.com/workdesk/accounts-api/internal/infrastructure/db/mysql"
	redisdb "github.com/workdesk/accounts-api/internal/infrastructure/db/redis"
	"github.com/workdesk/accounts-api/internal/pkg/config"
	"github.com/workdesk/accounts-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "accounts-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	checks := make(map[string]handler.Check)

	repo, closeStore, err := openStore(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter := openLimiter(ctx, cfg, checks, log)

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:    cfg.Auth.JWTSecret,
		Algorithm: cfg.Auth.JWTAlgorithm,
		TTL:       cfg.Auth.AccessTokenTTL,
	})
	if err != nil {
		return err
	}

	users := service.NewUserService(repo, hasher, logger.Component("users"))
	if cfg.Admin.Email != "" {
		admin, err := users.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
		if err != nil {
			return err
		}
		log.Info().Int64("user_id", admin.ID).Str("email", admin.Email).Msg("admin account ready")
	}

	e := api.NewRouter(api.Dependencies{
		Auth:     service.NewAuthService(repo, hasher, tokens, limiter, logger.Component("auth")),
		Users:    users,
		Resolver: service.NewIdentityResolver(tokens, repo, logger.Component("identity")),
		Checks:   checks,
		Log:      logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore connects the configured credential store, prepares its schema and
// registers its readiness check.
func openStore(ctx context.Context, cfg *config.Config, checks map[string]handler.Check) (ports.UserRepository, func(), error) {
	switch cfg.Store {
	case config.StoreMySQL:
		db, err := mysqldb.Open(ctx, cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := mysqldb.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		checks["mysql"] = mysqldb.Ping(db)
		return mysqldb.NewUserRepository(db), func() { _ = db.Close() }, nil

	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "accounts-api",
		})
		if err != nil {
			return nil, nil, err
		}
		repo := mongodb.NewUserRepository(db, logger.Component("mongo"))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		checks["mongodb"] = mongodb.Ping(db)
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	}
}

// openLimiter returns a Redis-backed LoginLimiter, or nil when Redis is not
// configured or unreachable. Login still works without throttling.
func openLimiter(ctx context.Context, cfg *config.Config, checks map[string]handler.Check, log zerolog.Logger) ports.LoginLimiter {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
		return nil
	}
	client, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
		return nil
	}
	checks["redis"] = redisdb.Ping(client)
	return redisdb.NewLoginLimiter(client, cfg.Auth.MaxAttempts, cfg.Auth.AttemptWindow)
}
