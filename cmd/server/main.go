// Command server runs the Gourmet Gateway user (identity) service.
//
// @title                       Gourmet Gateway User Service
// @version                     1.0
// @description                 Registration, login and bearer-token identity for the Gourmet Gateway services.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gourmet-gateway/user-service/internal/api"
	"github.com/gourmet-gateway/user-service/internal/api/handler"
	"github.com/gourmet-gateway/user-service/internal/core/ports"
	"github.com/gourmet-gateway/user-service/internal/core/service"
	"github.com/gourmet-gateway/user-service/internal/infrastructure/db/memory"
	"github.com/gourmet-gateway/user-service/internal/infrastructure/db/mongo"
	"github.com/gourmet-gateway/user-service/internal/infrastructure/db/postgres"
	"github.com/gourmet-gateway/user-service/internal/infrastructure/db/redis"
	"github.com/gourmet-gateway/user-service/internal/infrastructure/security"
	"github.com/gourmet-gateway/user-service/internal/pkg/config"
	"github.com/gourmet-gateway/user-service/pkg/logger"
)

const serviceName = "user-service"

type userStore interface {
	ports.UserRepository
	handler.Pinger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	users, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	health := map[string]handler.Pinger{"store": users}

	var throttle ports.LoginThrottle
	if cfg.ThrottleEnabled() {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		throttle = redis.NewLoginThrottle(rdb, cfg.Login.MaxFailures, cfg.Login.FailureWindow)
		health["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	hasher, err := security.NewPasswordHasher(
		security.Algorithm(strings.ToLower(cfg.Hasher.Algorithm)),
		security.WithBcryptCost(cfg.Hasher.BcryptCost),
	)
	if err != nil {
		return err
	}

	tokens, err := security.NewTokenService([]byte(cfg.JWT.Secret), cfg.JWT.TTL, security.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		return err
	}

	if cfg.Seed.Enabled {
		accounts := service.DefaultSeedAccounts(cfg.Seed.AdminPassword, cfg.Seed.UserPassword)
		n, err := service.NewSeeder(users, hasher, log).Seed(ctx, accounts)
		if err != nil {
			return fmt.Errorf("seed default users: %w", err)
		}
		log.Info().Int("created", n).Msg("default users seeded")
	}

	e := api.NewRouter(api.Dependencies{
		AuthService: service.NewAuthService(users, hasher, tokens, throttle, log),
		UserService: service.NewUserService(users, log),
		Tokens:      tokens,
		Health:      health,
		Log:         log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.Store.Driver).
			Str("hasher", string(hasher.Algorithm())).
			Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore connects the credential store selected by STORE_DRIVER. The
// returned func releases its connections.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (userStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  serviceName,
		})
		if err != nil {
			return nil, nil, err
		}
		repo := mongo.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewUserRepository(pool), pool.Close, nil

	default:
		log.Warn().Msg("using in-memory credential store, identities are lost on restart")
		return memory.NewUserRepository(), func() {}, nil
	}
}
