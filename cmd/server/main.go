// @title       Dashboard API
// @version     1.0
// @description Authentication and identity federation for the displayables dashboard.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/displayables/dashboard-api/internal/api"
	"github.com/displayables/dashboard-api/internal/api/handler"
	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
	"github.com/displayables/dashboard-api/internal/core/security"
	"github.com/displayables/dashboard-api/internal/core/service"
	"github.com/displayables/dashboard-api/internal/infrastructure/config"
	mongodb "github.com/displayables/dashboard-api/internal/infrastructure/db/mongo"
	redisdb "github.com/displayables/dashboard-api/internal/infrastructure/db/redis"
	"github.com/displayables/dashboard-api/internal/infrastructure/db/sqlite"
	"github.com/displayables/dashboard-api/internal/infrastructure/provider"
	"github.com/displayables/dashboard-api/internal/infrastructure/queue"
	"github.com/displayables/dashboard-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "dashboard-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// storage is the persistence backend selected by STORE_DRIVER.
type storage struct {
	users     ports.UserRepository
	providers ports.ProviderRepository
	events    ports.AuthEventRepository
	pinger    handler.Pinger
	close     func(context.Context) error
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return &storage{
			users:     store,
			providers: store,
			events:    store,
			pinger:    store,
			close:     func(context.Context) error { return store.Close() },
		}, nil
	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		users := mongodb.NewUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return &storage{
			users:     users,
			providers: mongodb.NewProviderRepository(db),
			events:    mongodb.NewAuthEventRepository(db),
			pinger:    mongodb.NewPinger(client),
			close:     client.Disconnect,
		}, nil
	}
}

func identityProviders(cfg *config.Config, tokens *security.TokenService) []ports.IdentityProvider {
	client := provider.NewHTTPClient(cfg.Providers.Timeout)
	p := cfg.Providers
	return []ports.IdentityProvider{
		service.NewLocalProvider(tokens),
		provider.NewGoogle(provider.GoogleConfig{UserInfoURL: p.GoogleUserInfoURL, HTTPClient: client}),
		provider.NewFacebook(provider.FacebookConfig{GraphURL: p.FacebookGraphURL, HTTPClient: client}),
		provider.NewGithub(provider.GithubConfig{
			ClientID:     p.GithubClientID,
			ClientSecret: p.GithubClientSecret,
			RedirectURL:  p.GithubRedirectURL,
			APIURL:       p.GithubAPIURL,
			OAuthURL:     p.GithubOAuthURL,
			HTTPClient:   client,
		}),
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()

	if err := store.providers.Seed(ctx, domain.Providers); err != nil {
		return fmt.Errorf("seed providers: %w", err)
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	audit := queue.NewDispatcher(cfg.Audit.Workers, store.events, log)
	audit.Start(ctx)
	defer audit.Stop()

	tokens := security.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	auth, err := service.NewAuthService(
		store.users,
		security.NewVault(cfg.Auth.PBKDF2Iterations),
		identityProviders(cfg, tokens),
		log,
		service.WithThrottle(redisdb.NewLoginThrottle(rdb, cfg.Throttle.MaxAttempts, cfg.Throttle.Window)),
		service.WithEventRecorder(audit),
	)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Auth: auth,
		Health: map[string]handler.Pinger{
			"store": store.pinger,
			"redis": redisdb.NewPinger(rdb),
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("listening")
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
