package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jamroom/internal/controller"
	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/provider/spotify"
	"github.com/sharetube/jamroom/internal/repository/connection/inmemory"
	roomRedis "github.com/sharetube/jamroom/internal/repository/room/redis"
	"github.com/sharetube/jamroom/internal/service/reconciler"
	"github.com/sharetube/jamroom/internal/service/room"
	"github.com/sharetube/jamroom/pkg/ctxlogger"
	"github.com/sharetube/jamroom/pkg/redisclient"
	"golang.org/x/sync/errgroup"
)

type AppConfig struct {
	Secret               string        `json:"-"`
	Host                 string        `json:"host"`
	Port                 int           `json:"port"`
	LogLevel             string        `json:"log_level"`
	RedisPort            int           `json:"redis_port"`
	RedisHost            string        `json:"redis_host"`
	RedisPassword        string        `json:"-"`
	RoomTTL              time.Duration `json:"room_ttl"`
	ReconcileInterval    time.Duration `json:"reconcile_interval"`
	ReconcileConcurrency int           `json:"reconcile_concurrency"`
	SpotifyClientId      string        `json:"spotify_client_id"`
	SpotifyClientSecret  string        `json:"-"`
	WebsiteURL           string        `json:"website_url"`
	AccessTokenTTL       time.Duration `json:"access_token_ttl"`
}

func (cfg *AppConfig) Validate() error {
	var errs []error
	if cfg.Secret == "" {
		errs = append(errs, errors.New("secret must be set"))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", cfg.Port))
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if cfg.RoomTTL <= 0 {
		errs = append(errs, errors.New("room ttl must be positive"))
	}
	if cfg.ReconcileInterval <= 0 {
		errs = append(errs, errors.New("reconcile interval must be positive"))
	}
	if cfg.ReconcileConcurrency < 1 {
		errs = append(errs, errors.New("reconcile concurrency must be greater than 0"))
	}
	if cfg.SpotifyClientId == "" || cfg.SpotifyClientSecret == "" {
		errs = append(errs, errors.New("spotify client id and secret must be set"))
	}
	if cfg.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("access token ttl must be positive"))
	}

	return errors.Join(errs...)
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}

	return level, nil
}

type iAccounts interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (spotify.Credentials, error)
}

// app holds the wired components of a running server.
type app struct {
	reconciler *reconciler.Reconciler
	handler    http.Handler
}

func newApp(cfg *AppConfig, rc *redis.Client, prov provider.Provider, accounts iAccounts, logger *slog.Logger) *app {
	roomRepo := roomRedis.NewRepo(rc, cfg.RoomTTL, logger)
	connectionRepo := inmemory.NewRepo(logger)
	roomService := room.NewService(roomRepo, connectionRepo, prov, provider.NewAuthorizer(prov), logger, &room.Config{
		Secret:         cfg.Secret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	})

	rec := reconciler.New(roomService, prov, logger, &reconciler.Config{
		Interval:    cfg.ReconcileInterval,
		Concurrency: cfg.ReconcileConcurrency,
	})
	roomService.OnRoomDeleted(rec.Forget)

	ctrl := controller.NewController(roomService, accounts, logger, &controller.Config{})

	return &app{
		reconciler: rec,
		handler:    ctrl.GetMux(),
	}
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	accounts := spotify.NewAccounts(&spotify.AccountsConfig{
		ClientID:     cfg.SpotifyClientId,
		ClientSecret: cfg.SpotifyClientSecret,
		RedirectURI:  strings.TrimSuffix(cfg.WebsiteURL, "/") + "/create-room",
	})
	spotifyClient := spotify.NewClient(&spotify.Config{SettleDelay: 200 * time.Millisecond}, accounts, logger)

	a := newApp(cfg, rc, spotifyClient, accounts, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: a.handler}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := a.reconciler.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(gctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
