package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/oakframe/oak/app/demo"
	"github.com/oakframe/oak/core/auth"
	"github.com/oakframe/oak/core/config"
	"github.com/oakframe/oak/core/logger"
	"github.com/oakframe/oak/core/server"
	"github.com/oakframe/oak/core/session"
	"github.com/oakframe/oak/integration/identity/sqlite"
	sessionredis "github.com/oakframe/oak/integration/session/redis"
)

type appConfig struct {
	App     demo.Config
	Logger  logger.Config
	Session session.Config
	Auth    auth.Config
	Server  server.Config
	SQLite  sqlite.Config

	// SessionStore selects the session backend: "memory" or "redis".
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.FromConfig(cfg.Logger)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("shutdown with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	users, err := sqlite.Open(ctx, cfg.SQLite)
	if err != nil {
		return err
	}
	defer users.Close()

	sessionStore, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	app := demo.New(users, sessionStore, cfg.App,
		demo.WithLogger(log),
		demo.WithSessionConfig(cfg.Session),
		demo.WithAuthConfig(cfg.Auth),
	)

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		return err
	}

	log.Info("starting server", slog.String("addr", cfg.Server.Addr))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(ctx, app))
	return g.Wait()
}

func newSessionStore(ctx context.Context, cfg appConfig, log *slog.Logger) (session.Store, error) {
	if cfg.SessionStore != "redis" {
		log.Info("using in-memory session store")
		return session.NewMemoryStore(), nil
	}

	var redisCfg sessionredis.Config
	if err := config.Load(&redisCfg); err != nil {
		return nil, err
	}
	client, err := sessionredis.Connect(ctx, redisCfg)
	if err != nil {
		return nil, err
	}
	log.Info("using redis session store")
	return sessionredis.NewStore(client, sessionredis.WithKeyPrefix(redisCfg.KeyPrefix)), nil
}
