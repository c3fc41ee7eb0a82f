package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-tcp-fabric/internal/auth"
	"github.com/ariefcatur/go-tcp-fabric/internal/config"
	"github.com/ariefcatur/go-tcp-fabric/internal/httpx"
	"github.com/ariefcatur/go-tcp-fabric/internal/idseq"
	"github.com/ariefcatur/go-tcp-fabric/internal/logger"
	"github.com/ariefcatur/go-tcp-fabric/internal/postgres"
	"github.com/ariefcatur/go-tcp-fabric/internal/redisx"
	"github.com/ariefcatur/go-tcp-fabric/internal/tcpx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("auth service exited", zap.Error(err))
	}
	lg.Info("auth service stopped")
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	passwords, err := auth.PolicyFor(cfg.PasswordMode)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "supersecret" {
		lg.Warn("JWT_SECRET is the built-in default")
	}

	svc := &auth.Service{
		Users:     auth.NewMemoryUsers(),
		IDs:       &idseq.Memory{},
		Passwords: passwords,
		Tokens:    auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Log:       lg,
	}

	// DB (optional)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		svc.Users = &auth.PostgresUsers{DB: db}
		svc.IDs = &postgres.Sequence{DB: db, Name: "users"}
	}
	// Redis (optional) takes over id allocation.
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.IDs = idseq.NewRedis(rdb, "users")
	}

	srv := tcpx.NewServer("auth", lg,
		tcpx.WithReadTimeout(cfg.ConnReadTimeout),
		tcpx.WithMaxConns(cfg.MaxConns),
	)
	srv.Register(svc.Handlers())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.AuthListen) })
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return httpx.Serve(gctx, httpx.MetricsServer(cfg.MetricsAddr), lg) })
	}
	return g.Wait()
}
