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
	"github.com/ariefcatur/go-tcp-fabric/internal/events"
	"github.com/ariefcatur/go-tcp-fabric/internal/httpx"
	"github.com/ariefcatur/go-tcp-fabric/internal/idseq"
	kafkax "github.com/ariefcatur/go-tcp-fabric/internal/kafka"
	"github.com/ariefcatur/go-tcp-fabric/internal/logger"
	"github.com/ariefcatur/go-tcp-fabric/internal/postgres"
	"github.com/ariefcatur/go-tcp-fabric/internal/products"
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
		lg.Fatal("product service exited", zap.Error(err))
	}
	lg.Info("product service stopped")
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	caller := tcpx.NewClient(cfg.CallTimeout)
	svc := &products.Service{
		Products: products.NewMemoryProducts(),
		IDs:      &idseq.Memory{},
		Auth:     &auth.Client{Caller: caller, Addr: cfg.AuthAddr},
		Log:      lg,
	}

	// DB (optional)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		svc.Products = &products.PostgresProducts{DB: db}
		svc.IDs = &postgres.Sequence{DB: db, Name: "products"}
	}
	// Redis (optional): id allocation and event dedup.
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.IDs = idseq.NewRedis(rdb, "products")
		svc.Dedup = redisx.NewDedup(rdb, cfg.ServiceName+"-product")
	}

	srv := tcpx.NewServer("product", lg,
		tcpx.WithReadTimeout(cfg.ConnReadTimeout),
		tcpx.WithMaxConns(cfg.MaxConns),
	)
	srv.Register(svc.Handlers())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.ProductListen) })

	// Consumer (optional): applies placed orders to tracked stock.
	if len(cfg.KafkaBrokers) > 0 {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ProductGroup, events.TopicOrderCreated, cfg.ProductWorkers, lg)
		g.Go(func() error {
			lg.Info("stock consumer started",
				zap.String("group", cfg.ProductGroup),
				zap.String("topic", events.TopicOrderCreated),
				zap.Int("workers", cfg.ProductWorkers))
			return cons.Start(gctx, svc.HandleOrderCreated)
		})
	}
	if len(cfg.KafkaBrokers) == 0 {
		lg.Warn("KAFKA_BROKERS is empty; placed orders will not reduce tracked stock")
	}
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return httpx.Serve(gctx, httpx.MetricsServer(cfg.MetricsAddr), lg) })
	}
	return g.Wait()
}
