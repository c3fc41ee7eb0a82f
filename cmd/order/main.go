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
	"github.com/ariefcatur/go-tcp-fabric/internal/orders"
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
		lg.Fatal("order service exited", zap.Error(err))
	}
	lg.Info("order service stopped")
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	caller := tcpx.NewClient(cfg.CallTimeout)
	svc := &orders.Service{
		Orders:      orders.NewMemoryOrders(),
		IDs:         &idseq.Memory{},
		Auth:        &auth.Client{Caller: caller, Addr: cfg.AuthAddr},
		Products:    &products.Client{Caller: caller, Addr: cfg.ProductAddr},
		Log:         lg,
		ServiceName: cfg.ServiceName + "-order",
	}

	// DB (optional)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		svc.Orders = &orders.PostgresOrders{DB: db}
		svc.IDs = &postgres.Sequence{DB: db, Name: "orders"}
	}
	// Redis (optional)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.IDs = idseq.NewRedis(rdb, "orders")
	}

	srv := tcpx.NewServer("order", lg,
		tcpx.WithReadTimeout(cfg.ConnReadTimeout),
		tcpx.WithMaxConns(cfg.MaxConns),
	)
	srv.Register(svc.Handlers())

	// Kafka producer (optional)
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prodCtx, cancelProd := context.WithCancel(context.Background())
		defer cancelProd()
		prod = kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024, lg)
		prod.Start(prodCtx)
		svc.Events = prod
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.OrderListen) })
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return httpx.Serve(gctx, httpx.MetricsServer(cfg.MetricsAddr), lg) })
	}
	err := g.Wait()

	// The listener has drained, so nothing publishes any more.
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
	return err
}
