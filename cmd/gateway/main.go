package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-tcp-fabric/internal/config"
	"github.com/ariefcatur/go-tcp-fabric/internal/httpx"
	"github.com/ariefcatur/go-tcp-fabric/internal/logger"
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

	router := httpx.NewRouter(lg)
	gw := &httpx.Gateway{
		Caller:      tcpx.NewClient(cfg.CallTimeout),
		AuthAddr:    cfg.AuthAddr,
		ProductAddr: cfg.ProductAddr,
		OrderAddr:   cfg.OrderAddr,
		Log:         lg,
	}
	gw.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	if err := httpx.Serve(ctx, srv, lg); err != nil {
		lg.Fatal("gateway exited", zap.Error(err))
	}
	lg.Info("gateway stopped")
}
