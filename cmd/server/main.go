package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/grlib/chan-mcp/internal/config"
	"github.com/grlib/chan-mcp/internal/handler"
	"github.com/grlib/chan-mcp/internal/provider"
	"github.com/grlib/chan-mcp/internal/service"
	signalext "github.com/grlib/chan-mcp/internal/signal"
	"github.com/grlib/chan-mcp/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc     = godotenv.Load
	loadConfigFunc  = config.Load
	initTracerFunc  = tracing.InitTracer
	newBaostockFunc = func(baseURL string, timeout time.Duration, tracer trace.Tracer) service.BarFetcher {
		return provider.NewBaostockClient(baseURL, timeout, tracer)
	}
	newExtractorFunc       = signalext.NewExtractor
	newMarketServiceFunc   = service.NewMarketService
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create provider and services
	fetcher := newBaostockFunc(cfg.BaostockURL, time.Duration(cfg.BaostockTimeoutSecs)*time.Second, tracer)
	extractor := newExtractorFunc()
	market := newMarketServiceFunc(tracer, fetcher, extractor, cfg.ChanSignals)

	// Create handlers and routes
	h := newHandlerFunc(tracer, market)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("chan-mcp"))

	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.HTTPBind, fmt.Sprintf("%d", cfg.HTTPPort)),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
