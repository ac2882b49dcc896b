package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/grlib/chan-mcp/internal/config"
	"github.com/grlib/chan-mcp/internal/domain"
	"github.com/grlib/chan-mcp/internal/provider"
	"github.com/grlib/chan-mcp/internal/service"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainServerStartsAndShutsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitTracer := initTracerFunc
	origNewBaostock := newBaostockFunc
	origNewRouter := newRouterFunc
	origNotify := setupSignalNotify
	origWait := waitForSignalFunc
	origStart := startHTTPServerFunc
	origShutdown := shutdownHTTPServerFunc

	started := make(chan struct{})
	httpStarted := false
	shutdownCalled := false

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			BaostockURL:         "http://127.0.0.1:1",
			BaostockTimeoutSecs: 1,
			HTTPBind:            "127.0.0.1",
			HTTPPort:            8081,
			ChanSignals:         []string{"macd_cross"},
		}
	}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newBaostockFunc = func(string, time.Duration, trace.Tracer) service.BarFetcher {
		return stubServerFetcher{}
	}
	newRouterFunc = gin.New
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) { <-started }
	startHTTPServerFunc = func(*http.Server) error {
		httpStarted = true
		close(started)
		return http.ErrServerClosed
	}
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error {
		shutdownCalled = true
		return nil
	}

	defer func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initTracerFunc = origInitTracer
		newBaostockFunc = origNewBaostock
		newRouterFunc = origNewRouter
		setupSignalNotify = origNotify
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStart
		shutdownHTTPServerFunc = origShutdown
	}()

	main()

	if !httpStarted {
		t.Fatal("expected http server to start")
	}
	if !shutdownCalled {
		t.Fatal("expected graceful shutdown to run")
	}
}

type stubServerFetcher struct{}

func (stubServerFetcher) FetchKData(ctx context.Context, req domain.BarRequest) (*provider.KDataResult, error) {
	return nil, fmt.Errorf("not used")
}
