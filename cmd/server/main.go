package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hackaigc-api/internal/config"
	"hackaigc-api/internal/hackaigc"
	"hackaigc-api/internal/middleware"
	"hackaigc-api/internal/template"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 初始化结构化日志
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	configPath := flag.String("config", "", "Path to config.json/config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	renderer, err := template.NewRenderer()
	if err != nil {
		slog.Error("Failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	h := hackaigc.NewHandler(cfg, renderer)

	mux := http.NewServeMux()

	chain := middleware.Chain(
		middleware.TraceMiddleware,
		middleware.LoggingMiddleware,
		middleware.MetricsMiddleware,
		middleware.CORS,
	)
	mux.Handle("/", chain(middleware.BearerAuth(cfg.APIMasterKey, hackaigc.IsUIPath, http.HandlerFunc(h.Dispatch))))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	if cfg.DebugEnabled {
		mux.Handle("/debug/pprof/", middleware.BearerAuth(cfg.APIMasterKey, nil, http.DefaultServeMux))
		slog.Info("pprof enabled", "path", "/debug/pprof/")
	}

	// No WriteTimeout: image generation and SSE relays can legitimately run
	// for minutes; the upstream client carries its own timeout.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// 优雅关闭处理
	idleConnsClosed := make(chan struct{})
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		slog.Info("Received signal, starting graceful shutdown", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		close(idleConnsClosed)
	}()

	slog.Info("Server running", "port", cfg.Port, "upstream", cfg.UpstreamURL)
	slog.Info("Web UI available", "url", fmt.Sprintf("http://localhost:%s/", cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("Server start failed", "error", err)
		os.Exit(1)
	}

	<-idleConnsClosed
	slog.Info("Server shutdown gracefully")
}
