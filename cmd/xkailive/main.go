package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xkailive-dev/xkailive/internal/setup"
	"github.com/xkailive-dev/xkailive/shared/config"
	"github.com/xkailive-dev/xkailive/shared/logger"
)

func main() {
	configFolder := flag.String("config_folder", "./config", "Folder with public.yaml and private.yaml")
	mockTraffic := flag.Bool("mock_traffic", false, "Generate demo traffic in the live room")
	flag.Parse()

	cfg := config.MustLoad(*configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.Build(cfg, setup.Options{MockTraffic: *mockTraffic})
	if err != nil {
		logger.Log.Error("startup failed", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.Public.ListenAddr,
		Handler:      deps.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.Info("listening", "addr", cfg.Public.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Error("shutdown failed", "error", err)
	}
	deps.Close()
	logger.Log.Info("bye")
}
