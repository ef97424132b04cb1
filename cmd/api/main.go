package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"bakery-popup/internal/app"
	"bakery-popup/internal/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := app.NewServer(config.Load(), logger)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}
