package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"walking-route-service/internal/adapters/cache"
	"walking-route-service/internal/config"
	"walking-route-service/internal/platform/db"
	"walking-route-service/internal/platform/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.NewNamed(config.Get("APP_ENV", "development"), config.Get("LOG_LEVEL", "info"), "dbtool")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sqlDB, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer sqlDB.Close()

	log.Info("initializing cache schema")
	if err := cache.InitSchema(ctx, sqlDB); err != nil {
		log.Fatal("schema initialization failed", zap.Error(err))
	}
	log.Info("schema ready")
}
