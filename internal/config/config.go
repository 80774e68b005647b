package config

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	ListenAddr   string
	DatabaseDSN  string
	ExtractorURL string
	NotifierURL  string
}

func Load() Config {
	return Config{
		ListenAddr:   envOr("LISTEN_ADDR", ":8080"),
		DatabaseDSN:  buildDSN(),
		ExtractorURL: envOr("EXTRACTOR_URL", "http://localhost:9090"),
		NotifierURL:  envOr("NOTIFIER_URL", "http://localhost:9091"),
	}
}

func buildDSN() string {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_NAME", "backoffice"),
		envOr("DB_PORT", "5432"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB(cfg Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}

func NewLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return logger
}
