package main

import (
	"log"
	"time"

	"association-backoffice/internal/config"
	"association-backoffice/internal/models"
	"association-backoffice/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg := config.Load()
	logger := config.NewLogger()
	defer logger.Sync()

	db := config.InitDB(cfg)

	db.AutoMigrate(
		&models.UploadBatch{},
		&models.PaymentRecord{},
		&models.BankStatementEntry{},
		&models.Resident{},
		&models.Vendor{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, cfg, logger)

	logger.Info("listening", zap.String("addr", cfg.ListenAddr))
	r.Run(cfg.ListenAddr)
}
