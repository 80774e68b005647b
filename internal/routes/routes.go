package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"association-backoffice/internal/config"
	"association-backoffice/internal/events"
	"association-backoffice/internal/gateway"
	handler "association-backoffice/internal/handlers"
	"association-backoffice/internal/notification"
	"association-backoffice/internal/repository"
	"association-backoffice/internal/services/assignment"
	"association-backoffice/internal/services/bankentries"
	"association-backoffice/internal/services/batches"
	"association-backoffice/internal/services/preview"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, log *zap.Logger) {
	batchRepo := repository.NewBatchRepository(db)
	recordRepo := repository.NewPaymentRecordRepository(db)
	entryRepo := repository.NewBankEntryRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)

	bus := events.NewBus()
	bus.Subscribe(func(e events.Event) {
		log.Debug("domain event", zap.String("event", e.Name()))
	})

	extractor := gateway.NewClient(cfg.ExtractorURL, log)
	notifier := notification.NewClient(cfg.NotifierURL, log)

	batchCtl := batches.NewController(batchRepo, recordRepo, bus, log)
	assembler := preview.NewAssembler(db, batchCtl, log)
	assignSvc := assignment.NewService(recordRepo, directoryRepo, notifier, bus, log)
	editor := bankentries.NewEditor(entryRepo, directoryRepo, log)

	reconHandler := handler.NewReconciliationHandler(extractor, directoryRepo, recordRepo, assembler, batchCtl, assignSvc)
	entryHandler := handler.NewBankEntryHandler(editor)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Preview / reconciliation routes
	recon := api.Group("/reconciliation")
	recon.POST("/parse", reconHandler.Parse)
	recon.POST("/preview/:sessionId/override", reconHandler.OverrideMatch)
	recon.POST("/preview/:sessionId/commit", reconHandler.CommitPreview)
	recon.DELETE("/preview/:sessionId", reconHandler.CancelPreview)

	// Batch routes
	batchGroup := api.Group("/batches")
	batchGroup.GET("", reconHandler.ListBatches)
	batchGroup.GET("/:batchId/records", reconHandler.ListBatchRecords)
	batchGroup.DELETE("/:batchId", reconHandler.DeleteBatch)

	// Record-level routes
	records := api.Group("/records")
	records.POST("/:id/assign", reconHandler.AssignRecord)
	records.POST("/:id/accept", reconHandler.AcceptRecord)
	records.POST("/:id/decline", reconHandler.DeclineRecord)
	records.POST("/:id/reject", reconHandler.RejectRecord)
	records.POST("/bulk-confirm", reconHandler.BulkConfirm)

	// Bank statement routes
	entries := api.Group("/bank-entries")
	{
		entries.GET("", entryHandler.List)
		entries.POST("", entryHandler.Create)
		entries.POST("/import", entryHandler.Import)
		entries.POST("/:id/assign", entryHandler.Assign)
	}
}
