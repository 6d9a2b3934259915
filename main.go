package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tecnoloc-diag/config"
	"tecnoloc-diag/diagnosis"
	"tecnoloc-diag/models"
	"tecnoloc-diag/providers/registry"
	"tecnoloc-diag/services"
	"tecnoloc-diag/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Obergrenzen für Request-Bodies. Modellantworten sind wenige Kilobyte groß.
const (
	maxManualSize    = 50 << 20
	maxNormalizeBody = 1 << 20
)

// Schnittstellen, die die Routen brauchen. Die Services aus services/ erfüllen sie.
type diagnoser interface {
	Analyze(ctx context.Context, info services.EquipmentInfo) (diagnosis.Result, error)
}

type logService interface {
	Save(ctx context.Context, req services.SaveLogRequest) (*models.MaintenanceLog, error)
	List(ctx context.Context, f services.LogFilter) ([]models.MaintenanceLog, error)
	Get(ctx context.Context, id uint) (*models.MaintenanceLog, error)
	Count(ctx context.Context) (int64, error)
}

type manualService interface {
	Upload(ctx context.Context, req services.UploadManualRequest) (*models.Manual, error)
	List(ctx context.Context) ([]models.Manual, error)
	Delete(ctx context.Context, id uint) error
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" || c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(&models.MaintenanceLog{}, &models.Manual{}); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Provider
	provider, err := registry.New(registry.FromConfig(&cfg.LLM), logging)
	if err != nil {
		logging.Fatal("Provider setup failed", zap.Error(err))
	}
	if cfg.LLMCredential() == "" {
		logging.Warn("No API key configured for provider, diagnoses will fail", zap.String("provider", provider.Name()))
	}
	logging.Info("Active provider loaded", zap.String("provider", provider.Name()))

	// Setup Services
	s3Store, err := storage.NewS3Store(context.Background(), storage.OptionsFromConfig(cfg))
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	logStore := services.NewGormLogStore(db)
	manualStore := services.NewGormManualStore(db)

	diagnosticService := services.NewDiagnosticService(provider, logStore, manualStore, logging, cfg.LLMTimeout, cfg.HistoryTipsLimit)
	logSvc := services.NewLogService(logStore, logging)
	manualSvc := services.NewManualService(manualStore, s3Store, logging)
	renormalizer := services.NewRenormalizer(logStore, logging)

	router := setupRouter(cfg, logging, diagnosticService, logSvc, manualSvc)

	// Setup Cron
	cronScheduler := cron.New()
	_, err = cronScheduler.AddFunc(cfg.RenormalizeSchedule, func() {
		logging.Info("Running scheduled renormalize job...")
		count, err := renormalizer.Run(context.Background())
		if err != nil {
			logging.Error("Cron job failed", zap.Error(err), zap.Int("renormalized", count))
		} else {
			logging.Info("Cron job completed", zap.Int("renormalized", count))
		}
	})
	if err != nil {
		logging.Fatal("Invalid RENORMALIZE_SCHEDULE", zap.String("schedule", cfg.RenormalizeSchedule), zap.Error(err))
	}
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupRouter(cfg *config.Config, log *zap.Logger, diag diagnoser, logs logService, manuals manualService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupDiagnosticRoutes(router, diag, log)
	setupLogRoutes(router, logs, log)
	setupManualRoutes(router, manuals, log)
	return router
}

func setupDiagnosticRoutes(router *gin.Engine, diag diagnoser, log *zap.Logger) {
	rg := router.Group("/diagnostics")

	// Komplette Diagnose: Kontext laden, Modell fragen, Antwort normalisieren
	rg.POST("", func(c *gin.Context) {
		var info services.EquipmentInfo
		if err := c.ShouldBindJSON(&info); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		result, err := diag.Analyze(c.Request.Context(), info)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidInput):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, diagnosis.ErrParseFailure):
				c.JSON(http.StatusBadGateway, gin.H{"error": "The model returned an unreadable answer. Please try again."})
			default:
				c.JSON(http.StatusBadGateway, gin.H{"error": "Diagnosis failed. Please try again."})
			}
			return
		}
		c.JSON(http.StatusOK, result)
	})

	// Nur normalisieren: Body ist die rohe Modellantwort (JSON, optional in Markdown-Zäunen)
	rg.POST("/normalize", func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNormalizeBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		result, err := diagnosis.ParseResponse(string(body))
		if err != nil {
			log.Debug("Normalize request with invalid JSON", zap.Error(err))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

func setupLogRoutes(router *gin.Engine, logs logService, log *zap.Logger) {
	rg := router.Group("/logs")

	rg.POST("", func(c *gin.Context) {
		var req services.SaveLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		entry, err := logs.Save(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, services.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusCreated, entry)
	})

	rg.GET("", func(c *gin.Context) {
		filter := services.LogFilter{
			EquipmentModel: c.Query("model"),
			DefectCategory: c.Query("category"),
			Status:         c.Query("status"),
			Limit:          50,
		}
		if l := c.Query("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			filter.Limit = n
		}
		entries, err := logs.List(c.Request.Context(), filter)
		if err != nil {
			log.Error("Database query for logs failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, entries)
	})

	rg.GET("/count", func(c *gin.Context) {
		n, err := logs.Count(c.Request.Context())
		if err != nil {
			log.Error("Counting logs failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		entry, err := logs.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
				return
			}
			log.Error("Database query for log failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, entry)
	})
}

func setupManualRoutes(router *gin.Engine, manuals manualService, log *zap.Logger) {
	rg := router.Group("/manuals")

	// Multipart-Upload: Feld "file" plus Metadaten als Formularfelder
	rg.POST("", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fh.Size > maxManualSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxManualSize))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
			return
		}

		m, err := manuals.Upload(c.Request.Context(), services.UploadManualRequest{
			EquipmentName:  c.PostForm("equipment_name"),
			Brand:          c.PostForm("brand"),
			Model:          c.PostForm("model"),
			ManualType:     c.PostForm("manual_type"),
			ManualCategory: c.PostForm("manual_category"),
			Description:    c.PostForm("description"),
			FileName:       fh.Filename,
			ContentType:    fh.Header.Get("Content-Type"),
			Data:           data,
		})
		if err != nil {
			if errors.Is(err, services.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}
		c.JSON(http.StatusCreated, m)
	})

	rg.GET("", func(c *gin.Context) {
		list, err := manuals.List(c.Request.Context())
		if err != nil {
			log.Error("Database query for manuals failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := manuals.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "manual not found"})
				return
			}
			log.Error("Deleting manual failed", zap.Uint("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// parseID liest :id und antwortet bei ungültigen Werten selbst mit 400.
func parseID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(n), true
}
