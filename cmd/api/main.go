package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobboard-backend/config"
	_ "go-jobboard-backend/docs" // Important for Swagger
	v1 "go-jobboard-backend/internal/delivery/http/v1"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/repository/memory"
	"go-jobboard-backend/internal/repository/postgres"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/auth"
	"go-jobboard-backend/pkg/database"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/redis"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"
	"go-jobboard-backend/pkg/storage"
	"go-jobboard-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// repositories groups the record stores behind the selected driver.
type repositories struct {
	users        domain.UserRepository
	jobs         domain.JobRepository
	resumes      domain.ResumeRepository
	applications domain.ApplicationRepository
}

// @title           Job Board API
// @version         1.0
// @description     Job postings, resumes and the application pipeline.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.AppEnv)
	logger.Log.Info("Starting job board backend", "port", cfg.Port, "storage", cfg.StorageDriver)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	audit := security.NewAuditLogger(cfg.ServiceName, cfg.AppEnv)
	defer audit.Sync()

	ctx := context.Background()
	required := map[string]usecase.Pinger{}
	optional := map[string]usecase.Pinger{}

	// 3. Setup Record Store
	var repos repositories
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Log.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{store.Users(), store.Jobs(), store.Resumes(), store.Applications()}
	default:
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if cfg.DBAutoMigrate {
			if err := database.Migrate(ctx, dbPool); err != nil {
				logger.Log.Error("Failed to migrate database", "error", err)
				os.Exit(1)
			}
		}

		repos = repositories{
			users:        postgres.NewUserRepository(dbPool),
			jobs:         postgres.NewJobRepository(dbPool),
			resumes:      postgres.NewResumeRepository(dbPool),
			applications: postgres.NewApplicationRepository(dbPool),
		}
		required["database"] = dbPool.Ping
	}

	// 4. Setup Blob Store
	var blobs domain.BlobStore
	if cfg.S3Bucket == "" {
		logger.Log.Warn("S3_BUCKET not configured; resumes are kept in memory")
		blobs = memory.NewBlobStore()
	} else {
		s3Store, err := storage.NewS3BlobStore(ctx, storage.Config{
			Provider:        storage.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Log.Error("Failed to initialise blob storage", "error", err)
			os.Exit(1)
		}
		blobs = s3Store
		optional["storage"] = s3Store.HealthCheck
	}

	// 5. Setup Redis (optional)
	redisClient, err := redis.New(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil && !errors.Is(err, redis.ErrNotConfigured) {
		logger.Log.Warn("Redis unavailable; rate limits fall back to memory", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		optional["redis"] = func(ctx context.Context) error { return redis.HealthCheck(ctx, redisClient) }
	}

	// 6. Setup UseCases
	scanner := antivirus.New(cfg.ClamAVAddress)
	logger.Log.Info("Resume scanner configured", "scanner", scanner.Name())

	validate := validation.New()
	authUC := usecase.NewAuthUsecase(repos.users)
	jobUC := usecase.NewJobUsecase(repos.jobs, repos.applications, validate, audit)
	resumeUC := usecase.NewResumeUsecase(repos.resumes, blobs, scanner, cfg.MaxResumeBytes(), audit)
	applicationUC := usecase.NewApplicationUsecase(repos.applications, jobUC, resumeUC, audit)
	adminUC := usecase.NewAdminUsecase(repos.users, audit)
	healthUC := usecase.NewHealthUsecase(required, optional)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		JobUC:         jobUC,
		ResumeUC:      resumeUC,
		ApplicationUC: applicationUC,
		AdminUC:       adminUC,
		HealthUC:      healthUC,
		Verifier:      auth.NewVerifier(cfg.JWTSecret, cfg.JWKSURL),
		Redis:         redisClient,
		UploadLimiter: security.NewUploadLimiter(redisClient, cfg.UploadsPerMinute, cfg.UploadsPerDay),
		Audit:         audit,
		Config:        cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
