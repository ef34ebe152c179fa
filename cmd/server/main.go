package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"medexa/internal/auth"
	"medexa/internal/config"
	apphttp "medexa/internal/http"
	"medexa/internal/kv"
	"medexa/internal/repository/sqlite"
	"medexa/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, keeping %s", cfg.Log.Level, logger.GetLevel())
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	medicineRepo := sqlite.NewMedicineRepository(db)
	reminderRepo := sqlite.NewReminderTimeRepository(db)
	healthLogRepo := sqlite.NewHealthLogRepository(db)
	appointmentRepo := sqlite.NewAppointmentRepository(db)

	if err := medicineRepo.Init(ctx); err != nil {
		logger.Fatalf("init medicine repository: %v", err)
	}
	if err := reminderRepo.Init(ctx); err != nil {
		logger.Fatalf("init reminder repository: %v", err)
	}
	if err := healthLogRepo.Init(ctx); err != nil {
		logger.Fatalf("init health log repository: %v", err)
	}
	if err := appointmentRepo.Init(ctx); err != nil {
		logger.Fatalf("init appointment repository: %v", err)
	}

	durable, err := buildKV(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	sessions := auth.NewStore(durable,
		auth.WithLogger(logger),
		auth.WithBcryptCost(cfg.Auth.BcryptCost),
	)
	sessions.Start(ctx)

	handler := apphttp.NewHandler(
		sessions,
		auth.NewTokens(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute),
		service.NewMedicineService(medicineRepo, reminderRepo, logger),
		service.NewHealthLogService(healthLogRepo),
		service.NewAppointmentService(appointmentRepo),
		logger,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildKV(ctx context.Context, cfg config.Config, db *sql.DB, logger *logrus.Logger) (kv.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory session storage; accounts are lost on restart")
		return kv.NewMemoryStore(), nil
	case config.StorageDriverS3:
		return buildS3KV(ctx, cfg, logger)
	default:
		store := kv.NewSQLiteStore(db)
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		logger.Infof("using sqlite session storage at %s", cfg.Database.Path)
		return store, nil
	}
}

func buildS3KV(ctx context.Context, cfg config.Config, logger *logrus.Logger) (kv.Store, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s) for session storage", cfg.Storage.Bucket, cfg.Storage.Region)
	return kv.NewS3Store(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
}
