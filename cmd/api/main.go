package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tourcat/tourism-api/internal/config"
	"github.com/tourcat/tourism-api/internal/logging"
	minioRepo "github.com/tourcat/tourism-api/internal/repository/minio"
	"github.com/tourcat/tourism-api/internal/repository/postgres"
	"github.com/tourcat/tourism-api/internal/service"
	transport "github.com/tourcat/tourism-api/internal/transport/http"
	"github.com/tourcat/tourism-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogCollectorTCPAddr != "" {
		collector, err := logging.NewCollectorWriter(cfg.LogCollectorTCPAddr)
		if err != nil {
			log.Printf("log collector disabled: %v", err)
		} else {
			defer collector.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, collector))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	minioClient, err := minioRepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect object storage: %v", err)
	}
	storage := minioRepo.NewStorage(minioClient)

	tourismRepo := postgres.NewTourismRepo(db)
	accountRepo := postgres.NewAccountRepo(db)

	blobs := service.NewBlobStore(storage, service.BlobStoreConfig{
		Bucket:        cfg.MinIOBucket,
		PublicBaseURL: cfg.MinIOPublicURL,
		Timeout:       cfg.StorageTimeout,
		Retries:       cfg.StorageRetries,
	})

	tokens := util.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(accountRepo, tokens, cfg.GoogleAudience)
	tourismService := service.NewTourismService(tourismRepo, blobs, service.TourismServiceConfig{
		ImageMaxBytes:     cfg.TourismImageMax,
		ImageMaxDimension: cfg.ImageMaxDimension,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := service.NewBlobSweeper(tourismRepo, blobs, cfg.SweepGrace)
	go sweeper.Run(ctx, cfg.SweepInterval)

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterAuth(e, authService)
	transport.RegisterTourism(e, authService, tourismService)
	transport.RegisterSwagger(e)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Printf("http server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
