package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"

	httpctx "github.com/dtroode/videotube-server/internal/api/http/context"
	"github.com/dtroode/videotube-server/internal/api/http/handler"
	"github.com/dtroode/videotube-server/internal/api/http/router"
	httpServer "github.com/dtroode/videotube-server/internal/api/http/server"
	"github.com/dtroode/videotube-server/internal/config"
	"github.com/dtroode/videotube-server/internal/logger"
	"github.com/dtroode/videotube-server/internal/model"
	"github.com/dtroode/videotube-server/internal/password"
	"github.com/dtroode/videotube-server/internal/repository/postgres"
	"github.com/dtroode/videotube-server/internal/server"
	"github.com/dtroode/videotube-server/internal/service"
	minioStorage "github.com/dtroode/videotube-server/internal/storage/minio"
	s3Storage "github.com/dtroode/videotube-server/internal/storage/s3"
	"github.com/dtroode/videotube-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.Env)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	mediaStore, err := newMediaStore(ctx, cfg.Media)
	if err != nil {
		logger.Fatal("failed to initialize media store", "error", err, "backend", cfg.Media.Backend)
	}

	userRepo := postgres.NewUserRepository(db)
	channelRepo := postgres.NewChannelRepository(db)

	tokenManager := token.NewJWT(token.Params{
		AccessSecret:  cfg.JWT.AccessSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshSecret: cfg.JWT.RefreshSecret,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	tokenService := service.NewTokenService(tokenManager, userRepo, logger)
	accountService := service.NewAccount(userRepo, mediaStore, tokenService, password.NewBcrypt(bcrypt.DefaultCost), logger)
	channelService := service.NewChannel(channelRepo, logger)

	uploads, err := handler.NewUploads(cfg.HTTP.UploadTempDir)
	if err != nil {
		logger.Fatal("failed to create upload directory", "error", err, "dir", cfg.HTTP.UploadTempDir)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := router.New(accountService, channelService, tokenService, httpctx.NewManager(), uploads, registry, router.Options{
		CORSOrigin:     cfg.HTTP.CORSOrigin,
		SecureCookies:  cfg.IsProduction(),
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	}, logger)

	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port), httpServer.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newMediaStore(ctx context.Context, cfg config.Media) (model.MediaStore, error) {
	switch cfg.Backend {
	case "minio":
		return minioStorage.NewClient(ctx, minioStorage.Options{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Bucket:    cfg.Bucket,
			PublicURL: cfg.PublicURL,
		})
	case "s3":
		return s3Storage.NewClient(ctx, s3Storage.Options{
			Region:       cfg.S3.Region,
			BaseEndpoint: cfg.S3.BaseEndpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
			Bucket:       cfg.Bucket,
			PublicURL:    cfg.PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
