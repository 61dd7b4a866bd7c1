package main

import (
	"DriveX/internal/config"
	"DriveX/internal/handlers"
	"DriveX/internal/middleware"
	"DriveX/internal/repo"
	"DriveX/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Заполняются через -ldflags "-X main.buildVersion=..."
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
)

func main() {
	cfg := config.NewConfig()
	if cfg.Version {
		fmt.Printf("DriveX fixture server (dxserver)\nBuild version: %s\nBuild date: %s\n", buildVersion, buildDate)
		return
	}

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userService := service.NewUserService(repo.NewUserRepository(gormDB), repo.NewResetTokenRepository(gormDB), sugar)
	fileService := service.NewFileService(
		repo.NewFileRepository(gormDB),
		repo.NewBlobRepository(gormDB),
		int64(cfg.BlobMaxSizeMB)*1024*1024,
		sugar,
	)

	h := handlers.NewHandler(userService, fileService, sugar, cfg)

	sugar.Infow("Config",
		"ServerAddr", cfg.ServerAddr,
		"DatabaseDSN", cfg.DatabaseDSN,
		"BlobMaxSizeMB", cfg.BlobMaxSizeMB,
	)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	sugar.Infow("Starting server", "addr", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}
