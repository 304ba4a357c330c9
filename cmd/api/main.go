package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/epigraph/internal/api"
	"github.com/timmy/epigraph/internal/api/middleware"
	"github.com/timmy/epigraph/internal/config"
	"github.com/timmy/epigraph/internal/gemini"
	"github.com/timmy/epigraph/internal/identity"
	"github.com/timmy/epigraph/internal/logger"
	"github.com/timmy/epigraph/internal/repository"
	"github.com/timmy/epigraph/internal/service"
	"github.com/timmy/epigraph/internal/session"
	"github.com/timmy/epigraph/internal/storage"
)

func main() {
	log := logger.NewDefault()
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	ctx := context.Background()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	resolver := identity.NewResolver(&identity.Config{
		URL:     cfg.Supabase.URL,
		AnonKey: cfg.Supabase.AnonKey,
		Timeout: cfg.Supabase.Timeout,
	})
	if cfg.Supabase.URL == "" {
		log.Warn("supabase.url is not set, every caller is anonymous")
	}
	store := repository.NewStore(db, resolver, repository.StoreConfig{
		AllowAnonymousComments: cfg.Community.AllowAnonymous,
	})

	geminiClient, err := gemini.NewClient(ctx, &gemini.Config{
		APIKey:          cfg.Gemini.APIKey,
		Model:           cfg.Gemini.Model,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		TargetLanguage:  cfg.Gemini.TargetLanguage,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize Gemini client")
	}
	defer geminiClient.Close()

	var archive service.ImageArchiver
	if cfg.Storage.Enabled {
		objectStorage, err := storage.NewStorage(ctx, &storage.S3Config{
			Type:      storage.StorageType(cfg.Storage.Type),
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize image archive")
		}
		archive = storage.NewImageArchive(objectStorage)
		log.WithField("bucket", cfg.Storage.Bucket).Info("Image archive enabled")
	}

	sessions := session.NewManager(session.Deps{
		Gateway:   geminiClient,
		Store:     store,
		Archive:   archive,
		Analysis:  service.AnalysisConfig{MaxImageBytes: cfg.Analysis.MaxImageBytes},
		FeedLimit: cfg.Community.FeedLimit,
	}, session.Config{
		TTL:          cfg.Session.TTL,
		ReapSchedule: cfg.Session.ReapSchedule,
	})
	if err := sessions.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to schedule session reaper")
	}
	defer sessions.Stop()

	router := api.SetupRouter(api.RouterConfig{
		Mode: cfg.Server.Mode,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
		Sessions:      sessions,
		Catalog:       service.NewScriptCatalog(store),
		Model:         geminiClient.Model(),
		MaxImageBytes: cfg.Analysis.MaxImageBytes,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.WithFields(logger.Fields{
			"port":  cfg.Server.Port,
			"mode":  cfg.Server.Mode,
			"model": geminiClient.Model(),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exited")
}
