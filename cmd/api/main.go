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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/career-tracker/internal/auth"
	"github.com/justsurfingit/career-tracker/internal/cache"
	"github.com/justsurfingit/career-tracker/internal/config"
	"github.com/justsurfingit/career-tracker/internal/database"
	"github.com/justsurfingit/career-tracker/internal/events"
	"github.com/justsurfingit/career-tracker/internal/handlers"
	"github.com/justsurfingit/career-tracker/internal/logger"
	"github.com/justsurfingit/career-tracker/internal/repository"
	"github.com/justsurfingit/career-tracker/internal/scheduler"
	"github.com/justsurfingit/career-tracker/internal/services"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "career-tracker:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration & logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}

	// 3. Redis is optional; without it research is not cached and events are dropped
	var (
		researchCache cache.Cache      = cache.Nop{}
		publisher     events.Publisher = events.Nop{}
	)
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer rdb.Close()
			researchCache = cache.NewRedis(rdb, "career-tracker")
			publisher = events.NewRedisPublisher(rdb)
		}
	}

	// 4. Core services
	llm, err := services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return err
	}
	jobRepo := repository.NewJobRepo(db)
	contactRepo := repository.NewContactRepo(db)

	jobService := services.NewJobService(jobRepo, contactRepo, publisher, log)
	contactService := services.NewContactService(contactRepo, jobRepo, publisher, log)
	researchService := services.NewResearchService(jobRepo, repository.NewResearchRepo(db), llm, researchCache, publisher, log, cfg.ResearchCacheTTL)
	analysisService := services.NewAnalysisService(jobRepo, repository.NewAnalysisRepo(db), llm, publisher, log, cfg.AnalysisMaxAge, cfg.AnalysisHistoryLimit)

	// 5. Gmail integration, skipped when no credentials are configured
	var mailbox services.Mailbox
	gmailClient, err := auth.GmailService(ctx, cfg.GmailCredentialsFile, cfg.GmailTokenFile, os.Stdout, os.Stdin, log)
	switch {
	case errors.Is(err, auth.ErrNoCredentials):
		log.Warn("gmail credentials not found, email watcher disabled", zap.String("file", cfg.GmailCredentialsFile))
	case err != nil:
		log.Error("gmail client unavailable, email watcher disabled", zap.Error(err))
	default:
		mailbox = &services.GmailMailbox{Client: gmailClient, Log: log}
	}
	emailService := services.NewEmailService(repository.NewEmailStateRepo(db), jobRepo, llm, mailbox, publisher, log)

	// 6. Scheduled jobs
	sched := scheduler.New(log, 10*time.Minute)
	if mailbox != nil {
		if err := sched.Add(ctx, "gmail-sync", cfg.GmailSyncSchedule, true, emailService.SyncEmails); err != nil {
			return err
		}
	}
	err = sched.Add(ctx, "analysis-refresh", cfg.AnalysisRefreshSchedule, false, func(ctx context.Context) error {
		n, err := analysisService.RefreshStale(ctx)
		if n > 0 {
			log.Info("refreshed stale analyses", zap.Int("count", n))
		}
		return err
	})
	if err != nil {
		return err
	}
	sched.Start()

	// 7. Router & CORS
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.GinMiddleware(log), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	// 8. Routes
	handlers.Routes(r, handlers.Handlers{
		Jobs:     handlers.NewJobHandler(llm, jobService, log),
		Contacts: handlers.NewContactHandler(contactService, log),
		Research: handlers.NewResearchHandler(researchService, log),
		Analysis: handlers.NewAnalysisHandler(analysisService, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
