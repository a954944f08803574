package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/pulsewatch/backend/internal/client"
	"github.com/pulsewatch/backend/internal/config"
	"github.com/pulsewatch/backend/internal/db"
	"github.com/pulsewatch/backend/internal/handler"
	"github.com/pulsewatch/backend/internal/service"
)

func main() {
	// .env가 없으면 프로세스 환경변수만 사용
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := &db.Postgres{Pool: pool}
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	authService, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to init auth service: %v", err)
	}

	// 실행 파이프라인 조립: prober → 판정 단계들 → dispatcher
	prober := client.NewProbeClient(cfg.Prober)
	notifier := client.NewNotifyClient(repo)
	pipeline := service.NewPipeline(
		prober,
		repo,
		service.NewMaintenanceService(repo),
		service.NewSuppressionTracker(repo),
		service.NewIncidentManager(repo),
		service.NewCorrelationEngine(repo),
		service.NewRateLimiter(repo),
		service.NewRunbookMatcher(repo),
		notifier,
	)

	scheduler := service.NewScheduler(repo, pipeline)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	router := gin.Default()
	if cfg.Server.AllowedOrigins != "" {
		router.Use(handler.CORSMiddleware(strings.Split(cfg.Server.AllowedOrigins, ",")))
	}

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)

	incidentHandler := handler.NewIncidentHandler(repo)
	resultHandler := handler.NewResultHandler(repo, pipeline)
	correlationHandler := handler.NewCorrelationHandler(repo)
	runbookHandler := handler.NewRunbookHandler(repo)
	settingsHandler := handler.NewSettingsHandler(repo)

	api := router.Group("/api/v1")
	api.Use(handler.AuthMiddleware(authService))
	{
		api.GET("/incidents", incidentHandler.ListIncidents)
		api.GET("/incidents/:id", incidentHandler.GetIncident)

		api.GET("/checks/:id/results", resultHandler.ListResults)
		api.POST("/results", resultHandler.IngestResult)

		api.GET("/correlations", correlationHandler.ListCorrelations)
		api.GET("/correlations/:id", correlationHandler.GetCorrelation)
		api.POST("/correlations/:id/resolve", correlationHandler.ResolveCorrelation)

		api.GET("/runbooks", runbookHandler.ListRunbooks)
		api.GET("/runbooks/:id", runbookHandler.GetRunbook)
		api.POST("/runbooks", runbookHandler.CreateRunbook)
		api.PUT("/runbooks/:id", runbookHandler.UpdateRunbook)
		api.DELETE("/runbooks/:id", runbookHandler.DeleteRunbook)

		api.GET("/settings/correlation", settingsHandler.GetCorrelationConfig)
		api.PUT("/settings/correlation", settingsHandler.PutCorrelationConfig)
		api.GET("/settings/ratelimit", settingsHandler.GetRateLimitConfig)
		api.PUT("/settings/ratelimit", settingsHandler.PutRateLimitConfig)
		api.GET("/settings/webhooks", settingsHandler.ListWebhookConfigs)
		api.POST("/settings/webhooks", settingsHandler.CreateWebhookConfig)
		api.DELETE("/settings/webhooks/:id", settingsHandler.DeleteWebhookConfig)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		_ = srv.Shutdown(context.Background())
	}()

	log.Printf("Listening on :%s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
