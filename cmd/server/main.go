package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/ai"
	"github.com/ignatzorin/moderation-backend/internal/config"
	"github.com/ignatzorin/moderation-backend/internal/db"
	httpHandlers "github.com/ignatzorin/moderation-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/moderation-backend/internal/http/router"
	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/repository"
	"github.com/ignatzorin/moderation-backend/internal/service"
	"github.com/ignatzorin/moderation-backend/internal/storage"
	"github.com/ignatzorin/moderation-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	evidenceStorage, err := storage.NewEvidenceStorage(cfg.EvidenceStorePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	contentRepo := repository.NewContentRepository(dbConn)
	flagRepo := repository.NewFlagRepository(dbConn)
	appealRepo := repository.NewAppealRepository(dbConn)
	voteRepo := repository.NewVoteRepository(dbConn)
	decisionRepo := repository.NewDecisionRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	configRepo := repository.NewConfigRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	configService := service.NewConfigService(configRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	reputationService := service.NewReputationService(userRepo)
	contentService := service.NewContentService(contentRepo, decisionRepo)

	var classifier service.TextClassifier
	if cfg.AIBaseURL != "" {
		classifier = ai.NewClient(cfg.AIBaseURL, cfg.AIModel)
	}

	flagService := service.NewFlagService(flagRepo, contentRepo, configService, classifier, notificationService)
	appealService := service.NewAppealService(appealRepo, contentRepo, voteRepo, configService)
	resolutionService := service.NewResolutionService(appealRepo, contentRepo, flagRepo, decisionRepo, reputationService, notificationService)
	voteService := service.NewVoteService(appealRepo, voteRepo, userRepo, resolutionService)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()
	notificationService.SetBroadcaster(hub)

	// Фоновое закрытие просроченных апелляций.
	sweeper := service.NewSweeper(appealRepo, resolutionService, cfg.SweepInterval)
	go sweeper.Run(ctx)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	contentHandler := httpHandlers.NewContentHandler(contentService)
	flagHandler := httpHandlers.NewFlagHandler(flagService)
	appealHandler := httpHandlers.NewAppealHandler(appealService, voteService)
	configHandler := httpHandlers.NewConfigHandler(configService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	evidenceHandler := httpHandlers.NewEvidenceHandler(evidenceStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		contentHandler,
		flagHandler,
		appealHandler,
		configHandler,
		notificationHandler,
		evidenceHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
