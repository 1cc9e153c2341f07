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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pongarena/tournament-engine/brackets"
	"github.com/pongarena/tournament-engine/config"
	"github.com/pongarena/tournament-engine/db"
	"github.com/pongarena/tournament-engine/events"
	"github.com/pongarena/tournament-engine/games"
	"github.com/pongarena/tournament-engine/handlers"
	"github.com/pongarena/tournament-engine/natsjetstream"
	"github.com/pongarena/tournament-engine/realtime"
	"github.com/pongarena/tournament-engine/repositories"
	api "github.com/pongarena/tournament-engine/routes"
	"github.com/pongarena/tournament-engine/scheduler"
	"github.com/pongarena/tournament-engine/services"
)

const migrationsPath = "migrations"

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := newLogger(cfg.Environment)
	defer logger.Sync()
	logger.Info("configuration loaded", zap.Int("port", cfg.ServerPort))

	// Подключение к базе данных и применение миграций
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", zap.Error(err))
		}
	}()
	if err := db.Migrate(dbConn, migrationsPath); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}
	logger.Info("database connection established")

	// Подключение к NATS JetStream
	natsClient, err := natsjetstream.NewClient(natsjetstream.Config{
		URL:           cfg.NATSURL,
		MaxReconnect:  -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       cfg.NATSTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer natsClient.Close()

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelBootstrap()
	if err := natsClient.EnsureStream(bootstrapCtx, events.StreamName, []string{events.SubjectPrefix + ">"}); err != nil {
		logger.Fatal("failed to ensure tournament stream", zap.Error(err))
	}
	if err := natsClient.EnsureStream(bootstrapCtx, games.StreamName, []string{"game.>"}); err != nil {
		logger.Fatal("failed to ensure games stream", zap.Error(err))
	}
	logger.Info("NATS JetStream ready")

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run()

	// Репозиторий и публикация событий
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn, brackets.JoinOrder)

	natsPublisher := natsjetstream.NewPublisher(natsClient)
	realtimePublisher := events.NewRealtimePublisher(wsHub)
	brokerPublisher := events.NewBrokerPublisher(natsPublisher)
	compositePublisher := events.NewCompositePublisher(logger, realtimePublisher, brokerPublisher)

	roundTimer := scheduler.NewRoundTimer(realtimePublisher, logger)
	gamesClient := games.NewNATSClient(natsPublisher)

	// Инициализация сервисов
	roundService := services.NewRoundService(tournamentRepo, gamesClient, realtimePublisher, logger)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		compositePublisher,
		roundTimer,
		roundService,
		brackets.JoinOrder,
		cfg.RoundReadySeconds,
		logger,
	)
	matchService := services.NewMatchService(
		tournamentRepo,
		compositePublisher,
		realtimePublisher,
		roundTimer,
		roundService,
		cfg.RoundReadySeconds,
		logger,
	)
	logger.Info("services initialized")

	// Потребитель результатов завершённых игр
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	resultConsumer := games.NewResultConsumer(natsjetstream.NewSubscriber(natsClient, logger), matchService, logger)
	if err := resultConsumer.Start(consumerCtx); err != nil {
		logger.Fatal("failed to start game result consumer", zap.Error(err))
	}

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, matchService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, tournamentHandler, webSocketHandler)

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", zap.Error(closeErr))
			}
		}
		roundTimer.StopAll()
	}
	logger.Info("application exited")
}

func newLogger(environment string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
