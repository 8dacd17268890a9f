package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storyboard-server/internal/config"
	deliveryhttp "storyboard-server/internal/delivery/http"
	"storyboard-server/internal/delivery/http/middleware"
	"storyboard-server/internal/delivery/websocket"
	"storyboard-server/internal/flow"
	"storyboard-server/internal/generation"
	"storyboard-server/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutputPath,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	zap.ReplaceGlobals(appLogger)

	appLogger.Info("Конфигурация загружена", cfg.LogFields()...)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Сервер остановлен с ошибкой", zap.Error(err))
		os.Exit(1)
	}
	appLogger.Info("Сервер успешно остановлен")
}

func run(cfg *config.Config, appLogger *zap.Logger) error {
	backend, err := generation.NewBackend(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("не удалось создать AI клиент: %w", err)
	}
	generator := generation.NewClient(backend, appLogger)

	controller := flow.NewController(generator, appLogger)
	wsManager := websocket.NewManager(controller, cfg.GetAllowedOrigins(), appLogger)
	controller.AddListener(wsManager)

	router := newRouter(cfg, appLogger, controller, wsManager)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return wsManager.Run(gctx)
	})

	g.Go(func() error {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server listen error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
		if err := controller.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func newRouter(cfg *config.Config, appLogger *zap.Logger, controller *flow.Controller, wsManager *websocket.Manager) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ZapLogger(appLogger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if origins := cfg.GetAllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// до регистрации маршрутов: gin фиксирует цепочку middleware при добавлении маршрута
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	deliveryhttp.New(controller, appLogger).RegisterRoutes(router)
	router.GET("/ws", gin.WrapH(wsManager))

	return router
}
