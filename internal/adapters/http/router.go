// Package http - Router and server for the scoring API.
//
// Router собирает middleware и handlers в единую точку входа.
// Протокол метод-в-теле: единственный рабочий маршрут - POST /method,
// всё остальное - health-пробы и метрики.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scorehub/internal/adapters/http/handlers"
	"scorehub/internal/adapters/http/middleware"
	"scorehub/internal/application/dispatch"
)

// RouterConfig - конфигурация роутера.
type RouterConfig struct {
	// Logger для middleware и handlers
	Logger *slog.Logger
	// Dispatcher - диспетчер методов протокола
	Dispatcher *dispatch.Handler
	// Store для readiness-пробы (может быть nil в тестах)
	Store handlers.Pinger
	// Version приложения
	Version string
	// Environment (development, staging, production)
	Environment string
}

// NewRouter создаёт сконфигурированный Gin Engine.
func NewRouter(cfg *RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Recovery - первым, чтобы ловить паники всех остальных
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           cfg.Logger,
		EnableStackTrace: cfg.Environment != "production",
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    cfg.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.Version)
	healthHandler.RegisterRoutes(router)

	methodHandler := handlers.NewMethodHandler(cfg.Dispatcher, cfg.Logger)
	router.POST("/method", methodHandler.Handle)

	// Неизвестный путь - 404 в формате протокола
	router.NoRoute(func(c *gin.Context) {
		c.JSON(dispatch.StatusNotFound, gin.H{
			"error": dispatch.StatusText(dispatch.StatusNotFound),
			"code":  dispatch.StatusNotFound,
		})
	})

	return router
}
