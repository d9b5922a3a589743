package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	httpserver "scorehub/internal/adapters/http"
	"scorehub/internal/application/dispatch"
	"scorehub/internal/config"
	"scorehub/internal/infrastructure/store"
	"scorehub/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs", "путь к директории с конфигурацией")
	flag.Parse()

	// .env удобен в разработке; в production переменные приходят из окружения
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath, "config")
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Setup(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	log := slog.Default()

	log.Info("starting scoring API server",
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Хранилище: один разделяемый хэндл на все запросы
	redisClient := store.NewRedis(store.RedisConfig{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx); err != nil {
		// Не фатально: ретраи и деградация кэша отработают позже,
		// а readiness-проба сообщит оркестратору о проблеме
		log.Warn("store is not reachable at startup", slog.String("error", err.Error()))
	} else {
		log.Info("store connected", slog.String("addr", cfg.Redis.Addr))
	}

	storage := store.NewStorage(redisClient, log)

	dispatcher := dispatch.NewHandler(storage, dispatch.AuthConfig{
		Salt:       cfg.Auth.Salt,
		AdminSalt:  cfg.Auth.AdminSalt,
		AdminLogin: cfg.Auth.AdminLogin,
	}, log)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Logger:      log,
		Dispatcher:  dispatcher,
		Store:       redisClient,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	})

	server := httpserver.NewServer(&httpserver.ServerConfig{
		Addr:            cfg.Server.Address(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          log,
	}, router)

	if err := server.Run(); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
