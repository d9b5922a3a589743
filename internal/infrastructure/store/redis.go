// Package store - key-value хранилище на Redis и ретраящая обёртка над ним.
//
// Слой разделён на два уровня по образцу persistence-слоя:
// Redis - сырой клиент один-в-один над go-redis, Storage - политика
// повторов и кэширующие варианты операций поверх любого Client.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scorehub/internal/application/ports"
)

// Client - контракт сырого клиента хранилища.
// Отсутствующий ключ в Get обозначается ports.ErrNotFound.
// Обёртка Storage принимает интерфейс, чтобы тесты могли подставить фейк.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisConfig - параметры подключения к Redis.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Redis - сырой клиент поверх go-redis.
type Redis struct {
	client *redis.Client
}

// NewRedis создаёт клиент. Соединение ленивое, доступность проверяется
// отдельным Ping при старте и в readiness-пробе.
func NewRedis(cfg RedisConfig) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}),
	}
}

// Get возвращает значение ключа, ports.ErrNotFound для отсутствующего.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%s: %w", key, ports.ErrNotFound)
	}
	return value, err
}

// Set сохраняет значение с временем жизни.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete удаляет ключ.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Ping проверяет доступность хранилища.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close закрывает соединения клиента.
func (r *Redis) Close() error {
	return r.client.Close()
}
