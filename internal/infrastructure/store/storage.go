package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"syscall"
	"time"

	"scorehub/internal/application/ports"
)

// maxAttempts - первая попытка плюс три повтора.
// Повторяются только транзиентные (сетевые) ошибки, без пауз между
// попытками: таймауты отдельного вызова - забота транспорта.
const maxAttempts = 4

// Storage - ретраящая обёртка над сырым клиентом, реализует ports.Store.
//
// Строгие операции (Get/Set/Delete) после исчерпания попыток возвращают
// последнюю ошибку. Кэширующие (CacheGet/CacheSet) проглатывают итоговый
// сбой: промах кэша и недоступное хранилище для вызывающего неразличимы.
type Storage struct {
	client Client
	logger *slog.Logger
}

var _ ports.Store = (*Storage)(nil)

// NewStorage создаёт обёртку.
func NewStorage(client Client, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{client: client, logger: logger}
}

// Get возвращает значение ключа строгим путём.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.withRetry(ctx, "get", key, func() error {
		var err error
		value, err = s.client.Get(ctx, key)
		return err
	})
	return value, err
}

// Set сохраняет значение строгим путём.
func (s *Storage) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.withRetry(ctx, "set", key, func() error {
		return s.client.Set(ctx, key, value, ttl)
	})
}

// Delete удаляет ключ строгим путём.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.withRetry(ctx, "delete", key, func() error {
		return s.client.Delete(ctx, key)
	})
}

// CacheGet читает ключ кэширующим путём: любой итоговый сбой - промах.
func (s *Storage) CacheGet(ctx context.Context, key string) (string, bool) {
	value, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "cache read degraded to miss",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}
	return value, true
}

// CacheSet пишет ключ кэширующим путём, сбой записи игнорируется.
func (s *Storage) CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if err := s.Set(ctx, key, value, ttl); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "cache write skipped",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// withRetry выполняет операцию до maxAttempts раз.
// Нетранзиентная ошибка (включая ErrNotFound) возвращается сразу.
func (s *Storage) withRetry(ctx context.Context, op, key string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt < maxAttempts {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "transient store failure, retrying",
				slog.String("op", op),
				slog.String("key", key),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
		}
	}
	return err
}

// isTransient отличает сбои соединения, которые имеет смысл повторить,
// от ошибок данных и отсутствия ключа.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, ports.ErrNotFound) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return true
	}
	return false
}
