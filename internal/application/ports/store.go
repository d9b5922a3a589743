// Package ports определяет интерфейсы (порты) для внешних зависимостей.
// Реализации живут в Infrastructure Layer.
//
// Pattern: Ports & Adapters (Hexagonal Architecture)
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается строгим Get, когда ключ отсутствует в хранилище.
// Отличает пропуск ключа от транспортной ошибки: первый - нормальный исход,
// вторая после исчерпания ретраев поднимается наверх.
var ErrNotFound = errors.New("key not found")

// Store - контракт key-value хранилища с двумя классами операций.
//
// Строгий путь (Get/Set/Delete): транспортная ошибка после исчерпания
// ретраев возвращается вызывающему и валит запрос целиком.
//
// Кэширующий путь (CacheGet/CacheSet): любая ошибка проглатывается,
// вызывающий продолжает работу как при промахе кэша. Недоступность
// хранилища никогда не мешает вычислить результат.
type Store interface {
	// Get возвращает значение по ключу.
	// Отсутствующий ключ - ErrNotFound, транспортный сбой - своя ошибка.
	Get(ctx context.Context, key string) (string, error)

	// Set сохраняет значение с временем жизни.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete удаляет ключ. Отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, key string) error

	// CacheGet возвращает значение и признак попадания.
	// Промах и сбой неразличимы для вызывающего - оба дают ok=false.
	CacheGet(ctx context.Context, key string) (value string, ok bool)

	// CacheSet сохраняет значение, молча игнорируя сбои.
	CacheSet(ctx context.Context, key, value string, ttl time.Duration)
}
