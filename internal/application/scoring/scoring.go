// Package scoring - доменные функции подсчёта скоринга и интересов клиентов.
//
// Score работает через кэширующий путь хранилища: промах или недоступность
// кэша никогда не мешают вернуть вычисленное значение. Interests, наоборот,
// ходит строгим путём - сбой хранилища поднимается вызывающему.
package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"scorehub/internal/application/ports"
	"scorehub/internal/domain/fields"
)

const (
	// scoreCacheTTL - время жизни закэшированного скоринга.
	scoreCacheTTL = time.Hour

	// interestsKeyPrefix - префикс ключей интересов в хранилище.
	interestsKeyPrefix = "i:"

	// scoreKeyPrefix - префикс ключей кэша скоринга.
	scoreKeyPrefix = "uid:"
)

// Person - нормализованные персональные атрибуты для скоринга.
// Пустая строка / нулевая дата / GenderUnknown означают "не передано".
type Person struct {
	Phone     string
	Email     string
	FirstName string
	LastName  string
	Birthday  time.Time
	Gender    int
}

// Score вычисляет скоринг по фиксированным весам с мемоизацией в кэше.
//
// Алгоритм:
//  1. Попытка чтения из кэша по стабильному ключу идентичности.
//  2. Попадание - вернуть закэшированное значение без пересчёта.
//  3. Промах (или кэш недоступен) - сумма весов: телефон +1.5, email +1.5,
//     известный пол вместе с датой рождения +1.5, имя с фамилией +0.5.
//  4. Запись обратно в кэш; неудача записи игнорируется.
func Score(ctx context.Context, st ports.Store, p Person) float64 {
	key := cacheKey(p)

	if cached, ok := st.CacheGet(ctx, key); ok {
		if score, err := strconv.ParseFloat(cached, 64); err == nil {
			return score
		}
		// нечитаемое значение в кэше равносильно промаху
	}

	var score float64
	if p.Phone != "" {
		score += 1.5
	}
	if p.Email != "" {
		score += 1.5
	}
	if p.Gender != fields.GenderUnknown && !p.Birthday.IsZero() {
		score += 1.5
	}
	if p.FirstName != "" && p.LastName != "" {
		score += 0.5
	}

	st.CacheSet(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), scoreCacheTTL)
	return score
}

// cacheKey строит стабильный ключ идентичности: md5 от конкатенации
// имени, фамилии, телефона и даты рождения в формате YYYYMMDD.
func cacheKey(p Person) string {
	var birthday string
	if !p.Birthday.IsZero() {
		birthday = p.Birthday.Format("20060102")
	}
	sum := md5.Sum([]byte(p.FirstName + p.LastName + p.Phone + birthday))
	return scoreKeyPrefix + hex.EncodeToString(sum[:])
}

// Interests возвращает список интересов клиента из хранилища.
//
// Отсутствующий ключ - пустой список. Транспортный сбой после исчерпания
// ретраев и некорректный JSON - жёсткие ошибки: повтор не исправит
// проблему целостности данных, поэтому они не проглатываются.
func Interests(ctx context.Context, st ports.Store, clientID string) ([]string, error) {
	raw, err := st.Get(ctx, interestsKeyPrefix+clientID)
	if errors.Is(err, ports.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get interests for client %s: %w", clientID, err)
	}

	var interests []string
	if err := json.Unmarshal([]byte(raw), &interests); err != nil {
		return nil, fmt.Errorf("decode interests for client %s: %w", clientID, err)
	}
	return interests, nil
}
