// Package requests - декларативные схемы запросов протокола.
//
// Схема - это упорядоченная таблица (имя поля, валидатор) плюс по атрибуту
// на каждое объявленное поле. Валидация выполняется при конструировании:
// конструктор либо возвращает заполненную схему, либо первую ошибку
// валидации с префиксом имени поля (fail-fast, ошибки не накапливаются).
//
// Динамическая интроспекция оригинального протокола заменена явными
// срезами fieldSpec - никакой рефлексии во время выполнения.
package requests

import (
	"encoding/json"
	"errors"

	"scorehub/internal/domain/fields"
)

// Context - явный контекст наблюдаемости одного запроса.
// Набор полей фиксирован, это не универсальный key-value мешок.
type Context struct {
	// RequestID - идентификатор запроса из заголовка или сгенерированный.
	RequestID string
	// Has - какие персональные поля были переданы в online_score.
	Has []string
	// NClients - количество клиентов в clients_interests.
	NClients int
}

// fieldSpec - одна строка декларации схемы.
type fieldSpec struct {
	name      string
	validator fields.Field
}

// validate прогоняет значения через валидаторы в порядке объявления.
// Первая ошибка прерывает проверку и получает префикс имени поля.
func validate(data map[string]any, specs []fieldSpec) error {
	for _, spec := range specs {
		value := data[spec.name] // отсутствующий ключ эквивалентен null
		if err := spec.validator.Validate(value); err != nil {
			var verr *fields.ValidationError
			if errors.As(err, &verr) {
				return verr.WithField(spec.name)
			}
			return err
		}
	}
	return nil
}

// ============================================
// Хелперы извлечения провалидированных значений
// ============================================

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func asArguments(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// asPhone нормализует телефон к строке: число 79175002040 и строка
// "79175002040" дают одинаковый результат.
func asPhone(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

func asGender(value any) int {
	if n, ok := value.(json.Number); ok {
		if g, err := n.Int64(); err == nil {
			return int(g)
		}
	}
	return fields.GenderUnknown
}
