// Package fields - декларативные валидаторы полей входящих запросов.
//
// Каждый валидатор реализует интерфейс Field с единственным методом
// Validate(value) error. Значения приходят из JSON, разобранного через
// json.Decoder с UseNumber(), поэтому числа представлены как json.Number -
// это позволяет отличать целые от дробных (gender, client_ids) и принимать
// телефон как строкой, так и числом.
//
// Семантика флагов:
// - required: значение обязано присутствовать (не nil)
// - nullable: отсутствующее значение допустимо
// Пустое, но присутствующее значение ("" или 0) считается валидным для всех
// опциональных полей; ClientIDs - исключение, пустой список отклоняется.
package fields

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout - формат дат в протоколе (DD.MM.YYYY).
const DateLayout = "02.01.2006"

// MaxAgeYears - максимально допустимый возраст для birthday.
const MaxAgeYears = 70

// Пол клиента.
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

// ValidationError - структурированная ошибка валидации.
// Field заполняется схемой запроса, валидаторы знают только причину.
type ValidationError struct {
	Field   string
	Message string
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// WithField возвращает копию ошибки с проставленным именем поля.
func (e *ValidationError) WithField(name string) *ValidationError {
	return &ValidationError{Field: name, Message: e.Message}
}

func invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// Field - контракт валидатора: nil = значение валидно,
// *ValidationError = первая найденная причина отказа.
// Валидатор никогда не изменяет переданное значение.
type Field interface {
	Validate(value any) error
}

// ============================================
// Базовое правило presence/nullable
// ============================================

// Options - общие флаги всех валидаторов.
type Options struct {
	Required bool
	Nullable bool
}

// checkPresence проверяет отсутствующее значение.
// done=true означает "валидно, пусто" - дальнейшие проверки не нужны.
func (o Options) checkPresence(value any) (done bool, err error) {
	if value != nil {
		return false, nil
	}
	if o.Required || !o.Nullable {
		return false, invalid("Поле обязательное")
	}
	return true, nil
}

// isEmpty повторяет питоновскую falsy-семантику для значений из JSON:
// пустая строка, ноль, пустой список и пустой объект считаются пустыми.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case bool:
		return !v
	}
	return false
}

// isInteger сообщает, является ли json.Number целым числом.
func isInteger(n json.Number) bool {
	_, err := n.Int64()
	return err == nil
}

// ============================================
// Конкретные валидаторы
// ============================================

// Char - строковое поле.
type Char struct {
	Options
}

func (f Char) Validate(value any) error {
	if done, err := f.checkPresence(value); done || err != nil {
		return err
	}
	if _, ok := value.(string); ok {
		return nil
	}
	return invalid("Поле не является строкой")
}

// Arguments - структурированное поле-объект (arguments внешнего конверта).
type Arguments struct {
	Options
}

func (f Arguments) Validate(value any) error {
	if done, err := f.checkPresence(value); done || err != nil {
		return err
	}
	if _, ok := value.(map[string]any); ok {
		return nil
	}
	return invalid("Переданные аргументы имеют неверный формат")
}

// Email - строка, содержащая символ '@'. Пустая строка валидна.
type Email struct {
	Options
}

func (f Email) Validate(value any) error {
	if done, err := f.checkPresence(value); done || err != nil {
		return err
	}
	if isEmpty(value) {
		return nil
	}
	s, ok := value.(string)
	if !ok || !strings.Contains(s, "@") {
		return invalid("Поле email введено некорректно")
	}
	return nil
}

// Phone - телефон строкой или целым числом: 11 цифр, первая - '7'.
type Phone struct {
	Options
}

func (f Phone) Validate(value any) error {
	if done, err := f.checkPresence(value); done || err != nil {
		return err
	}
	if isEmpty(value) {
		return nil
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case json.Number:
		if !isInteger(v) {
			return invalid("Номер телефона должен быть строкой или числом")
		}
		s = v.String()
	default:
		return invalid("Номер телефона должен быть строкой или числом")
	}

	if len(s) != 11 {
		return invalid("Номер телефона должен содержать 11 цифр")
	}
	if s[0] != '7' {
		return invalid("Номер телефона должен начинаться с 7")
	}
	return nil
}

// Date - строка в формате DD.MM.YYYY без дополнительных ограничений.
type Date struct {
	Options
}

func (f Date) Validate(value any) error {
	if done, err := f.checkPresence(value); done || err != nil {
		return err
	}
	if isEmpty(value) {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return invalid("Дата должна быть строкой в формате DD.MM.YYYY")
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return invalid("Дата должна быть в формате DD.MM.YYYY")
	}
	return nil
}

// BirthDay - дата рождения: не в будущем и не старше 70 лет.
// Возраст считается целым числом дней, делённым на 365 - усечение
// сознательно воспроизводит исходный протокол, а не календарную разницу.
type BirthDay struct {
	Options
}

func (f BirthDay) Validate(value any) error {
	if done, err := f.checkPresence(value); done || err != nil {
		return err
	}
	if isEmpty(value) {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return invalid("Дата рождения должна быть строкой в формате DD.MM.YYYY")
	}
	birthday, err := time.Parse(DateLayout, s)
	if err != nil {
		return invalid("Дата рождения должна быть в формате DD.MM.YYYY")
	}

	today := time.Now()
	ageYears := int(today.Sub(birthday).Hours()/24) / 365
	if ageYears > MaxAgeYears {
		return invalid("Возраст не должен превышать 70 лет")
	}
	if birthday.After(today) {
		return invalid("Введите действительную дату рождения")
	}
	return nil
}

// Gender - целое число 0 (unknown), 1 (male) или 2 (female).
type Gender struct {
	Options
}

func (f Gender) Validate(value any) error {
	if done, err := f.checkPresence(value); done || err != nil {
		return err
	}
	if isEmpty(value) {
		return nil
	}
	n, ok := value.(json.Number)
	if !ok || !isInteger(n) {
		return invalid("Пол должен быть числом 0, 1 или 2")
	}
	g, _ := n.Int64()
	if g != GenderUnknown && g != GenderMale && g != GenderFemale {
		return invalid("Пол должен быть числом 0, 1 или 2")
	}
	return nil
}

// ClientIDs - непустой список чисел (целых или дробных).
// В отличие от остальных валидаторов presence-проверка не применяется:
// отсутствие и пустой список отклоняются всегда, независимо от nullable.
type ClientIDs struct {
	Options
}

func (f ClientIDs) Validate(value any) error {
	ids, ok := value.([]any)
	if !ok {
		return invalid("Поле ID клиентов не является массивом")
	}
	if len(ids) == 0 {
		return invalid("client_ids не должен быть пустым")
	}
	for _, id := range ids {
		if _, ok := id.(json.Number); !ok {
			return invalid("Поле ID клиентов должен содержать только числа")
		}
	}
	return nil
}
