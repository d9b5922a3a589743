package requests

import (
	"context"
	"time"

	"scorehub/internal/application/ports"
	"scorehub/internal/application/scoring"
	"scorehub/internal/domain/fields"
)

// AdminScore - фиксированный ответ администратору: хранилище не трогается.
const AdminScore = 42

// onlineScoreFields - декларация аргументов online_score.
// Порядок объявления определяет порядок валидации и списка "has".
var onlineScoreFields = []fieldSpec{
	{"phone", fields.Phone{Options: fields.Options{Required: false, Nullable: true}}},
	{"email", fields.Email{Options: fields.Options{Required: false, Nullable: true}}},
	{"first_name", fields.Char{Options: fields.Options{Required: false, Nullable: true}}},
	{"last_name", fields.Char{Options: fields.Options{Required: false, Nullable: true}}},
	{"birthday", fields.BirthDay{Options: fields.Options{Required: false, Nullable: true}}},
	{"gender", fields.Gender{Options: fields.Options{Required: false, Nullable: true}}},
}

// onlineScorePairsMessage - составная ошибка кросс-полевого инварианта,
// перечисляет все три требуемые пары.
const onlineScorePairsMessage = "Отсутствует хотя бы одна пара phone-email, " +
	"first name-last name, gender-birthday с непустыми значениями."

// OnlineScoreRequest - схема аргументов метода online_score.
//
// Все шесть полей опциональны по отдельности, но после пополевой валидации
// проверяется кросс-полевой инвариант: хотя бы одна из пар (phone, email),
// (first_name, last_name), (gender, birthday) должна присутствовать целиком.
type OnlineScoreRequest struct {
	store   ports.Store
	isAdmin bool

	phone     string
	email     string
	firstName string
	lastName  string
	birthday  time.Time
	gender    int

	// present отмечает поля, переданные с не-null значением:
	// для инварианта пар пустая строка считается присутствующей.
	present map[string]bool
}

// NewOnlineScoreRequest валидирует аргументы и строит схему.
func NewOnlineScoreRequest(data map[string]any, st ports.Store, isAdmin bool) (*OnlineScoreRequest, error) {
	if err := validate(data, onlineScoreFields); err != nil {
		return nil, err
	}

	r := &OnlineScoreRequest{
		store:     st,
		isAdmin:   isAdmin,
		phone:     asPhone(data["phone"]),
		email:     asString(data["email"]),
		firstName: asString(data["first_name"]),
		lastName:  asString(data["last_name"]),
		gender:    asGender(data["gender"]),
		present:   make(map[string]bool, len(onlineScoreFields)),
	}
	for _, spec := range onlineScoreFields {
		r.present[spec.name] = data[spec.name] != nil
	}
	if s := asString(data["birthday"]); s != "" {
		// формат уже проверен валидатором
		r.birthday, _ = time.Parse(fields.DateLayout, s)
	}

	if !r.hasRequiredPair() {
		return nil, &fields.ValidationError{Message: onlineScorePairsMessage}
	}
	return r, nil
}

// hasRequiredPair проверяет кросс-полевой инвариант.
func (r *OnlineScoreRequest) hasRequiredPair() bool {
	switch {
	case r.present["phone"] && r.present["email"]:
		return true
	case r.present["first_name"] && r.present["last_name"]:
		return true
	case r.present["gender"] && r.present["birthday"]:
		return true
	}
	return false
}

// GetValue вычисляет результат метода. Вызывается только после успешной
// валидации. Администратор получает фиксированный скоринг без обращения
// к хранилищу; для остальных в контекст записывается список переданных
// полей и вычисляется скоринг с кэшированием.
func (r *OnlineScoreRequest) GetValue(ctx context.Context, rc *Context) (map[string]any, error) {
	if r.isAdmin {
		return map[string]any{"score": AdminScore}, nil
	}

	has := make([]string, 0, len(onlineScoreFields))
	for _, spec := range onlineScoreFields {
		if r.present[spec.name] {
			has = append(has, spec.name)
		}
	}
	rc.Has = has

	score := scoring.Score(ctx, r.store, scoring.Person{
		Phone:     r.phone,
		Email:     r.email,
		FirstName: r.firstName,
		LastName:  r.lastName,
		Birthday:  r.birthday,
		Gender:    r.gender,
	})
	return map[string]any{"score": score}, nil
}
