package requests

import "scorehub/internal/domain/fields"

// Имена методов, известных диспетчеру.
const (
	MethodOnlineScore      = "online_score"
	MethodClientsInterests = "clients_interests"
)

// methodFields - декларация внешнего конверта запроса.
var methodFields = []fieldSpec{
	{"account", fields.Char{Options: fields.Options{Required: false, Nullable: true}}},
	{"login", fields.Char{Options: fields.Options{Required: true, Nullable: true}}},
	{"token", fields.Char{Options: fields.Options{Required: true, Nullable: true}}},
	{"arguments", fields.Arguments{Options: fields.Options{Required: true, Nullable: true}}},
	{"method", fields.Char{Options: fields.Options{Required: true, Nullable: false}}},
}

// MethodRequest - внешний аутентифицируемый конверт:
// кто вызывает (account/login/token), что вызывает (method) и с чем (arguments).
type MethodRequest struct {
	Account   string
	Login     string
	Token     string
	Arguments map[string]any
	Method    string
}

// ParseMethodRequest валидирует и разбирает тело запроса в конверт.
// Отсутствующий account и null-значения остаются пустыми строками.
func ParseMethodRequest(body map[string]any) (*MethodRequest, error) {
	if err := validate(body, methodFields); err != nil {
		return nil, err
	}
	return &MethodRequest{
		Account:   asString(body["account"]),
		Login:     asString(body["login"]),
		Token:     asString(body["token"]),
		Arguments: asArguments(body["arguments"]),
		Method:    asString(body["method"]),
	}, nil
}

// IsAdmin сообщает, совпадает ли login с настроенной административной
// учётной записью.
func (r *MethodRequest) IsAdmin(adminLogin string) bool {
	return r.Login == adminLogin
}
