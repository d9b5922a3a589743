package requests

import (
	"context"
	"encoding/json"

	"scorehub/internal/application/ports"
	"scorehub/internal/application/scoring"
	"scorehub/internal/domain/fields"
)

// clientsInterestsFields - декларация аргументов clients_interests.
var clientsInterestsFields = []fieldSpec{
	{"client_ids", fields.ClientIDs{Options: fields.Options{Required: true}}},
	{"date", fields.Date{Options: fields.Options{Required: false, Nullable: true}}},
}

// ClientsInterestsRequest - схема аргументов метода clients_interests:
// непустой список числовых ID клиентов и необязательная дата
// (ограничена только форматом, бизнес-смысла не несёт).
type ClientsInterestsRequest struct {
	store     ports.Store
	clientIDs []json.Number
	date      string
}

// NewClientsInterestsRequest валидирует аргументы и строит схему.
func NewClientsInterestsRequest(data map[string]any, st ports.Store) (*ClientsInterestsRequest, error) {
	if err := validate(data, clientsInterestsFields); err != nil {
		return nil, err
	}

	raw, _ := data["client_ids"].([]any)
	ids := make([]json.Number, 0, len(raw))
	for _, id := range raw {
		if n, ok := id.(json.Number); ok {
			ids = append(ids, n)
		}
	}

	return &ClientsInterestsRequest{
		store:     st,
		clientIDs: ids,
		date:      asString(data["date"]),
	}, nil
}

// GetValue загружает интересы каждого клиента в порядке перечисления ID
// и записывает их количество в контекст. Ключ ответа - десятичная запись
// ID как она пришла в запросе. Сбой хранилища прерывает весь запрос.
func (r *ClientsInterestsRequest) GetValue(ctx context.Context, rc *Context) (map[string][]string, error) {
	if len(r.clientIDs) == 0 {
		// защитная перепроверка: валидатор такое уже отклонил
		return nil, &fields.ValidationError{Message: "Неверный формат ID клиентов"}
	}

	rc.NClients = len(r.clientIDs)

	result := make(map[string][]string, len(r.clientIDs))
	for _, id := range r.clientIDs {
		interests, err := scoring.Interests(ctx, r.store, id.String())
		if err != nil {
			return nil, err
		}
		result[id.String()] = interests
	}
	return result, nil
}
