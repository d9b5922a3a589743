// Package dispatch - маршрутизация валидированного конверта к доменной схеме.
//
// Машина состояний одного вызова:
//
//	RECEIVED -> конверт валиден? -> аутентифицирован? -> метод найден?
//	         -> аргументы валидны? -> DONE
//
// Любой отказ валидации даёт 422 с текстом первой ошибки, отказ
// аутентификации - 403 с фиксированным сообщением (деталей деривации
// токена клиенту не раскрываем), сбой хранилища внутри доменного
// вычисления - 500.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"scorehub/internal/application/ports"
	"scorehub/internal/application/requests"
	"scorehub/internal/domain/fields"
)

// Статусы протокола.
const (
	StatusOK             = 200
	StatusBadRequest     = 400
	StatusForbidden      = 403
	StatusNotFound       = 404
	StatusInvalidRequest = 422
	StatusInternalError  = 500
)

// statusText - тексты ошибок по умолчанию для статусов без своего сообщения.
var statusText = map[int]string{
	StatusBadRequest:     "Bad Request",
	StatusForbidden:      "Forbidden",
	StatusNotFound:       "Not Found",
	StatusInvalidRequest: "Invalid Request",
	StatusInternalError:  "Internal Server Error",
}

// StatusText возвращает текст ошибки по умолчанию для статуса.
func StatusText(code int) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return "Unknown Error"
}

// IsErrorCode сообщает, является ли статус ошибочным в терминах протокола.
func IsErrorCode(code int) bool {
	_, ok := statusText[code]
	return ok
}

// Handler - диспетчер методов. Держит единственный разделяемый хэндл
// хранилища на все запросы; собственного изменяемого состояния нет.
type Handler struct {
	store  ports.Store
	auth   AuthConfig
	logger *slog.Logger
}

// NewHandler создаёт диспетчер.
func NewHandler(st ports.Store, auth AuthConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: st, auth: auth, logger: logger}
}

// Handle проводит разобранное тело запроса через машину состояний
// и возвращает (тело ответа, статус протокола).
func (h *Handler) Handle(ctx context.Context, body map[string]any, rc *requests.Context) (any, int) {
	envelope, err := requests.ParseMethodRequest(body)
	if err != nil {
		return err.Error(), StatusInvalidRequest
	}

	if !CheckAuth(envelope, h.auth) {
		return StatusText(StatusForbidden), StatusForbidden
	}

	isAdmin := envelope.IsAdmin(h.auth.AdminLogin)

	switch envelope.Method {
	case requests.MethodOnlineScore:
		r, err := requests.NewOnlineScoreRequest(envelope.Arguments, h.store, isAdmin)
		if err != nil {
			return h.fail(ctx, envelope.Method, err)
		}
		response, err := r.GetValue(ctx, rc)
		if err != nil {
			return h.fail(ctx, envelope.Method, err)
		}
		return response, StatusOK

	case requests.MethodClientsInterests:
		r, err := requests.NewClientsInterestsRequest(envelope.Arguments, h.store)
		if err != nil {
			return h.fail(ctx, envelope.Method, err)
		}
		response, err := r.GetValue(ctx, rc)
		if err != nil {
			return h.fail(ctx, envelope.Method, err)
		}
		return response, StatusOK

	default:
		// в протоколе этот случай не описан, считаем ошибкой валидации
		return fmt.Sprintf("Неизвестный метод: %s", envelope.Method), StatusInvalidRequest
	}
}

// fail переводит ошибку доменного слоя в статус протокола:
// ошибка валидации - 422 с её текстом, всё остальное (хранилище,
// целостность данных) - 500 с общим сообщением.
func (h *Handler) fail(ctx context.Context, method string, err error) (any, int) {
	var verr *fields.ValidationError
	if errors.As(err, &verr) {
		return verr.Error(), StatusInvalidRequest
	}

	h.logger.LogAttrs(ctx, slog.LevelError, "method call failed",
		slog.String("method", method),
		slog.String("error", err.Error()),
	)
	return StatusText(StatusInternalError), StatusInternalError
}
