// Package handlers содержит HTTP handlers для API.
//
// Handler - это Adapter: принимает HTTP запрос, отдаёт тело диспетчеру
// протокола и переводит его исход в JSON-ответ фиксированного формата:
//
//	успех:  {"response": <результат>, "code": 200}
//	ошибка: {"error": <сообщение>, "code": <статус>}
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/gin-gonic/gin"

	"scorehub/internal/adapters/http/middleware"
	"scorehub/internal/application/dispatch"
	"scorehub/internal/application/requests"
)

// MethodHandler обрабатывает POST /method.
type MethodHandler struct {
	dispatcher *dispatch.Handler
	logger     *slog.Logger
}

// NewMethodHandler создаёт новый MethodHandler.
func NewMethodHandler(dispatcher *dispatch.Handler, logger *slog.Logger) *MethodHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MethodHandler{dispatcher: dispatcher, logger: logger}
}

// Handle разбирает тело и проводит запрос через диспетчер.
//
// Тело декодируется с UseNumber, чтобы различать целые и дробные числа
// в аргументах. Нечитаемое или не-объектное тело - 400 до какой-либо
// маршрутизации.
func (h *MethodHandler) Handle(c *gin.Context) {
	rc := &requests.Context{RequestID: middleware.GetRequestID(c)}

	body, ok := decodeBody(c)
	if !ok {
		middleware.ObserveDispatch("", dispatch.StatusBadRequest)
		writeError(c, dispatch.StatusBadRequest, "")
		return
	}

	method, _ := body["method"].(string)
	response, code := h.dispatcher.Handle(c.Request.Context(), body, rc)
	middleware.ObserveDispatch(method, code)

	h.logger.LogAttrs(c.Request.Context(), slog.LevelInfo, "method call",
		slog.String("method", method),
		slog.Int("code", code),
		slog.Any("has", rc.Has),
		slog.Int("nclients", rc.NClients),
	)

	if dispatch.IsErrorCode(code) {
		message, _ := response.(string)
		writeError(c, code, message)
		return
	}
	c.JSON(code, gin.H{"response": response, "code": code})
}

// decodeBody читает и разбирает тело запроса в JSON-объект.
func decodeBody(c *gin.Context) (map[string]any, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, false
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var body map[string]any
	if err := decoder.Decode(&body); err != nil || body == nil {
		return nil, false
	}
	return body, true
}

// writeError отправляет ошибку протокола; при пустом сообщении
// используется текст статуса по умолчанию.
func writeError(c *gin.Context, code int, message string) {
	if message == "" {
		message = dispatch.StatusText(code)
	}
	c.JSON(code, gin.H{"error": message, "code": code})
}
