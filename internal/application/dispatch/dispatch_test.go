package dispatch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorehub/internal/application/dispatch"
	"scorehub/internal/application/ports"
	"scorehub/internal/application/requests"
)

var testAuth = dispatch.AuthConfig{
	Salt:       "Otus",
	AdminSalt:  "42",
	AdminLogin: "admin",
}

// fakeStore - минимальная in-memory реализация ports.Store.
type fakeStore struct {
	data   map[string]string
	getErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ports.ErrNotFound)
	}
	return value, nil
}

func (s *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *fakeStore) CacheGet(ctx context.Context, key string) (string, bool) {
	value, err := s.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *fakeStore) CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	_ = s.Set(ctx, key, value, ttl)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// decodeJSON повторяет декодирование HTTP-слоя (UseNumber).
func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()

	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()

	var body map[string]any
	require.NoError(t, decoder.Decode(&body))
	return body
}

// signedBody строит тело запроса с корректным пользовательским токеном.
func signedBody(t *testing.T, method string, arguments string) map[string]any {
	t.Helper()

	token := dispatch.UserToken("horns&hoofs", "h&f", testAuth.Salt)
	raw := fmt.Sprintf(`{
		"account": "horns&hoofs",
		"login": "h&f",
		"token": %q,
		"method": %q,
		"arguments": %s
	}`, token, method, arguments)
	return decodeJSON(t, raw)
}

// ============================================
// Tokens
// ============================================

func TestUserToken_Deterministic(t *testing.T) {
	first := dispatch.UserToken("acc", "login", "salt")
	second := dispatch.UserToken("acc", "login", "salt")

	assert.Equal(t, first, second)
	assert.Len(t, first, 128) // hex SHA-512

	assert.NotEqual(t, first, dispatch.UserToken("acc", "login", "other-salt"))
	assert.NotEqual(t, first, dispatch.UserToken("acc", "other-login", "salt"))
}

func TestAdminToken_BoundToHour(t *testing.T) {
	now := time.Date(2017, 7, 20, 15, 30, 0, 0, time.UTC)
	sameHour := time.Date(2017, 7, 20, 15, 59, 59, 0, time.UTC)
	nextHour := time.Date(2017, 7, 20, 16, 0, 0, 0, time.UTC)

	assert.Equal(t, dispatch.AdminToken(now, "42"), dispatch.AdminToken(sameHour, "42"))
	assert.NotEqual(t, dispatch.AdminToken(now, "42"), dispatch.AdminToken(nextHour, "42"))
}

func TestCheckAuth_User(t *testing.T) {
	r := &requests.MethodRequest{
		Account: "horns&hoofs",
		Login:   "h&f",
		Token:   dispatch.UserToken("horns&hoofs", "h&f", testAuth.Salt),
	}
	assert.True(t, dispatch.CheckAuth(r, testAuth))

	r.Token = "bogus"
	assert.False(t, dispatch.CheckAuth(r, testAuth))
}

func TestCheckAuth_EmptyAccount(t *testing.T) {
	// отсутствующий account участвует в деривации пустой строкой
	r := &requests.MethodRequest{
		Login: "h&f",
		Token: dispatch.UserToken("", "h&f", testAuth.Salt),
	}
	assert.True(t, dispatch.CheckAuth(r, testAuth))
}

func TestCheckAuth_Admin(t *testing.T) {
	r := &requests.MethodRequest{
		Login: "admin",
		Token: dispatch.AdminToken(time.Now(), testAuth.AdminSalt),
	}
	assert.True(t, dispatch.CheckAuth(r, testAuth))

	// пользовательская деривация для админского логина не подходит
	r.Token = dispatch.UserToken("", "admin", testAuth.Salt)
	assert.False(t, dispatch.CheckAuth(r, testAuth))
}

// ============================================
// Handle
// ============================================

func TestHandle_InvalidEnvelope(t *testing.T) {
	h := dispatch.NewHandler(newFakeStore(), testAuth, quietLogger())

	body := decodeJSON(t, `{"token": "abc", "method": "online_score", "arguments": {}}`)
	response, code := h.Handle(context.Background(), body, &requests.Context{})

	assert.Equal(t, dispatch.StatusInvalidRequest, code)
	assert.Equal(t, "login: Поле обязательное", response)
}

func TestHandle_BadToken(t *testing.T) {
	h := dispatch.NewHandler(newFakeStore(), testAuth, quietLogger())

	body := decodeJSON(t, `{
		"account": "horns&hoofs",
		"login": "h&f",
		"token": "sdd",
		"method": "online_score",
		"arguments": {"phone": "79175002040", "email": "a@b.ru"}
	}`)
	response, code := h.Handle(context.Background(), body, &requests.Context{})

	assert.Equal(t, dispatch.StatusForbidden, code)
	assert.Equal(t, "Forbidden", response)
}

func TestHandle_UnknownMethod(t *testing.T) {
	h := dispatch.NewHandler(newFakeStore(), testAuth, quietLogger())

	body := signedBody(t, "online_scoring", `{}`)
	response, code := h.Handle(context.Background(), body, &requests.Context{})

	assert.Equal(t, dispatch.StatusInvalidRequest, code)
	assert.Equal(t, "Неизвестный метод: online_scoring", response)
}

func TestHandle_OnlineScore(t *testing.T) {
	h := dispatch.NewHandler(newFakeStore(), testAuth, quietLogger())

	rc := &requests.Context{}
	body := signedBody(t, requests.MethodOnlineScore, `{"phone": "79175002040", "email": "a@b.ru"}`)
	response, code := h.Handle(context.Background(), body, rc)

	require.Equal(t, dispatch.StatusOK, code)
	result, ok := response.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3.0, result["score"])
	assert.Equal(t, []string{"phone", "email"}, rc.Has)
}

func TestHandle_OnlineScore_InvalidArguments(t *testing.T) {
	h := dispatch.NewHandler(newFakeStore(), testAuth, quietLogger())

	body := signedBody(t, requests.MethodOnlineScore, `{"first_name": "Иван"}`)
	response, code := h.Handle(context.Background(), body, &requests.Context{})

	assert.Equal(t, dispatch.StatusInvalidRequest, code)
	message, ok := response.(string)
	require.True(t, ok)
	assert.NotEmpty(t, message)
}

func TestHandle_OnlineScore_Admin(t *testing.T) {
	st := newFakeStore()
	st.getErr = errors.New("store must not be touched")
	h := dispatch.NewHandler(st, testAuth, quietLogger())

	body := decodeJSON(t, fmt.Sprintf(`{
		"login": "admin",
		"token": %q,
		"method": "online_score",
		"arguments": {"phone": "79175002040", "email": "a@b.ru"}
	}`, dispatch.AdminToken(time.Now(), testAuth.AdminSalt)))

	response, code := h.Handle(context.Background(), body, &requests.Context{})

	require.Equal(t, dispatch.StatusOK, code)
	result, ok := response.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, requests.AdminScore, result["score"])
}

func TestHandle_ClientsInterests(t *testing.T) {
	st := newFakeStore()
	st.data["i:1"] = `["books"]`
	h := dispatch.NewHandler(st, testAuth, quietLogger())

	rc := &requests.Context{}
	body := signedBody(t, requests.MethodClientsInterests, `{"client_ids": [1, 2], "date": "20.07.2017"}`)
	response, code := h.Handle(context.Background(), body, rc)

	require.Equal(t, dispatch.StatusOK, code)
	result, ok := response.(map[string][]string)
	require.True(t, ok)
	assert.Equal(t, map[string][]string{"1": {"books"}, "2": {}}, result)
	assert.Equal(t, 2, rc.NClients)
}

func TestHandle_ClientsInterests_StoreFailure(t *testing.T) {
	st := newFakeStore()
	st.getErr = errors.New("connection refused")
	h := dispatch.NewHandler(st, testAuth, quietLogger())

	body := signedBody(t, requests.MethodClientsInterests, `{"client_ids": [1]}`)
	response, code := h.Handle(context.Background(), body, &requests.Context{})

	assert.Equal(t, dispatch.StatusInternalError, code)
	// детали сбоя хранилища клиенту не раскрываются
	assert.Equal(t, "Internal Server Error", response)
}

// ============================================
// Status helpers
// ============================================

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Invalid Request", dispatch.StatusText(dispatch.StatusInvalidRequest))
	assert.Equal(t, "Forbidden", dispatch.StatusText(dispatch.StatusForbidden))
	assert.Equal(t, "Unknown Error", dispatch.StatusText(418))
}

func TestIsErrorCode(t *testing.T) {
	assert.False(t, dispatch.IsErrorCode(dispatch.StatusOK))
	assert.True(t, dispatch.IsErrorCode(dispatch.StatusBadRequest))
	assert.True(t, dispatch.IsErrorCode(dispatch.StatusInternalError))
}
