package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorehub/internal/application/ports"
)

// fakeClient отдаёт ошибки из очереди failures, затем значения из data.
type fakeClient struct {
	data     map[string]string
	failures []error
	getCalls int
	setCalls int
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}}
}

// failTimes ставит в очередь n одинаковых ошибок.
func (c *fakeClient) failTimes(n int, err error) {
	for i := 0; i < n; i++ {
		c.failures = append(c.failures, err)
	}
}

func (c *fakeClient) nextFailure() error {
	if len(c.failures) == 0 {
		return nil
	}
	err := c.failures[0]
	c.failures = c.failures[1:]
	return err
}

func (c *fakeClient) Get(ctx context.Context, key string) (string, error) {
	c.getCalls++
	if err := c.nextFailure(); err != nil {
		return "", err
	}
	value, ok := c.data[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ports.ErrNotFound)
	}
	return value, nil
}

func (c *fakeClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.setCalls++
	if err := c.nextFailure(); err != nil {
		return err
	}
	c.data[key] = value
	return nil
}

func (c *fakeClient) Delete(ctx context.Context, key string) error {
	if err := c.nextFailure(); err != nil {
		return err
	}
	delete(c.data, key)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================
// Retry policy
// ============================================

func TestStorage_Get_RetriesTransientFailures(t *testing.T) {
	client := newFakeClient()
	client.data["key"] = "value"
	client.failTimes(2, syscall.ECONNREFUSED)

	st := NewStorage(client, quietLogger())

	value, err := st.Get(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)
	assert.Equal(t, 3, client.getCalls)
}

func TestStorage_Get_GivesUpAfterFourAttempts(t *testing.T) {
	client := newFakeClient()
	client.failTimes(10, syscall.ECONNRESET)

	st := NewStorage(client, quietLogger())

	_, err := st.Get(context.Background(), "key")
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.ECONNRESET)
	assert.Equal(t, 4, client.getCalls)
}

func TestStorage_Get_NotFoundIsNotRetried(t *testing.T) {
	client := newFakeClient()
	st := NewStorage(client, quietLogger())

	_, err := st.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.Equal(t, 1, client.getCalls)
}

func TestStorage_Get_NonTransientFailureIsNotRetried(t *testing.T) {
	client := newFakeClient()
	client.failTimes(1, errors.New("WRONGTYPE Operation against a key"))

	st := NewStorage(client, quietLogger())

	_, err := st.Get(context.Background(), "key")
	require.Error(t, err)
	assert.Equal(t, 1, client.getCalls)
}

func TestStorage_Set_RetriesTransientFailures(t *testing.T) {
	client := newFakeClient()
	client.failTimes(3, io.EOF)

	st := NewStorage(client, quietLogger())

	err := st.Set(context.Background(), "key", "value", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 4, client.setCalls)
	assert.Equal(t, "value", client.data["key"])
}

func TestStorage_Delete(t *testing.T) {
	client := newFakeClient()
	client.data["key"] = "value"

	st := NewStorage(client, quietLogger())

	require.NoError(t, st.Delete(context.Background(), "key"))
	_, ok := client.data["key"]
	assert.False(t, ok)
}

// ============================================
// Cache path
// ============================================

func TestStorage_CacheGet_Hit(t *testing.T) {
	client := newFakeClient()
	client.data["key"] = "value"

	st := NewStorage(client, quietLogger())

	value, ok := st.CacheGet(context.Background(), "key")
	assert.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestStorage_CacheGet_MissOnAbsentKey(t *testing.T) {
	st := NewStorage(newFakeClient(), quietLogger())

	value, ok := st.CacheGet(context.Background(), "missing")
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestStorage_CacheGet_FailureDegradesToMiss(t *testing.T) {
	client := newFakeClient()
	client.failTimes(10, syscall.ECONNREFUSED)

	st := NewStorage(client, quietLogger())

	_, ok := st.CacheGet(context.Background(), "key")
	assert.False(t, ok)
	// деградация наступает только после исчерпания попыток
	assert.Equal(t, 4, client.getCalls)
}

func TestStorage_CacheSet_FailureIsSwallowed(t *testing.T) {
	client := newFakeClient()
	client.failTimes(10, syscall.EPIPE)

	st := NewStorage(client, quietLogger())

	// не возвращает ошибку и не паникует
	st.CacheSet(context.Background(), "key", "value", time.Minute)
	assert.Equal(t, 4, client.setCalls)
}

// ============================================
// isTransient
// ============================================

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", ports.ErrNotFound, false},
		{"wrapped not found", fmt.Errorf("key: %w", ports.ErrNotFound), false},
		{"данные повреждены", errors.New("unexpected value"), false},
		{"EOF", io.EOF, true},
		{"unexpected EOF", io.ErrUnexpectedEOF, true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"broken pipe", syscall.EPIPE, true},
		{"wrapped network error", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}
