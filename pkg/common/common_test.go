package common

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadTimeoutConfig(t *testing.T) {
	env := map[string]string{
		"READ_TIMEOUT":     "3",
		"WRITE_TIMEOUT":    "-1",
		"SHUTDOWN_TIMEOUT": "soon",
	}
	cfg := loadTimeoutConfig(DefaultTimeoutConfig(), func(key string) string { return env[key] })
	assert.Equal(t, 3*time.Second, cfg.Read)
	assert.Equal(t, 30*time.Second, cfg.Write)
	assert.Equal(t, 15*time.Second, cfg.Shutdown)

	server := NewServerWithTimeouts(nil, cfg)
	assert.Equal(t, 3*time.Second, server.ReadTimeout)
	assert.Equal(t, cfg.Idle, server.IdleTimeout)
}

func TestJsonHandler(t *testing.T) {
	handler := JsonHandler(zap.NewNop(), func(w http.ResponseWriter, r *http.Request, enc sonic.Encoder) error {
		return enc.Encode(map[string]int{"count": 2})
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIdHeader))
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.Header.Set(RequestIdHeader, "abc")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(RequestIdHeader))

	req = httptest.NewRequest(http.MethodOptions, "/api/x", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, http.StatusServiceUnavailable, "unavailable"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"unavailable"}`, rec.Body.String())
}

func TestQueueHandlerBatchesAndDrainsOnClose(t *testing.T) {
	var mu sync.Mutex
	var batches [][]int
	q := NewQueueHandler(func(items []int) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, append([]int(nil), items...))
	}, 2, time.Hour)

	q.Add(1, 2, 3)
	q.AddIter(func(yield func(int) bool) {
		yield(4)
	})
	q.Close()

	mu.Lock()
	defer mu.Unlock()
	var all []int
	for _, batch := range batches {
		assert.LessOrEqual(t, len(batch), 2)
		all = append(all, batch...)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, all)
	assert.Equal(t, 0, q.Len())
}
