package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPinger is a mock implementation of Pinger.
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type fixedCount int

func (f fixedCount) Count() int { return int(f) }

func serveHealth(handler gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET(path, handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(nil, nil, "test")

	w := serveHealth(handler.Health, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("catalog not loaded", func(t *testing.T) {
		handler := NewHealthHandler(nil, nil, "test")

		w := serveHealth(handler.Ready, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var response ReadyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "not_ready", response.Status)
		assert.Equal(t, "not_loaded", response.Catalog)
	})

	t.Run("file catalog loaded", func(t *testing.T) {
		handler := NewHealthHandler(fixedCount(4), nil, "test")

		w := serveHealth(handler.Ready, "/health/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","catalog":"loaded","vehicles":4}`, w.Body.String())
	})

	t.Run("database reachable", func(t *testing.T) {
		db := new(MockPinger)
		db.On("Ping", mock.Anything).Return(nil)
		handler := NewHealthHandler(fixedCount(2), db, "test")

		w := serveHealth(handler.Ready, "/health/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","catalog":"loaded","vehicles":2,"database":"connected"}`, w.Body.String())
		db.AssertExpectations(t)
	})

	t.Run("database unreachable", func(t *testing.T) {
		db := new(MockPinger)
		db.On("Ping", mock.Anything).Return(errors.New("connection refused"))
		handler := NewHealthHandler(fixedCount(2), db, "test")

		w := serveHealth(handler.Ready, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var response ReadyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "not_ready", response.Status)
		assert.Equal(t, "disconnected", response.Database)
		db.AssertExpectations(t)
	})
}

func TestHealthHandler_Info(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		startTime   time.Time
		checkUptime bool
	}{
		{name: "development environment", env: "development", startTime: time.Now().Add(-2 * time.Hour), checkUptime: true},
		{name: "production environment", env: "production", startTime: time.Now().Add(-24 * time.Hour), checkUptime: true},
		{name: "test environment", env: "test", startTime: time.Now()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &HealthHandler{startTime: tt.startTime, env: tt.env}

			w := serveHealth(handler.Info, "/api/v1/info")

			assert.Equal(t, http.StatusOK, w.Code)

			var response InfoResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, APIVersion, response.Version)
			assert.Equal(t, tt.env, response.Environment)
			if tt.checkUptime {
				assert.NotEqual(t, "0h 0m 0s", response.Uptime)
			}
		})
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "seconds only", duration: 45 * time.Second, expected: "0h 0m 45s"},
		{name: "minutes and seconds", duration: 5*time.Minute + 30*time.Second, expected: "0h 5m 30s"},
		{name: "hours", duration: 2*time.Hour + 15*time.Minute + 45*time.Second, expected: "2h 15m 45s"},
		{name: "days", duration: 3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second, expected: "3d 5h 30m 15s"},
		{name: "exactly one day", duration: 24 * time.Hour, expected: "1d 0h 0m 0s"},
		{name: "zero", duration: 0, expected: "0h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}

func BenchmarkFormatUptime(b *testing.B) {
	duration := 3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = formatUptime(duration)
	}
}
