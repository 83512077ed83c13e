package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ovenly-backend/pkg/config"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvDev}}
	resp := httptest.NewRecorder()
	HealthLive(cfg)(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, config.AppEnvDev, resp.Header().Get("X-Ovenly-Env"))
}

func TestHealthReadySkipsDisabledDependencies(t *testing.T) {
	cfg := &config.Config{}
	deps := Dependencies{
		"database": pingerFunc(func(context.Context) error { return nil }),
		"redis":    nil,
	}
	resp := httptest.NewRecorder()
	HealthReady(cfg, deps, testLogger())(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data struct {
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, map[string]string{"database": "up"}, envelope.Data.Checks)
}

func TestHealthReadyReportsFailure(t *testing.T) {
	cfg := &config.Config{}
	deps := Dependencies{
		"database": pingerFunc(func(context.Context) error { return nil }),
		"redis":    pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
	}
	resp := httptest.NewRecorder()
	HealthReady(cfg, deps, testLogger())(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	var envelope struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.NotContains(t, resp.Body.String(), "refused", "dependency details stay internal")
}
