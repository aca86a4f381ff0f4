package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error {
	return f.err
}

func healthConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	handler := HealthLive(healthConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Gatepass-Env"))
	assert.Equal(t, "live", decodeBody(t, rec)["status"])
}

func TestHealthReady(t *testing.T) {
	handler := HealthReady(healthConfig(), nil, &fakePinger{}, &fakePinger{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestHealthReady_DependencyDown(t *testing.T) {
	down := &fakePinger{err: errors.New("connection refused")}

	for _, tc := range []struct {
		name      string
		db, redis *fakePinger
	}{
		{name: "database down", db: down, redis: &fakePinger{}},
		{name: "redis down", db: &fakePinger{}, redis: down},
	} {
		t.Run(tc.name, func(t *testing.T) {
			handler := HealthReady(healthConfig(), nil, tc.db, tc.redis)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		})
	}
}
