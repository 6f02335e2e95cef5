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

	"github.com/xnapps/purchase-tracking/pkg/config"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "dev"}}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(testConfig()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get(envHeader))
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		redis  Pinger
		status int
		checks map[string]string
	}{
		{"db only", stubPinger{}, nil, http.StatusOK, map[string]string{"database": "up", "redis": "skipped"}},
		{"all up", stubPinger{}, stubPinger{}, http.StatusOK, map[string]string{"database": "up", "redis": "up"}},
		{"redis down", stubPinger{}, stubPinger{err: errors.New("dial tcp")}, http.StatusServiceUnavailable, map[string]string{"database": "up", "redis": "down"}},
		{"db down", stubPinger{err: errors.New("closed")}, nil, http.StatusServiceUnavailable, map[string]string{"database": "down", "redis": "skipped"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthReady(testConfig(), nil, tt.db, tt.redis).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			require.Equal(t, tt.status, rec.Code)

			var body struct {
				Data struct {
					Checks map[string]string `json:"checks"`
				} `json:"data"`
				Error struct {
					Details struct {
						Checks map[string]string `json:"checks"`
					} `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			got := body.Data.Checks
			if tt.status != http.StatusOK {
				got = body.Error.Details.Checks
			}
			assert.Equal(t, tt.checks, got)
		})
	}
}
