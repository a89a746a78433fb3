package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "valid-metrics-token-0123456789"

func TestGate_Authorize(t *testing.T) {
	gate := NewGate(testToken)

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid token", "Bearer " + testToken, true},
		{"missing header", "", false},
		{"wrong token", "Bearer wrong-token-0123456789012345", false},
		{"token prefix only", "Bearer " + testToken[:len(testToken)-1], false},
		{"token with extra suffix", "Bearer " + testToken + "x", false},
		{"missing bearer prefix", testToken, false},
		{"lowercase scheme", "bearer " + testToken, false},
		{"basic scheme", "Basic " + testToken, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Authorize(tt.header))
		})
	}
}

func TestGate_Middleware(t *testing.T) {
	gate := NewGate(testToken)
	handler := gate.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.Header.Set("Authorization", "Bearer "+testToken)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token rejected with envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, "unauthorized", body["errorType"])
		assert.NotContains(t, rec.Body.String(), testToken,
			"the response must never reflect the expected secret")
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics/api/v1/query?query=up", nil)
		req.Header.Set("Authorization", "Bearer nope-nope-nope-nope")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("public endpoint bypasses the gate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/live", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestIsPublicEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/health", true},
		{"/health/", true},
		{"/ready", true},
		{"/live", true},
		{"/health/detail", false},
		{"/metrics", false},
		{"/metrics/json", false},
		{"/metrics/api/v1/query", false},
		{"/", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPublicEndpoint(tt.path))
		})
	}
}
