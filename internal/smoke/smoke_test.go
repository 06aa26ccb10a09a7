package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravgor/landmark-cli/internal/config"
)

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func healthyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "API is running",
		"database": "Database connection is healthy",
		"external_services": map[string]string{
			"weather api": "Available",
		},
	})
}

func TestRun_AllChecksPass(t *testing.T) {
	var registered struct{ email, password string }

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthyHandler)
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		registered.email = req["email"]
		registered.password = req["password"]
		writeJSON(w, http.StatusCreated, map[string]any{
			"token": "tok-register",
			"user":  map[string]string{"id": "u-1", "email": req["email"]},
		})
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != registered.email || req["password"] != registered.password {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok-login"})
	})
	mux.HandleFunc("/api/v1/landmarks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-login" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"id": "lm-1", "name": "Eiffel Tower"}},
			"meta": map[string]int{"total": 1, "limit": 10, "offset": 0},
		})
	})
	mux.HandleFunc("/api/v1/landmarks/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "lm-1", "name": "Eiffel Tower"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	sum := New(config.SmokeConfig{BaseURL: srv.URL}, srv.Client(), &out).Run(context.Background())

	assert.Equal(t, Summary{Passed: 5}, sum)
	assert.Contains(t, out.String(), "✓ health")
	assert.Contains(t, out.String(), "weather api: Available")
	assert.Contains(t, out.String(), "✓ get landmark: Eiffel Tower")
	assert.NotContains(t, out.String(), "✗")
}

func TestRun_EmptyListSkipsGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthyHandler)
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"token": "tok"})
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok"})
	})
	mux.HandleFunc("/api/v1/landmarks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{},
			"meta": map[string]int{"total": 0},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	sum := New(config.SmokeConfig{BaseURL: srv.URL}, srv.Client(), &out).Run(context.Background())

	assert.Equal(t, Summary{Passed: 4, Skipped: 1}, sum)
	assert.Contains(t, out.String(), "- get landmark: list returned no records")
}

func TestRun_UnhealthyDatabaseReported(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":   "API is running",
			"database": "Database connection failed",
		})
	})
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"token": "tok"})
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok"})
	})
	mux.HandleFunc("/api/v1/landmarks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"id": "lm-9", "name": "Petra"}},
			"meta": map[string]int{"total": 1},
		})
	})
	mux.HandleFunc("/api/v1/landmarks/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "lm-9", "name": "Petra"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	sum := New(config.SmokeConfig{BaseURL: srv.URL}, srv.Client(), &out).Run(context.Background())

	assert.Equal(t, Summary{Passed: 4, Failed: 1}, sum)
	assert.Contains(t, out.String(), `✗ health: expected status 200, got 500 (database "Database connection failed")`)
}

func TestRun_ServerDownFailsEverythingQuietly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	var out bytes.Buffer
	sum := New(config.SmokeConfig{BaseURL: baseURL}, nil, &out).Run(context.Background())

	assert.Equal(t, Summary{Failed: 4, Skipped: 1}, sum)
	assert.Contains(t, out.String(), "- get landmark: no landmark id available")
}

func TestRun_FallsBackToRegisterToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthyHandler)
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"token": "tok-register"})
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "login backend down", http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/v1/landmarks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-register" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"id": "lm-2", "name": "Colosseum"}},
			"meta": map[string]int{"total": 1},
		})
	})
	mux.HandleFunc("/api/v1/landmarks/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "lm-2", "name": "Colosseum"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	sum := New(config.SmokeConfig{BaseURL: srv.URL}, srv.Client(), &out).Run(context.Background())

	assert.Equal(t, Summary{Passed: 4, Failed: 1}, sum)
	assert.Contains(t, out.String(), "✗ login")
	assert.Contains(t, out.String(), "✓ list landmarks")
}
