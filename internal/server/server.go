// Package server exposes the REST API the importer and smoke tester
// target: health, token auth, landmark listing and creation, and photo
// upload with static media serving.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/gravgor/landmark-cli/internal/config"
	"github.com/gravgor/landmark-cli/internal/imaging"
	"github.com/gravgor/landmark-cli/internal/store"
)

const externalProbeTimeout = 5 * time.Second

// Server routes HTTP requests to the store and the media processor.
type Server struct {
	cfg   config.ServeConfig
	store store.Store
	media *imaging.Processor
	probe *http.Client
}

// New builds a Server. The probe client enforces the 5-second budget on
// external health checks.
func New(cfg config.ServeConfig, st store.Store, media *imaging.Processor) *Server {
	return &Server{
		cfg:   cfg,
		store: st,
		media: media,
		probe: &http.Client{Timeout: externalProbeTimeout},
	}
}

// Handler assembles the route tree. The create and upload endpoints are
// mounted on both their canonical paths and the aliases the import
// client posts to.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "x-api-key"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Route("/api/v1/landmarks", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.jwtAuth)
			r.Get("/", s.handleListLandmarks)
			r.Get("/{id}", s.handleGetLandmark)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.apiKeyAuth)
			r.Post("/", s.handleCreateLandmark)
			r.Post("/create", s.handleCreateLandmark)
			r.Post("/upload-photo", s.handleUploadPhotos)
		})
	})
	r.With(s.apiKeyAuth).Post("/submit-photos", s.handleUploadPhotos)

	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(s.media.Dir()))))

	return r
}

type healthResponse struct {
	Status           string            `json:"status"`
	Database         string            `json:"database"`
	ExternalServices map[string]string `json:"external_services"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:           "API is running",
		ExternalServices: make(map[string]string),
	}

	if err := s.store.Ping(r.Context()); err != nil {
		zap.L().Error("server: database ping failed", zap.Error(err))
		resp.Database = "Database connection failed"
		respondJSON(w, http.StatusInternalServerError, resp)
		return
	}
	resp.Database = "Database connection is healthy"

	for name, url := range s.cfg.ExternalChecks {
		resp.ExternalServices[name] = s.probeExternal(r.Context(), url)
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) probeExternal(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "Unreachable"
	}
	resp, err := s.probe.Do(req)
	if err != nil {
		return "Unreachable"
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusOK {
		return "Available"
	}
	return "Unavailable"
}

// requestLogger logs method, path, status and duration for every
// request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
