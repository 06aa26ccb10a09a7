package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gravgor/landmark-cli/internal/model"
	"github.com/gravgor/landmark-cli/internal/store"
)

const (
	defaultListLimit = 10
	maxUploadBytes   = 32 << 20
)

type listMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type listResponse struct {
	Data []model.Landmark `json:"data"`
	Meta listMeta         `json:"meta"`
}

// createLandmarkRequest mirrors the import client's payload.
type createLandmarkRequest struct {
	Landmark  model.Landmark        `json:"landmark"`
	Detail    *model.LandmarkDetail `json:"landmark_detail"`
	ImageURLs []string              `json:"image_urls"`
}

type uploadResponse struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleListLandmarks(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)

	landmarks, total, err := s.store.ListLandmarks(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list landmarks", zap.Error(err))
		http.Error(w, "Could not list landmarks", http.StatusInternalServerError)
		return
	}
	if landmarks == nil {
		landmarks = []model.Landmark{}
	}

	userID, _ := r.Context().Value(userIDKey).(string)
	zap.L().Debug("landmarks listed",
		zap.String("user_id", userID),
		zap.Int("count", len(landmarks)),
		zap.Int("total", total),
	)

	respondJSON(w, http.StatusOK, listResponse{
		Data: landmarks,
		Meta: listMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	})
}

func parseListFilter(r *http.Request) store.ListFilter {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return store.ListFilter{
		Category: query.Get("category"),
		Country:  query.Get("country"),
		Limit:    limit,
		Offset:   offset,
	}
}

func (s *Server) handleGetLandmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "Invalid landmark ID", http.StatusBadRequest)
		return
	}

	lm, err := s.store.GetLandmarkByID(r.Context(), id)
	if err != nil {
		zap.L().Error("server: get landmark", zap.String("id", id), zap.Error(err))
		http.Error(w, "Could not fetch landmark", http.StatusInternalServerError)
		return
	}
	if lm == nil {
		http.Error(w, "Landmark not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, lm)
}

func (s *Server) handleCreateLandmark(w http.ResponseWriter, r *http.Request) {
	var req createLandmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Landmark.Name == "" {
		http.Error(w, "Landmark name is required", http.StatusBadRequest)
		return
	}

	lm := req.Landmark
	lm.Detail = req.Detail
	lm.ImagePaths = append(lm.ImagePaths, req.ImageURLs...)

	stored, err := s.store.UpsertLandmark(r.Context(), &lm)
	if err != nil {
		zap.L().Error("server: create landmark", zap.String("name", lm.Name), zap.Error(err))
		http.Error(w, "Could not create landmark", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUploadPhotos(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Could not parse multipart form", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		http.Error(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	urls := make([]string, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			http.Error(w, "Could not read uploaded file", http.StatusInternalServerError)
			return
		}
		path, err := s.media.ProcessUpload(f, header.Filename)
		f.Close() //nolint:errcheck
		if err != nil {
			zap.L().Error("server: process upload", zap.String("file", header.Filename), zap.Error(err))
			http.Error(w, "Could not process image", http.StatusInternalServerError)
			return
		}
		urls = append(urls, "/media/"+filepath.Base(path))
	}

	respondJSON(w, http.StatusOK, uploadResponse{URLs: urls})
}
