package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/logger"
)

// uploadResponse acknowledges a processed upload.
type uploadResponse struct {
	Filename string `json:"filename"`
}

// askRequest is the question payload. The user_name field is
// optional; when present it must match the user named in the path.
type askRequest struct {
	UserName string `json:"user_name"`
	Question string `json:"question"`
}

// askResponse carries a generated answer. Cache-clear responses for a
// single user reuse the same shape.
type askResponse struct {
	Answer string `json:"answer"`
}

// messageResponse carries a human-readable status message.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is the error body shape for every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	user := domain.UserID(r.URL.Query().Get("user_name"))
	if err := user.Validate(); err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: parsing upload: %v", domain.ErrIngestion, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: missing file field", domain.ErrIngestion))
		return
	}
	defer file.Close()

	if err := s.ingest.Ingest(r.Context(), user, file); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Filename: header.Filename})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	user := domain.UserID(r.PathValue("user_name"))

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
		return
	}
	if req.UserName != "" && req.UserName != string(user) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail: "user_name in body does not match user in path",
		})
		return
	}

	answer, err := s.answer.Answer(r.Context(), user, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

func (s *Server) handleClearUser(w http.ResponseWriter, r *http.Request) {
	user := domain.UserID(r.PathValue("user_name"))

	if err := s.cache.ClearUser(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer: fmt.Sprintf("Cache cleared for user %s", user),
	})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.ClearAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "All caches cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

// writeError maps domain errors to HTTP statuses. Everything a client
// can fix is 4xx, provider outages are 502, the rest is 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrIndexNotFound), errors.Is(err, domain.ErrCacheNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidUser), errors.Is(err, domain.ErrIngestion):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrEmbeddingService), errors.Is(err, domain.ErrGenerationService):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Warn("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("encoding response: %v", err)
	}
}
