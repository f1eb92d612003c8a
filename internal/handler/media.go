package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/middleware"
)

type MediaHandler struct {
	uploadDir      string
	maxUploadBytes int64
	authMiddleware *middleware.AuthMiddleware
}

func NewMediaHandler(uploadDir string, maxUploadBytes int64, authMiddleware *middleware.AuthMiddleware) *MediaHandler {
	return &MediaHandler{
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
		authMiddleware: authMiddleware,
	}
}

func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.authMiddleware.Handler)
	r.With(middleware.WithLimit(h.maxUploadBytes)).Post("/upload", h.Upload)
	return r
}

// POST /api/media/upload
//
// Accepts a single multipart file under the "media" field. Files are
// stored under a random name so an uploaded filename can never clobber
// or escape the upload directory.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, apperrors.ValidationError("Invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		writeError(w, apperrors.MissingRequired("media"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		writeError(w, apperrors.InvalidInput("media", "only image and video uploads are accepted"))
		return
	}

	ext := filepath.Ext(header.Filename)
	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeError(w, apperrors.Internal("Failed to store upload"))
		return
	}

	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		writeError(w, apperrors.Internal("Failed to store upload"))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, apperrors.Internal("Failed to store upload"))
		return
	}

	log.Info().Str("file", name).Str("contentType", contentType).Msg("media uploaded")

	writeJSON(w, http.StatusCreated, map[string]string{
		"url": "/uploads/" + name,
	})
}
