package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// UploadsHandler serves previously uploaded media from the upload
// directory. Stored names are server-generated, so anything with a
// path separator or dot-dot segment is a probe, not a real file.
type UploadsHandler struct {
	uploadDir string
}

func NewUploadsHandler(uploadDir string) *UploadsHandler {
	return &UploadsHandler{uploadDir: uploadDir}
}

func (h *UploadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "\\") || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}

	filePath := filepath.Join(h.uploadDir, name)

	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

func UploadsFileServer(uploadDir string) http.Handler {
	return NewUploadsHandler(uploadDir)
}
