package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/middleware"
	"github.com/aclog/aclog-server-go/internal/service"
)

type WorkLogHandler struct {
	workLogService *service.WorkLogService
	authMiddleware *middleware.AuthMiddleware
}

func NewWorkLogHandler(workLogService *service.WorkLogService, authMiddleware *middleware.AuthMiddleware) *WorkLogHandler {
	return &WorkLogHandler{
		workLogService: workLogService,
		authMiddleware: authMiddleware,
	}
}

func (h *WorkLogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.authMiddleware.Handler)
	r.Post("/", h.Punch)
	return r
}

type punchRequest struct {
	IsClockIn *bool `json:"is_clock_in"`
}

// POST /api/worklog
func (h *WorkLogHandler) Punch(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		writeError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	var req punchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.IsClockIn == nil {
		writeError(w, apperrors.MissingRequired("is_clock_in"))
		return
	}

	if *req.IsClockIn {
		entry, err := h.workLogService.ClockIn(r.Context(), identity.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Clocked in",
			"entry":   entry,
		})
		return
	}

	entry, err := h.workLogService.ClockOut(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Clocked out",
		"entry":   entry,
	})
}
