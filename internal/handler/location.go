package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/middleware"
	"github.com/aclog/aclog-server-go/internal/service"
)

type LocationHandler struct {
	locationService *service.LocationService
	authMiddleware  *middleware.AuthMiddleware
}

func NewLocationHandler(locationService *service.LocationService, authMiddleware *middleware.AuthMiddleware) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		authMiddleware:  authMiddleware,
	}
}

func (h *LocationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.authMiddleware.Handler)

	r.Post("/", h.Record)

	// Movement history is admin-only: employees report locations but
	// never read them back.
	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware.RequireAdmin)
		r.Get("/{userID}", h.List)
		r.Get("/{userID}/trace", h.Trace)
	})

	return r
}

type recordLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// POST /api/location
func (h *LocationHandler) Record(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		writeError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	var req recordLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, apperrors.MissingRequired("latitude and longitude"))
		return
	}

	sample, err := h.locationService.Record(r.Context(), identity.UserID, *req.Latitude, *req.Longitude)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": sample.ID})
}

// GET /api/location/{userID}?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, apperrors.InvalidInput("userId", "must be numeric"))
		return
	}

	samples, err := h.locationService.Query(
		r.Context(), userID,
		r.URL.Query().Get("from"), r.URL.Query().Get("to"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, samples)
}

// GET /api/location/{userID}/trace?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *LocationHandler) Trace(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, apperrors.InvalidInput("userId", "must be numeric"))
		return
	}

	trace, err := h.locationService.QueryTrace(
		r.Context(), userID,
		r.URL.Query().Get("from"), r.URL.Query().Get("to"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trace)
}
