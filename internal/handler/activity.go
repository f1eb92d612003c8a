package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/middleware"
	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/service"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	authMiddleware  *middleware.AuthMiddleware
}

func NewActivityHandler(activityService *service.ActivityService, authMiddleware *middleware.AuthMiddleware) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		authMiddleware:  authMiddleware,
	}
}

func (h *ActivityHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.authMiddleware.Handler)

	r.Get("/feed", h.Feed)
	r.Post("/", h.Create)
	r.Get("/{activityID}/comments", h.Comments)
	r.Post("/{activityID}/comments", h.AddComment)

	return r
}

// GET /api/activities/feed?limit=&offset=
func (h *ActivityHandler) Feed(w http.ResponseWriter, r *http.Request) {
	pagination := ParsePagination(r)

	activities, err := h.activityService.Feed(r.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activities)
}

type createActivityRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	MediaURL    *string `json:"mediaUrl"`
}

// POST /api/activities
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		writeError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	var req createActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	activity, err := h.activityService.Create(r.Context(), model.CreateActivityParams{
		UserID:      identity.UserID,
		Title:       req.Title,
		Description: req.Description,
		MediaURL:    req.MediaURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, activity)
}

// GET /api/activities/{activityID}/comments
func (h *ActivityHandler) Comments(w http.ResponseWriter, r *http.Request) {
	activityID, err := strconv.ParseInt(chi.URLParam(r, "activityID"), 10, 64)
	if err != nil {
		writeError(w, apperrors.InvalidInput("activityId", "must be numeric"))
		return
	}

	comments, err := h.activityService.Comments(r.Context(), activityID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

type addCommentRequest struct {
	Comment string `json:"comment"`
}

// POST /api/activities/{activityID}/comments
func (h *ActivityHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		writeError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	activityID, err := strconv.ParseInt(chi.URLParam(r, "activityID"), 10, 64)
	if err != nil {
		writeError(w, apperrors.InvalidInput("activityId", "must be numeric"))
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	comment, err := h.activityService.AddComment(r.Context(), activityID, identity.UserID, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
