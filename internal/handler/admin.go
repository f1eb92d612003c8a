package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aclog/aclog-server-go/internal/audit"
	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/middleware"
	"github.com/aclog/aclog-server-go/internal/service"
)

type AdminHandler struct {
	adminService   *service.AdminService
	authMiddleware *middleware.AuthMiddleware
}

func NewAdminHandler(adminService *service.AdminService, authMiddleware *middleware.AuthMiddleware) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		authMiddleware: authMiddleware,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.authMiddleware.Handler)
	r.Use(h.authMiddleware.RequireAdmin)

	r.Get("/employees", h.ListEmployees)
	r.Post("/approve", h.Approve)

	return r
}

// GET /api/admin/employees
func (h *AdminHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListEmployees(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

type approveRequest struct {
	UserID   *int64 `json:"id"`
	Approved *bool  `json:"is_approved"`
}

// POST /api/admin/approve
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.UserID == nil {
		writeError(w, apperrors.MissingRequired("id"))
		return
	}

	// Omitted flag defaults to approve, matching the common case.
	approved := true
	if req.Approved != nil {
		approved = *req.Approved
	}

	if err := h.adminService.Approve(r.Context(), *req.UserID, approved); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventEmployeeApproved,
		UserID: *req.UserID,
		Details: map[string]interface{}{
			"approved": approved,
		},
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Approval updated"})
}
