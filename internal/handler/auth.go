package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/aclog/aclog-server-go/internal/audit"
	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/middleware"
	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/service"
)

type AuthHandler struct {
	userService    *service.UserService
	otpService     *service.OTPService
	sessionService *service.SessionService
	rateLimiter    *service.RateLimiter
	otpSendLimit   int

	authMiddleware *middleware.AuthMiddleware
	verifyLimiter  *middleware.OTPVerifyLimiter
	sendOtpLimiter func(http.Handler) http.Handler
}

func NewAuthHandler(
	userService *service.UserService,
	otpService *service.OTPService,
	sessionService *service.SessionService,
	rateLimiter *service.RateLimiter,
	otpSendLimit int,
	authMiddleware *middleware.AuthMiddleware,
	sendOtpLimiter func(http.Handler) http.Handler,
) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		otpService:     otpService,
		sessionService: sessionService,
		rateLimiter:    rateLimiter,
		otpSendLimit:   otpSendLimit,
		authMiddleware: authMiddleware,
		verifyLimiter:  middleware.NewOTPVerifyLimiter(),
		sendOtpLimiter: sendOtpLimiter,
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.With(h.sendOtpLimiter).Post("/sendOtp", h.SendOTP)
	r.With(h.verifyLimiter.Handler).Post("/login", h.Login)
	r.With(h.authMiddleware.Handler).Post("/logout", h.Logout)

	return r
}

type registerRequest struct {
	Name       string  `json:"name"`
	Identifier string  `json:"identifier"`
	Image      *string `json:"image,omitempty"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	user, err := h.userService.Register(r.Context(), model.CreateUserParams{
		Name:       req.Name,
		Identifier: req.Identifier,
		Image:      req.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type sendOTPRequest struct {
	Identifier string `json:"identifier"`
}

// POST /api/auth/sendOtp
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if allowed, _ := h.rateLimiter.CheckOTPSendLimit(r.Context(), req.Identifier, h.otpSendLimit); !allowed {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventOTPRateLimited, Identifier: req.Identifier})
		writeError(w, apperrors.RateLimitExceeded())
		return
	}

	if err := h.otpService.Issue(r.Context(), req.Identifier); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventOTPIssued, Identifier: req.Identifier})
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully"})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	OTP        string `json:"otp"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if err := h.otpService.Verify(r.Context(), req.Identifier, req.OTP); err != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure, Identifier: req.Identifier})
		writeError(w, err)
		return
	}

	user, err := h.otpService.LookupUser(r.Context(), req.Identifier)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.sessionService.Create(r.Context(), user)
	if err != nil {
		log.Error().Err(err).Int64("userId", user.ID).Msg("failed to create session")
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: user.ID})
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		writeError(w, apperrors.Unauthenticated("Authentication required"))
		return
	}

	if err := h.sessionService.Destroy(r.Context(), identity.UserID); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout, UserID: identity.UserID})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
