package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/service"
)

type contextKey string

const IdentityContextKey contextKey = "identity"

func GetIdentity(ctx context.Context) *service.Identity {
	if identity, ok := ctx.Value(IdentityContextKey).(*service.Identity); ok {
		return identity
	}
	return nil
}

// AuthMiddleware validates the user-id and authorization headers every
// authenticated route carries, resolving them into an Identity before
// business logic runs.
type AuthMiddleware struct {
	sessions *service.SessionService
}

func NewAuthMiddleware(sessions *service.SessionService) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, token, ok := extractCredentials(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing user-id or authorization header",
			})
			return
		}

		identity, err := m.sessions.Authenticate(r.Context(), userID, token)
		if err != nil {
			if apperrors.HasCode(err, apperrors.ErrCodeUnauthenticated) {
				log.Warn().Int64("userId", userID).Msg("auth middleware: invalid token attempt")
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Invalid or expired session",
				})
				return
			}
			log.Error().Err(err).Msg("auth middleware: session lookup failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Authentication failed",
			})
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin runs after Handler and gates admin-only routes.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentity(r.Context())
		if identity == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Authentication required",
			})
			return
		}
		if !identity.IsAdmin {
			log.Warn().Int64("userId", identity.UserID).Msg("non-admin hit admin route")
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "Admin access required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractCredentials(r *http.Request) (userID int64, token string, ok bool) {
	rawID := r.Header.Get("user-id")
	if rawID == "" {
		return 0, "", false
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return 0, "", false
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	} else {
		token = authHeader
	}
	if token == "" {
		return 0, "", false
	}

	return userID, token, true
}
