package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aclog/aclog-server-go/internal/cache"
	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/util"
)

const DefaultSessionTTL = 24 * time.Hour

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID  int64
	IsAdmin bool
}

// SessionService stores one active session per user in the cache under
// the session: namespace. Creating a session overwrites any prior one,
// so a new login invalidates every earlier token for that user.
type SessionService struct {
	store cache.Store
	ttl   time.Duration
}

func NewSessionService(store cache.Store, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		store: store,
		ttl:   ttl,
	}
}

// Create mints an opaque token for the user and stores its hash with
// the role flag. The raw token is returned once and never persisted.
func (s *SessionService) Create(ctx context.Context, user *model.User) (string, error) {
	token, err := util.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	value, err := cache.EncodeSession(cache.SessionEntry{
		TokenHash: util.HashToken(token),
		IsAdmin:   user.IsAdmin,
		IssuedAt:  time.Now(),
	})
	if err != nil {
		return "", err
	}

	if err := s.store.Set(ctx, cache.SessionKey(user.ID), value, s.ttl); err != nil {
		return "", err
	}

	log.Info().
		Int64("userId", user.ID).
		Bool("isAdmin", user.IsAdmin).
		Dur("ttl", s.ttl).
		Msg("session created")

	return token, nil
}

// Authenticate validates a presented token against the stored session.
// A stale token from before the latest login is rejected the same way
// as a missing or expired session.
func (s *SessionService) Authenticate(ctx context.Context, userID int64, token string) (*Identity, error) {
	value, err := s.store.Get(ctx, cache.SessionKey(userID))
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, apperrors.Unauthenticated("No active session")
	}

	entry, err := cache.DecodeSession(value)
	if err != nil {
		return nil, err
	}
	if entry.TokenHash == "" || !util.ConstantTimeEqual(entry.TokenHash, util.HashToken(token)) {
		return nil, apperrors.Unauthenticated("Invalid session token")
	}

	return &Identity{UserID: userID, IsAdmin: entry.IsAdmin}, nil
}

// AuthorizeAdmin authenticates and additionally requires the admin role.
func (s *SessionService) AuthorizeAdmin(ctx context.Context, userID int64, token string) (*Identity, error) {
	identity, err := s.Authenticate(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin {
		return nil, apperrors.Forbidden("Admin access required")
	}
	return identity, nil
}

// Destroy removes the user's session on sign-out. Destroying a session
// that does not exist is a no-op.
func (s *SessionService) Destroy(ctx context.Context, userID int64) error {
	if err := s.store.Delete(ctx, cache.SessionKey(userID)); err != nil {
		return err
	}
	log.Info().Int64("userId", userID).Msg("session destroyed")
	return nil
}
