package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aclog/aclog-server-go/internal/cache"
	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/model"
)

func TestSessionService(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: 42, Name: "Jordan", IsApproved: true}
	admin := &model.User{ID: 43, Name: "Sam", IsApproved: true, IsAdmin: true}

	t.Run("created token authenticates", func(t *testing.T) {
		svc := NewSessionService(cache.NewMemoryStore(), time.Hour)

		token, err := svc.Create(ctx, user)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		identity, err := svc.Authenticate(ctx, user.ID, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, identity.UserID)
		assert.False(t, identity.IsAdmin)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		svc := NewSessionService(cache.NewMemoryStore(), time.Hour)

		token, err := svc.Create(ctx, user)
		require.NoError(t, err)

		tampered := "0" + token[1:]
		if tampered == token {
			tampered = "1" + token[1:]
		}
		_, err = svc.Authenticate(ctx, user.ID, tampered)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthenticated))
	})

	t.Run("no session means unauthenticated", func(t *testing.T) {
		svc := NewSessionService(cache.NewMemoryStore(), time.Hour)

		_, err := svc.Authenticate(ctx, user.ID, "anything")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthenticated))
	})

	t.Run("new login invalidates the previous token", func(t *testing.T) {
		svc := NewSessionService(cache.NewMemoryStore(), time.Hour)

		first, err := svc.Create(ctx, user)
		require.NoError(t, err)
		second, err := svc.Create(ctx, user)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, user.ID, first)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthenticated))

		_, err = svc.Authenticate(ctx, user.ID, second)
		assert.NoError(t, err)
	})

	t.Run("session expires after ttl", func(t *testing.T) {
		svc := NewSessionService(cache.NewMemoryStore(), time.Millisecond)

		token, err := svc.Create(ctx, user)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		_, err = svc.Authenticate(ctx, user.ID, token)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthenticated))
	})

	t.Run("destroy signs the user out", func(t *testing.T) {
		svc := NewSessionService(cache.NewMemoryStore(), time.Hour)

		token, err := svc.Create(ctx, user)
		require.NoError(t, err)

		require.NoError(t, svc.Destroy(ctx, user.ID))

		_, err = svc.Authenticate(ctx, user.ID, token)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthenticated))
	})

	t.Run("destroy without a session is a no-op", func(t *testing.T) {
		svc := NewSessionService(cache.NewMemoryStore(), time.Hour)
		assert.NoError(t, svc.Destroy(ctx, user.ID))
	})

	t.Run("authorize admin requires the admin role", func(t *testing.T) {
		svc := NewSessionService(cache.NewMemoryStore(), time.Hour)

		userToken, err := svc.Create(ctx, user)
		require.NoError(t, err)
		adminToken, err := svc.Create(ctx, admin)
		require.NoError(t, err)

		_, err = svc.AuthorizeAdmin(ctx, user.ID, userToken)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

		identity, err := svc.AuthorizeAdmin(ctx, admin.ID, adminToken)
		require.NoError(t, err)
		assert.True(t, identity.IsAdmin)
	})

	t.Run("sessions for different users are independent", func(t *testing.T) {
		svc := NewSessionService(cache.NewMemoryStore(), time.Hour)

		userToken, err := svc.Create(ctx, user)
		require.NoError(t, err)
		_, err = svc.Create(ctx, admin)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, admin.ID, userToken)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthenticated))
	})
}
