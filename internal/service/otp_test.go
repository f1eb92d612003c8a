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

type mockUserRepo struct {
	findByIDFunc                 func(ctx context.Context, id int64) (*model.User, error)
	findByIdentifierFunc         func(ctx context.Context, identifier string) (*model.User, error)
	findApprovedByIdentifierFunc func(ctx context.Context, identifier string) (*model.User, error)
	createFunc                   func(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	listFunc                     func(ctx context.Context) ([]model.User, error)
	setApprovedFunc              func(ctx context.Context, id int64, approved bool) (bool, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if m.findByIdentifierFunc != nil {
		return m.findByIdentifierFunc(ctx, identifier)
	}
	return nil, nil
}

func (m *mockUserRepo) FindApprovedByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if m.findApprovedByIdentifierFunc != nil {
		return m.findApprovedByIdentifierFunc(ctx, identifier)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]model.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) SetApproved(ctx context.Context, id int64, approved bool) (bool, error) {
	if m.setApprovedFunc != nil {
		return m.setApprovedFunc(ctx, id, approved)
	}
	return false, nil
}

// reissueOnGetStore simulates a concurrent re-issue landing right
// after a verifier reads the entry: the first Get for the watched key
// returns the old value and then replaces it.
type reissueOnGetStore struct {
	cache.Store
	key      string
	fresh    []byte
	injected bool
}

func (s *reissueOnGetStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.Store.Get(ctx, key)
	if err == nil && value != nil && key == s.key && !s.injected {
		s.injected = true
		if setErr := s.Store.Set(ctx, key, s.fresh, time.Minute); setErr != nil {
			return nil, setErr
		}
	}
	return value, err
}

func approvedUserRepo(identifier string) *mockUserRepo {
	return &mockUserRepo{
		findApprovedByIdentifierFunc: func(ctx context.Context, got string) (*model.User, error) {
			if got == identifier {
				return &model.User{ID: 7, Name: "Jordan", Identifier: identifier, IsApproved: true}, nil
			}
			return nil, nil
		},
	}
}

// issuedCode digs the stored code out of the cache so tests can submit
// the right value without intercepting delivery.
func issuedCode(t *testing.T, store cache.Store, identifier string) string {
	t.Helper()
	value, err := store.Get(context.Background(), cache.OTPKey(identifier))
	require.NoError(t, err)
	require.NotNil(t, value)
	entry, err := cache.DecodeOTP(value)
	require.NoError(t, err)
	return entry.Code
}

func TestOTPService_Issue(t *testing.T) {
	ctx := context.Background()
	const identifier = "jordan@example.com"

	t.Run("stores a 6-digit code for an approved user", func(t *testing.T) {
		store := cache.NewMemoryStore()
		svc := NewOTPService(approvedUserRepo(identifier), store, time.Minute)

		err := svc.Issue(ctx, identifier)
		require.NoError(t, err)

		code := issuedCode(t, store, identifier)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
	})

	t.Run("rejects malformed identifier", func(t *testing.T) {
		store := cache.NewMemoryStore()
		svc := NewOTPService(approvedUserRepo(identifier), store, time.Minute)

		err := svc.Issue(ctx, "not-an-identifier")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
	})

	t.Run("rejects unknown or unapproved user", func(t *testing.T) {
		store := cache.NewMemoryStore()
		svc := NewOTPService(approvedUserRepo(identifier), store, time.Minute)

		err := svc.Issue(ctx, "stranger@example.com")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFoundOrUnapproved))

		value, getErr := store.Get(ctx, cache.OTPKey("stranger@example.com"))
		require.NoError(t, getErr)
		assert.Nil(t, value)
	})

	t.Run("reissue replaces the previous code", func(t *testing.T) {
		store := cache.NewMemoryStore()
		svc := NewOTPService(approvedUserRepo(identifier), store, time.Minute)

		require.NoError(t, svc.Issue(ctx, identifier))
		first := issuedCode(t, store, identifier)

		require.NoError(t, svc.Issue(ctx, identifier))
		second := issuedCode(t, store, identifier)

		if first != second {
			err := svc.Verify(ctx, identifier, first)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeOTPInvalidOrExpired))
		}
		assert.NoError(t, svc.Verify(ctx, identifier, second))
	})
}

func TestOTPService_Verify(t *testing.T) {
	ctx := context.Background()
	const identifier = "jordan@example.com"

	newIssued := func(t *testing.T) (*OTPService, cache.Store, string) {
		t.Helper()
		store := cache.NewMemoryStore()
		svc := NewOTPService(approvedUserRepo(identifier), store, time.Minute)
		require.NoError(t, svc.Issue(ctx, identifier))
		return svc, store, issuedCode(t, store, identifier)
	}

	t.Run("accepts the issued code once", func(t *testing.T) {
		svc, _, code := newIssued(t)

		assert.NoError(t, svc.Verify(ctx, identifier, code))

		err := svc.Verify(ctx, identifier, code)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeOTPInvalidOrExpired))
	})

	t.Run("wrong guess does not consume the stored code", func(t *testing.T) {
		svc, _, code := newIssued(t)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		err := svc.Verify(ctx, identifier, wrong)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeOTPInvalidOrExpired))

		assert.NoError(t, svc.Verify(ctx, identifier, code))
	})

	t.Run("rejects when no code was issued", func(t *testing.T) {
		store := cache.NewMemoryStore()
		svc := NewOTPService(approvedUserRepo(identifier), store, time.Minute)

		err := svc.Verify(ctx, identifier, "123456")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeOTPInvalidOrExpired))
	})

	t.Run("reissue between read and consume keeps the fresh code usable", func(t *testing.T) {
		store := cache.NewMemoryStore()

		fresh := "654321"
		freshValue, err := cache.EncodeOTP(cache.OTPEntry{Code: fresh, IssuedAt: time.Now()})
		require.NoError(t, err)

		racing := &reissueOnGetStore{
			Store: store,
			key:   cache.OTPKey(identifier),
			fresh: freshValue,
		}
		svc := NewOTPService(approvedUserRepo(identifier), racing, time.Minute)
		require.NoError(t, svc.Issue(ctx, identifier))

		old := issuedCode(t, store, identifier)
		if old == fresh {
			fresh = "123456"
			freshValue, err = cache.EncodeOTP(cache.OTPEntry{Code: fresh, IssuedAt: time.Now()})
			require.NoError(t, err)
			racing.fresh = freshValue
		}

		// The old code loses to the replacement, and the replacement
		// must survive the attempt.
		err = svc.Verify(ctx, identifier, old)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeOTPInvalidOrExpired))

		assert.NoError(t, svc.Verify(ctx, identifier, fresh))
	})

	t.Run("rejects after expiry", func(t *testing.T) {
		store := cache.NewMemoryStore()
		svc := NewOTPService(approvedUserRepo(identifier), store, time.Millisecond)
		require.NoError(t, svc.Issue(ctx, identifier))

		time.Sleep(5 * time.Millisecond)

		err := svc.Verify(ctx, identifier, "123456")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeOTPInvalidOrExpired))
	})
}

func TestOTPService_LookupUser(t *testing.T) {
	ctx := context.Background()
	const identifier = "jordan@example.com"

	t.Run("returns the approved user", func(t *testing.T) {
		svc := NewOTPService(approvedUserRepo(identifier), cache.NewMemoryStore(), time.Minute)

		user, err := svc.LookupUser(ctx, identifier)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(7), user.ID)
	})

	t.Run("errors for unknown identifier", func(t *testing.T) {
		svc := NewOTPService(approvedUserRepo(identifier), cache.NewMemoryStore(), time.Minute)

		_, err := svc.LookupUser(ctx, "stranger@example.com")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFoundOrUnapproved))
	})
}
