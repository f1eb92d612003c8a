package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "User not found")
		assert.Equal(t, "NOT_FOUND: User not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "Database error")
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "identifier", "reason": "invalid format"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthenticated", func() *AppError { return Unauthenticated("test") }, ErrCodeUnauthenticated},
		{"Forbidden", func() *AppError { return Forbidden("test") }, ErrCodeForbidden},
		{"InvalidOrExpiredOTP", func() *AppError { return InvalidOrExpiredOTP() }, ErrCodeOTPInvalidOrExpired},
		{"NotFoundOrUnapproved", func() *AppError { return NotFoundOrUnapproved() }, ErrCodeNotFoundOrUnapproved},
		{"NotFound", func() *AppError { return NotFound("User") }, ErrCodeNotFound},
		{"AlreadyExists", func() *AppError { return AlreadyExists("User") }, ErrCodeAlreadyExists},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("identifier", "invalid") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("identifier") }, ErrCodeMissingRequired},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"PermissionDenied", func() *AppError { return PermissionDenied("test") }, ErrCodePermissionDenied},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestStorageUnavailable(t *testing.T) {
	t.Run("wraps storage error and keeps cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := StorageUnavailable(cause)
		assert.Equal(t, ErrCodeStorageUnavailable, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestDatabase(t *testing.T) {
	t.Run("wraps database error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Database(cause)
		assert.Equal(t, ErrCodeDatabase, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestIsAppError(t *testing.T) {
	t.Run("returns true for AppError", func(t *testing.T) {
		err := New(ErrCodeNotFound, "test")
		assert.True(t, IsAppError(err))
	})

	t.Run("returns false for standard error", func(t *testing.T) {
		err := errors.New("standard error")
		assert.False(t, IsAppError(err))
	})

	t.Run("returns true for wrapped AppError", func(t *testing.T) {
		inner := New(ErrCodeForbidden, "no access")
		wrapped := fmt.Errorf("request failed: %w", inner)
		assert.True(t, IsAppError(wrapped))
	})
}

func TestHasCode(t *testing.T) {
	t.Run("matches code on wrapped AppError", func(t *testing.T) {
		inner := InvalidOrExpiredOTP()
		wrapped := fmt.Errorf("verify: %w", inner)
		assert.True(t, HasCode(wrapped, ErrCodeOTPInvalidOrExpired))
		assert.False(t, HasCode(wrapped, ErrCodeForbidden))
	})

	t.Run("false for plain error", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("nope"), ErrCodeInternal))
	})
}

func TestGetCode(t *testing.T) {
	t.Run("returns code of AppError", func(t *testing.T) {
		assert.Equal(t, ErrCodeUnauthenticated, GetCode(Unauthenticated("x")))
	})

	t.Run("returns internal for unknown error", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("x")))
	})
}
