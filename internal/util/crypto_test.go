package util

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("generates 64 character hex string", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		token1, _ := GenerateToken()
		token2, _ := GenerateToken()
		assert.NotEqual(t, token1, token2)
	})

	t.Run("generates valid hex", func(t *testing.T) {
		token, _ := GenerateToken()
		for _, c := range token {
			assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'))
		}
	})
}

func TestHashToken(t *testing.T) {
	t.Run("returns 64 character hex string", func(t *testing.T) {
		hash := HashToken("test-token")
		assert.Len(t, hash, 64)
	})

	t.Run("same input produces same hash", func(t *testing.T) {
		hash1 := HashToken("test-token")
		hash2 := HashToken("test-token")
		assert.Equal(t, hash1, hash2)
	})

	t.Run("different input produces different hash", func(t *testing.T) {
		hash1 := HashToken("token-1")
		hash2 := HashToken("token-2")
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestGenerateOTPCode(t *testing.T) {
	t.Run("generates 6 digit numeric code", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code, err := GenerateOTPCode()
			require.NoError(t, err)
			assert.Len(t, code, 6)
			_, err = strconv.Atoi(code)
			assert.NoError(t, err, "code should be numeric, got: %s", code)
		}
	})

	t.Run("preserves leading zeros", func(t *testing.T) {
		// With 1000 draws the chance of never seeing a code below
		// 100000 is about (0.9)^1000, effectively zero.
		seenLeadingZero := false
		for i := 0; i < 1000; i++ {
			code, err := GenerateOTPCode()
			require.NoError(t, err)
			if code[0] == '0' {
				seenLeadingZero = true
				break
			}
		}
		assert.True(t, seenLeadingZero, "expected at least one code with a leading zero")
	})

	t.Run("generates varying codes", func(t *testing.T) {
		codes := make(map[string]bool)
		for i := 0; i < 50; i++ {
			code, _ := GenerateOTPCode()
			codes[code] = true
		}
		assert.Greater(t, len(codes), 1)
	})
}

func TestConstantTimeEqual(t *testing.T) {
	t.Run("returns true for equal strings", func(t *testing.T) {
		assert.True(t, ConstantTimeEqual("abc", "abc"))
	})

	t.Run("returns false for different strings", func(t *testing.T) {
		assert.False(t, ConstantTimeEqual("abc", "def"))
	})

	t.Run("returns false for different lengths", func(t *testing.T) {
		assert.False(t, ConstantTimeEqual("abc", "abcd"))
	})

	t.Run("returns true for empty strings", func(t *testing.T) {
		assert.True(t, ConstantTimeEqual("", ""))
	})
}

func TestMaskCode(t *testing.T) {
	t.Run("masks all but the first two digits", func(t *testing.T) {
		assert.Equal(t, "12****", MaskCode("123456"))
	})

	t.Run("masks short codes entirely", func(t *testing.T) {
		assert.Equal(t, "******", MaskCode("12"))
	})
}
