// Package cache provides a time-bounded key/value store shared by the
// OTP and session components. Entries carry a kind tag and live under
// disjoint key prefixes so an OTP identifier can never collide with a
// session keyed by user id.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Store is the expiring key/value contract. An absent or expired entry
// is reported as (nil, nil); errors are reserved for the storage medium
// being unavailable and are never used to signal absence.
type Store interface {
	// Set stores value under key with expiry now+ttl, unconditionally
	// overwriting any existing entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns the stored value while it is still live, or (nil, nil).
	Get(ctx context.Context, key string) ([]byte, error)
	// GetDel atomically fetches and deletes a live entry. At most one
	// concurrent caller observes the value; the rest see (nil, nil).
	GetDel(ctx context.Context, key string) ([]byte, error)
	// Delete removes the entry. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}

type EntryKind string

const (
	KindOTP     EntryKind = "otp"
	KindSession EntryKind = "session"
)

const (
	otpKeyPrefix     = "otp:"
	sessionKeyPrefix = "session:"
)

func OTPKey(identifier string) string {
	return otpKeyPrefix + identifier
}

func SessionKey(userID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(userID, 10)
}

// OTPEntry is the payload stored for an issued one-time passcode.
type OTPEntry struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issuedAt"`
}

// SessionEntry is the payload stored for an active session. Only the
// token hash is persisted; the raw token lives with the client.
type SessionEntry struct {
	TokenHash string    `json:"tokenHash"`
	IsAdmin   bool      `json:"isAdmin"`
	IssuedAt  time.Time `json:"issuedAt"`
}

type envelope struct {
	Kind EntryKind       `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func encode(kind EntryKind, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s entry: %w", kind, err)
	}
	return json.Marshal(envelope{Kind: kind, Data: data})
}

func decode(kind EntryKind, value []byte, payload any) error {
	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return fmt.Errorf("unmarshal cache entry: %w", err)
	}
	if env.Kind != kind {
		return fmt.Errorf("cache entry kind mismatch: want %s, got %s", kind, env.Kind)
	}
	if err := json.Unmarshal(env.Data, payload); err != nil {
		return fmt.Errorf("unmarshal %s entry: %w", kind, err)
	}
	return nil
}

func EncodeOTP(entry OTPEntry) ([]byte, error) {
	return encode(KindOTP, entry)
}

func DecodeOTP(value []byte) (OTPEntry, error) {
	var entry OTPEntry
	err := decode(KindOTP, value, &entry)
	return entry, err
}

func EncodeSession(entry SessionEntry) ([]byte, error) {
	return encode(KindSession, entry)
}

func DecodeSession(value []byte) (SessionEntry, error) {
	var entry SessionEntry
	err := decode(KindSession, value, &entry)
	return entry, err
}
