package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aclog/aclog-server-go/internal/cache"
	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/repository"
	"github.com/aclog/aclog-server-go/internal/util"
)

const DefaultOTPTTL = 10 * time.Minute

// OTPService issues and verifies one-time passcodes. Codes live in the
// cache under the otp: namespace and are single use: the first
// successful verification consumes the entry.
type OTPService struct {
	userRepo repository.UserRepository
	store    cache.Store
	ttl      time.Duration
}

func NewOTPService(userRepo repository.UserRepository, store cache.Store, ttl time.Duration) *OTPService {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPService{
		userRepo: userRepo,
		store:    store,
		ttl:      ttl,
	}
}

// Issue generates a fresh 6-digit code for an approved account and
// stores it with the configured TTL. Re-issuing before expiry silently
// replaces the previous code. The code is never returned to the caller;
// delivery happens out of band.
func (s *OTPService) Issue(ctx context.Context, identifier string) error {
	if util.ValidateIdentifier(identifier) == util.IdentifierInvalid {
		return apperrors.InvalidInput("identifier", "must be an email or 10-digit phone number")
	}

	user, err := s.userRepo.FindApprovedByIdentifier(ctx, identifier)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		return apperrors.NotFoundOrUnapproved()
	}

	code, err := util.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("generate otp code: %w", err)
	}

	value, err := cache.EncodeOTP(cache.OTPEntry{Code: code, IssuedAt: time.Now()})
	if err != nil {
		return err
	}

	if err := s.store.Set(ctx, cache.OTPKey(identifier), value, s.ttl); err != nil {
		return err
	}

	log.Info().
		Str("identifier", identifier).
		Str("code", util.MaskCode(code)).
		Dur("ttl", s.ttl).
		Msg("otp issued")
	// Full code at debug level only; delivery channels hook in here.
	log.Debug().Str("identifier", identifier).Str("code", code).Msg("otp code for delivery")

	return nil
}

// Verify checks a submitted code and consumes it on success. Absent,
// expired, mismatched, and already-consumed codes are indistinguishable
// to the caller. Two concurrent submissions of the correct code cannot
// both succeed: the consume goes through the store's atomic GetDel.
func (s *OTPService) Verify(ctx context.Context, identifier, submitted string) error {
	value, err := s.store.Get(ctx, cache.OTPKey(identifier))
	if err != nil {
		return err
	}
	if value == nil {
		return apperrors.InvalidOrExpiredOTP()
	}

	entry, err := cache.DecodeOTP(value)
	if err != nil {
		return err
	}
	if entry.Code != submitted {
		// Wrong guess: the stored code stays live.
		return apperrors.InvalidOrExpiredOTP()
	}

	consumed, err := s.store.GetDel(ctx, cache.OTPKey(identifier))
	if err != nil {
		return err
	}
	if consumed == nil {
		// Lost the race to a concurrent verification.
		return apperrors.InvalidOrExpiredOTP()
	}

	// The entry may have been replaced by a re-issue between the read
	// and the consume; only the code that was actually consumed counts.
	consumedEntry, err := cache.DecodeOTP(consumed)
	if err != nil {
		return err
	}
	if consumedEntry.Code != submitted {
		// A re-issue landed between the read and the consume; restore
		// the fresh code for its remaining lifetime.
		if remaining := time.Until(consumedEntry.IssuedAt.Add(s.ttl)); remaining > 0 {
			if setErr := s.store.Set(ctx, cache.OTPKey(identifier), consumed, remaining); setErr != nil {
				log.Warn().Err(setErr).Str("identifier", identifier).Msg("failed to restore replaced otp")
			}
		}
		return apperrors.InvalidOrExpiredOTP()
	}

	log.Info().Str("identifier", identifier).Msg("otp verified")
	return nil
}

// LookupUser returns the approved account for an identifier, for use
// after a successful verification.
func (s *OTPService) LookupUser(ctx context.Context, identifier string) (*model.User, error) {
	user, err := s.userRepo.FindApprovedByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFoundOrUnapproved()
	}
	return user, nil
}
