package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/repository"
	"github.com/aclog/aclog-server-go/internal/util"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates an unapproved, non-admin account. An admin must
// approve it before the user can request an OTP.
func (s *UserService) Register(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	if params.Name == "" {
		return nil, apperrors.MissingRequired("name")
	}
	if util.ValidateIdentifier(params.Identifier) == util.IdentifierInvalid {
		return nil, apperrors.InvalidInput("identifier", "must be an email or 10-digit phone number")
	}

	existing, err := s.userRepo.FindByIdentifier(ctx, params.Identifier)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("User with this identifier")
	}

	user, err := s.userRepo.Create(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Int64("userId", user.ID).Str("identifier", user.Identifier).Msg("user registered")
	return user, nil
}
