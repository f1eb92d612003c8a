package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/repository"
)

type AdminService struct {
	userRepo repository.UserRepository
}

func NewAdminService(userRepo repository.UserRepository) *AdminService {
	return &AdminService{userRepo: userRepo}
}

func (s *AdminService) ListEmployees(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return users, nil
}

// Approve flips an employee's approval flag. Rejecting an approved
// employee also invalidates nothing else: their session continues
// until it expires or they sign out.
func (s *AdminService) Approve(ctx context.Context, userID int64, approved bool) error {
	updated, err := s.userRepo.SetApproved(ctx, userID, approved)
	if err != nil {
		return apperrors.Database(err)
	}
	if !updated {
		return apperrors.NotFound("User")
	}

	log.Info().Int64("userId", userID).Bool("approved", approved).Msg("employee approval updated")
	return nil
}
