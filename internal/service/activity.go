package service

import (
	"context"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/repository"
)

type ActivityService struct {
	activityRepo repository.ActivityRepository
}

func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

func (s *ActivityService) Feed(ctx context.Context, limit, offset int) ([]model.Activity, error) {
	activities, err := s.activityRepo.Feed(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return activities, nil
}

func (s *ActivityService) Create(ctx context.Context, params model.CreateActivityParams) (*model.Activity, error) {
	if params.Title == "" {
		return nil, apperrors.MissingRequired("title")
	}
	if params.Description == "" {
		return nil, apperrors.MissingRequired("description")
	}

	activity, err := s.activityRepo.Create(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return activity, nil
}

func (s *ActivityService) AddComment(ctx context.Context, activityID, userID int64, comment string) (*model.Comment, error) {
	if comment == "" {
		return nil, apperrors.MissingRequired("comment")
	}

	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if activity == nil {
		return nil, apperrors.NotFound("Activity")
	}

	c, err := s.activityRepo.AddComment(ctx, activityID, userID, comment)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return c, nil
}

func (s *ActivityService) Comments(ctx context.Context, activityID int64) ([]model.Comment, error) {
	comments, err := s.activityRepo.Comments(ctx, activityID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return comments, nil
}
