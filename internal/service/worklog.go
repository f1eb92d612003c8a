package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/aclog/aclog-server-go/internal/database"
	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/repository"
)

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// WorkLogService manages one clock-in/clock-out pair per user per day.
// The check-then-write runs inside a transaction so two concurrent
// clock-ins cannot both pass the already-clocked-in check.
type WorkLogService struct {
	db          TxRunner
	workLogRepo repository.WorkLogRepository
}

func NewWorkLogService(db TxRunner, workLogRepo repository.WorkLogRepository) *WorkLogService {
	return &WorkLogService{
		db:          db,
		workLogRepo: workLogRepo,
	}
}

func (s *WorkLogService) ClockIn(ctx context.Context, userID int64) (*model.WorkLog, error) {
	var entry *model.WorkLog

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.workLogRepo.WithTx(tx)

		existing, err := repo.FindForDay(ctx, userID, time.Now())
		if err != nil {
			return apperrors.Database(err)
		}
		if existing != nil {
			return apperrors.New(apperrors.ErrCodeConflict, "Already clocked in today")
		}

		entry, err = repo.ClockIn(ctx, userID)
		if err != nil {
			return apperrors.Database(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("userId", userID).Msg("clocked in")
	return entry, nil
}

func (s *WorkLogService) ClockOut(ctx context.Context, userID int64) (*model.WorkLog, error) {
	var entry *model.WorkLog

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.workLogRepo.WithTx(tx)

		existing, err := repo.FindForDay(ctx, userID, time.Now())
		if err != nil {
			return apperrors.Database(err)
		}
		if existing == nil {
			return apperrors.New(apperrors.ErrCodeConflict, "Not clocked in today")
		}
		if existing.ClockOutAt != nil {
			return apperrors.New(apperrors.ErrCodeConflict, "Already clocked out today")
		}

		if err := repo.ClockOut(ctx, existing.ID); err != nil {
			return apperrors.Database(err)
		}
		entry = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("userId", userID).Msg("clocked out")
	return entry, nil
}
