package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aclog/aclog-server-go/internal/model"
)

type WorkLogRepository interface {
	FindForDay(ctx context.Context, userID int64, day time.Time) (*model.WorkLog, error)
	ClockIn(ctx context.Context, userID int64) (*model.WorkLog, error)
	ClockOut(ctx context.Context, id int64) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) WorkLogRepository
}

type workLogDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type workLogRepo struct {
	db workLogDB
}

func NewWorkLogRepository(db *sqlx.DB) WorkLogRepository {
	return &workLogRepo{db: db}
}

func (r *workLogRepo) WithTx(tx *sqlx.Tx) WorkLogRepository {
	return &workLogRepo{db: tx}
}

func (r *workLogRepo) FindForDay(ctx context.Context, userID int64, day time.Time) (*model.WorkLog, error) {
	var entry model.WorkLog
	err := r.db.GetContext(ctx, &entry, `
		SELECT * FROM work_log
		WHERE user_id = $1 AND DATE(clock_in_at) = DATE($2)
	`, userID, day)
	return HandleNotFound(&entry, err)
}

func (r *workLogRepo) ClockIn(ctx context.Context, userID int64) (*model.WorkLog, error) {
	var entry model.WorkLog
	err := r.db.GetContext(ctx, &entry, `
		INSERT INTO work_log (user_id, clock_in_at)
		VALUES ($1, NOW())
		RETURNING *
	`, userID)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *workLogRepo) ClockOut(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE work_log SET clock_out_at = NOW()
		WHERE id = $1 AND clock_out_at IS NULL
	`, id)
	return err
}
