package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aclog/aclog-server-go/internal/model"
)

type LocationRepository interface {
	// Insert appends a sample; captured_at is assigned by the database.
	Insert(ctx context.Context, userID int64, latitude, longitude float64) (*model.LocationSample, error)
	// ListByUser returns samples newest first, optionally bounded by an
	// inclusive captured_at range. Nil bounds mean unbounded.
	ListByUser(ctx context.Context, userID int64, from, to *time.Time) ([]model.LocationSample, error)
}

type locationDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type locationRepo struct {
	db locationDB
}

func NewLocationRepository(db *sqlx.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Insert(ctx context.Context, userID int64, latitude, longitude float64) (*model.LocationSample, error) {
	var sample model.LocationSample
	err := r.db.GetContext(ctx, &sample, `
		INSERT INTO locations (user_id, latitude, longitude)
		VALUES ($1, $2, $3)
		RETURNING *
	`, userID, latitude, longitude)
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

func (r *locationRepo) ListByUser(ctx context.Context, userID int64, from, to *time.Time) ([]model.LocationSample, error) {
	query := `SELECT * FROM locations WHERE user_id = $1`
	args := []interface{}{userID}

	if from != nil {
		args = append(args, *from)
		query += ` AND captured_at >= $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND captured_at <= $3`
		} else {
			query += ` AND captured_at <= $2`
		}
	}
	query += ` ORDER BY captured_at DESC`

	samples := []model.LocationSample{}
	if err := r.db.SelectContext(ctx, &samples, query, args...); err != nil {
		return nil, err
	}
	return samples, nil
}
