package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/aclog/aclog-server-go/internal/model"
)

type ActivityRepository interface {
	Feed(ctx context.Context, limit, offset int) ([]model.Activity, error)
	FindByID(ctx context.Context, id int64) (*model.Activity, error)
	Create(ctx context.Context, params model.CreateActivityParams) (*model.Activity, error)
	AddComment(ctx context.Context, activityID, userID int64, comment string) (*model.Comment, error)
	Comments(ctx context.Context, activityID int64) ([]model.Comment, error)
}

type activityDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type activityRepo struct {
	db activityDB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Feed(ctx context.Context, limit, offset int) ([]model.Activity, error) {
	activities := []model.Activity{}
	err := r.db.SelectContext(ctx, &activities, `
		SELECT a.*, u.name AS user_name
		FROM activities a
		JOIN users u ON a.user_id = u.id
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepo) FindByID(ctx context.Context, id int64) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.GetContext(ctx, &activity, `
		SELECT a.*, u.name AS user_name
		FROM activities a
		JOIN users u ON a.user_id = u.id
		WHERE a.id = $1
	`, id)
	return HandleNotFound(&activity, err)
}

func (r *activityRepo) Create(ctx context.Context, params model.CreateActivityParams) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.GetContext(ctx, &activity, `
		INSERT INTO activities (user_id, title, description, media_url)
		VALUES ($1, $2, $3, $4)
		RETURNING *, (SELECT name FROM users WHERE id = $1) AS user_name
	`, params.UserID, params.Title, params.Description, params.MediaURL)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepo) AddComment(ctx context.Context, activityID, userID int64, comment string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.GetContext(ctx, &c, `
		INSERT INTO comments (activity_id, user_id, comment)
		VALUES ($1, $2, $3)
		RETURNING *, (SELECT name FROM users WHERE id = $2) AS user_name
	`, activityID, userID, comment)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *activityRepo) Comments(ctx context.Context, activityID int64) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := r.db.SelectContext(ctx, &comments, `
		SELECT c.*, u.name AS user_name
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.activity_id = $1
		ORDER BY c.created_at
	`, activityID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}
