package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/aclog/aclog-server-go/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	FindApprovedByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetApproved(ctx context.Context, id int64, approved bool) (bool, error)
}

type userDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type userRepo struct {
	db userDB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1
	`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE identifier = $1
	`, identifier)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindApprovedByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users
		WHERE identifier = $1 AND is_approved = TRUE
	`, identifier)
	return HandleNotFound(&user, err)
}

func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (name, identifier, is_approved, is_admin, image)
		VALUES ($1, $2, FALSE, FALSE, $3)
		RETURNING *
	`, params.Name, params.Identifier, params.Image)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) SetApproved(ctx context.Context, id int64, approved bool) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_approved = $2 WHERE id = $1
	`, id, approved)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
