package model

import "time"

type User struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Identifier string    `db:"identifier" json:"identifier"`
	IsApproved bool      `db:"is_approved" json:"isApproved"`
	IsAdmin    bool      `db:"is_admin" json:"isAdmin"`
	Image      *string   `db:"image" json:"image,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

type CreateUserParams struct {
	Name       string
	Identifier string
	Image      *string
}
