package model

import "time"

type Activity struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"userId"`
	UserName    string    `db:"user_name" json:"userName"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	MediaURL    *string   `db:"media_url" json:"mediaUrl,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type CreateActivityParams struct {
	UserID      int64
	Title       string
	Description string
	MediaURL    *string
}

type Comment struct {
	ID         int64     `db:"id" json:"id"`
	ActivityID int64     `db:"activity_id" json:"activityId"`
	UserID     int64     `db:"user_id" json:"userId"`
	UserName   string    `db:"user_name" json:"userName"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
