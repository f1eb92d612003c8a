package model

import "time"

// LocationSample is one append-only coordinate reading for a user.
// Samples are never updated, only inserted and later read back.
type LocationSample struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"userId"`
	Latitude   float64   `db:"latitude" json:"latitude"`
	Longitude  float64   `db:"longitude" json:"longitude"`
	CapturedAt time.Time `db:"captured_at" json:"capturedAt"`
}
