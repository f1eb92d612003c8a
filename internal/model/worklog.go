package model

import "time"

// WorkLog records one clock-in/clock-out pair per user per day.
type WorkLog struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"userId"`
	ClockInAt   time.Time  `db:"clock_in_at" json:"clockInAt"`
	ClockOutAt  *time.Time `db:"clock_out_at" json:"clockOutAt,omitempty"`
}
