package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/model"
	"github.com/aclog/aclog-server-go/internal/repository"
)

const dateLayout = "2006-01-02"

// TracePoint is one vertex of a reconstructed movement path.
type TracePoint struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Trace is the chronological polyline through a user's samples. A
// single sample yields one point with no line; an empty trace is a
// normal result, not an error.
type Trace struct {
	UserID int64        `json:"userId"`
	Points []TracePoint `json:"points"`
}

// LocationService records samples and answers date-bounded range
// queries used to rebuild movement traces.
type LocationService struct {
	locationRepo repository.LocationRepository
}

func NewLocationService(locationRepo repository.LocationRepository) *LocationService {
	return &LocationService{locationRepo: locationRepo}
}

// Record appends one sample for the user. Duplicate submissions on a
// network retry simply create an extra sample.
func (s *LocationService) Record(ctx context.Context, userID int64, latitude, longitude float64) (*model.LocationSample, error) {
	if latitude < -90 || latitude > 90 {
		return nil, apperrors.InvalidInput("latitude", "must be between -90 and 90")
	}
	if longitude < -180 || longitude > 180 {
		return nil, apperrors.InvalidInput("longitude", "must be between -180 and 180")
	}

	sample, err := s.locationRepo.Insert(ctx, userID, latitude, longitude)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Debug().
		Int64("userId", userID).
		Float64("latitude", latitude).
		Float64("longitude", longitude).
		Msg("location sample recorded")

	return sample, nil
}

// Query returns the user's samples between two inclusive calendar-day
// bounds, newest first. Empty bounds are open ends. A range where from
// is after to yields an empty result, not an error.
func (s *LocationService) Query(ctx context.Context, userID int64, fromDate, toDate string) ([]model.LocationSample, error) {
	from, to, empty, err := parseDateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	if empty {
		return []model.LocationSample{}, nil
	}

	samples, err := s.locationRepo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return samples, nil
}

// QueryTrace fetches a date-bounded range and assembles it into a
// chronological trace.
func (s *LocationService) QueryTrace(ctx context.Context, userID int64, fromDate, toDate string) (*Trace, error) {
	samples, err := s.Query(ctx, userID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	trace := BuildTrace(samples)
	trace.UserID = userID
	return &trace, nil
}

// BuildTrace orders samples by capture time ascending and connects
// them into a path. Storage order is deliberately not trusted; the raw
// feed elsewhere is newest first.
func BuildTrace(samples []model.LocationSample) Trace {
	points := make([]TracePoint, 0, len(samples))
	for _, sample := range samples {
		points = append(points, TracePoint{
			Latitude:   sample.Latitude,
			Longitude:  sample.Longitude,
			CapturedAt: sample.CapturedAt,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].CapturedAt.Before(points[j].CapturedAt)
	})
	return Trace{Points: points}
}

// parseDateRange converts optional YYYY-MM-DD bounds into inclusive
// timestamps. The to bound covers the whole day. empty reports a valid
// range that cannot contain samples (from after to).
func parseDateRange(fromDate, toDate string) (from, to *time.Time, empty bool, err error) {
	var fromDay, toDay time.Time

	if fromDate != "" {
		fromDay, err = time.Parse(dateLayout, fromDate)
		if err != nil {
			return nil, nil, false, apperrors.InvalidInput("from", "must be a YYYY-MM-DD date")
		}
		from = &fromDay
	}
	if toDate != "" {
		toDay, err = time.Parse(dateLayout, toDate)
		if err != nil {
			return nil, nil, false, apperrors.InvalidInput("to", "must be a YYYY-MM-DD date")
		}
		endOfDay := toDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &endOfDay
	}

	if from != nil && to != nil && fromDay.After(toDay) {
		return nil, nil, true, nil
	}
	return from, to, false, nil
}
