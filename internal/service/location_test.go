package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/model"
)

type mockLocationRepo struct {
	insertFunc     func(ctx context.Context, userID int64, latitude, longitude float64) (*model.LocationSample, error)
	listByUserFunc func(ctx context.Context, userID int64, from, to *time.Time) ([]model.LocationSample, error)
}

func (m *mockLocationRepo) Insert(ctx context.Context, userID int64, latitude, longitude float64) (*model.LocationSample, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, userID, latitude, longitude)
	}
	return &model.LocationSample{ID: 1, UserID: userID, Latitude: latitude, Longitude: longitude, CapturedAt: time.Now()}, nil
}

func (m *mockLocationRepo) ListByUser(ctx context.Context, userID int64, from, to *time.Time) ([]model.LocationSample, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, from, to)
	}
	return nil, nil
}

func TestLocationService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a valid sample", func(t *testing.T) {
		var gotLat, gotLng float64
		repo := &mockLocationRepo{
			insertFunc: func(ctx context.Context, userID int64, latitude, longitude float64) (*model.LocationSample, error) {
				gotLat, gotLng = latitude, longitude
				return &model.LocationSample{ID: 10, UserID: userID, Latitude: latitude, Longitude: longitude}, nil
			},
		}
		svc := NewLocationService(repo)

		sample, err := svc.Record(ctx, 5, 37.5665, 126.9780)
		require.NoError(t, err)
		assert.Equal(t, int64(10), sample.ID)
		assert.Equal(t, 37.5665, gotLat)
		assert.Equal(t, 126.9780, gotLng)
	})

	t.Run("rejects out-of-range coordinates", func(t *testing.T) {
		svc := NewLocationService(&mockLocationRepo{})

		_, err := svc.Record(ctx, 5, 91, 0)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

		_, err = svc.Record(ctx, 5, -91, 0)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

		_, err = svc.Record(ctx, 5, 0, 181)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

		_, err = svc.Record(ctx, 5, 0, -181)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
	})

	t.Run("accepts boundary coordinates", func(t *testing.T) {
		svc := NewLocationService(&mockLocationRepo{})

		_, err := svc.Record(ctx, 5, 90, 180)
		assert.NoError(t, err)

		_, err = svc.Record(ctx, 5, -90, -180)
		assert.NoError(t, err)
	})
}

func TestLocationService_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("passes day bounds through with to covering the whole day", func(t *testing.T) {
		var gotFrom, gotTo *time.Time
		repo := &mockLocationRepo{
			listByUserFunc: func(ctx context.Context, userID int64, from, to *time.Time) ([]model.LocationSample, error) {
				gotFrom, gotTo = from, to
				return []model.LocationSample{}, nil
			},
		}
		svc := NewLocationService(repo)

		_, err := svc.Query(ctx, 5, "2026-08-01", "2026-08-02")
		require.NoError(t, err)

		require.NotNil(t, gotFrom)
		require.NotNil(t, gotTo)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *gotFrom)
		assert.True(t, gotTo.After(time.Date(2026, 8, 2, 23, 59, 59, 0, time.UTC)))
		assert.True(t, gotTo.Before(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("missing bounds are open ended", func(t *testing.T) {
		var gotFrom, gotTo *time.Time
		called := false
		repo := &mockLocationRepo{
			listByUserFunc: func(ctx context.Context, userID int64, from, to *time.Time) ([]model.LocationSample, error) {
				called = true
				gotFrom, gotTo = from, to
				return nil, nil
			},
		}
		svc := NewLocationService(repo)

		_, err := svc.Query(ctx, 5, "", "")
		require.NoError(t, err)
		assert.True(t, called)
		assert.Nil(t, gotFrom)
		assert.Nil(t, gotTo)
	})

	t.Run("from after to yields empty without hitting storage", func(t *testing.T) {
		called := false
		repo := &mockLocationRepo{
			listByUserFunc: func(ctx context.Context, userID int64, from, to *time.Time) ([]model.LocationSample, error) {
				called = true
				return nil, nil
			},
		}
		svc := NewLocationService(repo)

		samples, err := svc.Query(ctx, 5, "2026-08-10", "2026-08-01")
		require.NoError(t, err)
		assert.Empty(t, samples)
		assert.False(t, called)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		svc := NewLocationService(&mockLocationRepo{})

		_, err := svc.Query(ctx, 5, "08/01/2026", "")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

		_, err = svc.Query(ctx, 5, "", "yesterday")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
	})
}

func TestBuildTrace(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	t.Run("orders newest-first storage into a chronological path", func(t *testing.T) {
		samples := []model.LocationSample{
			{Latitude: 3, Longitude: 30, CapturedAt: base.Add(2 * time.Minute)},
			{Latitude: 2, Longitude: 20, CapturedAt: base.Add(time.Minute)},
			{Latitude: 1, Longitude: 10, CapturedAt: base},
		}

		trace := BuildTrace(samples)

		require.Len(t, trace.Points, 3)
		assert.Equal(t, 1.0, trace.Points[0].Latitude)
		assert.Equal(t, 2.0, trace.Points[1].Latitude)
		assert.Equal(t, 3.0, trace.Points[2].Latitude)
		for i := 1; i < len(trace.Points); i++ {
			assert.True(t, trace.Points[i-1].CapturedAt.Before(trace.Points[i].CapturedAt))
		}
	})

	t.Run("empty input is an empty trace", func(t *testing.T) {
		trace := BuildTrace(nil)
		assert.NotNil(t, trace.Points)
		assert.Empty(t, trace.Points)
	})

	t.Run("single sample is a one-point trace", func(t *testing.T) {
		trace := BuildTrace([]model.LocationSample{{Latitude: 1, Longitude: 2, CapturedAt: base}})
		require.Len(t, trace.Points, 1)
		assert.Equal(t, 1.0, trace.Points[0].Latitude)
	})
}
