package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/aclog/aclog-server-go/internal/errors"
)

// PostgresStore keeps cache entries in a table so OTP and session state
// survive a process restart. Expiry is lazy: reads filter on expires_at
// and the cleanup job prunes dead rows in the background.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at
	`, key, value, expiresAt)
	if err != nil {
		return apperrors.StorageUnavailable(err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, `
		SELECT value FROM cache
		WHERE key = $1 AND expires_at > NOW()
	`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	return value, nil
}

func (s *PostgresStore) GetDel(ctx context.Context, key string) ([]byte, error) {
	// Single DELETE ... RETURNING keeps fetch and delete atomic; a
	// concurrent consumer of the same key gets zero rows.
	var value []byte
	err := s.db.GetContext(ctx, &value, `
		DELETE FROM cache
		WHERE key = $1 AND expires_at > NOW()
		RETURNING value
	`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	return value, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE key = $1`, key)
	if err != nil {
		return apperrors.StorageUnavailable(err)
	}
	return nil
}

// DeleteExpired removes entries past their expiry. Called by the
// cleanup job; correctness does not depend on it since reads already
// filter expired rows.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, apperrors.StorageUnavailable(err)
	}
	return result.RowsAffected()
}
