package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/reelfaucet/internal/domain"
)

// PostgresStore keeps records in the ledger_records table
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a store over a migrated pool
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT record_value FROM ledger_records WHERE record_key = $1`

	var value []byte
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrMsgGetRecordFailed, key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO ledger_records (record_key, record_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (record_key)
		DO UPDATE SET record_value = EXCLUDED.record_value, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s %s: %w", ErrMsgSetRecordFailed, key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM ledger_records WHERE record_key = $1`, key); err != nil {
		return fmt.Errorf("%s %s: %w", ErrMsgDeleteRecordFailed, key, err)
	}
	return nil
}

// Prune removes records under prefix last written before olderThan
func (s *PostgresStore) Prune(ctx context.Context, prefix string, olderThan time.Time) (int64, error) {
	query := `DELETE FROM ledger_records WHERE starts_with(record_key, $1) AND updated_at < $2`

	tag, err := s.db.Exec(ctx, query, prefix, olderThan)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgPruneFailed, err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
