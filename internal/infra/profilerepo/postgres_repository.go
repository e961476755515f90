package profilerepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/astro-profile/internal/domain/profiles"
)

const schema = `
CREATE TABLE IF NOT EXISTS natal_profiles (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL,
	label      TEXT NOT NULL DEFAULT '',
	birth      JSONB NOT NULL,
	profile    JSONB NOT NULL,
	source     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS natal_profiles_user_created_idx ON natal_profiles (user_id, created_at DESC);
`

// PostgresRepository implements profiles.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the table when it is missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure natal_profiles schema: %w", err)
	}
	return nil
}

// Save upserts a record.
func (r *PostgresRepository) Save(ctx context.Context, record profiles.Record) error {
	birth, err := json.Marshal(record.Birth)
	if err != nil {
		return fmt.Errorf("encode birth: %w", err)
	}
	profile, err := json.Marshal(record.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO natal_profiles (id, user_id, label, birth, profile, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET label = EXCLUDED.label, birth = EXCLUDED.birth, profile = EXCLUDED.profile, source = EXCLUDED.source
	`, record.ID, record.UserID, record.Label, birth, profile, string(record.Profile.Source), record.CreatedAt)
	return err
}

// Get fetches by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (profiles.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, user_id, label, birth, profile, created_at
		FROM natal_profiles
		WHERE id = $1
	`, id)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return profiles.Record{}, false, nil
	}
	if err != nil {
		return profiles.Record{}, false, err
	}
	return record, true, nil
}

// ListByUser returns the user's records, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]profiles.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, user_id, label, birth, profile, created_at
		FROM natal_profiles
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profiles.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (profiles.Record, error) {
	var (
		record  profiles.Record
		birth   []byte
		profile []byte
	)
	if err := row.Scan(&record.ID, &record.UserID, &record.Label, &birth, &profile, &record.CreatedAt); err != nil {
		return profiles.Record{}, err
	}
	if err := json.Unmarshal(birth, &record.Birth); err != nil {
		return profiles.Record{}, fmt.Errorf("decode birth: %w", err)
	}
	if err := json.Unmarshal(profile, &record.Profile); err != nil {
		return profiles.Record{}, fmt.Errorf("decode profile: %w", err)
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

var _ profiles.Repository = (*PostgresRepository)(nil)
