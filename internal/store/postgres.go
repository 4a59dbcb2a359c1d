package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/db"
	"github.com/sells-group/company-profiler/internal/profile"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS company_profiles (
	id             TEXT PRIMARY KEY,
	url            TEXT NOT NULL,
	normalized_url TEXT NOT NULL UNIQUE,
	payload        JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_company_profiles_created_at ON company_profiles(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const recordColumns = `id, url, normalized_url, payload, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, url, normalizedURL string, p profile.CompanyProfile) (*Record, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal payload")
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO company_profiles (id, url, normalized_url, payload)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+recordColumns,
		uuid.New().String(), url, normalizedURL, payload,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateURL
		}
		return nil, eris.Wrap(err, "postgres: insert profile")
	}
	return rec, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM company_profiles WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get profile %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) GetByNormalizedURL(ctx context.Context, normalizedURL string) (*Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM company_profiles WHERE normalized_url = $1`, normalizedURL)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get profile by url %s", normalizedURL)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM company_profiles ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	return records, nil
}

func (s *PostgresStore) Update(ctx context.Context, id, url, normalizedURL string, p profile.CompanyProfile) (*Record, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal payload")
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE company_profiles
		 SET url = $2, normalized_url = $3, payload = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+recordColumns,
		id, url, normalizedURL, payload,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateURL
		}
		return nil, eris.Wrapf(err, "postgres: update profile %s", id)
	}
	return rec, nil
}

// scanRecord reads one record from a row. The payload column arrives as
// JSONB bytes and is unmarshaled into the canonical profile type.
func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var payload []byte
	if err := row.Scan(&rec.ID, &rec.URL, &rec.NormalizedURL, &payload, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &rec.Profile); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal payload")
	}
	return &rec, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
