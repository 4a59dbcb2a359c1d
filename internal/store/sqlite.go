package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/company-profiler/internal/profile"
)

// SQLiteStore implements Store using modernc.org/sqlite. Intended for local
// development and single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS company_profiles (
	id             TEXT PRIMARY KEY,
	url            TEXT NOT NULL,
	normalized_url TEXT NOT NULL UNIQUE,
	payload        TEXT NOT NULL,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_company_profiles_created_at ON company_profiles(created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Insert(ctx context.Context, url, normalizedURL string, p profile.CompanyProfile) (*Record, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal payload")
	}

	rec := &Record{
		ID:            uuid.New().String(),
		URL:           url,
		NormalizedURL: normalizedURL,
		Profile:       p,
		CreatedAt:     time.Now().UTC(),
	}
	rec.UpdatedAt = rec.CreatedAt

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO company_profiles (id, url, normalized_url, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.URL, rec.NormalizedURL, string(payload), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrDuplicateURL
		}
		return nil, eris.Wrap(err, "sqlite: insert profile")
	}
	return rec, nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, normalized_url, payload, created_at, updated_at
		 FROM company_profiles WHERE id = ?`, id)
	rec, err := scanSQLiteRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get profile %s", id)
	}
	return rec, nil
}

func (s *SQLiteStore) GetByNormalizedURL(ctx context.Context, normalizedURL string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, normalized_url, payload, created_at, updated_at
		 FROM company_profiles WHERE normalized_url = ?`, normalizedURL)
	rec, err := scanSQLiteRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get profile by url %s", normalizedURL)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, normalized_url, payload, created_at, updated_at
		 FROM company_profiles ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile")
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	return records, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id, url, normalizedURL string, p profile.CompanyProfile) (*Record, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal payload")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE company_profiles
		 SET url = ?, normalized_url = ?, payload = ?, updated_at = ?
		 WHERE id = ?`,
		url, normalizedURL, string(payload), time.Now().UTC(), id,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrDuplicateURL
		}
		return nil, eris.Wrapf(err, "sqlite: update profile %s", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: rows affected")
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row sqlScanner) (*Record, error) {
	var rec Record
	var payload string
	if err := row.Scan(&rec.ID, &rec.URL, &rec.NormalizedURL, &payload, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Profile); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal payload")
	}
	return &rec, nil
}

// isSQLiteUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite does not export a typed constraint error, so this
// matches the driver's message text.
func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
