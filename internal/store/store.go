// Package store persists company profiles keyed by normalized URL.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/profile"
)

// ErrDuplicateURL is returned when a write collides with another record's
// normalized URL. The unique constraint in the database is the sole arbiter
// for concurrent writers.
var ErrDuplicateURL = eris.New("store: normalized URL already exists")

// Record is a stored company profile. ID is assigned at creation and never
// changes; NormalizedURL is unique across all records.
type Record struct {
	ID            string                 `json:"id"`
	URL           string                 `json:"url"`
	NormalizedURL string                 `json:"normalized_url"`
	Profile       profile.CompanyProfile `json:"profile"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// Store defines the persistence interface for company profiles.
//
// Lookup methods return (nil, nil) when no record matches. Insert and
// Update return ErrDuplicateURL on a normalized-URL collision; Update
// returns (nil, nil) when the id does not exist.
type Store interface {
	Insert(ctx context.Context, url, normalizedURL string, p profile.CompanyProfile) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	GetByNormalizedURL(ctx context.Context, normalizedURL string) (*Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Update(ctx context.Context, id, url, normalizedURL string, p profile.CompanyProfile) (*Record, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and configures the store backend.
type Config struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// Open creates the store selected by cfg.Driver ("postgres" or "sqlite").
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, &cfg.Pool)
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
