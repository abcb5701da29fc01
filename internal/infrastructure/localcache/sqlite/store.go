package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"

	"github.com/riskibarqy/starleague/internal/platform/localcache"
	qb "github.com/riskibarqy/starleague/internal/platform/querybuilder"
)

const (
	driverName = "sqlite"
	tableName  = "cache_entries"
)

const createTableQuery = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

const maxTracedQueryLength = 512

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

var _ localcache.Backend = (*Store)(nil)

type cacheEntryTableModel struct {
	Key       string `db:"key"`
	Value     []byte `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

// Store persists the local cache in a single SQLite table, one row per key.
type Store struct {
	db *sqlx.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := otelsqlx.Open(driverName, path,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithQueryFormatter(formatQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s: %w", tableName, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := qb.Select("key", "value", "updated_at").From(tableName).
		Where(qb.Eq("key", key)).
		PlaceholderFormat(qb.Question).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get cache entry query: %w", err)
	}

	var row cacheEntryTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cache entry key=%s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	builder, err := qb.UpsertModel(tableName, cacheEntryTableModel{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC().UnixMilli(),
	}, "key")
	if err != nil {
		return fmt.Errorf("build put cache entry query: %w", err)
	}
	query, args, err := builder.PlaceholderFormat(qb.Question).ToSQL()
	if err != nil {
		return fmt.Errorf("build put cache entry query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put cache entry key=%s: %w", key, err)
	}
	return nil
}

// Delete removes one entry; a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	query, args, err := qb.Delete(tableName).
		Where(qb.Eq("key", key)).
		PlaceholderFormat(qb.Question).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete cache entry query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete cache entry key=%s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func formatQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
