// Package preferences stores user settings as typed key/value pairs.
package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=store.go -destination=../mocks/preferences/mock_store.go -package=mock_preferences

// Store reads and writes raw preference values.
// Get returns ok=false when the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// DBStore persists preferences in the preferences table.
type DBStore struct {
	db *sqlx.DB
}

// NewDBStore creates a new DBStore.
func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM preferences WHERE name = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("db.GetContext(preference %s) > %w", key, err)
	}
	return value, true, nil
}

func (s *DBStore) Set(ctx context.Context, key, value string) error {
	statement := "INSERT INTO preferences (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value"
	if s.db.DriverName() == "mysql" {
		statement = "INSERT INTO preferences (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)"
	}
	if _, err := s.db.ExecContext(ctx, statement, key, value); err != nil {
		return fmt.Errorf("db.ExecContext(upsert preference %s) > %w", key, err)
	}
	return nil
}

// MemoryStore keeps preferences in memory. It is used by tests and dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func getBool(ctx context.Context, store Store, key string, def bool) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("strconv.ParseBool(%s=%q) > %w", key, raw, err)
	}
	return value, nil
}

func getInt64(ctx context.Context, store Store, key string, def int64) (int64, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def, fmt.Errorf("strconv.ParseInt(%s=%q) > %w", key, raw, err)
	}
	return value, nil
}

func getString(ctx context.Context, store Store, key string, def string) (string, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return raw, nil
}
