// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package cache stores compiled shader programs in an SQLite database,
// keyed by a hash of the source and the compiler configuration.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // SQLite
)

const schema = `
CREATE TABLE IF NOT EXISTS programs (
    id      TEXT PRIMARY KEY,
    hash    TEXT NOT NULL UNIQUE,
    name    TEXT NOT NULL,
    program TEXT NOT NULL,
    created INTEGER NOT NULL
);`

// Entry is a cached program.
type Entry struct {
	ID      uuid.UUID
	Key     string
	Name    string
	Program string
	Created time.Time
}

// Cache is an open program cache. It is safe for concurrent use.
type Cache struct {
	db *sql.DB
}

// Key derives the cache key of a compilation. Every input that changes the
// compiled program, such as the compiler version and the built-in tables,
// must be passed in parts.
func Key(source []byte, parts ...string) string {
	h := sha256.New()
	h.Write(source)
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Open opens the cache at path, creating the database and its directory
// when needed.
func Open(ctx context.Context, path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// Get returns the entry stored under key. The boolean is false when there
// is none.
func (c *Cache) Get(ctx context.Context, key string) (*Entry, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, name, program, created FROM programs WHERE hash = ?`, key)

	var id string
	var created int64
	e := &Entry{Key: key}
	if err := row.Scan(&id, &e.Name, &e.Program, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, false, fmt.Errorf("cache entry %s: %w", id, err)
	}
	e.ID = parsed
	e.Created = time.Unix(0, created)
	return e, true, nil
}

// Put stores a program under key, replacing any previous entry, and returns
// the new entry.
func (c *Cache) Put(ctx context.Context, key, name, program string) (*Entry, error) {
	e := &Entry{ID: uuid.New(), Key: key, Name: name, Program: program, Created: time.Now()}
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO programs (id, hash, name, program, created) VALUES (?, ?, ?, ?, ?)`,
		e.ID.String(), e.Key, e.Name, e.Program, e.Created.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("writing cache entry: %w", err)
	}
	return e, nil
}

// Prune removes entries created before the given time and returns how many were
// removed.
func (c *Cache) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM programs WHERE created < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM programs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
