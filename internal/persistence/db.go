// Package persistence provides SQLite-backed city save storage. The
// engine only defines the snapshot contract; this package is the storage
// collaborator that writes snapshots to disk and lists them without full
// deserialization.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/tinycity/internal/sim"
)

// ErrNotFound reports a save name with no stored snapshot.
var ErrNotFound = errors.New("save not found")

// DB wraps a SQLite connection for save storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		name TEXT PRIMARY KEY,
		saved_at TEXT NOT NULL,
		year INTEGER NOT NULL,
		population INTEGER NOT NULL,
		money INTEGER NOT NULL,
		happiness INTEGER NOT NULL,
		snapshot_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveInfo is the listing metadata per saved city, read straight from
// columns; no snapshot is deserialized to list saves.
type SaveInfo struct {
	Name       string `db:"name" json:"name"`
	SavedAt    string `db:"saved_at" json:"saved_at"`
	Year       int    `db:"year" json:"year"`
	Population int    `db:"population" json:"population"`
	Money      int    `db:"money" json:"money"`
}

// SaveCity stores the city snapshot under the given name, replacing any
// previous save with that name.
func (db *DB) SaveCity(name string, city *sim.City) error {
	snap := city.Snapshot()
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = db.conn.Exec(`INSERT OR REPLACE INTO saves
		(name, saved_at, year, population, money, happiness, snapshot_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339),
		snap.Year, snap.Population, snap.Money, snap.Happiness, string(raw),
	)
	if err != nil {
		return fmt.Errorf("insert save %q: %w", name, err)
	}

	slog.Info("city saved", "name", name, "year", snap.Year, "population", snap.Population)
	return nil
}

// LoadCity restores the city saved under the given name.
func (db *DB) LoadCity(name string, bal sim.Balance) (*sim.City, error) {
	var raw string
	err := db.conn.Get(&raw, "SELECT snapshot_json FROM saves WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("save %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load save %q: %w", name, err)
	}

	var snap sim.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("save %q: decode snapshot: %w", name, sim.ErrInvalidState)
	}
	city, err := sim.Restore(snap, bal)
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", name, err)
	}

	slog.Info("city loaded", "name", name, "year", city.Year)
	return city, nil
}

// ListSaves returns listing metadata for every save, newest first.
func (db *DB) ListSaves() ([]SaveInfo, error) {
	var saves []SaveInfo
	err := db.conn.Select(&saves,
		"SELECT name, saved_at, year, population, money FROM saves ORDER BY saved_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return saves, nil
}

// DeleteSave removes a stored save.
func (db *DB) DeleteSave(name string) error {
	res, err := db.conn.Exec("DELETE FROM saves WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete save %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save %q: %w", name, ErrNotFound)
	}
	return nil
}
