// Package persistence stores simulation history in SQLite and streams
// settled trade flows to compressed journal files on disk.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/tradewinds/internal/events"
	"github.com/talgya/tradewinds/internal/world"
)

// DB wraps a SQLite connection for simulation history storage.
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
	CREATE TABLE IF NOT EXISTS settlement_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		day INTEGER NOT NULL,
		settlement_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		population INTEGER NOT NULL,
		supplies REAL NOT NULL,
		wealth REAL NOT NULL,
		prosperity REAL NOT NULL,
		purchase_power REAL NOT NULL,
		production REAL NOT NULL,
		consumption REAL NOT NULL,
		price_index REAL NOT NULL,
		types_json TEXT NOT NULL,
		stock_json TEXT NOT NULL,
		tags_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		name TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_day ON settlement_snapshots(day);
	CREATE INDEX IF NOT EXISTS idx_snapshots_settlement ON settlement_snapshots(settlement_id);
	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshots appends one history row per settlement tile. Rows are
// append-only so a settlement's trajectory can be queried per day.
func (db *DB) SaveSnapshots(tick uint64, day int, tiles []*world.Tile) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO settlement_snapshots
		(tick, day, settlement_id, name, x, y, population, supplies, wealth,
		 prosperity, purchase_power, production, consumption, price_index,
		 types_json, stock_json, tags_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tiles {
		econ := t.Economy()
		if econ == nil {
			continue
		}

		stock := make(map[string]float64, len(econ.Stock))
		for c, qty := range econ.Stock {
			stock[c.String()] = qty
		}
		typesJSON, _ := json.Marshal(econ.Types)
		stockJSON, _ := json.Marshal(stock)
		tagsJSON, _ := json.Marshal(t.Tags())

		_, err := stmt.Exec(
			tick, day, econ.ID, econ.Name, t.X, t.Y,
			econ.Population, econ.Supplies, econ.Wealth, econ.Prosperity,
			econ.PurchasePower, econ.Production, econ.Consumption, econ.PriceIndex,
			string(typesJSON), string(stockJSON), string(tagsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert snapshot %d: %w", econ.ID, err)
		}
	}

	return tx.Commit()
}

// JournalEvents appends fired world events to the database.
func (db *DB) JournalEvents(tick uint64, fired []events.Fired) error {
	if len(fired) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, f := range fired {
		_, err := tx.Exec(
			"INSERT INTO events (tick, name, x, y) VALUES (?, ?, ?, ?)",
			tick, f.Name, f.X, f.Y,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in simulation metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO sim_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM sim_meta WHERE key = ?", key)
	return value, err
}

// EnsureWorldID returns the stable world identifier, minting one on the
// first run so restarts keep reporting the same world.
func (db *DB) EnsureWorldID() (string, error) {
	id, err := db.GetMeta("world_id")
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	id = uuid.NewString()
	if err := db.SaveMeta("world_id", id); err != nil {
		return "", err
	}
	return id, nil
}

// EventRow is one journaled world event.
type EventRow struct {
	Tick uint64 `json:"tick"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// RecentEvents returns the most recent N journaled events.
func (db *DB) RecentEvents(limit int) ([]EventRow, error) {
	var rows []EventRow
	err := db.conn.Select(&rows,
		"SELECT tick, name, x, y FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return rows, err
}
