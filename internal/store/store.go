// Package store persists trip records and the pending operation log in a
// local SQLite database. It is the sole source of truth while offline: every
// mutation lands here first and is accompanied by a write-ahead log entry in
// the same transaction.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gigtrack/gig/internal/models"
	_ "modernc.org/sqlite"
)

const dbFile = "gig.db"

// ErrStorageUnavailable indicates the local persistence medium cannot be
// opened or written. Fatal to offline capability, not to the process.
var ErrStorageUnavailable = errors.New("local storage unavailable")

// Store wraps the local database connection.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens an existing database, creating the schema if needed.
// Failures are wrapped in ErrStorageUnavailable so callers can degrade
// instead of crashing.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, dbFile)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrStorageUnavailable, err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStorageUnavailable, err)
	}

	// WAL for concurrent reads while writes are serialized
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: enable WAL mode: %v", ErrStorageUnavailable, err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: set busy timeout: %v", ErrStorageUnavailable, err)
	}
	// Slightly faster writes, still safe with WAL
	conn.Exec("PRAGMA synchronous=NORMAL")

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrStorageUnavailable, err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.ensureSchemaVersion(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: schema version: %v", ErrStorageUnavailable, err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureSchemaVersion() error {
	var v int
	err := s.conn.QueryRow(`SELECT value FROM sync_info WHERE key = 'schema_version'`).Scan(&v)
	if err == sql.ErrNoRows {
		_, err = s.conn.Exec(`INSERT INTO sync_info (key, value) VALUES ('schema_version', ?)`, SchemaVersion)
		return err
	}
	if err != nil {
		return err
	}
	if v > SchemaVersion {
		return fmt.Errorf("database schema v%d is newer than this build supports (v%d)", v, SchemaVersion)
	}
	return nil
}

// GetAll returns every record. Order is not guaranteed; callers sort by date
// as needed.
func (s *Store) GetAll() ([]models.TripRecord, error) {
	rows, err := s.conn.Query(`
		SELECT id, date, km_driven, total_earnings, additional_costs, hours_worked
		FROM trip_records
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []models.TripRecord
	for rows.Next() {
		var r models.TripRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.KmDriven, &r.TotalEarnings, &r.AdditionalCosts, &r.HoursWorked); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Get retrieves a single record by ID, or nil if it does not exist.
func (s *Store) Get(id string) (*models.TripRecord, error) {
	var r models.TripRecord
	err := s.conn.QueryRow(`
		SELECT id, date, km_driven, total_earnings, additional_costs, hours_worked
		FROM trip_records WHERE id = ?
	`, id).Scan(&r.ID, &r.Date, &r.KmDriven, &r.TotalEarnings, &r.AdditionalCosts, &r.HoursWorked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Put upserts a record by ID. Idempotent whether the ID existed or not.
func (s *Store) Put(rec *models.TripRecord) error {
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO trip_records (id, date, km_driven, total_earnings, additional_costs, hours_worked)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Date, rec.KmDriven, rec.TotalEarnings, rec.AdditionalCosts, rec.HoursWorked)
	if err != nil {
		return fmt.Errorf("put record %s: %w", rec.ID, err)
	}
	return nil
}

// Remove deletes a record by ID. Succeeds even if the ID does not exist.
func (s *Store) Remove(id string) error {
	if _, err := s.conn.Exec(`DELETE FROM trip_records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove record %s: %w", id, err)
	}
	return nil
}

// SaveLogged upserts a record and appends the matching pending operation in a
// single transaction, so a crash cannot leave a local write without its log
// entry. The operation kind is derived from whether the ID already existed
// locally.
func (s *Store) SaveLogged(rec *models.TripRecord) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT COUNT(*) > 0 FROM trip_records WHERE id = ?`, rec.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check record %s: %w", rec.ID, err)
	}
	kind := models.OpCreate
	if exists {
		kind = models.OpUpdate
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO trip_records (id, date, km_driven, total_earnings, additional_costs, hours_worked)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Date, rec.KmDriven, rec.TotalEarnings, rec.AdditionalCosts, rec.HoursWorked)
	if err != nil {
		return fmt.Errorf("put record %s: %w", rec.ID, err)
	}

	if err := appendOperationTx(tx, kind, rec.ID, rec); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteLogged removes a record and appends (collapsing) the delete operation
// in a single transaction.
func (s *Store) DeleteLogged(id string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM trip_records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove record %s: %w", id, err)
	}
	if err := appendOperationTx(tx, models.OpDelete, id, nil); err != nil {
		return err
	}
	return tx.Commit()
}
