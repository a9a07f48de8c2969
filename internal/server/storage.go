package server

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gigtrack/gig/internal/models"
	_ "modernc.org/sqlite"
)

// Storage-level sentinels the handlers map onto HTTP status codes.
var (
	errDuplicate = errors.New("record already exists")
	errMissing   = errors.New("record not found")
)

const storageSchema = `
CREATE TABLE IF NOT EXISTS records (
	id               TEXT PRIMARY KEY,
	date             TEXT NOT NULL,
	km_driven        REAL NOT NULL,
	total_earnings   REAL NOT NULL,
	additional_costs REAL NOT NULL,
	hours_worked     REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);
`

// Storage is the server-side record store, backed by SQLite.
type Storage struct {
	conn *sql.DB
}

// OpenStorage opens (or creates) the server database in dir.
func OpenStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dbPath := filepath.Join(dir, "gig-server.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=500",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if _, err := conn.Exec(storageSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Storage{conn: conn}, nil
}

// Close closes the underlying database.
func (s *Storage) Close() error {
	return s.conn.Close()
}

// List returns all records ordered by date, then ID.
func (s *Storage) List() ([]models.TripRecord, error) {
	rows, err := s.conn.Query(`
		SELECT id, date, km_driven, total_earnings, additional_costs, hours_worked
		FROM records ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.TripRecord{}
	for rows.Next() {
		var rec models.TripRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.KmDriven,
			&rec.TotalEarnings, &rec.AdditionalCosts, &rec.HoursWorked); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Create inserts a new record; errDuplicate if the ID is taken.
func (s *Storage) Create(rec *models.TripRecord) error {
	_, err := s.conn.Exec(`
		INSERT INTO records (id, date, km_driven, total_earnings, additional_costs, hours_worked)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date, rec.KmDriven, rec.TotalEarnings, rec.AdditionalCosts, rec.HoursWorked)
	if err != nil {
		var exists bool
		if s.conn.QueryRow(`SELECT COUNT(*) > 0 FROM records WHERE id = ?`, rec.ID).Scan(&exists) == nil && exists {
			return errDuplicate
		}
		return err
	}
	return nil
}

// Update replaces an existing record; errMissing if the ID is unknown.
func (s *Storage) Update(id string, rec *models.TripRecord) error {
	res, err := s.conn.Exec(`
		UPDATE records SET date = ?, km_driven = ?, total_earnings = ?, additional_costs = ?, hours_worked = ?
		WHERE id = ?`,
		rec.Date, rec.KmDriven, rec.TotalEarnings, rec.AdditionalCosts, rec.HoursWorked, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errMissing
	}
	return nil
}

// Delete removes a record; errMissing if the ID is unknown.
func (s *Storage) Delete(id string) error {
	res, err := s.conn.Exec(`DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errMissing
	}
	return nil
}
