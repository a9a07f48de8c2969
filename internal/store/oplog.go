package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gigtrack/gig/internal/models"
)

// newOperationID generates a unique, monotonically sortable operation ID
// (nanosecond timestamp + random suffix).
func newOperationID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(b)), nil
}

// appendOperationTx appends a mutation to the pending operation log,
// collapsing operations for the same record first:
//
//	Create + Update -> Create with the latest payload
//	Create + Delete -> nothing (the remote never saw the record)
//	Update + Update -> latest Update only
//	any    + Delete -> Delete only
//
// The reduction runs at append time, inside the caller's transaction, so a
// drain can never observe a stale duplicate.
func appendOperationTx(tx *sql.Tx, kind models.OperationKind, recordID string, rec *models.TripRecord) error {
	var hadCreate bool
	err := tx.QueryRow(`
		SELECT COUNT(*) > 0 FROM pending_operations WHERE record_id = ? AND kind = ?
	`, recordID, models.OpCreate).Scan(&hadCreate)
	if err != nil {
		return fmt.Errorf("check pending create: %w", err)
	}

	// Discard everything the new operation supersedes.
	if _, err := tx.Exec(`DELETE FROM pending_operations WHERE record_id = ?`, recordID); err != nil {
		return fmt.Errorf("collapse pending ops: %w", err)
	}

	switch kind {
	case models.OpDelete:
		if hadCreate {
			// Create followed by delete while unconfirmed: net no-op.
			return nil
		}
	case models.OpUpdate:
		if hadCreate {
			kind = models.OpCreate
		}
	}

	opID, err := newOperationID()
	if err != nil {
		return fmt.Errorf("generate operation id: %w", err)
	}

	var payload any
	if rec != nil {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		payload = string(data)
	}

	_, err = tx.Exec(`
		INSERT INTO pending_operations (operation_id, kind, record_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, opID, kind, recordID, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append operation: %w", err)
	}
	return nil
}

// Drain returns all pending operations in creation order without removing
// them. Operations are removed only via Acknowledge after confirmed remote
// application.
func (s *Store) Drain() ([]models.PendingOperation, error) {
	rows, err := s.conn.Query(`
		SELECT operation_id, kind, record_id, payload, created_at
		FROM pending_operations ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending operations: %w", err)
	}
	defer rows.Close()

	var ops []models.PendingOperation
	for rows.Next() {
		var op models.PendingOperation
		var kind string
		var payload sql.NullString
		if err := rows.Scan(&op.OperationID, &kind, &op.RecordID, &payload, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending operation: %w", err)
		}
		op.Kind = models.OperationKind(kind)
		if payload.Valid && payload.String != "" {
			op.Payload = json.RawMessage(payload.String)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Acknowledge removes a pending operation after the remote service confirmed
// (or permanently rejected) it.
func (s *Store) Acknowledge(operationID string) error {
	if _, err := s.conn.Exec(`DELETE FROM pending_operations WHERE operation_id = ?`, operationID); err != nil {
		return fmt.Errorf("acknowledge %s: %w", operationID, err)
	}
	return nil
}

// PendingCount returns the number of queued operations.
func (s *Store) PendingCount() (int, error) {
	var n int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM pending_operations`).Scan(&n)
	return n, err
}

// PendingRecordIDs returns the set of record IDs that still have a queued
// operation. The reconcile pass excludes these from being overwritten by a
// pull.
func (s *Store) PendingRecordIDs() (map[string]bool, error) {
	rows, err := s.conn.Query(`SELECT DISTINCT record_id FROM pending_operations`)
	if err != nil {
		return nil, fmt.Errorf("query pending record ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// LastSyncAt returns the time of the last completed sync cycle, or nil.
func (s *Store) LastSyncAt() (*time.Time, error) {
	var v string
	err := s.conn.QueryRow(`SELECT value FROM sync_info WHERE key = 'last_sync_at'`).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("parse last_sync_at %q: %w", v, err)
	}
	return &t, nil
}

// SetLastSyncAt records the completion time of a sync cycle.
func (s *Store) SetLastSyncAt(t time.Time) error {
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO sync_info (key, value) VALUES ('last_sync_at', ?)
	`, t.UTC().Format(time.RFC3339))
	return err
}
