package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

const schema = `
-- Trip records: the authoritative local copy.
CREATE TABLE IF NOT EXISTS trip_records (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    km_driven REAL NOT NULL DEFAULT 0,
    total_earnings REAL NOT NULL DEFAULT 0,
    additional_costs REAL NOT NULL DEFAULT 0,
    hours_worked REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_trip_records_date ON trip_records(date);

-- Pending operations: mutations not yet confirmed by the remote service.
-- rowid preserves append (creation) order for FIFO replay.
CREATE TABLE IF NOT EXISTS pending_operations (
    operation_id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    record_id TEXT NOT NULL,
    payload TEXT,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pending_record ON pending_operations(record_id);

CREATE TABLE IF NOT EXISTS sync_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
