package store

import (
	"testing"

	"github.com/gigtrack/gig/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string) *models.TripRecord {
	return &models.TripRecord{
		ID:              id,
		Date:            "2026-08-14",
		KmDriven:        120.5,
		TotalEarnings:   185.40,
		AdditionalCosts: 12.00,
		HoursWorked:     8.0,
	}
}

func TestOpenCreatesAndReopens(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put(testRecord("r1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	rec, err := s2.Get("r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil || rec.TotalEarnings != 185.40 {
		t.Errorf("record did not survive reopen: %+v", rec)
	}
}

func TestPutGetRemove(t *testing.T) {
	s := newTestStore(t)

	if rec, err := s.Get("missing"); err != nil || rec != nil {
		t.Fatalf("get missing = %+v, %v; want nil, nil", rec, err)
	}

	if err := s.Put(testRecord("r1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	rec, err := s.Get("r1")
	if err != nil || rec == nil {
		t.Fatalf("get: %+v, %v", rec, err)
	}
	if rec.KmDriven != 120.5 || rec.Date != "2026-08-14" {
		t.Errorf("unexpected record: %+v", rec)
	}

	// Put is an upsert
	updated := testRecord("r1")
	updated.TotalEarnings = 200
	if err := s.Put(updated); err != nil {
		t.Fatalf("put update: %v", err)
	}
	all, err := s.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 || all[0].TotalEarnings != 200 {
		t.Errorf("upsert failed: %+v", all)
	}

	if err := s.Remove("r1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing an absent ID succeeds
	if err := s.Remove("r1"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestSaveLoggedDerivesOperationKind(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveLogged(testRecord("r1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	ops, err := s.Drain()
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != models.OpCreate {
		t.Fatalf("first save should queue a create, got %+v", ops)
	}

	// A record the remote already knows gets an update op.
	if err := s.Acknowledge(ops[0].OperationID); err != nil {
		t.Fatalf("ack: %v", err)
	}
	edited := testRecord("r1")
	edited.TotalEarnings = 300
	if err := s.SaveLogged(edited); err != nil {
		t.Fatalf("save edit: %v", err)
	}
	ops, _ = s.Drain()
	if len(ops) != 1 || ops[0].Kind != models.OpUpdate {
		t.Fatalf("edit of existing record should queue an update, got %+v", ops)
	}
	rec, err := ops[0].Record()
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if rec.TotalEarnings != 300 {
		t.Errorf("payload earnings = %v, want 300", rec.TotalEarnings)
	}
}

func TestDeleteLoggedRemovesRecord(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put(testRecord("r1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.DeleteLogged("r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec, _ := s.Get("r1"); rec != nil {
		t.Errorf("record still present after delete: %+v", rec)
	}
	ops, _ := s.Drain()
	if len(ops) != 1 || ops[0].Kind != models.OpDelete {
		t.Fatalf("delete should queue a delete op, got %+v", ops)
	}
	if len(ops[0].Payload) != 0 {
		t.Errorf("delete op should carry no payload, got %s", ops[0].Payload)
	}
}
