package syncer

import (
	"context"
	"sync"
	"testing"

	"github.com/gigtrack/gig/internal/models"
	"github.com/gigtrack/gig/internal/remote"
	"github.com/gigtrack/gig/internal/store"
)

// fakeService is an in-memory remote.Service with per-method error injection
// and call recording.
type fakeService struct {
	mu      sync.Mutex
	records map[string]models.TripRecord
	calls   []string

	createErr error
	updateErr error
	deleteErr error
	listErr   error

	// listHook runs inside ListRecords, before the response is built.
	listHook func()
}

func newFakeService() *fakeService {
	return &fakeService{records: make(map[string]models.TripRecord)}
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeService) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeService) CreateRecord(ctx context.Context, rec *models.TripRecord) error {
	f.record("create")
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	f.records[rec.ID] = *rec
	f.mu.Unlock()
	return nil
}

func (f *fakeService) UpdateRecord(ctx context.Context, id string, rec *models.TripRecord) error {
	f.record("update")
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return remote.ErrNotFound
	}
	f.records[id] = *rec
	return nil
}

func (f *fakeService) DeleteRecord(ctx context.Context, id string) error {
	f.record("delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return remote.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeService) ListRecords(ctx context.Context) ([]models.TripRecord, error) {
	f.record("list")
	if f.listHook != nil {
		f.listHook()
	}
	f.mu.Lock()
	listErr := f.listErr
	f.mu.Unlock()
	if listErr != nil {
		return nil, listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.TripRecord, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeService) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listErr
}

func newTestCoordinator(t *testing.T, svc remote.Service) (*Coordinator, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	coord := New(st, svc)
	if err := coord.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return coord, st
}

func trip(id, date string, earnings float64) *models.TripRecord {
	return &models.TripRecord{
		ID:            id,
		Date:          date,
		KmDriven:      100,
		TotalEarnings: earnings,
		HoursWorked:   8,
	}
}

func TestSaveRecordIsDurableWithoutNetwork(t *testing.T) {
	svc := newFakeService()
	svc.createErr = remote.ErrUnreachable
	coord, st := newTestCoordinator(t, svc)

	rec := trip("", "2026-08-14", 150)
	if err := coord.SaveRecord(rec); err != nil {
		t.Fatalf("save while offline must succeed locally: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("save should assign an ID")
	}

	records, err := coord.GetAllRecords()
	if err != nil || len(records) != 1 {
		t.Fatalf("records = %+v, %v", records, err)
	}
	n, _ := st.PendingCount()
	if n != 1 {
		t.Errorf("want 1 queued op, got %d", n)
	}
}

func TestSaveRecordValidates(t *testing.T) {
	coord, st := newTestCoordinator(t, newFakeService())

	bad := trip("", "14/08/2026", 150)
	if err := coord.SaveRecord(bad); err == nil {
		t.Fatal("malformed date should be rejected")
	}
	if n, _ := st.PendingCount(); n != 0 {
		t.Errorf("rejected save must not queue anything, got %d ops", n)
	}
}

func TestSyncPushesQueuedOperations(t *testing.T) {
	svc := newFakeService()
	coord, st := newTestCoordinator(t, svc)

	if err := coord.SaveRecord(trip("a", "2026-08-14", 100)); err != nil {
		t.Fatal(err)
	}
	if err := coord.SaveRecord(trip("b", "2026-08-15", 120)); err != nil {
		t.Fatal(err)
	}

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Drained != 2 || result.StayedOffline {
		t.Errorf("result = %+v, want 2 drained online", result)
	}
	if n, _ := st.PendingCount(); n != 0 {
		t.Errorf("queue should be empty after sync, got %d", n)
	}
	if len(svc.records) != 2 {
		t.Errorf("remote has %d records, want 2", len(svc.records))
	}
	if !coord.IsOnline() {
		t.Error("coordinator should be online after a successful cycle")
	}
	if last, _ := st.LastSyncAt(); last == nil {
		t.Error("last sync time should be recorded")
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	svc := newFakeService()
	coord, _ := newTestCoordinator(t, svc)

	if err := coord.SaveRecord(trip("a", "2026-08-14", 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := coord.SyncNow(context.Background()); err != nil {
		t.Fatal(err)
	}
	creates := svc.callCount("create")

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Drained != 0 {
		t.Errorf("second cycle drained %d ops, want 0", result.Drained)
	}
	if svc.callCount("create") != creates {
		t.Error("second cycle must not replay confirmed operations")
	}
}

func TestUnreachableKeepsQueueAndGoesOffline(t *testing.T) {
	svc := newFakeService()
	svc.createErr = remote.ErrUnreachable
	coord, st := newTestCoordinator(t, svc)

	var events []Event
	var mu sync.Mutex
	unsub := coord.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	defer unsub()

	// Force a known-online starting state so the offline transition fires.
	if _, err := coord.SyncNow(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := coord.SaveRecord(trip("a", "2026-08-14", 100)); err != nil {
		t.Fatal(err)
	}

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatalf("offline sync must not error: %v", err)
	}
	if !result.StayedOffline {
		t.Error("result should report StayedOffline")
	}
	if n, _ := st.PendingCount(); n != 1 {
		t.Errorf("queue must survive an unreachable remote, got %d ops", n)
	}
	if coord.IsOnline() {
		t.Error("coordinator should be offline")
	}
	if svc.callCount("list") != 1 {
		t.Errorf("failed drain must skip the pull, list called %d times", svc.callCount("list"))
	}

	mu.Lock()
	defer mu.Unlock()
	sawOffline := false
	for _, ev := range events {
		if ev.Kind == EventOffline {
			sawOffline = true
		}
	}
	if !sawOffline {
		t.Error("expected an offline event")
	}
}

func TestEditBeforeSyncPushesSingleCreate(t *testing.T) {
	svc := newFakeService()
	coord, _ := newTestCoordinator(t, svc)

	rec := trip("a", "2026-08-14", 100)
	if err := coord.SaveRecord(rec); err != nil {
		t.Fatal(err)
	}
	rec.TotalEarnings = 175
	if err := coord.SaveRecord(rec); err != nil {
		t.Fatal(err)
	}

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Drained != 1 {
		t.Errorf("drained %d, want 1 collapsed op", result.Drained)
	}
	if svc.callCount("create") != 1 || svc.callCount("update") != 0 {
		t.Errorf("calls = %v, want exactly one create", svc.calls)
	}
	if got := svc.records["a"].TotalEarnings; got != 175 {
		t.Errorf("remote earnings = %v, want the final value 175", got)
	}
}

func TestCreateEditDeleteNeverReachesRemote(t *testing.T) {
	svc := newFakeService()
	coord, _ := newTestCoordinator(t, svc)

	rec := trip("a", "2026-08-14", 100)
	if err := coord.SaveRecord(rec); err != nil {
		t.Fatal(err)
	}
	rec.TotalEarnings = 140
	if err := coord.SaveRecord(rec); err != nil {
		t.Fatal(err)
	}
	if err := coord.DeleteRecord("a"); err != nil {
		t.Fatal(err)
	}

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Drained != 0 {
		t.Errorf("drained %d, want 0", result.Drained)
	}
	for _, call := range []string{"create", "update", "delete"} {
		if svc.callCount(call) != 0 {
			t.Errorf("remote %s called for a record that never needed to exist", call)
		}
	}
}

func TestRejectedOperationIsDroppedWithWarning(t *testing.T) {
	svc := newFakeService()
	svc.createErr = remote.ErrRejected
	coord, st := newTestCoordinator(t, svc)

	var dropped []Event
	var mu sync.Mutex
	unsub := coord.Subscribe(func(ev Event) {
		if ev.Kind == EventOpDropped {
			mu.Lock()
			dropped = append(dropped, ev)
			mu.Unlock()
		}
	})
	defer unsub()

	if err := coord.SaveRecord(trip("a", "2026-08-14", 100)); err != nil {
		t.Fatal(err)
	}

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatalf("a rejected op must not fail the cycle: %v", err)
	}
	if result.Dropped != 1 || result.StayedOffline {
		t.Errorf("result = %+v, want 1 dropped, online", result)
	}
	if n, _ := st.PendingCount(); n != 0 {
		t.Errorf("rejected op must leave the queue, got %d", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(dropped) != 1 || dropped[0].RecordID != "a" {
		t.Errorf("dropped events = %+v", dropped)
	}
}

func TestUnauthorizedStopsDrainKeepsQueue(t *testing.T) {
	svc := newFakeService()
	svc.createErr = remote.ErrUnauthorized
	coord, st := newTestCoordinator(t, svc)

	if err := coord.SaveRecord(trip("a", "2026-08-14", 100)); err != nil {
		t.Fatal(err)
	}

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatalf("unauthorized must not fail the cycle: %v", err)
	}
	if !result.StayedOffline || result.Dropped != 0 {
		t.Errorf("result = %+v, want queue kept and no drops", result)
	}
	if n, _ := st.PendingCount(); n != 1 {
		t.Errorf("queue must survive an auth failure, got %d", n)
	}
}

func TestDeleteOfUnknownRemoteRecordIsSatisfied(t *testing.T) {
	svc := newFakeService()
	coord, st := newTestCoordinator(t, svc)

	// Locally known, remotely unknown (e.g. deleted from another device).
	if err := st.Put(trip("a", "2026-08-14", 100)); err != nil {
		t.Fatal(err)
	}
	if err := coord.DeleteRecord("a"); err != nil {
		t.Fatal(err)
	}

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Drained != 1 || result.Dropped != 0 {
		t.Errorf("result = %+v, want the delete confirmed", result)
	}
}

func TestReconcileMergesAndRemoves(t *testing.T) {
	svc := newFakeService()
	svc.records["remote-only"] = *trip("remote-only", "2026-08-10", 90)
	coord, st := newTestCoordinator(t, svc)

	// Local record the remote no longer has, with nothing pending for it.
	if err := st.Put(trip("stale", "2026-08-01", 50)); err != nil {
		t.Fatal(err)
	}

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Pulled != 1 || result.Merged != 1 || result.Removed != 1 {
		t.Errorf("result = %+v, want 1 pulled/merged and 1 removed", result)
	}
	if rec, _ := st.Get("remote-only"); rec == nil {
		t.Error("remote record should have been merged locally")
	}
	if rec, _ := st.Get("stale"); rec != nil {
		t.Error("stale local record should have been removed")
	}
}

func TestReconcileSkipsRecordsWithPendingOps(t *testing.T) {
	svc := newFakeService()
	svc.records["a"] = *trip("a", "2026-08-14", 100)
	coord, st := newTestCoordinator(t, svc)
	if err := st.Put(trip("a", "2026-08-14", 100)); err != nil {
		t.Fatal(err)
	}

	// A local edit lands between drain and pull. The pull result must not
	// clobber it.
	svc.listHook = func() {
		edited := trip("a", "2026-08-14", 250)
		if err := st.SaveLogged(edited); err != nil {
			t.Errorf("concurrent save: %v", err)
		}
	}

	if _, err := coord.SyncNow(context.Background()); err != nil {
		t.Fatal(err)
	}
	rec, _ := st.Get("a")
	if rec == nil || rec.TotalEarnings != 250 {
		t.Errorf("unsynced local edit was clobbered: %+v", rec)
	}
}

func TestConcurrentSyncCoalesces(t *testing.T) {
	svc := newFakeService()
	entered := make(chan struct{})
	release := make(chan struct{})
	svc.listHook = func() {
		close(entered)
		<-release
	}
	coord, _ := newTestCoordinator(t, svc)

	done := make(chan error, 1)
	go func() {
		_, err := coord.SyncNow(context.Background())
		done <- err
	}()
	<-entered

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Coalesced {
		t.Error("second trigger during an in-flight cycle should coalesce")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first cycle: %v", err)
	}
}

func TestUninitializedCoordinatorRefusesAccess(t *testing.T) {
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	coord := New(st, newFakeService())

	if _, err := coord.GetAllRecords(); err == nil {
		t.Error("reads before Initialize should fail")
	}
	if err := coord.SaveRecord(trip("", "2026-08-14", 1)); err == nil {
		t.Error("writes before Initialize should fail")
	}
}

func TestRecordLifecycleRoundtrip(t *testing.T) {
	svc := newFakeService()
	coord, st := newTestCoordinator(t, svc)
	ctx := context.Background()

	rec := trip("r1", "2026-08-14", 100)
	if err := coord.SaveRecord(rec); err != nil {
		t.Fatal(err)
	}
	if _, err := coord.SyncNow(ctx); err != nil {
		t.Fatal(err)
	}
	if got := svc.records["r1"].TotalEarnings; got != 100 {
		t.Fatalf("after create sync: remote earnings = %v", got)
	}

	rec.TotalEarnings = 180
	if err := coord.SaveRecord(rec); err != nil {
		t.Fatal(err)
	}
	if _, err := coord.SyncNow(ctx); err != nil {
		t.Fatal(err)
	}
	if got := svc.records["r1"].TotalEarnings; got != 180 {
		t.Fatalf("after edit sync: remote earnings = %v", got)
	}
	if svc.callCount("update") != 1 {
		t.Errorf("edit of a synced record should go out as an update, calls = %v", svc.calls)
	}

	if err := coord.DeleteRecord("r1"); err != nil {
		t.Fatal(err)
	}
	if _, err := coord.SyncNow(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := svc.records["r1"]; ok {
		t.Error("after delete sync: record still on the remote")
	}
	if records, _ := st.GetAll(); len(records) != 0 {
		t.Errorf("after delete sync: local records = %+v", records)
	}
	if n, _ := st.PendingCount(); n != 0 {
		t.Errorf("queue should end empty, got %d", n)
	}
}

func TestPullFailureAfterDrainFailsSoft(t *testing.T) {
	svc := newFakeService()
	svc.listErr = remote.ErrUnreachable
	coord, _ := newTestCoordinator(t, svc)

	result, err := coord.SyncNow(context.Background())
	if err != nil {
		t.Fatalf("unreachable pull must not fail the cycle: %v", err)
	}
	if !result.StayedOffline {
		t.Errorf("result = %+v, want StayedOffline", result)
	}
	if coord.IsOnline() {
		t.Error("coordinator should be offline after a failed pull")
	}
}
