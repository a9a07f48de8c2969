// Package syncer reconciles the local store with the remote record service.
// Writes land locally first (with a write-ahead pending operation); the
// coordinator drains the pending log against the remote service, then pulls
// the authoritative list and merges it back, last-writer-wins.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gigtrack/gig/internal/models"
	"github.com/gigtrack/gig/internal/remote"
	"github.com/gigtrack/gig/internal/store"
)

// CycleState tracks where an in-flight sync cycle is.
type CycleState string

const (
	StateIdle       CycleState = "idle"
	StateDraining   CycleState = "draining"
	StatePulling    CycleState = "pulling"
	StateReconciled CycleState = "reconciled"
)

// EventKind classifies status events delivered to subscribers.
type EventKind string

const (
	EventOnline    EventKind = "online"
	EventOffline   EventKind = "offline"
	EventOpDropped EventKind = "operation_dropped"
	EventCycleDone EventKind = "cycle_done"
)

// Event is a status notification. Listeners are called after the underlying
// state change has been durably applied, never before.
type Event struct {
	Kind     EventKind
	RecordID string // set for EventOpDropped
	Message  string
	Result   *CycleResult // set for EventCycleDone
}

// Listener receives status events.
type Listener func(Event)

// CycleResult summarises one drain-pull-reconcile pass.
type CycleResult struct {
	Drained       int // operations confirmed by the remote service
	Dropped       int // operations permanently rejected and removed
	Pulled        int // records in the authoritative list
	Merged        int // records replaced/inserted locally
	Removed       int // local records deleted because they vanished remotely
	StayedOffline bool
	Coalesced     bool // another cycle was already in flight
}

// Coordinator drives reconciliation and exposes the read/write API the UI
// layer calls for every record access.
type Coordinator struct {
	store  *store.Store
	remote remote.Service

	callTimeout time.Duration

	mu          sync.Mutex
	initialized bool
	online      bool
	state       CycleState
	listeners   []Listener
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCallTimeout bounds each individual remote call. Calls exceeding it are
// treated as network failures.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.callTimeout = d }
}

// New creates a coordinator over the given local store and remote service.
func New(st *store.Store, svc remote.Service, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       st,
		remote:      svc,
		callTimeout: 15 * time.Second,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize readies the coordinator. It must complete before GetAllRecords
// is meaningful. A storage failure leaves the coordinator uninitialized and
// is surfaced for user notification; it never panics.
func (c *Coordinator) Initialize(ctx context.Context) error {
	if _, err := c.store.PendingCount(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}
	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
	return nil
}

// IsInitialized reports whether Initialize has completed.
func (c *Coordinator) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// IsOnline reports last-known connectivity.
func (c *Coordinator) IsOnline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// State returns the current cycle state.
func (c *Coordinator) State() CycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a status listener and returns an unregister func.
func (c *Coordinator) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
	idx := len(c.listeners) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.listeners) {
			c.listeners[idx] = nil
		}
	}
}

func (c *Coordinator) notify(ev Event) {
	c.mu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		if fn != nil {
			fn(ev)
		}
	}
}

// setOnline updates connectivity and notifies on transitions.
func (c *Coordinator) setOnline(online bool) {
	c.mu.Lock()
	changed := c.online != online
	c.online = online
	c.mu.Unlock()
	if !changed {
		return
	}
	if online {
		c.notify(Event{Kind: EventOnline})
	} else {
		c.notify(Event{Kind: EventOffline})
	}
}

// GetAllRecords returns the full local record set. Order is not guaranteed.
func (c *Coordinator) GetAllRecords() ([]models.TripRecord, error) {
	if !c.IsInitialized() {
		return nil, errors.New("coordinator not initialized")
	}
	return c.store.GetAll()
}

// SaveRecord upserts a record locally and queues the mutation for the remote
// service. It resolves as soon as the local write and log append are durable;
// it never blocks on network reachability. A non-nil error means the record
// failed to persist even locally.
func (c *Coordinator) SaveRecord(rec *models.TripRecord) error {
	if !c.IsInitialized() {
		return errors.New("coordinator not initialized")
	}
	if rec.ID == "" {
		rec.ID = models.NewRecordID()
	}
	if err := models.ValidateRecord(rec); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	return c.store.SaveLogged(rec)
}

// DeleteRecord removes a record locally and queues the delete. Idempotent:
// deleting an absent ID succeeds.
func (c *Coordinator) DeleteRecord(id string) error {
	if !c.IsInitialized() {
		return errors.New("coordinator not initialized")
	}
	return c.store.DeleteLogged(id)
}

// PendingOperations returns the queued, unconfirmed mutations in creation
// order, for sync-status display.
func (c *Coordinator) PendingOperations() ([]models.PendingOperation, error) {
	return c.store.Drain()
}

// SyncNow runs one drain-pull-reconcile cycle. Only one cycle runs at a time;
// a trigger while a cycle is in flight coalesces into a no-op (the in-flight
// cycle picks up writes queued meanwhile on its next trigger).
func (c *Coordinator) SyncNow(ctx context.Context) (CycleResult, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return CycleResult{Coalesced: true}, nil
	}
	c.state = StateDraining
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
	}()

	var result CycleResult

	if err := c.drain(ctx, &result); err != nil {
		return result, err
	}
	if result.StayedOffline {
		c.notify(Event{Kind: EventCycleDone, Result: &result})
		return result, nil
	}

	c.mu.Lock()
	c.state = StatePulling
	c.mu.Unlock()

	remoteRecords, err := c.pull(ctx)
	if err != nil {
		if remote.Unreachable(err) {
			// Fails soft: the cycle ends with local state unchanged.
			result.StayedOffline = true
			c.setOnline(false)
			c.notify(Event{Kind: EventCycleDone, Result: &result})
			return result, nil
		}
		return result, err
	}
	result.Pulled = len(remoteRecords)

	c.mu.Lock()
	c.state = StateReconciled
	c.mu.Unlock()

	if err := c.reconcile(remoteRecords, &result); err != nil {
		return result, err
	}

	c.setOnline(true)
	if err := c.store.SetLastSyncAt(time.Now()); err != nil {
		slog.Debug("sync: record last sync time", "err", err)
	}
	c.notify(Event{Kind: EventCycleDone, Result: &result})
	return result, nil
}

// drain replays the pending operation log in creation order. A network
// failure stops the drain immediately, preserving queue order for the next
// trigger. A validation/conflict failure drops the operation with a warning
// so it cannot retry forever.
func (c *Coordinator) drain(ctx context.Context, result *CycleResult) error {
	ops, err := c.store.Drain()
	if err != nil {
		return fmt.Errorf("drain pending log: %w", err)
	}

	for _, op := range ops {
		err := c.apply(ctx, &op)
		switch {
		case err == nil:
			if ackErr := c.store.Acknowledge(op.OperationID); ackErr != nil {
				return fmt.Errorf("acknowledge %s: %w", op.OperationID, ackErr)
			}
			result.Drained++

		case remote.Unreachable(err):
			// Offline is expected, not exceptional. Keep the queue intact.
			slog.Debug("sync: drain stopped, remote unreachable", "op", op.OperationID, "err", err)
			result.StayedOffline = true
			c.setOnline(false)
			return nil

		case errors.Is(err, remote.ErrUnauthorized):
			// Retrying without new credentials cannot help, but the
			// operations themselves are fine. Keep them queued.
			slog.Warn("sync: drain stopped, unauthorized")
			result.StayedOffline = true
			return nil

		default:
			// Permanently rejected: remove it so the queue cannot wedge,
			// and surface a one-time non-fatal warning.
			if ackErr := c.store.Acknowledge(op.OperationID); ackErr != nil {
				return fmt.Errorf("acknowledge rejected %s: %w", op.OperationID, ackErr)
			}
			result.Dropped++
			slog.Warn("sync: operation rejected by remote", "op", op.OperationID, "record", op.RecordID, "err", err)
			c.notify(Event{
				Kind:     EventOpDropped,
				RecordID: op.RecordID,
				Message:  fmt.Sprintf("%s of record %s was rejected: %v", op.Kind, op.RecordID, err),
			})
		}
	}
	return nil
}

// apply invokes the remote call matching one pending operation.
// NotFound on update/delete is already-satisfied, not an error.
func (c *Coordinator) apply(ctx context.Context, op *models.PendingOperation) error {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	switch op.Kind {
	case models.OpCreate:
		rec, err := op.Record()
		if err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return c.remote.CreateRecord(callCtx, rec)

	case models.OpUpdate:
		rec, err := op.Record()
		if err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		err = c.remote.UpdateRecord(callCtx, op.RecordID, rec)
		if errors.Is(err, remote.ErrNotFound) {
			return nil
		}
		return err

	case models.OpDelete:
		err := c.remote.DeleteRecord(callCtx, op.RecordID)
		if errors.Is(err, remote.ErrNotFound) {
			return nil
		}
		return err

	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func (c *Coordinator) pull(ctx context.Context) ([]models.TripRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.remote.ListRecords(callCtx)
}

// reconcile merges the authoritative remote list into the local store,
// last-writer-wins by ID. Records with a still-pending operation keep their
// local value so an unsynced edit never visibly reverts.
func (c *Coordinator) reconcile(remoteRecords []models.TripRecord, result *CycleResult) error {
	pending, err := c.store.PendingRecordIDs()
	if err != nil {
		return fmt.Errorf("pending record ids: %w", err)
	}

	remoteByID := make(map[string]bool, len(remoteRecords))
	for i := range remoteRecords {
		rec := remoteRecords[i]
		remoteByID[rec.ID] = true
		if pending[rec.ID] {
			continue
		}
		if err := c.store.Put(&rec); err != nil {
			return fmt.Errorf("merge record %s: %w", rec.ID, err)
		}
		result.Merged++
	}

	local, err := c.store.GetAll()
	if err != nil {
		return fmt.Errorf("list local records: %w", err)
	}
	for _, rec := range local {
		if remoteByID[rec.ID] || pending[rec.ID] {
			continue
		}
		// Absent remotely with nothing pending: deleted server-side.
		if err := c.store.Remove(rec.ID); err != nil {
			return fmt.Errorf("remove record %s: %w", rec.ID, err)
		}
		result.Removed++
	}
	return nil
}
