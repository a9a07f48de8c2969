// Package remote defines the Remote Record Service the sync coordinator
// replays pending operations against, plus the HTTP adapter for gig-server.
package remote

import (
	"context"
	"errors"

	"github.com/gigtrack/gig/internal/models"
)

// Sentinel errors for the failure classes the coordinator cares about.
var (
	// ErrUnreachable covers network failures, timeouts and server-side
	// outages. Transient: the drain stops and retries on the next trigger.
	ErrUnreachable = errors.New("remote unreachable")

	// ErrRejected covers validation and conflict failures. The operation can
	// never succeed as formed and is dropped from the queue with a warning.
	ErrRejected = errors.New("remote rejected operation")

	// ErrNotFound on update/delete is treated as already satisfied.
	ErrNotFound = errors.New("record not found")

	ErrUnauthorized = errors.New("unauthorized")
)

// Service is the remote store owning the canonical record once synchronized.
// Every call is bounded by its context; implementations must classify
// failures into the sentinel taxonomy above.
type Service interface {
	CreateRecord(ctx context.Context, rec *models.TripRecord) error
	UpdateRecord(ctx context.Context, id string, rec *models.TripRecord) error
	DeleteRecord(ctx context.Context, id string) error
	ListRecords(ctx context.Context) ([]models.TripRecord, error)

	// Ping reports reachability; used by the connectivity watcher.
	Ping(ctx context.Context) error
}

// Unreachable reports whether err is a transient network-class failure.
func Unreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// Rejected reports whether err is a permanent validation/conflict failure.
func Rejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
