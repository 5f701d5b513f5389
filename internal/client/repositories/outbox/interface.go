// Package outbox stores pending-push markers for records whose local changes
// the backend has not acknowledged. At most one marker exists per record.
package outbox

import (
	"context"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
)

type Repository interface {
	// Enqueue adds a marker for the record, or makes an existing one due at now.
	Enqueue(ctx context.Context, entity models.EntityKind, id string, now time.Time) error

	// EnqueueUnsynced adds markers for every record of entity that has
	// is_synced = 0 and no marker yet. It returns how many were added.
	EnqueueUnsynced(ctx context.Context, entity models.EntityKind, now time.Time) (int64, error)

	// Due returns the markers of entity whose next attempt is not after now,
	// oldest first.
	Due(ctx context.Context, entity models.EntityKind, now time.Time) ([]models.OutboxItem, error)

	Remove(ctx context.Context, entity models.EntityKind, id string) error

	// MarkFailed counts a failed push and postpones the marker until next.
	MarkFailed(ctx context.Context, entity models.EntityKind, id string, next time.Time, reason string) error

	GetAll(ctx context.Context) ([]models.OutboxItem, error)
}
