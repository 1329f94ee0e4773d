// Package store persists case records. Stores return sentinel errors for
// infrastructure facts; the service layer translates them into domain errors.
package store

import (
	"context"
	"time"

	"casework/internal/casework/models"
)

// Store is the case snapshot store.
type Store interface {
	// FindByReference loads the full case graph. Returns
	// sentinel.ErrNotFound for an unknown reference.
	FindByReference(ctx context.Context, reference string) (*models.CaseRecord, error)

	// Create inserts a new draft case row with its reference.
	Create(ctx context.Context, record *models.CaseRecord) error

	// RecentReferences lists the most recently issued references, newest
	// first, for the allocator.
	RecentReferences(ctx context.Context, limit int) ([]string, error)

	// MarkReceived transitions the case to received. Returns
	// sentinel.ErrInvalidState when the case has already left draft.
	MarkReceived(ctx context.Context, reference string, at time.Time) error
}

// GroupStore resolves the access groups a session may act under. It is
// fetched concurrently with the snapshot on every journey read.
type GroupStore interface {
	GroupsForSession(ctx context.Context, sessionID string) ([]string, error)
}
