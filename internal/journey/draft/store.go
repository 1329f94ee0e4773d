// Package draft holds the session-scoped answer bag: the fields a user has
// touched since the last commit, keyed by (journey id, reference id). The
// store is opaque key-value storage; it knows nothing about question variants.
package draft

import (
	"context"

	"casework/internal/journey"
)

// Store persists in-progress answers across requests until a commit or an
// explicit abandonment clears them.
type Store interface {
	// Save merges a partial set of field→value pairs into the existing
	// draft. It never replaces the draft wholesale; list values merge
	// record-by-record on their identity, so records added by separate
	// saves accumulate.
	Save(ctx context.Context, journeyID, referenceID string, answers journey.Edited) error

	// Get returns the full draft, or an empty set when none exists.
	Get(ctx context.Context, journeyID, referenceID string) (journey.AnswerSet, error)

	// Clear removes the entire draft for one journey instance.
	Clear(ctx context.Context, journeyID, referenceID string) error

	// Replace overwrites the draft with the given answers. Used once, after
	// a case is newly created, to seed its draft with the record's initial
	// answers — which for a fresh case is the empty set, discarding any
	// stale draft held under a reused reference.
	Replace(ctx context.Context, journeyID, referenceID string, answers journey.AnswerSet) error
}
