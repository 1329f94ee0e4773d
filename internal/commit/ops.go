// Package commit translates the edited subset of a completed journey into
// backing-store update operations and applies them inside one transaction.
// The transaction here is the engine's only hard atomicity boundary.
package commit

import "context"

// Kind enumerates the operations the persistence collaborator executes.
type Kind string

const (
	// KindUpdate sets columns on an existing row.
	KindUpdate Kind = "update"
	// KindCreate inserts a new row and connects it to the case.
	KindCreate Kind = "create"
	// KindUpsert updates the row matched by Match, inserting it if missing.
	KindUpsert Kind = "upsert"
	// KindConnect points a case relation at an existing row.
	KindConnect Kind = "connect"
	// KindDisconnect detaches a relation without deleting the row.
	KindDisconnect Kind = "disconnect"
	// KindDelete removes a dependent row outright, for sub-records orphaned
	// by a structural change.
	KindDelete Kind = "delete"
)

// Op is one backing-store instruction, keyed by relation name. Match
// identifies the target row for upsert/connect/disconnect/delete; Values are
// the columns to write.
type Op struct {
	Relation string
	Kind     Kind
	Match    map[string]any
	Values   map[string]any
}

// Executor applies a plan atomically: either every operation applies or none
// do, leaving the draft untouched so the user can retry.
type Executor interface {
	Execute(ctx context.Context, reference string, ops []Op) error
}
