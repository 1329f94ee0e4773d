// Package notify publishes case events after state changes. Journey commits
// publish best-effort; protected transitions publish through a gate that
// surfaces failure to the caller.
package notify

import (
	"context"
	"time"
)

// Event is one case lifecycle record on the event stream.
type Event struct {
	Reference  string    `json:"reference"`
	Kind       string    `json:"kind"`
	JourneyID  string    `json:"journeyId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Event kinds published by the casework service.
const (
	KindAnswersCommitted = "answers.committed"
	KindCaseCreated      = "case.created"
	KindCaseReceived     = "case.received"
)

// Publisher emits case events. Implementations must be safe for concurrent
// use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
