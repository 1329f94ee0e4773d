package draft

import (
	"context"
	"sync"

	"casework/internal/journey"
	"casework/internal/journey/reconcile"
)

// InMemoryStore is the development and test implementation. Production
// deployments use RedisStore so drafts survive process restarts.
type InMemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]journey.AnswerSet
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{drafts: make(map[string]journey.AnswerSet)}
}

func memoryKey(journeyID, referenceID string) string {
	return journeyID + "\x00" + referenceID
}

func (s *InMemoryStore) Save(_ context.Context, journeyID, referenceID string, answers journey.Edited) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey(journeyID, referenceID)
	existing, ok := s.drafts[key]
	if !ok {
		existing = journey.AnswerSet{}
	}
	// Identity merge, not a per-key overwrite: a list save carries only the
	// touched record, and records added by earlier saves must survive it.
	s.drafts[key] = reconcile.Merge(existing, journey.AnswerSet(answers))
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, journeyID, referenceID string) (journey.AnswerSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, ok := s.drafts[memoryKey(journeyID, referenceID)]
	if !ok {
		return journey.AnswerSet{}, nil
	}
	return existing.Clone(), nil
}

func (s *InMemoryStore) Clear(_ context.Context, journeyID, referenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, memoryKey(journeyID, referenceID))
	return nil
}

func (s *InMemoryStore) Replace(_ context.Context, journeyID, referenceID string, answers journey.AnswerSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[memoryKey(journeyID, referenceID)] = answers.Clone()
	return nil
}
