package store

import (
	"context"
	"sync"
	"time"

	"casework/internal/casework/models"
	"casework/pkg/platform/sentinel"
)

// InMemoryStore holds case records in memory for tests and local runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	cases map[string]*models.CaseRecord
	order []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{cases: make(map[string]*models.CaseRecord)}
}

func (s *InMemoryStore) FindByReference(_ context.Context, reference string) (*models.CaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.cases[reference]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryStore) Create(_ context.Context, record *models.CaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[record.Reference]; exists {
		return sentinel.ErrConflict
	}
	copied := *record
	s.cases[record.Reference] = &copied
	s.order = append(s.order, record.Reference)
	return nil
}

// Put replaces a record wholesale. Test seeding helper.
func (s *InMemoryStore) Put(record *models.CaseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[record.Reference]; !exists {
		s.order = append(s.order, record.Reference)
	}
	copied := *record
	s.cases[record.Reference] = &copied
}

func (s *InMemoryStore) RecentReferences(_ context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]string, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(refs) < limit; i-- {
		refs = append(refs, s.order[i])
	}
	return refs, nil
}

func (s *InMemoryStore) MarkReceived(_ context.Context, reference string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.cases[reference]
	if !ok {
		return sentinel.ErrNotFound
	}
	if record.Status != models.CaseStatusDraft {
		return sentinel.ErrInvalidState
	}
	record.Status = models.CaseStatusReceived
	record.ReceivedAt = &at
	record.UpdatedAt = at
	return nil
}

// StaticGroups is a GroupStore answering the same groups for every session.
type StaticGroups struct {
	Groups []string
}

func (g StaticGroups) GroupsForSession(context.Context, string) ([]string, error) {
	return append([]string{}, g.Groups...), nil
}
