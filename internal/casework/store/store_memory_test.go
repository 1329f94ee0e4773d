package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casework/internal/casework/models"
	"casework/pkg/platform/sentinel"
)

func TestInMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	record := &models.CaseRecord{ID: "case-1", Reference: "CROWN/2026/0000001", Status: models.CaseStatusDraft}
	require.NoError(t, s.Create(ctx, record))

	t.Run("find returns a copy", func(t *testing.T) {
		found, err := s.FindByReference(ctx, record.Reference)
		require.NoError(t, err)
		found.Description = "mutated by caller"

		again, err := s.FindByReference(ctx, record.Reference)
		require.NoError(t, err)
		assert.Empty(t, again.Description)
	})

	t.Run("duplicate reference conflicts", func(t *testing.T) {
		err := s.Create(ctx, &models.CaseRecord{ID: "case-2", Reference: record.Reference})
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := s.FindByReference(ctx, "CROWN/2026/0009999")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestInMemoryStoreRecentReferences(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	for _, ref := range []string{"CROWN/2026/0000001", "CROWN/2026/0000002", "CROWN/2026/0000003"} {
		require.NoError(t, s.Create(ctx, &models.CaseRecord{ID: ref, Reference: ref}))
	}

	refs, err := s.RecentReferences(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"CROWN/2026/0000003", "CROWN/2026/0000002"}, refs, "newest first")
}

func TestInMemoryStoreMarkReceived(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	s.Put(&models.CaseRecord{ID: "case-1", Reference: "CROWN/2026/0000001", Status: models.CaseStatusDraft})
	at := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.MarkReceived(ctx, "CROWN/2026/0000001", at))

	record, err := s.FindByReference(ctx, "CROWN/2026/0000001")
	require.NoError(t, err)
	assert.True(t, record.Received())
	assert.Equal(t, at, *record.ReceivedAt)

	t.Run("only draft cases transition", func(t *testing.T) {
		err := s.MarkReceived(ctx, "CROWN/2026/0000001", at)
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	})

	t.Run("unknown reference", func(t *testing.T) {
		err := s.MarkReceived(ctx, "CROWN/2026/0009999", at)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
