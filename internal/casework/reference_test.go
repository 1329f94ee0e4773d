package casework

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"casework/pkg/domain"
)

func TestNextReference(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

	t.Run("empty history starts the year at one", func(t *testing.T) {
		ref := NextReference(nil, now)
		assert.Equal(t, "CROWN/2026/0000001", ref.String())
	})

	t.Run("increments the highest sequence seen", func(t *testing.T) {
		recent := []string{
			"CROWN/2026/0000004",
			"CROWN/2026/0000011",
			"CROWN/2026/0000009",
		}
		assert.Equal(t, domain.Reference{Year: 2026, Sequence: 12}, NextReference(recent, now))
	})

	t.Run("skips malformed historic entries", func(t *testing.T) {
		recent := []string{
			"LEGACY-77",
			"CROWN/2026/3",
			"CROWN/2026/0000002",
			"",
		}
		assert.Equal(t, domain.Reference{Year: 2026, Sequence: 3}, NextReference(recent, now))
	})

	t.Run("new year restarts the sequence", func(t *testing.T) {
		ref := NextReference([]string{"CROWN/2024/0000005"}, now)
		assert.Equal(t, domain.Reference{Year: 2026, Sequence: 1}, ref)
	})

	t.Run("prior years do not shadow the current year", func(t *testing.T) {
		recent := []string{
			"CROWN/2025/0000040",
			"CROWN/2026/0000002",
		}
		assert.Equal(t, domain.Reference{Year: 2026, Sequence: 3}, NextReference(recent, now))
	})

	t.Run("nothing parseable falls back to the current year", func(t *testing.T) {
		ref := NextReference([]string{"not-a-reference", "CROWN/26/0000001"}, now)
		assert.Equal(t, domain.Reference{Year: 2026, Sequence: 1}, ref)
	})
}
