package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "casework/pkg/domain-errors"
)

// References are CROWN/<4-digit year>/<7-digit sequence>; the allocator and
// routing both trust this parser at their boundaries.
func TestParseReference_Invariants(t *testing.T) {
	t.Run("accepts canonical form", func(t *testing.T) {
		ref, err := ParseReference("CROWN/2024/0000005")
		require.NoError(t, err)
		assert.Equal(t, 2024, ref.Year)
		assert.Equal(t, 5, ref.Sequence)
	})

	t.Run("round-trips through String", func(t *testing.T) {
		ref, err := ParseReference("CROWN/2024/0000005")
		require.NoError(t, err)
		assert.Equal(t, "CROWN/2024/0000005", ref.String())
	})

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong segment count", "CROWN/2024"},
		{"extra segment", "CROWN/2024/0000005/x"},
		{"wrong prefix", "TOWN/2024/0000005"},
		{"short year", "CROWN/24/0000005"},
		{"non-numeric year", "CROWN/20x4/0000005"},
		{"short sequence", "CROWN/2024/005"},
		{"non-numeric sequence", "CROWN/2024/00000x5"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := ParseReference(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestReferenceNext(t *testing.T) {
	ref := Reference{Year: 2024, Sequence: 5}
	assert.Equal(t, "CROWN/2024/0000006", ref.Next().String())
}
