package domain

import (
	"fmt"
	"strconv"
	"strings"

	dErrors "casework/pkg/domain-errors"
)

// ReferencePrefix is the fixed first segment of every case reference.
const ReferencePrefix = "CROWN"

const sequenceDigits = 7

// Reference is a human-facing case reference of the form CROWN/<year>/<seq>,
// e.g. CROWN/2024/0000005. The sequence segment is zero-padded to seven digits.
type Reference struct {
	Year     int
	Sequence int
}

// ParseReference validates and decomposes a reference string.
//
// Errors: CodeInvalidInput when the segment count, prefix, year, or sequence
// is malformed. Callers that scan recent references for the allocator skip
// malformed entries rather than failing.
func ParseReference(s string) (Reference, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Reference{}, dErrors.New(dErrors.CodeInvalidInput, "reference must have three segments")
	}
	if parts[0] != ReferencePrefix {
		return Reference{}, dErrors.New(dErrors.CodeInvalidInput, "reference prefix must be "+ReferencePrefix)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 4 || year <= 0 {
		return Reference{}, dErrors.New(dErrors.CodeInvalidInput, "reference year must be four digits")
	}
	if len(parts[2]) != sequenceDigits {
		return Reference{}, dErrors.New(dErrors.CodeInvalidInput, "reference sequence must be seven digits")
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 0 {
		return Reference{}, dErrors.New(dErrors.CodeInvalidInput, "reference sequence must be numeric")
	}
	return Reference{Year: year, Sequence: seq}, nil
}

// String formats the reference in its canonical form.
func (r Reference) String() string {
	return fmt.Sprintf("%s/%04d/%0*d", ReferencePrefix, r.Year, sequenceDigits, r.Sequence)
}

// Next returns the reference following r in the same year.
func (r Reference) Next() Reference {
	return Reference{Year: r.Year, Sequence: r.Sequence + 1}
}

// IsZero reports whether r is the zero reference.
func (r Reference) IsZero() bool {
	return r.Year == 0 && r.Sequence == 0
}
