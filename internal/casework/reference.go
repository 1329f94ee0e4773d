package casework

import (
	"time"

	"casework/pkg/domain"
)

// NextReference allocates the next case reference from the references issued
// so far. The sequence restarts at one each calendar year, so only
// predecessors from the current year count. Malformed entries are skipped
// rather than failing the allocation; the store is append-only and historic
// rows predate the current format.
func NextReference(recent []string, now time.Time) domain.Reference {
	var newest *domain.Reference
	for _, raw := range recent {
		ref, err := domain.ParseReference(raw)
		if err != nil || ref.Year != now.Year() {
			continue
		}
		if newest == nil || ref.Sequence > newest.Sequence {
			r := ref
			newest = &r
		}
	}
	if newest == nil {
		return domain.Reference{Year: now.Year(), Sequence: 1}
	}
	return newest.Next()
}
