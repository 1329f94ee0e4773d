// Package reconcile merges a session draft over a backing-store snapshot into
// the working view-model that rendering, validation, and the task list all
// read from. The merge is what lets a user's in-progress edits survive across
// section boundaries without silently erasing fields they never touched.
package reconcile

import "casework/internal/journey"

// Merge produces the working view-model from a snapshot and a draft.
//
// Rules:
//   - a key only in the snapshot is kept as-is;
//   - a draft value of nil falls back to the snapshot value;
//   - list-typed values merge record-by-record on journey.IdentityField;
//   - any other draft value wins outright, being the more recent input.
//
// Merge never mutates its arguments and is idempotent: merging a result with
// the same draft again yields the same result.
func Merge(snapshot, draft journey.AnswerSet) journey.AnswerSet {
	working := snapshot.Clone()
	for key, draftValue := range draft {
		if draftValue == nil {
			continue
		}
		draftList := recordList(draftValue)
		baseList := recordList(working[key])
		if draftList != nil && baseList != nil {
			working[key] = mergeLists(baseList, draftList)
			continue
		}
		if draftList != nil {
			working[key] = mergeLists(nil, draftList)
			continue
		}
		working[key] = normalize(draftValue)
	}
	return working
}

// mergeLists performs the identity merge. Snapshot-derived records keep their
// relative order and are shallow-overwritten by a draft record sharing their
// identity; fields absent from the draft record are kept. Unmatched draft
// records append at the end in draft order.
func mergeLists(base, draft []journey.Record) []journey.Record {
	out := make([]journey.Record, 0, len(base)+len(draft))
	index := make(map[string]int, len(base))
	for _, record := range base {
		copied := cloneRecord(record)
		if id := copied.Identity(); id != "" {
			index[id] = len(out)
		}
		out = append(out, copied)
	}
	for _, record := range draft {
		id := record.Identity()
		if pos, ok := index[id]; ok && id != "" {
			for k, v := range record {
				out[pos][k] = v
			}
			continue
		}
		copied := cloneRecord(record)
		if id != "" {
			index[id] = len(out)
		}
		out = append(out, copied)
	}
	return out
}

func cloneRecord(r journey.Record) journey.Record {
	out := make(journey.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// recordList normalizes the two shapes list answers arrive in: typed
// []Record from the engine and []any of maps from JSON-decoded drafts.
// Anything else is not a list.
func recordList(v any) []journey.Record {
	switch list := v.(type) {
	case []journey.Record:
		return list
	case []any:
		set := journey.AnswerSet{"v": v}
		records := set.List("v")
		if len(records) == 0 && len(list) > 0 {
			// A non-empty array with no record elements is not a record list.
			return nil
		}
		return records
	}
	return nil
}

// normalize converts JSON-decoded map values to journey.Record so the rest
// of the engine sees one shape.
func normalize(v any) any {
	if m, ok := v.(map[string]any); ok {
		return journey.Record(m)
	}
	return v
}
