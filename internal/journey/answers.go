// Package journey implements the declarative question engine behind every
// multi-step data-entry workflow: journeys of conditionally-active sections
// and questions, per-question validation and save, and the working answer set
// both rendering and the task list read from.
package journey

import (
	"net/url"
	"strings"
)

// AnswerSet is the working view-model: a flat mapping from field name to an
// answer value. Values are string scalars, Record for structured answers such
// as an address, or []Record for identity-keyed lists.
type AnswerSet map[string]any

// Record is one structured answer, for example an address or a contact.
// List-typed records carry their backing identity under IdentityField.
type Record map[string]any

// IdentityField is the key list records are matched on when a session draft
// is merged over a backing snapshot.
const IdentityField = "id"

// Edited is the minimal set of field→value pairs produced by one question
// save. The commit mapper consumes exactly this, never the full working set.
type Edited map[string]any

// String returns the scalar value at key, or "" when absent or not a string.
func (a AnswerSet) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Record returns the structured value at key, normalizing the map shape JSON
// decoding produces.
func (a AnswerSet) Record(key string) Record {
	switch v := a[key].(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	}
	return nil
}

// List returns the record list at key, normalizing the []any shape JSON
// decoding produces. Non-record elements are dropped.
func (a AnswerSet) List(key string) []Record {
	return asRecordList(a[key])
}

// Clone returns a copy safe to mutate without affecting a. Records and lists
// are copied one level deep, which is as deep as answer values nest.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Record:
		return val.clone()
	case map[string]any:
		return Record(val).clone()
	case []Record:
		out := make([]Record, len(val))
		for i, r := range val {
			out[i] = r.clone()
		}
		return out
	case []any:
		if records := asRecordList(val); records != nil {
			return records
		}
		return append([]any{}, val...)
	default:
		return v
	}
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the scalar field of the record, or "" when absent.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Identity returns the record's identity value, or "" for a new record.
func (r Record) Identity() string {
	return r.String(IdentityField)
}

func asRecordList(v any) []Record {
	switch list := v.(type) {
	case []Record:
		return list
	case []any:
		out := make([]Record, 0, len(list))
		for _, item := range list {
			switch rec := item.(type) {
			case Record:
				out = append(out, rec)
			case map[string]any:
				out = append(out, Record(rec))
			}
		}
		return out
	}
	return nil
}

// Form is the raw field-name-keyed input of one question submission.
// Composite and conditional inputs follow the reserved naming convention:
// "field_sub" for conditional choice sub-answers and "field_start_day" style
// keys for date-period components.
type Form url.Values

// FormFromValues adapts parsed url.Values from the transport layer.
func FormFromValues(values url.Values) Form {
	return Form(values)
}

// Get returns the first trimmed value for key, or "".
func (f Form) Get(key string) string {
	vs := f[key]
	if len(vs) == 0 {
		return ""
	}
	return strings.TrimSpace(vs[0])
}

// All returns every value submitted for key, as multi-select inputs post one
// value per selected option.
func (f Form) All(key string) []string {
	return f[key]
}

// Has reports whether key was submitted at all, even with an empty value.
func (f Form) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// FieldError is one field-scoped validation failure. Errors never propagate
// past the question boundary; they re-render the same question.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Summary is one task-list row: the question's display value and the link to
// change it.
type Summary struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	ChangeLink string `json:"changeLink"`
}
