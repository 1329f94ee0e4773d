package journey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RecordList is a bounded list of structured records, for example several
// neighbouring addresses or additional contacts. Each save edits one record,
// addressed by its identity field: a submitted "<field>_id" targets an
// existing record, an absent one appends a new record with a fresh identity.
//
// The edited subset carries only the touched record; reconciliation's
// identity merge folds it into the full list.
type RecordList struct {
	Fields []CompositeField
	Min    int
	Max    int
}

func (v RecordList) idKey(field string) string { return field + "_" + IdentityField }

func (v RecordList) PrepareForRender(q *Question, answers AnswerSet) RenderModel {
	inputs := make([]InputState, 0, len(v.Fields))
	for _, f := range v.Fields {
		inputs = append(inputs, InputState{Key: f.Key(q.FieldName), Label: f.Label})
	}
	return RenderModel{
		Field:   q.FieldName,
		Title:   q.Title,
		Hint:    q.Hint,
		Kind:    "record-list",
		Inputs:  inputs,
		Records: answers.List(q.FieldName),
	}
}

func (v RecordList) ExtractAnswer(q *Question, form Form, answers AnswerSet) Edited {
	record := make(Record, len(v.Fields)+1)
	identity := form.Get(v.idKey(q.FieldName))
	if identity == "" {
		identity = uuid.NewString()
	}
	record[IdentityField] = identity
	for _, f := range v.Fields {
		record[f.Name] = form.Get(f.Key(q.FieldName))
	}

	// Update the in-memory list in place so later questions in this request
	// see the edit; the edited subset still carries only the touched record.
	list := answers.List(q.FieldName)
	updated := false
	for i, existing := range list {
		if existing.Identity() == identity {
			list[i] = record
			updated = true
			break
		}
	}
	if !updated {
		list = append(list, record)
	}
	answers[q.FieldName] = list

	return Edited{q.FieldName: []Record{record}}
}

func (v RecordList) Validate(q *Question, form Form, answers AnswerSet) []FieldError {
	errs := runValidators(q, form, answers)

	// Each record is its own mini-form: per-field validators run against the
	// submitted record's inputs.
	for _, f := range v.Fields {
		key := f.Key(q.FieldName)
		for _, validator := range f.Validators {
			if fe := validator.Validate(key, form, answers); fe != nil {
				errs = append(errs, *fe)
			}
		}
	}

	if v.Max > 0 && form.Get(v.idKey(q.FieldName)) == "" {
		if len(answers.List(q.FieldName)) >= v.Max {
			errs = append(errs, fieldErrorf(q.FieldName, "no more than %d entries can be added", v.Max))
		}
	}
	return errs
}

// MeetsMinimum reports whether the list satisfies its minimum record count.
// Confirmation-time prerequisite checks call this; per-save validation does
// not, because a journey in progress is allowed to be under the minimum.
func (v RecordList) MeetsMinimum(answers AnswerSet, field string) bool {
	return len(answers.List(field)) >= v.Min
}

func (v RecordList) Summarize(q *Question, answers AnswerSet) Summary {
	list := answers.List(q.FieldName)
	var parts []string
	for _, record := range list {
		var fields []string
		for _, f := range v.Fields {
			if value := record.String(f.Name); value != "" {
				fields = append(fields, value)
			}
		}
		if len(fields) > 0 {
			parts = append(parts, strings.Join(fields, " "))
		}
	}
	value := strings.Join(parts, "; ")
	if value == "" && len(list) > 0 {
		value = fmt.Sprintf("%d entries", len(list))
	}
	return Summary{Key: q.Title, Value: value}
}
