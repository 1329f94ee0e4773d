package journey

import "strings"

// CompositeField is one named input of a multi-field question.
type CompositeField struct {
	Name       string
	Label      string
	Validators []Validator
}

// Key returns the form key the input is submitted under.
func (f CompositeField) Key(parentField string) string {
	return parentField + "_" + f.Name
}

// Composite is a multi-field input stored as one structured Record, for
// example an address. Per-input validators run against their own form key.
type Composite struct {
	Fields []CompositeField
}

func (v Composite) PrepareForRender(q *Question, answers AnswerSet) RenderModel {
	record := answers.Record(q.FieldName)
	inputs := make([]InputState, 0, len(v.Fields))
	for _, f := range v.Fields {
		inputs = append(inputs, InputState{
			Key:   f.Key(q.FieldName),
			Label: f.Label,
			Value: record.String(f.Name),
		})
	}
	return RenderModel{
		Field:  q.FieldName,
		Title:  q.Title,
		Hint:   q.Hint,
		Kind:   "composite",
		Inputs: inputs,
	}
}

func (v Composite) ExtractAnswer(q *Question, form Form, answers AnswerSet) Edited {
	record := make(Record, len(v.Fields)+1)
	// Preserve the backing identity so an edit updates rather than recreates.
	if existing := answers.Record(q.FieldName); existing.Identity() != "" {
		record[IdentityField] = existing.Identity()
	}
	for _, f := range v.Fields {
		record[f.Name] = form.Get(f.Key(q.FieldName))
	}
	answers[q.FieldName] = record
	return Edited{q.FieldName: record}
}

func (v Composite) Validate(q *Question, form Form, answers AnswerSet) []FieldError {
	errs := runValidators(q, form, answers)
	for _, f := range v.Fields {
		key := f.Key(q.FieldName)
		for _, validator := range f.Validators {
			if fe := validator.Validate(key, form, answers); fe != nil {
				errs = append(errs, *fe)
			}
		}
	}
	return errs
}

func (v Composite) Summarize(q *Question, answers AnswerSet) Summary {
	record := answers.Record(q.FieldName)
	var parts []string
	for _, f := range v.Fields {
		if value := record.String(f.Name); value != "" {
			parts = append(parts, value)
		}
	}
	return Summary{Key: q.Title, Value: strings.Join(parts, ", ")}
}
