package journey

// Text is a single free-text input. It also serves numeric questions, which
// attach IntInRange validators rather than owning a separate variant.
type Text struct{}

func (Text) PrepareForRender(q *Question, answers AnswerSet) RenderModel {
	return RenderModel{
		Field: q.FieldName,
		Title: q.Title,
		Hint:  q.Hint,
		Kind:  "text",
		Value: answers.String(q.FieldName),
	}
}

func (Text) ExtractAnswer(q *Question, form Form, answers AnswerSet) Edited {
	value := form.Get(q.FieldName)
	answers[q.FieldName] = value
	return Edited{q.FieldName: value}
}

func (Text) Validate(q *Question, form Form, answers AnswerSet) []FieldError {
	return runValidators(q, form, answers)
}

func (Text) Summarize(q *Question, answers AnswerSet) Summary {
	return Summary{Key: q.Title, Value: answers.String(q.FieldName)}
}

// RedactingText keeps a shadow redacted value alongside the original answer
// under "<field>_redacted". Once a redaction exists, summaries and downstream
// consumers prefer it; RedactedOnly forces the redacted form even when the
// shadow is empty, for surfaces that must never see the original.
type RedactingText struct {
	RedactedOnly bool
}

func (v RedactingText) redactedKey(field string) string { return field + "_redacted" }

func (v RedactingText) PrepareForRender(q *Question, answers AnswerSet) RenderModel {
	return RenderModel{
		Field: q.FieldName,
		Title: q.Title,
		Hint:  q.Hint,
		Kind:  "redacting-text",
		Value: answers.String(q.FieldName),
		Inputs: []InputState{
			{Key: v.redactedKey(q.FieldName), Label: "Redacted version", Value: answers.String(v.redactedKey(q.FieldName))},
		},
	}
}

func (v RedactingText) ExtractAnswer(q *Question, form Form, answers AnswerSet) Edited {
	key := v.redactedKey(q.FieldName)
	value := form.Get(q.FieldName)
	redacted := form.Get(key)
	answers[q.FieldName] = value
	answers[key] = redacted
	return Edited{q.FieldName: value, key: redacted}
}

func (v RedactingText) Validate(q *Question, form Form, answers AnswerSet) []FieldError {
	return runValidators(q, form, answers)
}

func (v RedactingText) Summarize(q *Question, answers AnswerSet) Summary {
	return Summary{Key: q.Title, Value: v.Display(q.FieldName, answers)}
}

// Display resolves which of the two values downstream consumers should see.
func (v RedactingText) Display(field string, answers AnswerSet) string {
	redacted := answers.String(v.redactedKey(field))
	if redacted != "" {
		return redacted
	}
	if v.RedactedOnly {
		return ""
	}
	return answers.String(field)
}
