package journey

import (
	"strings"

	pstrings "casework/pkg/platform/strings"
)

// multiValueDelimiter joins multi-select answers into one stored scalar.
const multiValueDelimiter = ","

// SingleSelect is a radio-button choice. Each option may declare one
// conditional sub-input, rendered only while that option is selected and
// cleared when it is deselected.
type SingleSelect struct {
	Options []Option
}

func (v SingleSelect) PrepareForRender(q *Question, answers AnswerSet) RenderModel {
	selected := answers.String(q.FieldName)
	return RenderModel{
		Field:   q.FieldName,
		Title:   q.Title,
		Hint:    q.Hint,
		Kind:    "single-select",
		Value:   selected,
		Options: optionStates(q.FieldName, v.Options, map[string]bool{selected: true}, answers),
	}
}

func (v SingleSelect) ExtractAnswer(q *Question, form Form, answers AnswerSet) Edited {
	selected := form.Get(q.FieldName)
	answers[q.FieldName] = selected
	edited := Edited{q.FieldName: selected}
	extractSubAnswers(q.FieldName, v.Options, map[string]bool{selected: true}, form, answers, edited)
	return edited
}

func (v SingleSelect) Validate(q *Question, form Form, answers AnswerSet) []FieldError {
	return runValidators(q, form, answers)
}

func (v SingleSelect) Summarize(q *Question, answers AnswerSet) Summary {
	return Summary{Key: q.Title, Value: displayLabels(v.Options, []string{answers.String(q.FieldName)})}
}

// MultiSelect is a checkbox choice. The answer is stored as an ordered,
// comma-joined list of option values, in declaration order so the stored
// encoding is stable regardless of submission order.
type MultiSelect struct {
	Options []Option
}

// SelectedValues decodes the stored scalar back into individual values.
func (MultiSelect) SelectedValues(answers AnswerSet, field string) []string {
	stored := answers.String(field)
	if stored == "" {
		return nil
	}
	return strings.Split(stored, multiValueDelimiter)
}

func (v MultiSelect) PrepareForRender(q *Question, answers AnswerSet) RenderModel {
	selected := selectionSet(v.SelectedValues(answers, q.FieldName))
	return RenderModel{
		Field:   q.FieldName,
		Title:   q.Title,
		Hint:    q.Hint,
		Kind:    "multi-select",
		Value:   answers.String(q.FieldName),
		Options: optionStates(q.FieldName, v.Options, selected, answers),
	}
}

func (v MultiSelect) ExtractAnswer(q *Question, form Form, answers AnswerSet) Edited {
	submitted := selectionSet(pstrings.DedupeAndTrim(form.All(q.FieldName)))

	// Encode in option declaration order for a stable stored value.
	var values []string
	for _, opt := range v.Options {
		if submitted[opt.Value] {
			values = append(values, opt.Value)
		}
	}
	stored := strings.Join(values, multiValueDelimiter)
	answers[q.FieldName] = stored
	edited := Edited{q.FieldName: stored}
	extractSubAnswers(q.FieldName, v.Options, selectionSet(values), form, answers, edited)
	return edited
}

func (v MultiSelect) Validate(q *Question, form Form, answers AnswerSet) []FieldError {
	return runValidators(q, form, answers)
}

func (v MultiSelect) Summarize(q *Question, answers AnswerSet) Summary {
	return Summary{Key: q.Title, Value: displayLabels(v.Options, v.SelectedValues(answers, q.FieldName))}
}

// YesNo is the boolean question, stored as "yes"/"no". A dedicated
// constructor keeps gating answers consistent across journeys.
func YesNo() SingleSelect {
	return SingleSelect{Options: []Option{
		{Value: "yes", Label: "Yes"},
		{Value: "no", Label: "No"},
	}}
}

func selectionSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}

func optionStates(field string, options []Option, selected map[string]bool, answers AnswerSet) []OptionState {
	states := make([]OptionState, 0, len(options))
	for _, opt := range options {
		state := OptionState{
			Value:    opt.Value,
			Label:    opt.Label,
			Selected: selected[opt.Value],
		}
		if opt.Sub != nil {
			state.SubKey = opt.Sub.Key(field)
			state.SubTitle = opt.Sub.Title
			if state.Selected {
				state.SubValue = answers.String(state.SubKey)
			}
		}
		states = append(states, state)
	}
	return states
}

// extractSubAnswers persists conditional sub-answers for selected options and
// clears them for deselected ones. Clearing writes an empty string rather
// than deleting the key: reconciliation treats a nil draft value as "fall
// back to the snapshot", which would resurrect the old sub-answer.
func extractSubAnswers(field string, options []Option, selected map[string]bool, form Form, answers AnswerSet, edited Edited) {
	for _, opt := range options {
		if opt.Sub == nil {
			continue
		}
		key := opt.Sub.Key(field)
		if selected[opt.Value] {
			value := form.Get(key)
			answers[key] = value
			edited[key] = value
		} else {
			answers[key] = ""
			edited[key] = ""
		}
	}
}

func displayLabels(options []Option, values []string) string {
	labels := make(map[string]string, len(options))
	for _, opt := range options {
		labels[opt.Value] = opt.Label
	}
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if label, ok := labels[v]; ok {
			out = append(out, label)
		} else {
			out = append(out, v)
		}
	}
	return strings.Join(out, ", ")
}
