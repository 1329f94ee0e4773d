package journey

import (
	"fmt"
	"strconv"
	"time"
)

// storedDateLayout is the canonical scalar encoding for composed dates.
const storedDateLayout = "2006-01-02"

const displayDateLayout = "2 January 2006"

// Date is a day/month/year input composed into one stored ISO date. Calendar
// correctness (a real day for the declared month and year) is validated here,
// independent of any attached cross-field validators.
type Date struct{}

func dateComponentKeys(field string) (day, month, year string) {
	return field + "_day", field + "_month", field + "_year"
}

func (Date) PrepareForRender(q *Question, answers AnswerSet) RenderModel {
	day, month, year := dateComponentKeys(q.FieldName)
	d, m, y := splitStoredDate(answers.String(q.FieldName))
	return RenderModel{
		Field: q.FieldName,
		Title: q.Title,
		Hint:  q.Hint,
		Kind:  "date",
		Value: answers.String(q.FieldName),
		Inputs: []InputState{
			{Key: day, Label: "Day", Value: d},
			{Key: month, Label: "Month", Value: m},
			{Key: year, Label: "Year", Value: y},
		},
	}
}

func (Date) ExtractAnswer(q *Question, form Form, answers AnswerSet) Edited {
	value := composeDate(form, q.FieldName)
	answers[q.FieldName] = value
	return Edited{q.FieldName: value}
}

func (Date) Validate(q *Question, form Form, answers AnswerSet) []FieldError {
	errs := runValidators(q, form, answers)
	if fe := validateCalendarDate(form, q.FieldName); fe != nil {
		errs = append(errs, *fe)
	}
	return errs
}

func (Date) Summarize(q *Question, answers AnswerSet) Summary {
	return Summary{Key: q.Title, Value: formatStoredDate(answers.String(q.FieldName))}
}

// DatePeriod is a six-component start/end date input, stored as two scalars
// under "<field>_start" and "<field>_end". End-not-before-start is checked
// only when all six components are present; partial input never triggers the
// ordering check.
type DatePeriod struct{}

func periodKeys(field string) (start, end string) {
	return field + "_start", field + "_end"
}

func (DatePeriod) PrepareForRender(q *Question, answers AnswerSet) RenderModel {
	start, end := periodKeys(q.FieldName)
	var inputs []InputState
	for _, side := range []string{start, end} {
		day, month, year := dateComponentKeys(side)
		d, m, y := splitStoredDate(answers.String(side))
		inputs = append(inputs,
			InputState{Key: day, Label: "Day", Value: d},
			InputState{Key: month, Label: "Month", Value: m},
			InputState{Key: year, Label: "Year", Value: y},
		)
	}
	return RenderModel{
		Field:  q.FieldName,
		Title:  q.Title,
		Hint:   q.Hint,
		Kind:   "date-period",
		Inputs: inputs,
	}
}

func (DatePeriod) ExtractAnswer(q *Question, form Form, answers AnswerSet) Edited {
	start, end := periodKeys(q.FieldName)
	startValue := composeDate(form, start)
	endValue := composeDate(form, end)
	answers[start] = startValue
	answers[end] = endValue
	return Edited{start: startValue, end: endValue}
}

func (DatePeriod) Validate(q *Question, form Form, answers AnswerSet) []FieldError {
	errs := runValidators(q, form, answers)
	start, end := periodKeys(q.FieldName)
	if fe := validateCalendarDate(form, start); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := validateCalendarDate(form, end); fe != nil {
		errs = append(errs, *fe)
	}
	if len(errs) > 0 {
		return errs
	}
	startDate, okStart := parseComponents(form, start)
	endDate, okEnd := parseComponents(form, end)
	if okStart && okEnd && endDate.Before(startDate) {
		errs = append(errs, fieldErrorf(end, "end date must not be before the start date"))
	}
	return errs
}

func (DatePeriod) Summarize(q *Question, answers AnswerSet) Summary {
	start, end := periodKeys(q.FieldName)
	from := formatStoredDate(answers.String(start))
	to := formatStoredDate(answers.String(end))
	value := ""
	switch {
	case from != "" && to != "":
		value = fmt.Sprintf("%s to %s", from, to)
	case from != "":
		value = from
	case to != "":
		value = to
	}
	return Summary{Key: q.Title, Value: value}
}

// composeDate joins submitted components into the stored encoding, or ""
// when any component is missing.
func composeDate(form Form, field string) string {
	t, ok := parseComponents(form, field)
	if !ok {
		return ""
	}
	return t.Format(storedDateLayout)
}

// parseComponents reads the three components for field and returns the
// calendar date they denote. ok is false for missing or invalid components.
func parseComponents(form Form, field string) (time.Time, bool) {
	dayKey, monthKey, yearKey := dateComponentKeys(field)
	day, errD := strconv.Atoi(form.Get(dayKey))
	month, errM := strconv.Atoi(form.Get(monthKey))
	year, errY := strconv.Atoi(form.Get(yearKey))
	if errD != nil || errM != nil || errY != nil {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31 February becomes 2 March); a changed
	// component means the input was not a real calendar date.
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// validateCalendarDate reports an error when components are submitted but do
// not form a real calendar date. Fully empty input is left to Required.
func validateCalendarDate(form Form, field string) *FieldError {
	dayKey, monthKey, yearKey := dateComponentKeys(field)
	day, month, year := form.Get(dayKey), form.Get(monthKey), form.Get(yearKey)
	if day == "" && month == "" && year == "" {
		return nil
	}
	if day == "" || month == "" || year == "" {
		fe := fieldErrorf(field, "enter a complete date")
		return &fe
	}
	if _, ok := parseComponents(form, field); !ok {
		fe := fieldErrorf(field, "enter a real date")
		return &fe
	}
	return nil
}

func splitStoredDate(stored string) (day, month, year string) {
	t, err := time.Parse(storedDateLayout, stored)
	if err != nil {
		return "", "", ""
	}
	return strconv.Itoa(t.Day()), strconv.Itoa(int(t.Month())), strconv.Itoa(t.Year())
}

func formatStoredDate(stored string) string {
	t, err := time.Parse(storedDateLayout, stored)
	if err != nil {
		return ""
	}
	return t.Format(displayDateLayout)
}
