package journey

import (
	"fmt"
	"regexp"
	"strconv"
)

// Validator is a composable rule bound to one field. Validators receive the
// full submission and the current answer set so cross-field rules can see
// other answers, not just their own raw value.
//
// Every validator attached to a question runs; failures accumulate rather
// than short-circuiting so the user sees all problems at once.
type Validator interface {
	Validate(field string, form Form, answers AnswerSet) *FieldError
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(field string, form Form, answers AnswerSet) *FieldError

func (f ValidatorFunc) Validate(field string, form Form, answers AnswerSet) *FieldError {
	return f(field, form, answers)
}

// Required fails when the submitted value is empty.
func Required(message string) Validator {
	return ValidatorFunc(func(field string, form Form, _ AnswerSet) *FieldError {
		if form.Get(field) == "" {
			return &FieldError{Field: field, Message: message}
		}
		return nil
	})
}

// RequiredOption fails when no option was selected for a choice question.
func RequiredOption(message string) Validator {
	return ValidatorFunc(func(field string, form Form, _ AnswerSet) *FieldError {
		for _, v := range form.All(field) {
			if v != "" {
				return nil
			}
		}
		return &FieldError{Field: field, Message: message}
	})
}

// MaxLength fails when the submitted value exceeds max characters.
func MaxLength(max int, message string) Validator {
	return ValidatorFunc(func(field string, form Form, _ AnswerSet) *FieldError {
		if len([]rune(form.Get(field))) > max {
			return &FieldError{Field: field, Message: message}
		}
		return nil
	})
}

// MatchesPattern fails when a non-empty submitted value does not match the
// pattern. Emptiness is Required's concern.
func MatchesPattern(pattern *regexp.Regexp, message string) Validator {
	return ValidatorFunc(func(field string, form Form, _ AnswerSet) *FieldError {
		v := form.Get(field)
		if v != "" && !pattern.MatchString(v) {
			return &FieldError{Field: field, Message: message}
		}
		return nil
	})
}

// IntInRange fails when a non-empty submitted value is not an integer within
// [min, max].
func IntInRange(min, max int, message string) Validator {
	return ValidatorFunc(func(field string, form Form, _ AnswerSet) *FieldError {
		v := form.Get(field)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < min || n > max {
			return &FieldError{Field: field, Message: message}
		}
		return nil
	})
}

// DiffersFromField fails when the submitted value equals the current answer
// of another field. Used for mutually-exclusive answers such as two
// authorities that must differ.
func DiffersFromField(other, message string) Validator {
	return ValidatorFunc(func(field string, form Form, answers AnswerSet) *FieldError {
		v := form.Get(field)
		if v != "" && v == answers.String(other) {
			return &FieldError{Field: field, Message: message}
		}
		return nil
	})
}

// SubRequired fails when the named conditional sub-field is empty while its
// parent option is selected.
func SubRequired(option string, sub SubQuestion, message string) Validator {
	return ValidatorFunc(func(field string, form Form, _ AnswerSet) *FieldError {
		selected := false
		for _, v := range form.All(field) {
			if v == option {
				selected = true
				break
			}
		}
		if !selected {
			return nil
		}
		key := sub.Key(field)
		if form.Get(key) == "" {
			return &FieldError{Field: key, Message: message}
		}
		return nil
	})
}

// runValidators is the shared validation pass every variant starts from.
func runValidators(q *Question, form Form, answers AnswerSet) []FieldError {
	var errs []FieldError
	for _, v := range q.Validators {
		if fe := v.Validate(q.FieldName, form, answers); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

func fieldErrorf(field, format string, args ...any) FieldError {
	return FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}
