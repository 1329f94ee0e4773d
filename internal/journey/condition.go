package journey

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// Condition decides whether a section or question is active for the current
// answer set. Conditions must be pure: identical answer sets yield identical
// results. They are re-evaluated on every request, never cached, because an
// earlier answer changing can add or remove later sections.
type Condition func(answers AnswerSet) bool

// Always activates unconditionally. Sections default to it.
func Always(AnswerSet) bool { return true }

// WhenEquals activates when the scalar answer at field equals value.
func WhenEquals(field, value string) Condition {
	return func(answers AnswerSet) bool {
		return answers.String(field) == value
	}
}

// Not inverts a condition.
func Not(c Condition) Condition {
	return func(answers AnswerSet) bool { return !c(answers) }
}

// All activates when every given condition does.
func All(conds ...Condition) Condition {
	return func(answers AnswerSet) bool {
		for _, c := range conds {
			if !c(answers) {
				return false
			}
		}
		return true
	}
}

// WhenExpr compiles an expression over the answer set into a condition, e.g.
// WhenExpr(`hasAgent == "yes"`). Undefined fields evaluate as nil. The
// expression is compiled once at journey-definition time; a compile error
// panics there, like a malformed regexp literal would.
//
// A non-boolean result is treated as inactive.
func WhenExpr(src string) Condition {
	program, err := exprlang.Compile(src, exprlang.AllowUndefinedVariables())
	if err != nil {
		panic(fmt.Sprintf("journey: bad condition expression %q: %v", src, err))
	}
	return func(answers AnswerSet) bool {
		return runBoolProgram(program, answers)
	}
}

func runBoolProgram(program *exprvm.Program, answers AnswerSet) bool {
	env := make(map[string]any, len(answers))
	for k, v := range answers {
		env[k] = v
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return false
	}
	b, ok := result.(bool)
	return ok && b
}
