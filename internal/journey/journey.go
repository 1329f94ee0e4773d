package journey

import (
	"fmt"

	dErrors "casework/pkg/domain-errors"
)

// Section is a named, conditionally-active group of questions. A section
// whose condition is false contributes nothing: no rendering, no required-ness
// enforcement, no task-list rows, no navigation targets.
type Section struct {
	Name      string
	Segment   string
	Questions []*Question
	When      Condition
}

func (s *Section) activeCondition() Condition {
	if s.When != nil {
		return s.When
	}
	return Always
}

// Definition is the static declaration of a journey. Definitions are cheap
// and stateless; a Journey is constructed fresh per request from a definition
// plus the current answer set.
type Definition struct {
	ID       string
	Title    string
	Sections []Section
}

// Journey is one workflow instance bound to a case reference and the working
// answer set. Activation conditions are evaluated against the live answers on
// every call so a changed earlier answer immediately reshapes navigation.
type Journey struct {
	def         Definition
	ReferenceID string
	Answers     AnswerSet
}

// Build constructs a journey instance, validating the definition. It returns
// an error instead of panicking so the routing collaborator can map an
// unknown or malformed journey onto a 404/400 response.
func (d Definition) Build(referenceID string, answers AnswerSet) (*Journey, error) {
	if d.ID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "journey definition has no id")
	}
	if referenceID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "journey requires a case reference")
	}
	seen := make(map[string]string)
	for _, section := range d.Sections {
		for _, q := range section.Questions {
			if q.FieldName == "" {
				return nil, dErrors.New(dErrors.CodeBadRequest,
					fmt.Sprintf("journey %s: section %s has a question with no field name", d.ID, section.Segment))
			}
			if prev, dup := seen[q.FieldName]; dup {
				return nil, dErrors.New(dErrors.CodeBadRequest,
					fmt.Sprintf("journey %s: field %s declared in sections %s and %s", d.ID, q.FieldName, prev, section.Segment))
			}
			seen[q.FieldName] = section.Segment
		}
	}
	if answers == nil {
		answers = AnswerSet{}
	}
	return &Journey{def: d, ReferenceID: referenceID, Answers: answers}, nil
}

// ID returns the journey identity's first half; the second is ReferenceID.
func (j *Journey) ID() string { return j.def.ID }

// Position addresses one question within its section.
type Position struct {
	Section  *Section
	Question *Question
}

// URL returns the canonical path of the position's page.
func (p Position) URL(j *Journey) string {
	return fmt.Sprintf("%s/%s/%s", j.BaseURL(), p.Section.Segment, p.Question.FieldName)
}

// BaseURL is the path prefix every page of this journey instance lives under.
func (j *Journey) BaseURL() string {
	return fmt.Sprintf("/journeys/%s/%s", j.def.ID, j.ReferenceID)
}

// TaskListURL is the terminal check-your-answers page.
func (j *Journey) TaskListURL() string {
	return j.BaseURL() + "/task-list"
}

// activePositions lists every currently-active question in declaration
// order. It is recomputed from the live answer set on every call.
func (j *Journey) activePositions() []Position {
	var out []Position
	for i := range j.def.Sections {
		section := &j.def.Sections[i]
		if !section.activeCondition()(j.Answers) {
			continue
		}
		for _, q := range section.Questions {
			if q.active(section, j.Answers) {
				out = append(out, Position{Section: section, Question: q})
			}
		}
	}
	return out
}

// ActivePositions exposes the current active question list for callers that
// need to sweep the whole journey, such as confirm-time completeness checks.
func (j *Journey) ActivePositions() []Position {
	return j.activePositions()
}

// First returns the journey's initial position. ok is false when no section
// is active at all.
func (j *Journey) First() (Position, bool) {
	active := j.activePositions()
	if len(active) == 0 {
		return Position{}, false
	}
	return active[0], true
}

// Next returns the position after field, skipping anything inactive under
// the current answers. ok is false at the end of the journey: the caller
// advances to the task list.
func (j *Journey) Next(field string) (Position, bool) {
	active := j.activePositions()
	for i, pos := range active {
		if pos.Question.FieldName == field {
			if i+1 < len(active) {
				return active[i+1], true
			}
			return Position{}, false
		}
	}
	return Position{}, false
}

// Back returns the nearest preceding active position. ok is false at the
// start of the journey: the caller links back to the journey's entry page.
func (j *Journey) Back(field string) (Position, bool) {
	active := j.activePositions()
	for i, pos := range active {
		if pos.Question.FieldName == field {
			if i > 0 {
				return active[i-1], true
			}
			return Position{}, false
		}
	}
	return Position{}, false
}

// Find resolves a (section segment, field name) pair to an active question.
// An unknown or currently-inactive page is a not-found, never an error page:
// the engine must not render a question whose activation condition is false.
func (j *Journey) Find(segment, field string) (Position, error) {
	for i := range j.def.Sections {
		section := &j.def.Sections[i]
		if section.Segment != segment {
			continue
		}
		for _, q := range section.Questions {
			if q.FieldName != field {
				continue
			}
			if !section.activeCondition()(j.Answers) || !q.active(section, j.Answers) {
				return Position{}, dErrors.New(dErrors.CodeNotFound, "question is not active for this case")
			}
			return Position{Section: section, Question: q}, nil
		}
	}
	return Position{}, dErrors.New(dErrors.CodeNotFound, "unknown section or question")
}

// Render builds the render model for an active question, wiring back and
// next links from the current navigation state.
func (j *Journey) Render(segment, field string) (RenderModel, error) {
	pos, err := j.Find(segment, field)
	if err != nil {
		return RenderModel{}, err
	}
	model := pos.Question.Variant.PrepareForRender(pos.Question, j.Answers)
	if back, ok := j.Back(field); ok {
		model.BackLink = back.URL(j)
	} else {
		model.BackLink = j.BaseURL()
	}
	if next, ok := j.Next(field); ok {
		model.NextLink = next.URL(j)
	} else {
		model.NextLink = j.TaskListURL()
	}
	return model, nil
}

// Save validates and applies one question submission.
//
// On validation failure the same question is re-rendered with the accumulated
// field errors and the user's submitted values, leaving the answer set and
// every unrelated saved answer untouched. On success the returned edited
// subset holds exactly the pairs this save produced, and the in-memory
// answer set reflects them.
func (j *Journey) Save(segment, field string, form Form) (Edited, *RenderModel, error) {
	pos, err := j.Find(segment, field)
	if err != nil {
		return nil, nil, err
	}
	q := pos.Question
	if errs := q.Variant.Validate(q, form, j.Answers); len(errs) > 0 {
		model := q.Variant.PrepareForRender(q, j.Answers)
		model.Errors = errs
		model.Submitted = map[string][]string(form)
		return nil, &model, nil
	}
	edited := q.Variant.ExtractAnswer(q, form, j.Answers)
	return edited, nil, nil
}
