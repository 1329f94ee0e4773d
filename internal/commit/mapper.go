package commit

import (
	"fmt"

	"casework/internal/journey"
	dErrors "casework/pkg/domain-errors"
)

// CaseRelation is the root relation scalar fields update.
const CaseRelation = "case"

// Rule declares how one answer field maps onto the backing store.
//
// A zero Relation maps a scalar onto a column of the case row. A non-zero
// Relation maps a structured or list answer onto a related row; IdentityKey
// names the working-view field that carries the relation's existing backing
// identifier, which decides upsert-versus-create.
type Rule struct {
	Field       string
	Column      string
	Relation    string
	IdentityKey string
	List        bool

	// Clears names case columns blanked whenever this field changes, for
	// dependent columns that described the old value.
	Clears []string

	// Augment derives extra relation columns from the working view, written
	// with every create or upsert of this rule's row. Used where a row must
	// record context the answer itself does not carry, such as the procedure
	// a sitting was booked under.
	Augment func(working journey.AnswerSet) map[string]any

	// DeletesRelation, with DeleteWhen, emits a delete of a dependent
	// sub-record orphaned by a structural change, in the same plan.
	DeletesRelation string
	DeleteWhen      func(newValue any, working journey.AnswerSet) bool
	DeleteMatchKey  string
}

// ConflictItem is one entry of a page-level conflict banner: the message and
// the link to the offending question.
type ConflictItem struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

// ConflictError reports mutually-exclusive answers or missing prerequisites.
// It is raised before any write is attempted; nothing partially commits.
type ConflictError struct {
	Items []ConflictItem
}

func (e *ConflictError) Error() string {
	if len(e.Items) == 1 {
		return "conflict: " + e.Items[0].Message
	}
	return fmt.Sprintf("conflict: %d conflicting answers", len(e.Items))
}

// ExclusiveRule rejects a plan when two fields resolve to the same value.
type ExclusiveRule struct {
	FieldA  string
	FieldB  string
	Message string
	Link    string
}

// Mapper plans backing-store operations from an edited subset. The working
// view-model is consulted only to resolve existing backing identifiers and
// conflict values, never to emit writes for untouched fields.
type Mapper struct {
	Rules     []Rule
	Exclusive []ExclusiveRule
}

// Plan converts the edited subset into an ordered operation set.
//
// Contract: an instruction is emitted for a field only if its key is present
// in edited. A field absent from edited never becomes a write, even when the
// working view-model and the snapshot disagree on it.
func (m *Mapper) Plan(edited journey.Edited, working journey.AnswerSet) ([]Op, error) {
	if err := m.checkExclusive(edited, working); err != nil {
		return nil, err
	}

	caseValues := map[string]any{}
	var ops []Op

	for _, rule := range m.Rules {
		value, touched := edited[rule.Field]
		if !touched {
			continue
		}

		if rule.DeletesRelation != "" && rule.DeleteWhen != nil && rule.DeleteWhen(value, working) {
			match := map[string]any{}
			if rule.DeleteMatchKey != "" {
				if id := working.String(rule.DeleteMatchKey); id != "" {
					match["id"] = id
				}
			}
			ops = append(ops, Op{Relation: rule.DeletesRelation, Kind: KindDelete, Match: match})
		}
		for _, cleared := range rule.Clears {
			caseValues[cleared] = ""
		}

		switch {
		case rule.Relation == "":
			caseValues[rule.Column] = value
		case rule.List:
			ops = append(ops, m.planList(rule, value, working)...)
		default:
			ops = append(ops, m.planRelation(rule, value, working))
		}
	}

	if len(caseValues) > 0 {
		// The case update leads the plan so relation rows created after it
		// attach to consistent scalar state.
		ops = append([]Op{{Relation: CaseRelation, Kind: KindUpdate, Values: caseValues}}, ops...)
	}
	return ops, nil
}

// planRelation maps one answer onto its related row. A structured answer
// supplies the row's values wholesale; a scalar answer with a Column writes
// that single column. An existing backing identifier in the working view
// means update-or-create-if-missing keyed on that identifier; no identifier
// means a plain create.
func (m *Mapper) planRelation(rule Rule, value any, working journey.AnswerSet) Op {
	var values map[string]any
	if rule.Column != "" {
		values = map[string]any{rule.Column: value}
	} else {
		values = recordValues(value)
	}
	if rule.Augment != nil {
		for k, v := range rule.Augment(working) {
			values[k] = v
		}
	}
	id := relationIdentity(values, working, rule.IdentityKey)
	if id != "" {
		return Op{Relation: rule.Relation, Kind: KindUpsert, Match: map[string]any{"id": id}, Values: values}
	}
	return Op{Relation: rule.Relation, Kind: KindCreate, Values: values}
}

// planList emits one op per touched record. Records whose identity appears in
// the working view's list are upserts; new identities are creates.
func (m *Mapper) planList(rule Rule, value any, working journey.AnswerSet) []Op {
	existing := map[string]bool{}
	for _, record := range working.List(rule.Field) {
		if id := record.Identity(); id != "" {
			existing[id] = true
		}
	}

	var ops []Op
	for _, record := range (journey.AnswerSet{"v": value}).List("v") {
		values := recordValues(record)
		id := record.Identity()
		if id != "" && existing[id] {
			ops = append(ops, Op{Relation: rule.Relation, Kind: KindUpsert, Match: map[string]any{"id": id}, Values: values})
		} else {
			ops = append(ops, Op{Relation: rule.Relation, Kind: KindCreate, Values: values})
		}
	}
	return ops
}

func (m *Mapper) checkExclusive(edited journey.Edited, working journey.AnswerSet) error {
	var items []ConflictItem
	for _, rule := range m.Exclusive {
		a := resolveValue(rule.FieldA, edited, working)
		b := resolveValue(rule.FieldB, edited, working)
		_, touchedA := edited[rule.FieldA]
		_, touchedB := edited[rule.FieldB]
		if (touchedA || touchedB) && a != "" && a == b {
			items = append(items, ConflictItem{Message: rule.Message, Link: rule.Link})
		}
	}
	if len(items) > 0 {
		return dErrors.Wrap(&ConflictError{Items: items}, dErrors.CodeConflict, "answers conflict")
	}
	return nil
}

func resolveValue(field string, edited journey.Edited, working journey.AnswerSet) string {
	if v, ok := edited[field]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return ""
	}
	return working.String(field)
}

// relationIdentity prefers an identity carried on the record itself, then
// the working view's identifier field.
func relationIdentity(values map[string]any, working journey.AnswerSet, identityKey string) string {
	if id, ok := values[journey.IdentityField].(string); ok && id != "" {
		return id
	}
	if identityKey != "" {
		return working.String(identityKey)
	}
	return ""
}

func recordValues(value any) map[string]any {
	switch record := value.(type) {
	case journey.Record:
		return map[string]any(record)
	case map[string]any:
		return record
	default:
		return map[string]any{"value": value}
	}
}
