package commit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casework/internal/journey"
	dErrors "casework/pkg/domain-errors"
)

func testMapper() *Mapper {
	return &Mapper{
		Rules: []Rule{
			{Field: "description", Column: "description"},
			{Field: "localAuthority", Column: "local_authority"},
			{Field: "decidingAuthority", Column: "deciding_authority"},
			{Field: "applicantName", Column: "name", Relation: "applicant", IdentityKey: "applicantId"},
			{Field: "siteAddress", Relation: "site_address", IdentityKey: "siteAddressId"},
			{Field: "neighbours", Relation: "neighbour_address", List: true},
			{
				Field:           "procedureType",
				Column:          "procedure_type",
				DeletesRelation: "event",
				DeleteMatchKey:  "eventId",
				DeleteWhen: func(newValue any, working journey.AnswerSet) bool {
					if working.String("eventId") == "" {
						return false
					}
					kind, _ := newValue.(string)
					return kind != working.String("eventKind")
				},
			},
		},
		Exclusive: []ExclusiveRule{
			{FieldA: "localAuthority", FieldB: "decidingAuthority", Message: "authorities must differ", Link: "overview/decidingAuthority"},
		},
	}
}

func opsByRelation(ops []Op, relation string) []Op {
	var out []Op
	for _, op := range ops {
		if op.Relation == relation {
			out = append(out, op)
		}
	}
	return out
}

func TestPlanEmitsNothingForUntouchedFields(t *testing.T) {
	working := journey.AnswerSet{
		"description":    "snapshot description",
		"localAuthority": "northbank",
	}

	ops, err := testMapper().Plan(journey.Edited{}, working)
	require.NoError(t, err)
	assert.Empty(t, ops, "a field absent from edited never becomes a write, even when working disagrees with the snapshot")
}

func TestPlanCollapsesScalarsIntoOneCaseUpdate(t *testing.T) {
	edited := journey.Edited{
		"description":    "a barn conversion",
		"localAuthority": "northbank",
	}

	ops, err := testMapper().Plan(edited, journey.AnswerSet{})
	require.NoError(t, err)
	require.Len(t, ops, 1)

	op := ops[0]
	assert.Equal(t, CaseRelation, op.Relation)
	assert.Equal(t, KindUpdate, op.Kind)
	assert.Equal(t, map[string]any{"description": "a barn conversion", "local_authority": "northbank"}, op.Values)
}

func TestPlanRelationUpsertVersusCreate(t *testing.T) {
	t.Run("existing backing identity upserts", func(t *testing.T) {
		edited := journey.Edited{"applicantName": "Ada Lovelace"}
		working := journey.AnswerSet{"applicantId": "c-1"}

		ops, err := testMapper().Plan(edited, working)
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, KindUpsert, ops[0].Kind)
		assert.Equal(t, map[string]any{"id": "c-1"}, ops[0].Match)
		assert.Equal(t, map[string]any{"name": "Ada Lovelace"}, ops[0].Values)
	})

	t.Run("no identity creates", func(t *testing.T) {
		ops, err := testMapper().Plan(journey.Edited{"applicantName": "Ada Lovelace"}, journey.AnswerSet{})
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, KindCreate, ops[0].Kind)
	})

	t.Run("record answers carry their own identity", func(t *testing.T) {
		edited := journey.Edited{"siteAddress": journey.Record{"id": "a-1", "line1": "1 Main Road"}}
		ops, err := testMapper().Plan(edited, journey.AnswerSet{})
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, KindUpsert, ops[0].Kind)
		assert.Equal(t, map[string]any{"id": "a-1"}, ops[0].Match)
	})
}

func TestPlanListUpsertsKnownIdentities(t *testing.T) {
	working := journey.AnswerSet{
		"neighbours": []journey.Record{{"id": "n-1", "line1": "3 Side Street"}},
	}
	edited := journey.Edited{
		"neighbours": []journey.Record{
			{"id": "n-1", "line1": "3a Side Street"},
			{"id": "n-9", "line1": "9 Side Street"},
		},
	}

	ops, err := testMapper().Plan(edited, working)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, KindUpsert, ops[0].Kind, "identity present in the working list updates")
	assert.Equal(t, KindCreate, ops[1].Kind, "a fresh identity creates")
}

// Switching procedure away from the kind the scheduled event was booked for
// deletes the orphaned event in the same plan.
func TestPlanDeletesOrphanedDependentRecord(t *testing.T) {
	working := journey.AnswerSet{
		"procedureType": "hearing",
		"eventId":       "e-1",
		"eventKind":     "hearing",
	}

	ops, err := testMapper().Plan(journey.Edited{"procedureType": "written"}, working)
	require.NoError(t, err)

	deletes := opsByRelation(ops, "event")
	require.Len(t, deletes, 1)
	assert.Equal(t, KindDelete, deletes[0].Kind)
	assert.Equal(t, map[string]any{"id": "e-1"}, deletes[0].Match)

	updates := opsByRelation(ops, CaseRelation)
	require.Len(t, updates, 1)
	assert.Equal(t, "written", updates[0].Values["procedure_type"])

	t.Run("re-saving the same procedure keeps the event", func(t *testing.T) {
		ops, err := testMapper().Plan(journey.Edited{"procedureType": "hearing"}, working)
		require.NoError(t, err)
		assert.Empty(t, opsByRelation(ops, "event"))
	})
}

func TestPlanRejectsConflictingAnswers(t *testing.T) {
	edited := journey.Edited{"decidingAuthority": "northbank"}
	working := journey.AnswerSet{"localAuthority": "northbank"}

	_, err := testMapper().Plan(edited, working)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Len(t, conflict.Items, 1)
	assert.Equal(t, "overview/decidingAuthority", conflict.Items[0].Link)

	t.Run("equal untouched values do not conflict", func(t *testing.T) {
		_, err := testMapper().Plan(journey.Edited{"description": "x"}, working)
		assert.NoError(t, err)
	})
}

func TestPlanClearsNamedColumns(t *testing.T) {
	m := &Mapper{Rules: []Rule{
		{Field: "category", Column: "category_code", Clears: []string{"category_detail"}},
		{Field: "category_detail", Column: "category_detail"},
	}}

	t.Run("changing the parent blanks the dependent column", func(t *testing.T) {
		ops, err := m.Plan(journey.Edited{"category": "defence"}, journey.AnswerSet{})
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, map[string]any{"category_code": "defence", "category_detail": ""}, ops[0].Values)
	})

	t.Run("a sub-answer in the same edit wins over the clear", func(t *testing.T) {
		edited := journey.Edited{"category": "other", "category_detail": "something rare"}
		ops, err := m.Plan(edited, journey.AnswerSet{})
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, "something rare", ops[0].Values["category_detail"])
	})
}
