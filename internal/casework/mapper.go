package casework

import (
	"casework/internal/casework/models"
	"casework/internal/commit"
	"casework/internal/journey"
)

// Relation names used by the commit plan and resolved by the executor's
// table mapping.
const (
	RelationApplicant  = "applicant"
	RelationAgent      = "agent"
	RelationSite       = "site_address"
	RelationNeighbours = "neighbour_address"
	RelationEvent      = "event"
)

// NewMapper declares how every answer field lands in the backing store.
// Scalar fields collapse onto case columns; contact and address fields
// address related rows through their backing identifiers carried in the
// working view.
func NewMapper() *commit.Mapper {
	return &commit.Mapper{
		Rules: []commit.Rule{
			{Field: models.FieldDescription, Column: "description"},
			{Field: models.FieldDescription + "_redacted", Column: "description_redacted"},
			{Field: models.FieldLocalAuthority, Column: "local_authority"},
			{Field: models.FieldDecidingAuthority, Column: "deciding_authority"},
			// Changing category always resets the free-text detail; the
			// "other" sub-answer, when present in the same edit, lands after
			// and wins.
			{Field: models.FieldCategory, Column: "category_code", Clears: []string{"category_detail"}},
			{Field: models.CategoryOtherSub.Key(models.FieldCategory), Column: "category_detail"},
			{Field: models.FieldDocuments, Column: "supporting_documents"},
			{Field: models.FieldConsultation + "_start", Column: "consultation_start"},
			{Field: models.FieldConsultation + "_end", Column: "consultation_end"},

			{Field: models.FieldApplicantName, Column: "name", Relation: RelationApplicant, IdentityKey: models.FieldApplicantID},
			{Field: models.FieldApplicantEmail, Column: "email", Relation: RelationApplicant, IdentityKey: models.FieldApplicantID},
			{Field: models.FieldApplicantPhone, Column: "phone", Relation: RelationApplicant, IdentityKey: models.FieldApplicantID},

			// Switching hasAgent to "no" orphans the agent contact; the row
			// is deleted and the executor blanks the case pointer with it.
			// Re-answering "yes" recreates the row, which restores the
			// pointer.
			{
				Field:           models.FieldHasAgent,
				Column:          "has_agent",
				DeletesRelation: RelationAgent,
				DeleteMatchKey:  models.FieldAgentID,
				DeleteWhen: func(newValue any, working journey.AnswerSet) bool {
					return newValue == "no" && working.String(models.FieldAgentID) != ""
				},
			},
			{Field: models.FieldAgentName, Column: "name", Relation: RelationAgent, IdentityKey: models.FieldAgentID},
			{Field: models.FieldAgentEmail, Column: "email", Relation: RelationAgent, IdentityKey: models.FieldAgentID},

			{Field: models.FieldSiteAddress, Relation: RelationSite, IdentityKey: models.FieldSiteAddressID},
			{Field: models.FieldNeighbours, Relation: RelationNeighbours, List: true},

			// A scheduled sitting belongs to the procedure selected when it
			// was booked; changing procedure deletes the now-orphaned event.
			{
				Field:           models.FieldProcedureType,
				Column:          "procedure_type",
				DeletesRelation: RelationEvent,
				DeleteMatchKey:  models.FieldEventID,
				DeleteWhen: func(newValue any, working journey.AnswerSet) bool {
					if working.String(models.FieldEventID) == "" {
						return false
					}
					kind, _ := newValue.(string)
					return kind != working.String(models.FieldEventKind)
				},
			},
			// The event row records the procedure it was booked under; the
			// delete rule above compares against that kind, so it must be
			// persisted with every write of the row.
			{
				Field:       models.FieldEventDate,
				Column:      "date",
				Relation:    RelationEvent,
				IdentityKey: models.FieldEventID,
				Augment: func(working journey.AnswerSet) map[string]any {
					return map[string]any{"kind": working.String(models.FieldProcedureType)}
				},
			},
		},
		Exclusive: []commit.ExclusiveRule{
			{
				FieldA:  models.FieldLocalAuthority,
				FieldB:  models.FieldDecidingAuthority,
				Message: "the deciding authority must differ from the local authority",
				Link:    "overview/" + models.FieldDecidingAuthority,
			},
		},
	}
}

// Tables maps the plan's relation names onto the schema for the postgres
// executor. Applicant and agent share the contacts table, distinguished only
// by which case pointer they hang off.
func Tables() map[string]commit.TableSpec {
	return map[string]commit.TableSpec{
		RelationApplicant:  {Table: "contacts", CaseFK: "case_id", CasePointer: "applicant_id"},
		RelationAgent:      {Table: "contacts", CaseFK: "case_id", CasePointer: "agent_id"},
		RelationSite:       {Table: "addresses", CaseFK: "case_id", CasePointer: "site_address_id"},
		RelationNeighbours: {Table: "neighbour_addresses", CaseFK: "case_id"},
		RelationEvent:      {Table: "scheduled_events", CaseFK: "case_id", CasePointer: "event_id"},
	}
}
