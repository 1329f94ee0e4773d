// Package casework wires the journey engine to the case record: journey
// declarations, the snapshot view-model, the commit mapping, and the
// orchestration service the transport layer calls.
package casework

import (
	"regexp"

	"casework/internal/casework/models"
	"casework/internal/journey"
)

// CrownJourneyID identifies the crown development application journey.
const CrownJourneyID = "crown-development"

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var postcodePattern = regexp.MustCompile(`^[A-Za-z0-9 ]{5,8}$`)

// authorityOptions are shared by the two authority questions; the pair must
// never resolve to the same authority.
var authorityOptions = []journey.Option{
	{Value: "city-of-westmarch", Label: "City of Westmarch"},
	{Value: "northbank", Label: "Northbank Council"},
	{Value: "harrowvale", Label: "Harrowvale District"},
	{Value: "eastfield", Label: "Eastfield Borough"},
}

var categoryOptions = []journey.Option{
	{Value: "infrastructure", Label: "Infrastructure"},
	{Value: "defence", Label: "Defence"},
	{Value: "health", Label: "Health"},
	{Value: "other", Label: "Other", Sub: &models.CategoryOtherSub},
}

var documentOptions = []journey.Option{
	{Value: "plans", Label: "Site plans"},
	{Value: "environmental-statement", Label: "Environmental statement"},
	{Value: "heritage-statement", Label: "Heritage statement"},
}

var addressFields = []journey.CompositeField{
	{Name: "line1", Label: "Address line 1", Validators: []journey.Validator{journey.Required("enter the first address line")}},
	{Name: "line2", Label: "Address line 2"},
	{Name: "town", Label: "Town or city", Validators: []journey.Validator{journey.Required("enter the town or city")}},
	{Name: "postcode", Label: "Postcode", Validators: []journey.Validator{
		journey.Required("enter the postcode"),
		journey.MatchesPattern(postcodePattern, "enter a real postcode"),
	}},
}

// CrownJourney declares the full crown development data-entry workflow.
// Sections and questions activate against the live answer set; the agent
// section only exists while hasAgent is "yes", and the event date question
// only while the selected procedure actually sits.
func CrownJourney() journey.Definition {
	return journey.Definition{
		ID:    CrownJourneyID,
		Title: "Crown development application",
		Sections: []journey.Section{
			{
				Name:    "Overview",
				Segment: "overview",
				Questions: []*journey.Question{
					{
						FieldName: models.FieldDescription,
						Title:     "Describe the proposed development",
						Variant:   journey.RedactingText{},
						Validators: []journey.Validator{
							journey.Required("enter a description"),
							journey.MaxLength(1000, "description must be 1000 characters or fewer"),
						},
					},
					{
						FieldName:  models.FieldLocalAuthority,
						Title:      "Which local authority is the site in?",
						Variant:    journey.SingleSelect{Options: authorityOptions},
						Validators: []journey.Validator{journey.RequiredOption("select the local authority")},
					},
					{
						FieldName: models.FieldDecidingAuthority,
						Title:     "Which authority decides the application?",
						Variant:   journey.SingleSelect{Options: authorityOptions},
						Validators: []journey.Validator{
							journey.RequiredOption("select the deciding authority"),
							journey.DiffersFromField(models.FieldLocalAuthority, "the deciding authority must differ from the local authority"),
						},
					},
				},
			},
			{
				Name:    "Applicant",
				Segment: "applicant",
				Questions: []*journey.Question{
					{
						FieldName: models.FieldApplicantName,
						Title:     "Applicant's full name",
						Variant:   journey.Text{},
						Validators: []journey.Validator{
							journey.Required("enter the applicant's name"),
							journey.MaxLength(250, "name must be 250 characters or fewer"),
						},
					},
					{
						FieldName:  models.FieldApplicantEmail,
						Title:      "Applicant's email address",
						Variant:    journey.Text{},
						Validators: []journey.Validator{journey.MatchesPattern(emailPattern, "enter a real email address")},
					},
					{
						FieldName:  models.FieldHasAgent,
						Title:      "Is an agent acting for the applicant?",
						Variant:    journey.YesNo(),
						Validators: []journey.Validator{journey.RequiredOption("select yes or no")},
					},
				},
			},
			{
				Name:    "Agent",
				Segment: "agent",
				When:    journey.WhenEquals(models.FieldHasAgent, "yes"),
				Questions: []*journey.Question{
					{
						FieldName:  models.FieldAgentName,
						Title:      "Agent's full name",
						Variant:    journey.Text{},
						Validators: []journey.Validator{journey.Required("enter the agent's name")},
					},
					{
						FieldName:  models.FieldAgentEmail,
						Title:      "Agent's email address",
						Variant:    journey.Text{},
						Validators: []journey.Validator{journey.MatchesPattern(emailPattern, "enter a real email address")},
					},
				},
			},
			{
				Name:    "Site",
				Segment: "site",
				Questions: []*journey.Question{
					{
						FieldName: models.FieldSiteAddress,
						Title:     "Site address",
						Variant:   journey.Composite{Fields: addressFields},
					},
					{
						FieldName: models.FieldNeighbours,
						Title:     "Neighbouring addresses",
						Hint:      "Add every address adjoining the site boundary.",
						Variant:   journey.RecordList{Fields: addressFields, Max: 10},
					},
				},
			},
			{
				Name:    "Procedure",
				Segment: "procedure",
				Questions: []*journey.Question{
					{
						FieldName: models.FieldCategory,
						Title:     "Development category",
						Variant:   journey.SingleSelect{Options: categoryOptions},
						Validators: []journey.Validator{
							journey.RequiredOption("select a category"),
							journey.SubRequired("other", models.CategoryOtherSub, "describe the category"),
						},
					},
					{
						FieldName: models.FieldDocuments,
						Title:     "Which supporting documents are provided?",
						Variant:   journey.MultiSelect{Options: documentOptions},
					},
					{
						FieldName:  models.FieldProcedureType,
						Title:      "How should the application be examined?",
						Variant:    journey.SingleSelect{Options: procedureOptions()},
						Validators: []journey.Validator{journey.RequiredOption("select a procedure")},
					},
					{
						FieldName: models.FieldEventDate,
						Title:     "When does the first sitting take place?",
						Variant:   journey.Date{},
						When:      journey.WhenExpr(`procedureType in ["hearing", "inquiry"]`),
					},
					{
						FieldName: models.FieldConsultation,
						Title:     "Consultation period",
						Variant:   journey.DatePeriod{},
					},
				},
			},
		},
	}
}

func procedureOptions() []journey.Option {
	return []journey.Option{
		{Value: string(models.ProcedureWritten), Label: "Written representations"},
		{Value: string(models.ProcedureHearing), Label: "Hearing"},
		{Value: string(models.ProcedureInquiry), Label: "Inquiry"},
	}
}

// Prerequisite names an answer that must be present before a case can pass
// its received transition. Segment locates the question for the conflict
// banner's change link.
type Prerequisite struct {
	Field   string
	Segment string
	Message string
}

// CrownPrerequisites lists the answers the received transition requires.
func CrownPrerequisites() []Prerequisite {
	return []Prerequisite{
		{Field: models.FieldDescription, Segment: "overview", Message: "describe the proposed development before submitting"},
		{Field: models.FieldLocalAuthority, Segment: "overview", Message: "select the local authority before submitting"},
		{Field: models.FieldDecidingAuthority, Segment: "overview", Message: "select the deciding authority before submitting"},
		{Field: models.FieldApplicantName, Segment: "applicant", Message: "enter the applicant's name before submitting"},
		{Field: models.FieldProcedureType, Segment: "procedure", Message: "select a procedure before submitting"},
	}
}

// Definitions returns every registered journey keyed by id.
func Definitions() map[string]journey.Definition {
	return map[string]journey.Definition{
		CrownJourneyID: CrownJourney(),
	}
}
