package models

import (
	"casework/internal/journey"
)

// Answer-set field names shared by the journey definitions, the snapshot
// mapping, and the commit mapper. One constant per field keeps the three in
// step; the engine itself only ever sees the strings.
const (
	FieldDescription       = "description"
	FieldApplicantName     = "applicantName"
	FieldApplicantEmail    = "applicantEmail"
	FieldApplicantPhone    = "applicantPhone"
	FieldApplicantID       = "applicantId"
	FieldHasAgent          = "hasAgent"
	FieldAgentName         = "agentName"
	FieldAgentEmail        = "agentEmail"
	FieldAgentID           = "agentId"
	FieldSiteAddress       = "siteAddress"
	FieldSiteAddressID     = "siteAddressId"
	FieldNeighbours        = "neighbours"
	FieldLocalAuthority    = "localAuthority"
	FieldDecidingAuthority = "decidingAuthority"
	FieldCategory          = "category"
	FieldProcedureType     = "procedureType"
	FieldEventDate         = "eventDate"
	FieldEventID           = "eventId"
	FieldEventKind         = "eventKind"
	FieldDocuments         = "supportingDocuments"
	FieldConsultation      = "consultationPeriod"
)

// CategoryOtherSub is the conditional sub-question attached to the "other"
// category option.
var CategoryOtherSub = journey.SubQuestion{Name: "detail", Title: "Describe the category"}

// ToAnswerSet maps a persisted case onto the flat answer shape. The result
// is the backing-store view-model the session draft reconciles over.
func ToAnswerSet(c *CaseRecord) journey.AnswerSet {
	answers := journey.AnswerSet{
		FieldDescription:       c.Description,
		FieldHasAgent:          c.HasAgent,
		FieldLocalAuthority:    c.LocalAuthority,
		FieldDecidingAuthority: c.DecidingAuthority,
		FieldCategory:          c.CategoryCode,
		FieldProcedureType:     string(c.ProcedureType),
		FieldDocuments:         c.SupportingDocuments,
	}
	if c.DescriptionRedacted != "" {
		answers[FieldDescription+"_redacted"] = c.DescriptionRedacted
	}
	if c.CategoryOtherLabel != "" {
		answers[CategoryOtherSub.Key(FieldCategory)] = c.CategoryOtherLabel
	}
	if c.Applicant != nil {
		answers[FieldApplicantName] = c.Applicant.Name
		answers[FieldApplicantEmail] = c.Applicant.Email
		answers[FieldApplicantPhone] = c.Applicant.Phone
		answers[FieldApplicantID] = c.Applicant.ID
	}
	if c.Agent != nil {
		answers[FieldAgentName] = c.Agent.Name
		answers[FieldAgentEmail] = c.Agent.Email
		answers[FieldAgentID] = c.Agent.ID
	}
	if c.SiteAddress != nil {
		answers[FieldSiteAddress] = addressRecord(*c.SiteAddress)
		answers[FieldSiteAddressID] = c.SiteAddress.ID
	}
	if len(c.Neighbours) > 0 {
		records := make([]journey.Record, 0, len(c.Neighbours))
		for _, addr := range c.Neighbours {
			records = append(records, addressRecord(addr))
		}
		answers[FieldNeighbours] = records
	}
	if c.Event != nil {
		answers[FieldEventDate] = c.Event.Date
		answers[FieldEventID] = c.Event.ID
		answers[FieldEventKind] = c.Event.Kind
	}
	if c.ConsultationStart != "" {
		answers[FieldConsultation+"_start"] = c.ConsultationStart
	}
	if c.ConsultationEnd != "" {
		answers[FieldConsultation+"_end"] = c.ConsultationEnd
	}
	return answers
}

func addressRecord(a Address) journey.Record {
	return journey.Record{
		journey.IdentityField: a.ID,
		"line1":               a.Line1,
		"line2":               a.Line2,
		"town":                a.Town,
		"postcode":            a.Postcode,
	}
}
