// Package models holds the persisted case record graph and its mapping into
// the flat answer shape the journey engine works with.
package models

import (
	"time"
)

// CaseStatus tracks the record through its lifecycle.
type CaseStatus string

const (
	CaseStatusDraft    CaseStatus = "draft"
	CaseStatusReceived CaseStatus = "received"
	CaseStatusClosed   CaseStatus = "closed"
)

// ProcedureType selects how a case is examined. A scheduled event belongs to
// the procedure that was selected when it was created; switching procedure
// orphans it.
type ProcedureType string

const (
	ProcedureWritten ProcedureType = "written"
	ProcedureHearing ProcedureType = "hearing"
	ProcedureInquiry ProcedureType = "inquiry"
)

// Address is a postal address row. Kind distinguishes the site address from
// neighbouring addresses collected as a list.
type Address struct {
	ID       string `json:"id"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	Town     string `json:"town"`
	Postcode string `json:"postcode"`
}

// Contact is an applicant or agent contact row.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ScheduledEvent is the hearing or inquiry sitting attached to a case.
type ScheduledEvent struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Date string `json:"date"`
}

// CaseRecord is the aggregate the commit mapper writes and the snapshot
// loader reads. It is mapped into the answer shape by ToAnswerSet; the
// journey engine never touches it directly.
type CaseRecord struct {
	ID        string
	Reference string
	Status    CaseStatus

	Description         string
	DescriptionRedacted string

	Applicant *Contact
	HasAgent  string
	Agent     *Contact

	SiteAddress *Address
	Neighbours  []Address

	LocalAuthority      string
	DecidingAuthority   string
	CategoryCode        string
	CategoryOtherLabel  string
	SupportingDocuments string

	ProcedureType ProcedureType
	Event         *ScheduledEvent

	ConsultationStart string
	ConsultationEnd   string

	ReceivedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Received reports whether the case has passed the received transition.
func (c *CaseRecord) Received() bool {
	return c.Status == CaseStatusReceived && c.ReceivedAt != nil
}
