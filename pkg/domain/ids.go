// Package domain holds shared domain primitives: typed identifiers and the
// case reference format. Construct values via the Parse functions at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "casework/pkg/domain-errors"
)

// Typed identifiers. Distinct types keep a contact ID from being passed where
// a case ID is expected; the compiler enforces the distinction.
type (
	CaseID    uuid.UUID
	ContactID uuid.UUID
	AddressID uuid.UUID
	EventID   uuid.UUID
)

func (id CaseID) String() string    { return uuid.UUID(id).String() }
func (id ContactID) String() string { return uuid.UUID(id).String() }
func (id AddressID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string   { return uuid.UUID(id).String() }

func (id CaseID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ContactID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AddressID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// NewCaseID allocates a fresh case identifier.
func NewCaseID() CaseID { return CaseID(uuid.New()) }

// ParseCaseID constructs a CaseID from external input.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return CaseID{}, err
	}
	return CaseID(u), nil
}

// ParseContactID constructs a ContactID from external input.
func ParseContactID(s string) (ContactID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ContactID{}, err
	}
	return ContactID(u), nil
}

// ParseAddressID constructs an AddressID from external input.
func ParseAddressID(s string) (AddressID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return AddressID{}, err
	}
	return AddressID(u), nil
}

// ParseEventID constructs an EventID from external input.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return EventID{}, err
	}
	return EventID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	if !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be valid UTF-8")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
