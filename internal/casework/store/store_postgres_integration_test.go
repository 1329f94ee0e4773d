//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"casework/internal/casework/models"
	"casework/internal/casework/store"
	"casework/pkg/platform/sentinel"
	"casework/pkg/testutil/containers"
)

// Schema mirrors production: only identity, reference and status are written
// at creation, every other column stays NULL until the commit executor first
// touches it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		name TEXT, email TEXT, phone TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id TEXT PRIMARY KEY,
		line1 TEXT, line2 TEXT, town TEXT, postcode TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS scheduled_events (
		id TEXT PRIMARY KEY,
		kind TEXT, date TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		reference TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		description TEXT, description_redacted TEXT,
		has_agent TEXT, local_authority TEXT, deciding_authority TEXT,
		category_code TEXT, category_detail TEXT, supporting_documents TEXT,
		procedure_type TEXT, consultation_start TEXT, consultation_end TEXT,
		applicant_id TEXT, agent_id TEXT, site_address_id TEXT, event_id TEXT,
		received_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS neighbour_addresses (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL,
		line1 TEXT, line2 TEXT, town TEXT, postcode TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Exec(s.T(), schema...)
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Exec(s.T(),
		`TRUNCATE cases, contacts, addresses, scheduled_events, neighbour_addresses`,
	)
}

func (s *PostgresStoreSuite) createCase(reference string) *models.CaseRecord {
	record := &models.CaseRecord{
		ID:        uuid.NewString(),
		Reference: reference,
		Status:    models.CaseStatusDraft,
	}
	s.Require().NoError(s.store.Create(context.Background(), record))
	return record
}

// A case straight out of Create has every optional column NULL; it must load
// back as a record with empty answers, not a scan failure.
func (s *PostgresStoreSuite) TestFreshCaseRoundTrips() {
	ctx := context.Background()
	created := s.createCase("CROWN/2026/0000001")

	got, err := s.store.FindByReference(ctx, "CROWN/2026/0000001")
	s.Require().NoError(err)

	s.Equal(created.ID, got.ID)
	s.Equal(models.CaseStatusDraft, got.Status)
	s.Empty(got.Description)
	s.Empty(got.HasAgent)
	s.Empty(got.ProcedureType)
	s.Nil(got.Applicant)
	s.Nil(got.Event)
	s.Nil(got.ReceivedAt)
	s.Empty(got.Neighbours)
}

// Related rows are written column-by-column as answers arrive, so a contact
// may hold only a name and an event only a date for a while.
func (s *PostgresStoreSuite) TestPartialRelatedRowsLoad() {
	ctx := context.Background()
	record := s.createCase("CROWN/2026/0000002")

	contactID := uuid.NewString()
	eventID := uuid.NewString()
	s.pg.Exec(s.T(),
		`INSERT INTO contacts (id, name) VALUES ('`+contactID+`', 'Ada Applicant')`,
		`INSERT INTO scheduled_events (id, date) VALUES ('`+eventID+`', '2026-10-01')`,
		`UPDATE cases SET applicant_id = '`+contactID+`', event_id = '`+eventID+`'
		 WHERE id = '`+record.ID+`'`,
	)

	got, err := s.store.FindByReference(ctx, "CROWN/2026/0000002")
	s.Require().NoError(err)

	s.Require().NotNil(got.Applicant)
	s.Equal("Ada Applicant", got.Applicant.Name)
	s.Empty(got.Applicant.Email)

	s.Require().NotNil(got.Event)
	s.Equal("2026-10-01", got.Event.Date)
	s.Empty(got.Event.Kind)
}

func (s *PostgresStoreSuite) TestFindUnknownReference() {
	_, err := s.store.FindByReference(context.Background(), "CROWN/2026/0000404")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRecentReferencesNewestFirst() {
	s.createCase("CROWN/2026/0000001")
	time.Sleep(10 * time.Millisecond)
	s.createCase("CROWN/2026/0000002")
	time.Sleep(10 * time.Millisecond)
	s.createCase("CROWN/2026/0000003")

	refs, err := s.store.RecentReferences(context.Background(), 2)
	s.Require().NoError(err)
	s.Equal([]string{"CROWN/2026/0000003", "CROWN/2026/0000002"}, refs)
}

func (s *PostgresStoreSuite) TestMarkReceived() {
	ctx := context.Background()
	s.createCase("CROWN/2026/0000001")
	at := time.Now().UTC().Truncate(time.Second)

	s.Require().NoError(s.store.MarkReceived(ctx, "CROWN/2026/0000001", at))

	got, err := s.store.FindByReference(ctx, "CROWN/2026/0000001")
	s.Require().NoError(err)
	s.True(got.Received())

	s.Require().ErrorIs(s.store.MarkReceived(ctx, "CROWN/2026/0000001", at), sentinel.ErrInvalidState)
	s.Require().ErrorIs(s.store.MarkReceived(ctx, "CROWN/2026/0000404", at), sentinel.ErrNotFound)
}
