package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"casework/internal/casework/models"
	"casework/pkg/platform/sentinel"
	"casework/pkg/platform/tx"
)

// PostgresStore persists case records in PostgreSQL. Reads go through
// tx.QuerierFor so a snapshot loaded during a commit shares the commit's
// transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed case store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByReference(ctx context.Context, reference string) (*models.CaseRecord, error) {
	q := tx.QuerierFor(ctx, s.db)

	record := &models.CaseRecord{}
	var (
		applicantID, agentID, siteAddressID, eventID sql.NullString
		receivedAt                                   sql.NullTime
	)
	// Create writes only identity and status; every other column stays NULL
	// until the commit executor first touches it, so optional columns are
	// coalesced rather than scanned raw.
	err := q.QueryRowContext(ctx, `
		SELECT id, reference, status,
		       COALESCE(description, ''), COALESCE(description_redacted, ''),
		       COALESCE(has_agent, ''), COALESCE(local_authority, ''),
		       COALESCE(deciding_authority, ''),
		       COALESCE(category_code, ''), COALESCE(category_detail, ''),
		       COALESCE(supporting_documents, ''),
		       COALESCE(procedure_type, ''),
		       COALESCE(consultation_start, ''), COALESCE(consultation_end, ''),
		       applicant_id, agent_id, site_address_id, event_id,
		       received_at, created_at, updated_at
		FROM cases WHERE reference = $1`, reference).Scan(
		&record.ID, &record.Reference, &record.Status,
		&record.Description, &record.DescriptionRedacted,
		&record.HasAgent, &record.LocalAuthority, &record.DecidingAuthority,
		&record.CategoryCode, &record.CategoryOtherLabel, &record.SupportingDocuments,
		&record.ProcedureType, &record.ConsultationStart, &record.ConsultationEnd,
		&applicantID, &agentID, &siteAddressID, &eventID,
		&receivedAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find case by reference: %w", err)
	}
	if receivedAt.Valid {
		t := receivedAt.Time
		record.ReceivedAt = &t
	}

	if record.Applicant, err = s.contact(ctx, q, applicantID); err != nil {
		return nil, err
	}
	if record.Agent, err = s.contact(ctx, q, agentID); err != nil {
		return nil, err
	}
	if record.SiteAddress, err = s.address(ctx, q, siteAddressID); err != nil {
		return nil, err
	}
	if record.Event, err = s.event(ctx, q, eventID); err != nil {
		return nil, err
	}
	if record.Neighbours, err = s.neighbours(ctx, q, record.ID); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *PostgresStore) Create(ctx context.Context, record *models.CaseRecord) error {
	q := tx.QuerierFor(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO cases (id, reference, status, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())`,
		record.ID, record.Reference, string(record.Status),
	)
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentReferences(ctx context.Context, limit int) ([]string, error) {
	q := tx.QuerierFor(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT reference FROM cases ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent references: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent references: %w", err)
	}
	return refs, nil
}

func (s *PostgresStore) MarkReceived(ctx context.Context, reference string, at time.Time) error {
	q := tx.QuerierFor(ctx, s.db)
	result, err := q.ExecContext(ctx, `
		UPDATE cases SET status = $1, received_at = $2, updated_at = now()
		WHERE reference = $3 AND status = $4`,
		string(models.CaseStatusReceived), at, reference, string(models.CaseStatusDraft),
	)
	if err != nil {
		return fmt.Errorf("mark case received: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark case received: %w", err)
	}
	if affected == 0 {
		// Either the reference is unknown or the case already left draft.
		var status string
		err := q.QueryRowContext(ctx, `SELECT status FROM cases WHERE reference = $1`, reference).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("mark case received: %w", err)
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) contact(ctx context.Context, q tx.Querier, id sql.NullString) (*models.Contact, error) {
	if !id.Valid || id.String == "" {
		return nil, nil
	}
	c := &models.Contact{}
	err := q.QueryRowContext(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, '')
		FROM contacts WHERE id = $1`, id.String).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load contact: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) address(ctx context.Context, q tx.Querier, id sql.NullString) (*models.Address, error) {
	if !id.Valid || id.String == "" {
		return nil, nil
	}
	a := &models.Address{}
	err := q.QueryRowContext(ctx, `
		SELECT id, COALESCE(line1, ''), COALESCE(line2, ''),
		       COALESCE(town, ''), COALESCE(postcode, '')
		FROM addresses WHERE id = $1`, id.String).
		Scan(&a.ID, &a.Line1, &a.Line2, &a.Town, &a.Postcode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load address: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) event(ctx context.Context, q tx.Querier, id sql.NullString) (*models.ScheduledEvent, error) {
	if !id.Valid || id.String == "" {
		return nil, nil
	}
	e := &models.ScheduledEvent{}
	err := q.QueryRowContext(ctx, `
		SELECT id, COALESCE(kind, ''), COALESCE(date, '')
		FROM scheduled_events WHERE id = $1`, id.String).
		Scan(&e.ID, &e.Kind, &e.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load scheduled event: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) neighbours(ctx context.Context, q tx.Querier, caseID string) ([]models.Address, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, COALESCE(line1, ''), COALESCE(line2, ''),
		       COALESCE(town, ''), COALESCE(postcode, '')
		FROM neighbour_addresses WHERE case_id = $1 ORDER BY created_at`, caseID)
	if err != nil {
		return nil, fmt.Errorf("load neighbour addresses: %w", err)
	}
	defer rows.Close()

	var addrs []models.Address
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.Line1, &a.Line2, &a.Town, &a.Postcode); err != nil {
			return nil, fmt.Errorf("scan neighbour address: %w", err)
		}
		addrs = append(addrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load neighbour addresses: %w", err)
	}
	return addrs, nil
}
