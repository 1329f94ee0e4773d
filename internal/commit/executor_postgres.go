package commit

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/tx"
)

const defaultCommitTimeout = 5 * time.Second

// TableSpec maps a relation name onto its table and its links to the case
// row. CaseFK is the relation table's column pointing at the case;
// CasePointer, when set, is the cases-table column pointing at the relation
// (used by connect and disconnect).
type TableSpec struct {
	Table       string
	CaseFK      string
	CasePointer string
}

// PostgresExecutor applies a plan inside a single database transaction. The
// transaction is stored in context via pkg/platform/tx so any store reads
// issued by appliers share it.
type PostgresExecutor struct {
	db      *sql.DB
	tables  map[string]TableSpec
	timeout time.Duration
}

// NewPostgresExecutor constructs an executor with the given relation mapping.
func NewPostgresExecutor(db *sql.DB, tables map[string]TableSpec) *PostgresExecutor {
	return &PostgresExecutor{db: db, tables: tables, timeout: defaultCommitTimeout}
}

// Execute applies every op or none. On failure the transaction rolls back
// and the error is wrapped as a retryable persistence failure; callers leave
// the draft untouched so the user can try again.
func (e *PostgresExecutor) Execute(ctx context.Context, reference string, ops []Op) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "commit aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	sqlTx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to start commit transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	ctx = tx.WithTx(ctx, sqlTx)

	caseID, err := e.caseID(ctx, sqlTx, reference)
	if err != nil {
		return err
	}

	for _, op := range ops {
		if err := e.apply(ctx, sqlTx, caseID, op); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save answers")
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit answers")
	}
	return nil
}

func (e *PostgresExecutor) caseID(ctx context.Context, sqlTx *sql.Tx, reference string) (string, error) {
	var id string
	err := sqlTx.QueryRowContext(ctx, `SELECT id FROM cases WHERE reference = $1`, reference).Scan(&id)
	if err == sql.ErrNoRows {
		return "", dErrors.New(dErrors.CodeNotFound, "unknown case reference")
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return id, nil
}

func (e *PostgresExecutor) apply(ctx context.Context, sqlTx *sql.Tx, caseID string, op Op) error {
	if op.Relation == CaseRelation {
		if op.Kind != KindUpdate {
			return fmt.Errorf("case relation only supports update, got %s", op.Kind)
		}
		return e.updateCase(ctx, sqlTx, caseID, op.Values)
	}

	spec, ok := e.tables[op.Relation]
	if !ok {
		return fmt.Errorf("no table mapping for relation %q", op.Relation)
	}

	switch op.Kind {
	case KindCreate:
		return e.upsertRow(ctx, sqlTx, caseID, spec, newRowID(op.Values), op.Values)
	case KindUpsert:
		id, _ := op.Match["id"].(string)
		if id == "" {
			id = newRowID(op.Values)
		}
		return e.upsertRow(ctx, sqlTx, caseID, spec, id, op.Values)
	case KindConnect:
		return e.setCasePointer(ctx, sqlTx, caseID, spec, op.Match["id"])
	case KindDisconnect:
		return e.setCasePointer(ctx, sqlTx, caseID, spec, nil)
	case KindDelete:
		return e.deleteRow(ctx, sqlTx, caseID, spec, op.Match)
	default:
		return fmt.Errorf("unsupported op kind %q for relation %q", op.Kind, op.Relation)
	}
}

func (e *PostgresExecutor) updateCase(ctx context.Context, sqlTx *sql.Tx, caseID string, values map[string]any) error {
	columns := sortedKeys(values)
	sets := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, values[col])
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, caseID)
	query := fmt.Sprintf(`UPDATE cases SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	_, err := sqlTx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	return nil
}

// upsertRow writes a relation row keyed on its id, attaching it to the case
// and, for pointer relations, pointing the case at it.
func (e *PostgresExecutor) upsertRow(ctx context.Context, sqlTx *sql.Tx, caseID string, spec TableSpec, id string, values map[string]any) error {
	columns := sortedKeys(values)
	// id is carried in Match, not Values.
	filtered := columns[:0]
	for _, col := range columns {
		if col != "id" {
			filtered = append(filtered, col)
		}
	}
	columns = filtered

	insertCols := append([]string{"id", spec.CaseFK}, columns...)
	placeholders := make([]string, len(insertCols))
	args := make([]any, 0, len(insertCols))
	args = append(args, id, caseID)
	for i := range insertCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	var updates []string
	for _, col := range columns {
		args = append(args, values[col])
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	if len(updates) == 0 {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", spec.CaseFK, spec.CaseFK))
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s`,
		spec.Table, strings.Join(insertCols, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "),
	)
	if _, err := sqlTx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", spec.Table, err)
	}

	if spec.CasePointer != "" {
		return e.setCasePointer(ctx, sqlTx, caseID, spec, id)
	}
	return nil
}

func (e *PostgresExecutor) setCasePointer(ctx context.Context, sqlTx *sql.Tx, caseID string, spec TableSpec, id any) error {
	if spec.CasePointer == "" {
		return fmt.Errorf("relation %s has no case pointer", spec.Table)
	}
	query := fmt.Sprintf(`UPDATE cases SET %s = $1, updated_at = now() WHERE id = $2`, spec.CasePointer)
	if _, err := sqlTx.ExecContext(ctx, query, id, caseID); err != nil {
		return fmt.Errorf("point case at %s: %w", spec.Table, err)
	}
	return nil
}

func (e *PostgresExecutor) deleteRow(ctx context.Context, sqlTx *sql.Tx, caseID string, spec TableSpec, match map[string]any) error {
	if id, ok := match["id"].(string); ok && id != "" {
		query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND %s = $2`, spec.Table, spec.CaseFK)
		if _, err := sqlTx.ExecContext(ctx, query, id, caseID); err != nil {
			return fmt.Errorf("delete from %s: %w", spec.Table, err)
		}
	} else {
		// No identity: clear every dependent row of this case.
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, spec.Table, spec.CaseFK)
		if _, err := sqlTx.ExecContext(ctx, query, caseID); err != nil {
			return fmt.Errorf("delete from %s: %w", spec.Table, err)
		}
	}
	if spec.CasePointer != "" {
		return e.setCasePointer(ctx, sqlTx, caseID, spec, nil)
	}
	return nil
}

func newRowID(values map[string]any) string {
	if id, ok := values["id"].(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
