package benefit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"mutuelle/pkg/domain"
	"mutuelle/pkg/platform/sentinel"
	txcontext "mutuelle/pkg/platform/tx"
)

// PostgresStore persists benefit requests in the benefit_requests table. All
// operations join a caller transaction when one is present in context, so the
// status re-read and the transition write observe the same row version.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const requestColumns = `id, member_id, member_name, benefit_type, beneficiary_id, beneficiary_name, beneficiary_relation,
	amount, event_date, status, submitted_at, controller_id, controller_name, processed_at,
	administrator_id, administrator_name, validated_at, comment, justification_document,
	payment_method, payment_bank_name, payment_iban, payment_operator, payment_phone, payment_office`

func (s *PostgresStore) Get(ctx context.Context, id domain.RequestID) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM benefit_requests WHERE id = $1`
	if _, ok := txcontext.From(ctx); ok {
		// Inside a transition the read must lock the row: a second writer
		// waits here and then observes the committed status, so at most one
		// concurrent transition per request can apply.
		query += ` FOR UPDATE`
	}
	r, err := scanRequest(s.querier(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get benefit request: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) Insert(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO benefit_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	_, err := s.querier(ctx).ExecContext(ctx, query, requestArgs(req)...)
	if err != nil {
		return fmt.Errorf("insert benefit request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, req *Request) error {
	query := `
		UPDATE benefit_requests SET
			status = $2,
			controller_id = $3,
			controller_name = $4,
			processed_at = $5,
			administrator_id = $6,
			administrator_name = $7,
			validated_at = $8,
			comment = $9
		WHERE id = $1
	`
	res, err := s.querier(ctx).ExecContext(ctx, query,
		uuid.UUID(req.ID),
		req.Status.String(),
		nullableID(req.ControllerID),
		req.ControllerName,
		req.ProcessedAt,
		nullableID(req.AdministratorID),
		req.AdministratorName,
		req.ValidatedAt,
		req.Comment,
	)
	if err != nil {
		return fmt.Errorf("update benefit request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update benefit request: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByMember(ctx context.Context, memberID domain.MemberID) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM benefit_requests WHERE member_id = $1 ORDER BY submitted_at`
	return s.list(ctx, query, uuid.UUID(memberID))
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM benefit_requests ORDER BY submitted_at`
	return s.list(ctx, query)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list benefit requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan benefit request: %w", err)
		}
		requests = append(requests, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate benefit requests: %w", err)
	}
	return requests, nil
}

func requestArgs(req *Request) []any {
	return []any{
		uuid.UUID(req.ID),
		uuid.UUID(req.MemberID),
		req.MemberName,
		req.Type.String(),
		req.Beneficiary.ID,
		req.Beneficiary.Name,
		string(req.Beneficiary.Relation),
		req.Amount,
		req.EventDate,
		req.Status.String(),
		req.SubmittedAt,
		nullableID(req.ControllerID),
		req.ControllerName,
		req.ProcessedAt,
		nullableID(req.AdministratorID),
		req.AdministratorName,
		req.ValidatedAt,
		req.Comment,
		req.JustificationDocument,
		req.Payment.Method.String(),
		req.Payment.BankName,
		req.Payment.IBAN,
		req.Payment.Operator,
		req.Payment.Phone,
		req.Payment.Office,
	}
}

// nullableID maps the zero member id to NULL so unset actor columns stay null
// until the corresponding transition fills them.
func nullableID(id domain.MemberID) any {
	if id.IsNil() {
		return nil
	}
	return uuid.UUID(id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var (
		r               Request
		id              uuid.UUID
		memberID        uuid.UUID
		benefitType     string
		relation        string
		status          string
		controllerID    uuid.NullUUID
		administratorID uuid.NullUUID
		paymentMethod   string
	)
	err := row.Scan(
		&id,
		&memberID,
		&r.MemberName,
		&benefitType,
		&r.Beneficiary.ID,
		&r.Beneficiary.Name,
		&relation,
		&r.Amount,
		&r.EventDate,
		&status,
		&r.SubmittedAt,
		&controllerID,
		&r.ControllerName,
		&r.ProcessedAt,
		&administratorID,
		&r.AdministratorName,
		&r.ValidatedAt,
		&r.Comment,
		&r.JustificationDocument,
		&paymentMethod,
		&r.Payment.BankName,
		&r.Payment.IBAN,
		&r.Payment.Operator,
		&r.Payment.Phone,
		&r.Payment.Office,
	)
	if err != nil {
		return nil, err
	}
	r.ID = domain.RequestID(id)
	r.MemberID = domain.MemberID(memberID)
	r.Type = domain.BenefitType(benefitType)
	r.Beneficiary.Relation = domain.Relation(relation)
	r.Status = domain.RequestStatus(status)
	if controllerID.Valid {
		r.ControllerID = domain.MemberID(controllerID.UUID)
	}
	if administratorID.Valid {
		r.AdministratorID = domain.MemberID(administratorID.UUID)
	}
	r.Payment.Method = PaymentMethod(paymentMethod)
	return &r, nil
}
