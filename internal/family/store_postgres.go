package family

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"mutuelle/pkg/domain"
	"mutuelle/pkg/platform/sentinel"
	txcontext "mutuelle/pkg/platform/tx"
)

// PostgresStore persists family members in the family_members table. All
// operations join a caller transaction when one is present in context, so the
// eligibility re-check and the insert read and write the same snapshot.
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

const memberColumns = `id, owner_id, first_name, last_name, national_id, birth_certificate_ref, birth_date, relation, created_at, justification_document`

func (s *PostgresStore) Get(ctx context.Context, id domain.FamilyMemberID) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM family_members WHERE id = $1`
	m, err := scanMember(s.querier(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get family member: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID domain.MemberID) ([]Member, error) {
	query := `SELECT ` + memberColumns + ` FROM family_members WHERE owner_id = $1 ORDER BY created_at`
	rows, err := s.querier(ctx).QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate family members: %w", err)
	}
	return members, nil
}

func (s *PostgresStore) Insert(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO family_members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.querier(ctx).ExecContext(ctx, query,
		uuid.UUID(member.ID),
		uuid.UUID(member.OwnerID),
		member.FirstName,
		member.LastName,
		member.NationalID,
		member.BirthCertificateRef,
		member.BirthDate,
		member.Relation.String(),
		member.CreatedAt,
		member.JustificationDocument,
	)
	if err != nil {
		return fmt.Errorf("insert family member: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, member *Member) error {
	query := `
		UPDATE family_members SET
			first_name = $2,
			last_name = $3,
			national_id = $4,
			birth_certificate_ref = $5,
			birth_date = $6,
			relation = $7,
			justification_document = $8
		WHERE id = $1
	`
	res, err := s.querier(ctx).ExecContext(ctx, query,
		uuid.UUID(member.ID),
		member.FirstName,
		member.LastName,
		member.NationalID,
		member.BirthCertificateRef,
		member.BirthDate,
		member.Relation.String(),
		member.JustificationDocument,
	)
	if err != nil {
		return fmt.Errorf("update family member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update family member: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*Member, error) {
	var (
		m        Member
		id       uuid.UUID
		ownerID  uuid.UUID
		relation string
	)
	err := row.Scan(
		&id,
		&ownerID,
		&m.FirstName,
		&m.LastName,
		&m.NationalID,
		&m.BirthCertificateRef,
		&m.BirthDate,
		&relation,
		&m.CreatedAt,
		&m.JustificationDocument,
	)
	if err != nil {
		return nil, err
	}
	m.ID = domain.FamilyMemberID(id)
	m.OwnerID = domain.MemberID(ownerID)
	m.Relation = domain.Relation(relation)
	return &m, nil
}
