package main

import (
	"context"
	"database/sql"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"mutuelle/internal/benefit"
	"mutuelle/internal/family"
	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
	txcontext "mutuelle/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// runInTx opens a transaction, places it in context so every store call made
// by fn joins it, and commits only if fn succeeds. Audit appends made inside
// fn ride the same transaction, so a failed append rolls the decision back.
func runInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTxTimeout)
		defer cancel()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

type familyPostgresTx struct {
	db    *sql.DB
	store family.Store
}

func newFamilyPostgresTx(db *sql.DB, store family.Store) *familyPostgresTx {
	return &familyPostgresTx{db: db, store: store}
}

// RunInTx serializes family mutations per owner with a transaction-scoped
// advisory lock, so a second writer's eligibility re-check observes the first
// writer's committed insert rather than a snapshot where the cap looks free.
func (t *familyPostgresTx) RunInTx(ctx context.Context, ownerID domain.MemberID, fn func(ctx context.Context, store family.Store) error) error {
	return runInTx(ctx, t.db, func(ctx context.Context) error {
		if err := lockOwner(ctx, ownerID); err != nil {
			return err
		}
		return fn(ctx, t.store)
	})
}

// lockOwner takes pg_advisory_xact_lock keyed on the owner id. The lock is
// released at commit or rollback with the transaction that holds it.
func lockOwner(ctx context.Context, ownerID domain.MemberID) error {
	tx, ok := txcontext.From(ctx)
	if !ok {
		return nil
	}
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryKey(uuid.UUID(ownerID)))
	return err
}

// advisoryKey folds a uuid into the signed 64-bit keyspace Postgres advisory
// locks use.
func advisoryKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write(id[:])
	return int64(h.Sum64())
}

type benefitPostgresTx struct {
	db    *sql.DB
	store benefit.Store
}

func newBenefitPostgresTx(db *sql.DB, store benefit.Store) *benefitPostgresTx {
	return &benefitPostgresTx{db: db, store: store}
}

func (t *benefitPostgresTx) RunInTx(ctx context.Context, _ domain.RequestID, fn func(ctx context.Context, store benefit.Store) error) error {
	return runInTx(ctx, t.db, func(ctx context.Context) error {
		return fn(ctx, t.store)
	})
}
