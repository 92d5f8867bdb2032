// internal/store/store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hiring-pipeline/internal/pipeline"

	"github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every sub-store works
// unchanged inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLStore implements pipeline.Store on PostgreSQL.
type SQLStore struct {
	db *sql.DB
	q  querier
}

func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

func (s *SQLStore) Persons() pipeline.PersonStore           { return &personStore{q: s.q} }
func (s *SQLStore) Applications() pipeline.ApplicationStore { return &applicationStore{q: s.q} }
func (s *SQLStore) Assessments() pipeline.AssessmentStore   { return &assessmentStore{q: s.q} }
func (s *SQLStore) Interviews() pipeline.InterviewStore     { return &interviewStore{q: s.q} }
func (s *SQLStore) Audit() pipeline.AuditStore              { return &auditStore{q: s.q} }

// WithTx runs fn against a transaction-bound store. Calls nested inside an
// existing transaction reuse it.
func (s *SQLStore) WithTx(ctx context.Context, fn func(pipeline.Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&SQLStore{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation, optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

var _ pipeline.Store = (*SQLStore)(nil)
