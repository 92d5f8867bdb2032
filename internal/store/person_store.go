// internal/store/person_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hiring-pipeline/internal/models"
)

type personStore struct {
	q querier
}

const personColumns = `id, email, first_name, last_name, phone,
	gc_completed, gc_passed, created_at, updated_at`

func (s *personStore) Create(ctx context.Context, p *models.Person) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO persons (id, email, first_name, last_name, phone, gc_completed, gc_passed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		p.ID, p.Email, p.FirstName, p.LastName, nullString(p.Phone),
		p.GeneralCompetenciesCompleted, nullBool(p.GeneralCompetenciesPassed), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (s *personStore) GetByID(ctx context.Context, id string) (*models.Person, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, id)
	return scanPerson(row)
}

func (s *personStore) GetByEmail(ctx context.Context, email string) (*models.Person, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE email = $1`, email)
	return scanPerson(row)
}

func (s *personStore) SetGeneralCompetencies(ctx context.Context, personID string, completed, passed bool) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE persons SET gc_completed = $2, gc_passed = $3, updated_at = NOW()
		WHERE id = $1`,
		personID, completed, passed,
	)
	if err != nil {
		return fmt.Errorf("update person competencies: %w", err)
	}
	return requireRow(res, "person", personID)
}

func scanPerson(row *sql.Row) (*models.Person, error) {
	var p models.Person
	var phone sql.NullString
	var passed sql.NullBool
	err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &phone,
		&p.GeneralCompetenciesCompleted, &passed, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan person: %w", err)
	}
	if phone.Valid {
		p.Phone = phone.String
	}
	if passed.Valid {
		p.GeneralCompetenciesPassed = &passed.Bool
	}
	return &p, nil
}
