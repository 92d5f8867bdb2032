// internal/pipeline/store.go
package pipeline

import (
	"context"
	"errors"
	"time"

	"hiring-pipeline/internal/models"
)

// Storage-layer sentinels surfaced through the store interfaces. Duplicate
// detection relies on database uniqueness constraints, not application-level
// checks, so concurrent redelivery cannot race past the idempotency guard.
var (
	ErrDuplicateSubmission = errors.New("duplicate submission id")
	ErrOpenInterviewExists = errors.New("open interview already exists")
)

// Store aggregates the persistence contracts the pipeline engine requires.
// WithTx runs fn against a transaction-bound Store; the engine wraps each
// transition's mutations and its audit write in one such unit.
type Store interface {
	Persons() PersonStore
	Applications() ApplicationStore
	Assessments() AssessmentStore
	Interviews() InterviewStore
	Audit() AuditStore
	WithTx(ctx context.Context, fn func(Store) error) error
}

type PersonStore interface {
	Create(ctx context.Context, p *models.Person) error
	GetByID(ctx context.Context, id string) (*models.Person, error)
	// GetByEmail returns (nil, nil) when no person matches.
	GetByEmail(ctx context.Context, email string) (*models.Person, error)
	SetGeneralCompetencies(ctx context.Context, personID string, completed, passed bool) error
}

type ApplicationStore interface {
	// Create returns ErrDuplicateSubmission when the submission id is taken.
	Create(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	// GetBySubmissionID returns (nil, nil) when no application matches.
	GetBySubmissionID(ctx context.Context, submissionID string) (*models.Application, error)
	// OpenAtStage lists a person's non-terminal (ACTIVE or ACCEPTED)
	// applications at any of the given stages, most recent first.
	OpenAtStage(ctx context.Context, personID string, stages ...models.Stage) ([]*models.Application, error)
	// CountOtherActiveAtStage counts the person's other ACTIVE applications
	// already at the stage; the GC-invite dedup check.
	CountOtherActiveAtStage(ctx context.Context, personID, excludeAppID string, stage models.Stage) (int, error)
	SetStage(ctx context.Context, id string, stage models.Stage) error
	SetStatus(ctx context.Context, id string, status models.Status, reason *string) error
	SetStageStatus(ctx context.Context, id string, stage models.Stage, status models.Status) error
	Delete(ctx context.Context, id string) error
}

type AssessmentStore interface {
	// Create returns ErrDuplicateSubmission when the submission id is taken.
	Create(ctx context.Context, a *models.Assessment) error
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	// GetBySubmissionID returns (nil, nil) when no assessment matches.
	GetBySubmissionID(ctx context.Context, submissionID string) (*models.Assessment, error)
	SetReview(ctx context.Context, id string, passed bool, reviewedBy string, reviewedAt time.Time) error
}

type InterviewStore interface {
	// Create returns ErrOpenInterviewExists when the application already has
	// a non-completed interview.
	Create(ctx context.Context, i *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	// OpenByApplication returns the single open interview, or (nil, nil).
	OpenByApplication(ctx context.Context, applicationID string) (*models.Interview, error)
	Complete(ctx context.Context, id string, notes string, completedAt time.Time) error
	Reschedule(ctx context.Context, id string, link string, scheduledAt *time.Time) error
	SetEmailSent(ctx context.Context, id string, at time.Time) error
}

// AuditStore is append-only; nothing ever updates or deletes an entry.
type AuditStore interface {
	Append(ctx context.Context, e *models.AuditEntry) error
}
