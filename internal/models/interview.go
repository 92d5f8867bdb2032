// internal/models/interview.go
package models

import "time"

// InterviewOutcome is the recorded result of an interview.
type InterviewOutcome string

const (
	InterviewPending   InterviewOutcome = "PENDING"
	InterviewCompleted InterviewOutcome = "COMPLETED"
)

// Interview is one scheduled or completed interview for an application.
// At most one open (non-completed) interview exists per application,
// enforced by a partial unique index.
type Interview struct {
	ID            string `json:"id"`
	ApplicationID string `json:"applicationId"`
	InterviewerID string `json:"interviewerId"`

	SchedulingLink string     `json:"schedulingLink"`
	ScheduledAt    *time.Time `json:"scheduledAt,omitempty"`
	Notes          *string    `json:"notes,omitempty"`

	Outcome     InterviewOutcome `json:"outcome"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	EmailSentAt *time.Time       `json:"emailSentAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Open reports whether the interview still awaits completion.
func (i *Interview) Open() bool {
	return i.CompletedAt == nil
}
