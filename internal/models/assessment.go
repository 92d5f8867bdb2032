// internal/models/assessment.go
package models

import "time"

// AssessmentType distinguishes the two competency tests of the pipeline.
type AssessmentType string

const (
	AssessmentGeneral     AssessmentType = "GENERAL_COMPETENCIES"
	AssessmentSpecialized AssessmentType = "SPECIALIZED_COMPETENCIES"
)

// Assessment is the result of one competency test tied to an application.
// A specialized assessment submitted without a numeric score is stored
// unreviewed (Passed == nil) until a staff review decides it.
type Assessment struct {
	ID            string         `json:"id"`
	ApplicationID string         `json:"applicationId"`
	Type          AssessmentType `json:"type"`

	Score     *float64 `json:"score,omitempty"`
	Threshold float64  `json:"threshold"`
	Passed    *bool    `json:"passed,omitempty"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy  *string    `json:"reviewedBy,omitempty"`

	// SubmissionID is the external submission identifier (idempotency key).
	SubmissionID string `json:"submissionId"`
	RawPayload   []byte `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// Reviewed reports whether a pass/fail outcome has been recorded.
func (a *Assessment) Reviewed() bool {
	return a.Passed != nil
}
