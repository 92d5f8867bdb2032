// internal/models/application.go
package models

import "time"

// Application is one candidate's attempt at one position.
type Application struct {
	ID       string `json:"id"`
	PersonID string `json:"personId"`
	Position string `json:"position"`

	CurrentStage Stage  `json:"currentStage"`
	Status       Status `json:"status"`

	// SubmissionID is the external form submission identifier; unique,
	// and the idempotency key for webhook redelivery.
	SubmissionID string `json:"submissionId"`

	ResumeURL    *string `json:"resumeUrl,omitempty"`
	PortfolioURL *string `json:"portfolioUrl,omitempty"`
	ConsentGiven bool    `json:"consentGiven"`

	RejectionReason *string `json:"rejectionReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Open reports whether the application can still move through the pipeline.
func (a *Application) Open() bool {
	return a.Status == StatusActive
}
