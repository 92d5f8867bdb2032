// internal/models/person.go
package models

import "time"

// Person is a candidate's identity, shared across their applications.
// Matched by email on each inbound application webhook.
type Person struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`

	// GeneralCompetenciesCompleted flips once the person has submitted the
	// GC assessment on any application; GeneralCompetenciesPassed records
	// the outcome and routes their subsequent applications.
	GeneralCompetenciesCompleted bool  `json:"generalCompetenciesCompleted"`
	GeneralCompetenciesPassed    *bool `json:"generalCompetenciesPassed,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName joins the name fields for display and email templates.
func (p *Person) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
