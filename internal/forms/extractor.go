// internal/forms/extractor.go
package forms

import (
	"strings"
	"time"

	apperrors "hiring-pipeline/internal/common/errors"
)

// Extractor turns verified webhook envelopes into typed domain records.
// It is a pure payload transform: no storage access, no side effects.
type Extractor struct {
	table *Table
}

func NewExtractor(table *Table) *Extractor {
	return &Extractor{table: table}
}

// PersonData is the candidate identity carried by an application submission.
type PersonData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// ApplicationData is the position-specific part of an application submission.
type ApplicationData struct {
	Position     string
	ResumeURL    *string
	PortfolioURL *string
	ConsentGiven bool
}

// GCAssessmentData is a general-competencies test result.
type GCAssessmentData struct {
	Email string
	Score float64
}

// SCAssessmentData is a specialized-competencies test result. Score is nil
// when the form did not auto-grade the submission; such assessments await
// manual staff review.
type SCAssessmentData struct {
	Email string
	Score *float64
}

// AgreementData is a signed-agreement notification.
type AgreementData struct {
	Email       string
	SignedAt    time.Time
	DocumentURL *string
}

// lookup resolves a domain field by label first, key table second.
func (e *Extractor) lookup(env *Envelope, name string) *Field {
	spec, ok := e.table.spec(name)
	if !ok {
		return nil
	}
	for i := range env.Fields {
		for _, label := range spec.Labels {
			if strings.EqualFold(strings.TrimSpace(env.Fields[i].Label), label) {
				return &env.Fields[i]
			}
		}
	}
	for i := range env.Fields {
		for _, key := range spec.Keys {
			if env.Fields[i].Key == key {
				return &env.Fields[i]
			}
		}
	}
	return nil
}

func (e *Extractor) requiredText(env *Envelope, name string) (string, error) {
	f := e.lookup(env, name)
	if f == nil {
		return "", apperrors.NewFieldMissingError(name)
	}
	s, err := f.Text()
	if err != nil {
		return "", apperrors.NewFieldInvalidError(name, err.Error())
	}
	if s == "" {
		return "", apperrors.NewFieldMissingError(name)
	}
	return s, nil
}

func (e *Extractor) optionalText(env *Envelope, name string) string {
	f := e.lookup(env, name)
	if f == nil {
		return ""
	}
	s, err := f.Text()
	if err != nil {
		return ""
	}
	return s
}

// optionalFileURL returns the first uploaded file's URL, or nil when the
// field is absent or nothing was uploaded.
func (e *Extractor) optionalFileURL(env *Envelope, name string) (*string, error) {
	f := e.lookup(env, name)
	if f == nil {
		return nil, nil
	}
	files, err := f.Files()
	if err != nil {
		return nil, apperrors.NewFieldInvalidError(name, err.Error())
	}
	if len(files) == 0 || files[0].URL == "" {
		return nil, nil
	}
	url := files[0].URL
	return &url, nil
}

// checkboxTrue resolves a boolean checkbox by matching the selected option
// ids against the table's known "true" option ids.
func (e *Extractor) checkboxTrue(env *Envelope, name string) (bool, error) {
	f := e.lookup(env, name)
	if f == nil {
		return false, apperrors.NewFieldMissingError(name)
	}
	selected, err := f.SelectedOptionIDs()
	if err != nil {
		return false, apperrors.NewFieldInvalidError(name, err.Error())
	}
	for _, id := range selected {
		for _, trueID := range e.table.trueOptions(name) {
			if id == trueID {
				return true, nil
			}
		}
	}
	return false, nil
}

func validEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}
	return strings.Contains(parts[1], ".")
}

// ExtractPerson resolves the candidate identity fields.
func (e *Extractor) ExtractPerson(env *Envelope) (*PersonData, error) {
	firstName, err := e.requiredText(env, fieldFirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := e.requiredText(env, fieldLastName)
	if err != nil {
		return nil, err
	}
	email, err := e.requiredText(env, fieldEmail)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	if !validEmail(email) {
		return nil, apperrors.NewFieldInvalidError(fieldEmail, "not a valid email address")
	}

	return &PersonData{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     e.optionalText(env, fieldPhone),
	}, nil
}

// ExtractApplication resolves the position and attachment fields.
func (e *Extractor) ExtractApplication(env *Envelope) (*ApplicationData, error) {
	position, err := e.requiredText(env, fieldPosition)
	if err != nil {
		return nil, err
	}
	consent, err := e.checkboxTrue(env, fieldConsent)
	if err != nil {
		return nil, err
	}
	resumeURL, err := e.optionalFileURL(env, fieldResume)
	if err != nil {
		return nil, err
	}
	portfolioURL, err := e.optionalFileURL(env, fieldPortfolio)
	if err != nil {
		return nil, err
	}

	return &ApplicationData{
		Position:     position,
		ResumeURL:    resumeURL,
		PortfolioURL: portfolioURL,
		ConsentGiven: consent,
	}, nil
}

// ExtractGCAssessment resolves a general-competencies result. The score is
// mandatory: GC forms always auto-grade.
func (e *Extractor) ExtractGCAssessment(env *Envelope) (*GCAssessmentData, error) {
	email, err := e.requiredText(env, fieldEmail)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	if !validEmail(email) {
		return nil, apperrors.NewFieldInvalidError(fieldEmail, "not a valid email address")
	}

	f := e.lookup(env, fieldScore)
	if f == nil {
		return nil, apperrors.NewFieldMissingError(fieldScore)
	}
	score, err := f.Number()
	if err != nil {
		return nil, apperrors.NewFieldInvalidError(fieldScore, err.Error())
	}

	return &GCAssessmentData{Email: email, Score: score}, nil
}

// ExtractSCAssessment resolves a specialized-competencies result. A missing
// score field is not an error: the submission is stored unreviewed.
func (e *Extractor) ExtractSCAssessment(env *Envelope) (*SCAssessmentData, error) {
	email, err := e.requiredText(env, fieldEmail)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	if !validEmail(email) {
		return nil, apperrors.NewFieldInvalidError(fieldEmail, "not a valid email address")
	}

	data := &SCAssessmentData{Email: email}
	if f := e.lookup(env, fieldScore); f != nil && len(f.Value) > 0 && string(f.Value) != "null" {
		score, err := f.Number()
		if err != nil {
			return nil, apperrors.NewFieldInvalidError(fieldScore, err.Error())
		}
		data.Score = &score
	}

	return data, nil
}

// ExtractAgreement resolves a signed-agreement notification.
func (e *Extractor) ExtractAgreement(env *Envelope) (*AgreementData, error) {
	email, err := e.requiredText(env, fieldEmail)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	if !validEmail(email) {
		return nil, apperrors.NewFieldInvalidError(fieldEmail, "not a valid email address")
	}

	f := e.lookup(env, fieldSignedAt)
	if f == nil {
		return nil, apperrors.NewFieldMissingError(fieldSignedAt)
	}
	signedAt, err := f.Date()
	if err != nil {
		return nil, apperrors.NewFieldInvalidError(fieldSignedAt, err.Error())
	}

	documentURL, err := e.optionalFileURL(env, fieldDocument)
	if err != nil {
		return nil, err
	}

	return &AgreementData{
		Email:       email,
		SignedAt:    signedAt,
		DocumentURL: documentURL,
	}, nil
}
