// internal/forms/extractor_test.go
package forms

import (
	"encoding/json"
	"strconv"
	"testing"

	apperrors "hiring-pipeline/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(label, key string, ftype FieldType, rawValue string) Field {
	return Field{Key: key, Label: label, Type: ftype, Value: json.RawMessage(rawValue)}
}

func envelopeWith(fields ...Field) *Envelope {
	return &Envelope{
		EventID:      "evt-1",
		SubmissionID: "sub-1",
		FormID:       "form-1",
		Fields:       fields,
	}
}

func personFields(email string) []Field {
	return []Field{
		field("First name", "question_first_name", FieldText, `"Ada"`),
		field("Last name", "question_last_name", FieldText, `"Lovelace"`),
		field("Email", "question_email", FieldEmail, strconv.Quote(email)),
	}
}

func TestExtractPerson(t *testing.T) {
	ex := NewExtractor(DefaultTable())

	t.Run("lowercases email", func(t *testing.T) {
		env := envelopeWith(personFields("Ada@Example.COM")...)
		p, err := ex.ExtractPerson(env)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", p.Email)
		assert.Equal(t, "Ada", p.FirstName)
		assert.Empty(t, p.Phone, "phone is optional")
	})

	t.Run("missing required field", func(t *testing.T) {
		env := envelopeWith(personFields("ada@example.com")[:2]...)
		_, err := ex.ExtractPerson(env)
		std := apperrors.AsStandard(err)
		require.NotNil(t, std)
		assert.Equal(t, apperrors.ErrCodeFieldMissing, std.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		fields := personFields("not-an-email")
		env := envelopeWith(fields...)
		_, err := ex.ExtractPerson(env)
		std := apperrors.AsStandard(err)
		require.NotNil(t, std)
		assert.Equal(t, apperrors.ErrCodeFieldInvalid, std.Code)
	})

	t.Run("key fallback when label reworded", func(t *testing.T) {
		fields := personFields("ada@example.com")
		fields[0].Label = "Your given name"
		env := envelopeWith(fields...)
		p, err := ex.ExtractPerson(env)
		require.NoError(t, err)
		assert.Equal(t, "Ada", p.FirstName)
	})

	t.Run("label match is case-insensitive", func(t *testing.T) {
		fields := personFields("ada@example.com")
		fields[0].Label = "FIRST NAME"
		fields[0].Key = "completely_unknown_key"
		env := envelopeWith(fields...)
		p, err := ex.ExtractPerson(env)
		require.NoError(t, err)
		assert.Equal(t, "Ada", p.FirstName)
	})
}

func TestExtractApplication(t *testing.T) {
	ex := NewExtractor(DefaultTable())
	base := []Field{
		field("Position", "question_position", FieldText, `"Backend Engineer"`),
		field("Data processing consent", "question_consent", FieldCheckbox, `["opt_consent_yes"]`),
	}

	t.Run("optional uploads are nil when absent", func(t *testing.T) {
		env := envelopeWith(base...)
		app, err := ex.ExtractApplication(env)
		require.NoError(t, err)
		assert.Equal(t, "Backend Engineer", app.Position)
		assert.True(t, app.ConsentGiven)
		assert.Nil(t, app.ResumeURL)
		assert.Nil(t, app.PortfolioURL)
	})

	t.Run("null upload value means nothing uploaded", func(t *testing.T) {
		fields := append(append([]Field{}, base...),
			field("Resume", "question_resume", FieldFileUpload, `null`))
		env := envelopeWith(fields...)
		app, err := ex.ExtractApplication(env)
		require.NoError(t, err)
		assert.Nil(t, app.ResumeURL)
	})

	t.Run("first uploaded file wins", func(t *testing.T) {
		fields := append(append([]Field{}, base...),
			field("Resume", "question_resume", FieldFileUpload,
				`[{"url":"https://files.example.com/cv.pdf","name":"cv.pdf"}]`))
		env := envelopeWith(fields...)
		app, err := ex.ExtractApplication(env)
		require.NoError(t, err)
		require.NotNil(t, app.ResumeURL)
		assert.Equal(t, "https://files.example.com/cv.pdf", *app.ResumeURL)
	})

	t.Run("unselected consent is false", func(t *testing.T) {
		fields := []Field{
			base[0],
			field("Data processing consent", "question_consent", FieldCheckbox, `["opt_other"]`),
		}
		env := envelopeWith(fields...)
		app, err := ex.ExtractApplication(env)
		require.NoError(t, err)
		assert.False(t, app.ConsentGiven)
	})
}

func TestExtractAssessments(t *testing.T) {
	ex := NewExtractor(DefaultTable())
	email := field("Email", "question_email", FieldEmail, `"ada@example.com"`)

	t.Run("gc requires a score", func(t *testing.T) {
		_, err := ex.ExtractGCAssessment(envelopeWith(email))
		std := apperrors.AsStandard(err)
		require.NotNil(t, std)
		assert.Equal(t, apperrors.ErrCodeFieldMissing, std.Code)
	})

	t.Run("gc accepts string-encoded numbers", func(t *testing.T) {
		env := envelopeWith(email, field("Score", "calc_score", FieldNumber, `"82.5"`))
		data, err := ex.ExtractGCAssessment(env)
		require.NoError(t, err)
		assert.Equal(t, 82.5, data.Score)
	})

	t.Run("sc without score is stored unreviewed", func(t *testing.T) {
		data, err := ex.ExtractSCAssessment(envelopeWith(email))
		require.NoError(t, err)
		assert.Nil(t, data.Score)
	})

	t.Run("sc with score", func(t *testing.T) {
		env := envelopeWith(email, field("Score", "calc_score", FieldNumber, `76`))
		data, err := ex.ExtractSCAssessment(env)
		require.NoError(t, err)
		require.NotNil(t, data.Score)
		assert.Equal(t, 76.0, *data.Score)
	})

	t.Run("sc rejects unparseable score", func(t *testing.T) {
		env := envelopeWith(email, field("Score", "calc_score", FieldNumber, `"n/a"`))
		_, err := ex.ExtractSCAssessment(env)
		std := apperrors.AsStandard(err)
		require.NotNil(t, std)
		assert.Equal(t, apperrors.ErrCodeFieldInvalid, std.Code)
	})
}

func TestExtractAgreement(t *testing.T) {
	ex := NewExtractor(DefaultTable())
	email := field("Email", "question_email", FieldEmail, `"ada@example.com"`)

	t.Run("plain date", func(t *testing.T) {
		env := envelopeWith(email,
			field("Signature date", "question_signed_at", FieldDate, `"2026-08-20"`))
		data, err := ex.ExtractAgreement(env)
		require.NoError(t, err)
		assert.Equal(t, 2026, data.SignedAt.Year())
		assert.Nil(t, data.DocumentURL)
	})

	t.Run("rfc3339 date with document", func(t *testing.T) {
		env := envelopeWith(email,
			field("Signature date", "question_signed_at", FieldDate, `"2026-08-20T14:30:00Z"`),
			field("Signed agreement", "question_agreement_file", FieldFileUpload,
				`[{"url":"https://files.example.com/agreement.pdf"}]`))
		data, err := ex.ExtractAgreement(env)
		require.NoError(t, err)
		require.NotNil(t, data.DocumentURL)
		assert.Equal(t, 14, data.SignedAt.Hour())
	})

	t.Run("missing date", func(t *testing.T) {
		_, err := ex.ExtractAgreement(envelopeWith(email))
		std := apperrors.AsStandard(err)
		require.NotNil(t, std)
		assert.Equal(t, apperrors.ErrCodeFieldMissing, std.Code)
	})
}
