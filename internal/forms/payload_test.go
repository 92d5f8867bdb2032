// internal/forms/payload_test.go
package forms

import (
	"encoding/json"
	"testing"

	apperrors "hiring-pipeline/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		body := []byte(`{
			"eventId": "evt-1",
			"submissionId": "sub-1",
			"formId": "form-1",
			"formName": "Application form",
			"submittedAt": "2026-08-20T10:00:00Z",
			"fields": [
				{"key": "question_email", "label": "Email", "type": "email", "value": "ada@example.com"}
			]
		}`)
		env, err := ParseEnvelope(body)
		require.NoError(t, err)
		assert.Equal(t, "sub-1", env.SubmissionID)
		require.Len(t, env.Fields, 1)
		assert.Equal(t, body, env.Raw())
	})

	t.Run("missing submission id", func(t *testing.T) {
		body := []byte(`{"eventId": "evt-1", "formId": "form-1", "fields": []}`)
		_, err := ParseEnvelope(body)
		std := apperrors.AsStandard(err)
		require.NotNil(t, std)
		assert.Equal(t, apperrors.ErrCodePayloadInvalid, std.Code)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseEnvelope([]byte("not json at all"))
		std := apperrors.AsStandard(err)
		require.NotNil(t, std)
		assert.Equal(t, apperrors.ErrCodePayloadInvalid, std.Code)
	})

	t.Run("field missing key", func(t *testing.T) {
		body := []byte(`{
			"eventId": "evt-1", "submissionId": "sub-1", "formId": "form-1",
			"fields": [{"label": "Email", "type": "email"}]
		}`)
		_, err := ParseEnvelope(body)
		std := apperrors.AsStandard(err)
		require.NotNil(t, std)
		assert.Equal(t, apperrors.ErrCodePayloadInvalid, std.Code)
	})
}

func TestFieldAccessors(t *testing.T) {
	t.Run("text trims whitespace", func(t *testing.T) {
		f := Field{Key: "k", Type: FieldText, Value: json.RawMessage(`"  hello  "`)}
		s, err := f.Text()
		require.NoError(t, err)
		assert.Equal(t, "hello", s)
	})

	t.Run("text rejects wrong shape", func(t *testing.T) {
		f := Field{Key: "k", Type: FieldNumber, Value: json.RawMessage(`5`)}
		_, err := f.Text()
		assert.Error(t, err)
	})

	t.Run("number accepts json number and string", func(t *testing.T) {
		f := Field{Key: "k", Type: FieldNumber, Value: json.RawMessage(`42.5`)}
		n, err := f.Number()
		require.NoError(t, err)
		assert.Equal(t, 42.5, n)

		f.Value = json.RawMessage(`"42.5"`)
		n, err = f.Number()
		require.NoError(t, err)
		assert.Equal(t, 42.5, n)
	})

	t.Run("number rejects null", func(t *testing.T) {
		f := Field{Key: "k", Type: FieldNumber, Value: json.RawMessage(`null`)}
		_, err := f.Number()
		assert.Error(t, err)
	})

	t.Run("null files yield empty slice", func(t *testing.T) {
		f := Field{Key: "k", Type: FieldFileUpload, Value: json.RawMessage(`null`)}
		files, err := f.Files()
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("checkbox selection", func(t *testing.T) {
		f := Field{Key: "k", Type: FieldCheckbox, Value: json.RawMessage(`["a","b"]`)}
		ids, err := f.SelectedOptionIDs()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
	})
}
