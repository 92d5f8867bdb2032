// internal/forms/payload.go
package forms

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldType tags the per-type value shape of a form field.
type FieldType string

const (
	FieldText       FieldType = "text"
	FieldEmail      FieldType = "email"
	FieldPhone      FieldType = "phone_number"
	FieldNumber     FieldType = "number"
	FieldDate       FieldType = "date"
	FieldCheckbox   FieldType = "checkbox"
	FieldFileUpload FieldType = "file_upload"
)

// FieldOption is one selectable option of a checkbox field.
type FieldOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FileUpload is one uploaded file reference.
type FileUpload struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// Field is a single label/value pair from the form provider. Value is kept
// raw and decoded through the typed accessors below, which pattern-match on
// the declared field type instead of probing the JSON shape.
type Field struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Type    FieldType       `json:"type"`
	Value   json.RawMessage `json:"value"`
	Options []FieldOption   `json:"options,omitempty"`
}

// Text decodes the value of a text-shaped field (text, email, phone, date).
func (f *Field) Text() (string, error) {
	switch f.Type {
	case FieldText, FieldEmail, FieldPhone, FieldDate:
	default:
		return "", fmt.Errorf("field %q is %s, not text-shaped", f.Key, f.Type)
	}
	if len(f.Value) == 0 || string(f.Value) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(f.Value, &s); err != nil {
		return "", fmt.Errorf("field %q: %w", f.Key, err)
	}
	return strings.TrimSpace(s), nil
}

// Number decodes a numeric field. Providers deliver numbers either as JSON
// numbers or as strings, so both are accepted.
func (f *Field) Number() (float64, error) {
	if f.Type != FieldNumber {
		return 0, fmt.Errorf("field %q is %s, not number", f.Key, f.Type)
	}
	if len(f.Value) == 0 || string(f.Value) == "null" {
		return 0, fmt.Errorf("field %q has no value", f.Key)
	}
	var n float64
	if err := json.Unmarshal(f.Value, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(f.Value, &s); err == nil {
		n, convErr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if convErr != nil {
			return 0, fmt.Errorf("field %q: not parseable as number: %q", f.Key, s)
		}
		return n, nil
	}
	return 0, fmt.Errorf("field %q: unsupported number encoding", f.Key)
}

// SelectedOptionIDs decodes a checkbox field's selected option id list.
func (f *Field) SelectedOptionIDs() ([]string, error) {
	if f.Type != FieldCheckbox {
		return nil, fmt.Errorf("field %q is %s, not checkbox", f.Key, f.Type)
	}
	if len(f.Value) == 0 || string(f.Value) == "null" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(f.Value, &ids); err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Key, err)
	}
	return ids, nil
}

// Files decodes a file-upload field. A null value is a legitimate "nothing
// uploaded" and yields an empty slice, not an error.
func (f *Field) Files() ([]FileUpload, error) {
	if f.Type != FieldFileUpload {
		return nil, fmt.Errorf("field %q is %s, not file_upload", f.Key, f.Type)
	}
	if len(f.Value) == 0 || string(f.Value) == "null" {
		return nil, nil
	}
	var files []FileUpload
	if err := json.Unmarshal(f.Value, &files); err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Key, err)
	}
	return files, nil
}

// Date decodes a date field, accepting RFC 3339 or plain dates.
func (f *Field) Date() (time.Time, error) {
	s, err := f.Text()
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, fmt.Errorf("field %q has no value", f.Key)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("field %q: unparseable date %q", f.Key, s)
}

// Envelope is a verified form-provider webhook payload.
type Envelope struct {
	EventID      string    `json:"eventId"`
	SubmissionID string    `json:"submissionId"`
	FormID       string    `json:"formId"`
	FormName     string    `json:"formName,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
	Fields       []Field   `json:"fields"`

	raw []byte
}

// Raw returns the original payload bytes, stored alongside assessments.
func (e *Envelope) Raw() []byte {
	return e.raw
}
