// internal/forms/schema.go
package forms

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "hiring-pipeline/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// envelopeSchema is the wire contract for every inbound webhook payload.
// Field values are validated per-type by the accessors in payload.go; the
// schema only pins the envelope shape.
const envelopeSchema = `{
	"type": "object",
	"required": ["eventId", "submissionId", "formId", "fields"],
	"properties": {
		"eventId":      {"type": "string", "minLength": 1},
		"submissionId": {"type": "string", "minLength": 1},
		"formId":       {"type": "string", "minLength": 1},
		"formName":     {"type": "string"},
		"submittedAt":  {"type": "string"},
		"fields": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["key", "label", "type"],
				"properties": {
					"key":   {"type": "string", "minLength": 1},
					"label": {"type": "string"},
					"type":  {"type": "string", "minLength": 1},
					"options": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["id"],
							"properties": {
								"id":   {"type": "string"},
								"text": {"type": "string"}
							}
						}
					}
				}
			}
		}
	}
}`

var envelopeSchemaLoader = gojsonschema.NewStringLoader(envelopeSchema)

// ParseEnvelope validates the payload against the envelope schema and
// decodes it. The raw bytes are retained for assessment records.
func ParseEnvelope(body []byte) (*Envelope, error) {
	result, err := gojsonschema.Validate(envelopeSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, apperrors.NewPayloadInvalidError(fmt.Sprintf("schema validation: %v", err))
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, apperrors.NewPayloadInvalidError(strings.Join(msgs, "; "))
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperrors.NewPayloadInvalidError(fmt.Sprintf("decode: %v", err))
	}
	env.raw = body

	return &env, nil
}
