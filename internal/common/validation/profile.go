// internal/common/validation/profile.go
package validation

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// capabilityProfileSchema describes the shape a capability profile must
// have before matching runs. A malformed profile aborts the analysis for
// that tender only.
const capabilityProfileSchema = `{
	"type": "object",
	"properties": {
		"capabilities": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"domain": {"type": "string", "minLength": 1},
					"technologies": {"type": "array", "items": {"type": "string"}},
					"description": {"type": "string"},
					"experienceYears": {"type": "integer", "minimum": 0}
				},
				"required": ["domain"]
			}
		},
		"certifications": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string", "minLength": 1}
				},
				"required": ["name"]
			}
		},
		"references": {
			"type": "array",
			"items": {"type": "object"}
		}
	},
	"required": ["capabilities"]
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateCapabilityProfile checks a raw profile document against the
// profile schema and returns field-level errors.
func ValidateCapabilityProfile(raw []byte) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewStringLoader(capabilityProfileSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("profile validation failed to run: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}

// ValidateStruct marshals any value and validates it against the profile
// schema. Convenience for callers holding a typed profile.
func ValidateStruct(v interface{}) (*ValidationResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return ValidateCapabilityProfile(raw)
}
