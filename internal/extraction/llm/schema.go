// internal/extraction/llm/schema.go
package llm

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidResponse marks model output that no repair strategy could
// turn into a valid extraction payload.
var ErrInvalidResponse = errors.New("LLM_RESPONSE_INVALID")

const responseSchema = `{
	"type": "object",
	"required": ["requirements"],
	"properties": {
		"requirements": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["description"],
				"properties": {
					"category": {"type": "string"},
					"description": {"type": "string", "minLength": 1},
					"priority": {"type": "string"},
					"confidence": {"type": "number"},
					"keywords": {
						"type": "array",
						"items": {"type": "string"}
					}
				}
			}
		}
	}
}`

var compiledResponseSchema = gojsonschema.NewStringLoader(responseSchema)

// validateResponse checks the raw JSON document against the expected
// extraction shape.
func validateResponse(document string) error {
	result, err := gojsonschema.Validate(compiledResponseSchema, gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, result.Errors())
	}
	return nil
}
