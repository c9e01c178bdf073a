// internal/extraction/llm/parser.go
package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"tender-analyzer/internal/models"
)

// RequirementPayload is one requirement as returned by the model.
type RequirementPayload struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Confidence  float64  `json:"confidence"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Response is the expected completion payload.
type Response struct {
	Requirements []RequirementPayload `json:"requirements"`
}

var (
	codeFencePattern     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	requirementsArrayRe  = regexp.MustCompile(`(?s)"requirements"\s*:\s*\[`)
)

// Parse recovers a Response from raw model output. Models wrap JSON in
// prose, code fences, or truncate mid-string; the cascade tries
// progressively more aggressive repairs and only fails when none of them
// produce a valid shape.
func Parse(raw string) (*Response, error) {
	candidates := []string{raw}

	cleaned := cleanJSONString(raw)
	candidates = append(candidates, cleaned)

	if obj := extractJSONObject(cleaned); obj != "" {
		candidates = append(candidates, balanceJSON(obj))
	}

	for _, candidate := range candidates {
		if resp, ok := tryUnmarshal(candidate); ok {
			return resp, nil
		}
	}

	// Last resort: salvage just the requirements array even when the
	// surrounding object is beyond repair.
	if loc := requirementsArrayRe.FindStringIndex(cleaned); loc != nil {
		arr := balanceJSON(cleaned[loc[1]-1:])
		if resp, ok := tryUnmarshal(`{"requirements":` + arr + `}`); ok {
			return resp, nil
		}
	}

	return nil, ErrInvalidResponse
}

func tryUnmarshal(candidate string) (*Response, bool) {
	var resp Response
	if err := json.Unmarshal([]byte(candidate), &resp); err != nil {
		return nil, false
	}
	if err := validateResponse(candidate); err != nil {
		return nil, false
	}
	return &resp, true
}

// cleanJSONString strips code fences and trailing commas.
func cleanJSONString(raw string) string {
	s := strings.TrimSpace(raw)
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// extractJSONObject returns the substring starting at the first '{', cut at
// its matching brace when one exists, otherwise to the end of input.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

// balanceJSON closes an unterminated string and any open brackets, in
// nesting order, so a truncated completion still parses.
func balanceJSON(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}

// ToRequirements converts the payload into domain requirements.
// Confidences outside [0,1] reset to 0.5; missing confidences default to
// 0.9, the trust level of a clean completion.
func ToRequirements(resp *Response) []models.Requirement {
	var out []models.Requirement
	for _, payload := range resp.Requirements {
		description := strings.TrimSpace(payload.Description)
		if description == "" {
			continue
		}

		confidence := payload.Confidence
		if confidence == 0 {
			confidence = 0.9
		} else if confidence < 0 || confidence > 1 {
			confidence = 0.5
		}

		priority := parsePriority(payload.Priority)
		out = append(out, models.Requirement{
			ID:           uuid.NewString(),
			Category:     parseCategory(payload.Category),
			Description:  description,
			Priority:     priority,
			IsMandatory:  priority == models.PriorityMandatory || priority == models.PriorityEliminatory,
			Confidence:   confidence,
			OriginalText: description,
			Keywords:     payload.Keywords,
		})
	}
	return out
}

func parseCategory(s string) models.Category {
	switch models.Category(strings.ToLower(strings.TrimSpace(s))) {
	case models.CategoryTechnical, models.CategoryFunctional, models.CategoryAdministrative,
		models.CategoryFinancial, models.CategoryLegal, models.CategorySecurity,
		models.CategoryQualification, models.CategoryPerformance:
		return models.Category(strings.ToLower(strings.TrimSpace(s)))
	default:
		return models.CategoryOther
	}
}

func parsePriority(s string) models.Priority {
	switch models.Priority(strings.ToLower(strings.TrimSpace(s))) {
	case models.PriorityMandatory, models.PriorityEliminatory, models.PriorityOptional:
		return models.Priority(strings.ToLower(strings.TrimSpace(s)))
	default:
		return models.PriorityDesirable
	}
}
