// internal/models/requirement.go
package models

// Category classifies a requirement by the concern it constrains.
type Category string

const (
	CategoryTechnical      Category = "technical"
	CategoryFunctional     Category = "functional"
	CategoryAdministrative Category = "administrative"
	CategoryFinancial      Category = "financial"
	CategoryLegal          Category = "legal"
	CategorySecurity       Category = "security"
	CategoryQualification  Category = "qualification"
	CategoryPerformance    Category = "performance"
	CategoryOther          Category = "other"
)

// Priority classifies how binding a requirement is.
type Priority string

const (
	PriorityMandatory   Priority = "mandatory"
	PriorityEliminatory Priority = "eliminatory"
	PriorityDesirable   Priority = "desirable"
	PriorityOptional    Priority = "optional"
)

// Requirement is an obligation, constraint, or desirable property extracted
// from tender text. Value object; immutable after creation. A merged copy
// produced during deduplication gets a new ID and keeps superseded IDs in
// Extensions.
type Requirement struct {
	ID             string            `json:"id"`
	Category       Category          `json:"category"`
	Description    string            `json:"description"`
	Priority       Priority          `json:"priority"`
	IsMandatory    bool              `json:"isMandatory"`
	Confidence     float64           `json:"confidence"`
	SourceDocument string            `json:"sourceDocument,omitempty"`
	SourceSection  string            `json:"sourceSection,omitempty"`
	OriginalText   string            `json:"originalText,omitempty"`
	Keywords       []string          `json:"keywords,omitempty"`
	Extensions     map[string]string `json:"extensions,omitempty"`
}

// BudgetType qualifies how authoritative a budget figure is.
type BudgetType string

const (
	BudgetFixed     BudgetType = "fixed"
	BudgetEstimated BudgetType = "estimated"
	BudgetMaximum   BudgetType = "maximum"
)

// Budget holds the monetary envelope detected in a document. At most one
// authoritative instance is kept per document; the most complete wins
// (min+max beats single-sided).
type Budget struct {
	MinAmount    *float64   `json:"minAmount,omitempty"`
	MaxAmount    *float64   `json:"maxAmount,omitempty"`
	Currency     string     `json:"currency"`
	VATIncluded  *bool      `json:"vatIncluded,omitempty"`
	BudgetType   BudgetType `json:"budgetType,omitempty"`
	PaymentTerms string     `json:"paymentTerms,omitempty"`
}

// Completeness ranks budgets so the aggregator can keep the best one.
func (b *Budget) Completeness() int {
	score := 0
	if b.MinAmount != nil {
		score++
	}
	if b.MaxAmount != nil {
		score++
	}
	return score
}

// DeadlineType classifies what a deadline applies to.
type DeadlineType string

const (
	DeadlineSubmission DeadlineType = "submission"
	DeadlineDelivery   DeadlineType = "delivery"
	DeadlineMilestone  DeadlineType = "milestone"
)

// Deadline is a date or duration constraint found in tender text. Date is
// normalized to ISO form (YYYY-MM-DD) when the text carried an absolute
// date, empty for relative durations.
type Deadline struct {
	Date        string       `json:"date,omitempty"`
	Description string       `json:"description"`
	Type        DeadlineType `json:"type"`
	IsStrict    bool         `json:"isStrict"`
}

// EntityType classifies a named entity.
type EntityType string

const (
	EntityOrganization EntityType = "organization"
	EntityPerson       EntityType = "person"
	EntityLocation     EntityType = "location"
	EntityProduct      EntityType = "product"
)

// EntityRole describes the entity's role in the procurement.
type EntityRole string

const (
	RoleBuyer    EntityRole = "buyer"
	RoleContact  EntityRole = "contact"
	RoleSupplier EntityRole = "supplier"
)

// Entity is a named entity detected in tender text.
type Entity struct {
	Name string     `json:"name"`
	Type EntityType `json:"type"`
	Role EntityRole `json:"role,omitempty"`
}

// EvaluationCriterion is a scoring criterion announced in the consultation
// rules (e.g. "Prix : 40 %").
type EvaluationCriterion struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ExtractionMethod records which path produced a document's requirements.
type ExtractionMethod string

const (
	MethodLLM     ExtractionMethod = "llm"
	MethodPattern ExtractionMethod = "pattern"
	MethodMinimal ExtractionMethod = "minimal"
	MethodCached  ExtractionMethod = "cached"
)

// DocumentExtraction is the full result of extracting one document.
type DocumentExtraction struct {
	DocumentID   string                `json:"documentId"`
	DocumentType DocumentType          `json:"documentType"`
	Requirements []Requirement         `json:"requirements"`
	Budget       *Budget               `json:"budget,omitempty"`
	Deadlines    []Deadline            `json:"deadlines,omitempty"`
	Entities     []Entity              `json:"entities,omitempty"`
	Criteria     []EvaluationCriterion `json:"criteria,omitempty"`
	Method       ExtractionMethod      `json:"method"`
	CacheHit     bool                  `json:"cacheHit"`
	APICalls     int                   `json:"apiCalls"`
}
