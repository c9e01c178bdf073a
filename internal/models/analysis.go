// internal/models/analysis.go
package models

// ConsolidatedRequirements is the tender-wide requirement set built by the
// consolidator. Each consolidation pass produces a new immutable snapshot.
type ConsolidatedRequirements struct {
	Categories            map[Category][]Requirement `json:"categories"`
	ByPriority            map[Priority][]Requirement `json:"byPriority"`
	MandatoryRequirements []Requirement              `json:"mandatoryRequirements"`
	OptionalRequirements  []Requirement              `json:"optionalRequirements"`
	TotalCount            int                        `json:"totalCount"`
	Coverage              Coverage                   `json:"coverage"`
	Overlaps              []OverlapFinding           `json:"overlaps,omitempty"`
}

// Coverage summarizes how the consolidated set spreads over the tender.
type Coverage struct {
	ByDocumentType       map[DocumentType]int `json:"byDocumentType"`
	MandatoryPercentage  float64              `json:"mandatoryPercentage"`
	CategoryDistribution map[Category]int     `json:"categoryDistribution"`
	DocumentsAnalyzed    int                  `json:"documentsAnalyzed"`
	DocumentsFailed      int                  `json:"documentsFailed"`
}

// OverlapKind qualifies a cross-document requirement overlap.
type OverlapKind string

const (
	OverlapDuplicate OverlapKind = "potential_duplicate"
	OverlapRelated   OverlapKind = "related"
)

// OverlapFinding reports two requirements whose descriptions overlap across
// documents. Findings are surfaced, never auto-merged; cross-document
// overlap is itself a signal worth reporting.
type OverlapFinding struct {
	FirstID    string      `json:"firstId"`
	SecondID   string      `json:"secondId"`
	Similarity float64     `json:"similarity"`
	Kind       OverlapKind `json:"kind"`
}

// Capability is one declared competence of the bidder.
type Capability struct {
	Domain          string   `json:"domain"`
	Technologies    []string `json:"technologies,omitempty"`
	Description     string   `json:"description,omitempty"`
	ExperienceYears int      `json:"experienceYears,omitempty"`
}

// Certification is a certification held by the bidder.
type Certification struct {
	Name string `json:"name"`
}

// Reference is a past project reference.
type Reference struct {
	Client      string `json:"client,omitempty"`
	Description string `json:"description,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// CapabilityProfile is the bidder's declared capabilities, supplied by an
// external provider.
type CapabilityProfile struct {
	Capabilities   []Capability    `json:"capabilities"`
	Certifications []Certification `json:"certifications,omitempty"`
	References     []Reference     `json:"references,omitempty"`
}

// GapType classifies the shortfall between a requirement and the matched
// capability.
type GapType string

const (
	GapCapabilityMissing      GapType = "capability_missing"
	GapPartialMatch           GapType = "partial_match"
	GapExperienceInsufficient GapType = "experience_insufficient"
	GapCertificationMissing   GapType = "certification_missing"
	GapTechnologyMismatch     GapType = "technology_mismatch"
	GapCapacityInsufficient   GapType = "capacity_insufficient"
)

// Effort estimates remediation effort for a gap.
type Effort string

const (
	EffortNone     Effort = "none"
	EffortLow      Effort = "low"
	EffortMedium   Effort = "medium"
	EffortHigh     Effort = "high"
	EffortCritical Effort = "critical"
)

// GapAnalysis describes the gap, if any, for one requirement.
type GapAnalysis struct {
	HasGap            bool     `json:"hasGap"`
	GapType           GapType  `json:"gapType,omitempty"`
	RemediationNeeded bool     `json:"remediationNeeded"`
	EstimatedEffort   Effort   `json:"estimatedEffort"`
	MissingElements   []string `json:"missingElements,omitempty"`
	Recommendations   []string `json:"recommendations,omitempty"`
	Confidence        float64  `json:"confidence"`
}

// MatchType classifies a requirement/capability match.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchNone    MatchType = "no_match"
)

// MatchResult is the matcher's verdict for one requirement.
type MatchResult struct {
	RequirementID       string      `json:"requirementId"`
	RequirementCategory Category    `json:"requirementCategory"`
	MatchedCapability   string      `json:"matchedCapability,omitempty"`
	ConfidenceScore     float64     `json:"confidenceScore"`
	GapAnalysis         GapAnalysis `json:"gapAnalysis"`
	MatchType           MatchType   `json:"matchType"`
	MatchedKeywords     []string    `json:"matchedKeywords,omitempty"`
}

// MatchSummary aggregates the per-requirement match results.
type MatchSummary struct {
	OverallScore        float64 `json:"overallScore"`
	CapabilityCoverage  float64 `json:"capabilityCoverage"`
	MandatoryCompliance float64 `json:"mandatoryCompliance"`
	ExactMatches        int     `json:"exactMatches"`
	PartialMatches      int     `json:"partialMatches"`
	NoMatches           int     `json:"noMatches"`
	CriticalGaps        int     `json:"criticalGaps"`
}

// BidRecommendation is the go/no-go advice derived from the match summary.
type BidRecommendation string

const (
	RecommendBid      BidRecommendation = "bid"
	RecommendEvaluate BidRecommendation = "evaluate"
	RecommendNoBid    BidRecommendation = "no_bid"
)

// RiskFactor flags a condition that raises bid risk.
type RiskFactor struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// AnalysisReport is the complete output of one tender analysis run.
// Ownership transfers to the caller; persistence is an external concern.
type AnalysisReport struct {
	TenderID        string                   `json:"tenderId"`
	Requirements    ConsolidatedRequirements `json:"requirements"`
	Matches         []MatchResult            `json:"matches"`
	Summary         MatchSummary             `json:"summary"`
	Recommendation  BidRecommendation        `json:"recommendation"`
	ActionItems     []string                 `json:"actionItems,omitempty"`
	RiskFactors     []RiskFactor             `json:"riskFactors,omitempty"`
	Budget          *Budget                  `json:"budget,omitempty"`
	Deadlines       []Deadline               `json:"deadlines,omitempty"`
	Entities        []Entity                 `json:"entities,omitempty"`
	Criteria        []EvaluationCriterion    `json:"criteria,omitempty"`
	DocumentStatus  []DocumentStatus         `json:"documentStatus"`
	GeneratedAt     string                   `json:"generatedAt"`
}
