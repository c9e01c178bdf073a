// internal/models/document.go
package models

// ChunkStrategy identifies the chunking algorithm that produced a chunk.
type ChunkStrategy string

const (
	StrategyFixed      ChunkStrategy = "fixed"
	StrategySemantic   ChunkStrategy = "semantic"
	StrategyStructural ChunkStrategy = "structural"
)

// ChunkSourceKind distinguishes where the chunk text came from.
type ChunkSourceKind string

const (
	SourceText  ChunkSourceKind = "text"
	SourceTable ChunkSourceKind = "table"
	SourceList  ChunkSourceKind = "list"
)

// DocumentChunk is a bounded, offset-addressed span of document text.
// Chunks are immutable once produced; ordering by StartOffset is significant.
type DocumentChunk struct {
	ID           string          `json:"id"`
	Index        int             `json:"index"`
	Text         string          `json:"text"`
	StartOffset  int             `json:"startOffset"`
	EndOffset    int             `json:"endOffset"`
	SectionTitle string          `json:"sectionTitle,omitempty"`
	SectionLevel int             `json:"sectionLevel,omitempty"`
	SourceKind   ChunkSourceKind `json:"sourceKind"`
	StrategyUsed ChunkStrategy   `json:"strategyUsed"`
}

// StructuralOutline carries optional structure hints produced by the
// upstream text-extraction collaborator.
type StructuralOutline struct {
	HasHeadings  bool     `json:"hasHeadings"`
	HasNumbering bool     `json:"hasNumbering"`
	HasTables    bool     `json:"hasTables"`
	Sections     []string `json:"sections,omitempty"`
}

// DocumentType classifies a tender document by its regulatory role.
type DocumentType string

const (
	DocTypeConsultationRules    DocumentType = "consultation_rules"
	DocTypeAdministrativeClause DocumentType = "administrative_clauses"
	DocTypeTechnicalClause      DocumentType = "technical_clauses"
	DocTypePricingSchedule      DocumentType = "pricing_schedule"
	DocTypeOther                DocumentType = "other"
)

// TenderDocument is one document of a tender, already converted to plain
// text by an external collaborator.
type TenderDocument struct {
	ID      string             `json:"id"`
	Name    string             `json:"name,omitempty"`
	Type    DocumentType       `json:"type"`
	Text    string             `json:"text"`
	Outline *StructuralOutline `json:"outline,omitempty"`
}

// DocumentStatus reports the outcome of one document's extraction within a
// tender analysis run.
type DocumentStatus struct {
	DocumentID string       `json:"documentId"`
	Type       DocumentType `json:"documentType"`
	Succeeded  bool         `json:"succeeded"`
	Error      string       `json:"error,omitempty"`
}
