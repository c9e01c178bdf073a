// internal/chunking/strategy.go
package chunking

import (
	"regexp"

	"tender-analyzer/internal/common/config"
	"tender-analyzer/internal/models"
)

// charsPerPage approximates one page of extracted tender text.
const charsPerPage = 3000

var (
	headingPattern   = regexp.MustCompile(`(?m)^#{1,3}\s+`)
	numberingPattern = regexp.MustCompile(`(?m)^\d+\.`)
)

// DocumentProfile captures the structural hints driving strategy selection.
type DocumentProfile struct {
	EstimatedPages int
	HasHeadings    bool
	HasNumbering   bool
}

// AnalyzeDocument derives a profile from raw text and the optional outline
// supplied by the upstream text extractor. The outline wins when present.
func AnalyzeDocument(text string, outline *models.StructuralOutline) DocumentProfile {
	profile := DocumentProfile{
		EstimatedPages: len(text) / charsPerPage,
		HasHeadings:    headingPattern.MatchString(text),
		HasNumbering:   numberingPattern.MatchString(text),
	}
	if outline != nil {
		profile.HasHeadings = profile.HasHeadings || outline.HasHeadings
		profile.HasNumbering = profile.HasNumbering || outline.HasNumbering
	}
	return profile
}

// SelectStrategy is a pure function of the document profile. The ordering of
// the decision table is deliberate and must stay stable:
// short documents take the cheap fixed path, structured documents take the
// structural path, medium documents without structure take the semantic path.
func SelectStrategy(profile DocumentProfile) models.ChunkStrategy {
	if profile.EstimatedPages < 5 {
		return models.StrategyFixed
	}
	if profile.HasHeadings || profile.HasNumbering {
		return models.StrategyStructural
	}
	if profile.EstimatedPages < 50 {
		return models.StrategySemantic
	}
	if profile.HasHeadings {
		return models.StrategyStructural
	}
	return models.StrategySemantic
}

// Chunker produces an ordered, offset-accurate chunk sequence from text.
type Chunker interface {
	Chunk(text string) []models.DocumentChunk
}

// Splitter picks a strategy per document and dispatches to the matching
// chunker. Callers inject the chunkers they want; there is no registry.
type Splitter struct {
	fixed      *FixedChunker
	semantic   *SemanticChunker
	structural *StructuralChunker
}

func NewSplitter(cfg config.ChunkingConfig) *Splitter {
	semantic := NewSemanticChunker(cfg.SemanticMaxSize)
	return &Splitter{
		fixed:      NewFixedChunker(cfg.FixedSize, cfg.FixedOverlap),
		semantic:   semantic,
		structural: NewStructuralChunker(cfg.StructuralMax, semantic),
	}
}

// Split chunks the text with the strategy selected for it.
func (s *Splitter) Split(text string, outline *models.StructuralOutline) []models.DocumentChunk {
	if len(text) == 0 {
		return nil
	}

	switch SelectStrategy(AnalyzeDocument(text, outline)) {
	case models.StrategyStructural:
		return s.structural.Chunk(text)
	case models.StrategySemantic:
		return s.semantic.Chunk(text)
	default:
		return s.fixed.Chunk(text)
	}
}
