// internal/chunking/structural.go
package chunking

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"tender-analyzer/internal/models"
)

// Heading shapes found in French procurement documents. Order matters only
// for level detection; any match starts a new section.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(#{1,6})\s+.+$`),
	regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]\s+\S.*$`),
	regexp.MustCompile(`^[A-ZÀ-ÖØ-Þ][A-ZÀ-ÖØ-Þ0-9\s\-':,]{3,}$`),
	regexp.MustCompile(`^(?i)article\s+\d+`),
	regexp.MustCompile(`^[IVXLC]+[.\-]\s+.+$`),
}

type section struct {
	title string
	level int
	start int
	end   int
}

// StructuralChunker treats the text between two heading lines as one
// logical section. Sections exceeding maxSectionSize are split by the
// semantic chunker, inheriting the section title.
type StructuralChunker struct {
	maxSectionSize int
	semantic       *SemanticChunker
}

func NewStructuralChunker(maxSectionSize int, semantic *SemanticChunker) *StructuralChunker {
	return &StructuralChunker{maxSectionSize: maxSectionSize, semantic: semantic}
}

func (c *StructuralChunker) Chunk(text string) []models.DocumentChunk {
	if len(text) == 0 {
		return nil
	}

	sections := detectSections(text)

	var chunks []models.DocumentChunk
	for _, sec := range sections {
		body := text[sec.start:sec.end]
		if sec.end-sec.start <= c.maxSectionSize {
			chunks = append(chunks, models.DocumentChunk{
				ID:           uuid.NewString(),
				Text:         body,
				StartOffset:  sec.start,
				EndOffset:    sec.end,
				SectionTitle: sec.title,
				SectionLevel: sec.level,
				SourceKind:   models.SourceText,
				StrategyUsed: models.StrategyStructural,
			})
			continue
		}

		for _, sub := range c.semantic.chunkSpan(body, sec.start, sec.title, sec.level) {
			sub.StrategyUsed = models.StrategyStructural
			chunks = append(chunks, sub)
		}
	}

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// detectSections scans the text line by line for heading shapes. A document
// with no detected headings is one section spanning the whole text.
func detectSections(text string) []section {
	var sections []section
	current := section{title: "", level: 0, start: 0}

	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimRight(line, "\n")
		if title, level, ok := matchHeading(trimmed); ok && offset > 0 {
			current.end = offset
			if current.end > current.start {
				sections = append(sections, current)
			}
			current = section{title: title, level: level, start: offset}
		} else if title, level, ok := matchHeading(trimmed); ok && offset == 0 {
			current.title = title
			current.level = level
		}
		offset += len(line)
	}
	current.end = len(text)
	if current.end > current.start {
		sections = append(sections, current)
	}

	if len(sections) == 1 && sections[0].title == "" {
		sections[0].title = "Document"
	}
	return sections
}

func matchHeading(line string) (string, int, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 4 {
		return "", 0, false
	}

	for i, pattern := range headingPatterns {
		m := pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		switch i {
		case 0:
			return strings.TrimSpace(strings.TrimLeft(trimmed, "# ")), len(m[1]), true
		case 1:
			return trimmed, strings.Count(m[1], ".") + 1, true
		default:
			if i == 2 && !containsLetter(trimmed) {
				continue
			}
			return trimmed, 1, true
		}
	}
	return "", 0, false
}

func containsLetter(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' || r >= 'À' && r <= 'Þ' {
			return true
		}
	}
	return false
}
