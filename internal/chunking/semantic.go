// internal/chunking/semantic.go
package chunking

import (
	"regexp"

	"github.com/google/uuid"

	"tender-analyzer/internal/models"
)

var paragraphSeparator = regexp.MustCompile(`\n[ \t]*\n+`)

// SemanticChunker packs whole paragraphs into chunks up to maxSize
// characters. A paragraph larger than maxSize is itself split at sentence
// boundaries. Chunks tile the text exactly: each chunk ends where the next
// one starts, so offsets cover [0, len(text)).
type SemanticChunker struct {
	maxSize int
}

func NewSemanticChunker(maxSize int) *SemanticChunker {
	return &SemanticChunker{maxSize: maxSize}
}

func (c *SemanticChunker) Chunk(text string) []models.DocumentChunk {
	chunks := c.chunkSpan(text, 0, "", 0)
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// chunkSpan chunks text and shifts offsets by base, so the structural
// chunker can reuse it for oversized sections.
func (c *SemanticChunker) chunkSpan(text string, base int, sectionTitle string, sectionLevel int) []models.DocumentChunk {
	if len(text) == 0 {
		return nil
	}

	cuts := c.cutPoints(text)

	var chunks []models.DocumentChunk
	for i, start := range cuts {
		end := len(text)
		if i+1 < len(cuts) {
			end = cuts[i+1]
		}
		chunks = append(chunks, models.DocumentChunk{
			ID:           uuid.NewString(),
			Index:        len(chunks),
			Text:         text[start:end],
			StartOffset:  base + start,
			EndOffset:    base + end,
			SectionTitle: sectionTitle,
			SectionLevel: sectionLevel,
			SourceKind:   models.SourceText,
			StrategyUsed: models.StrategySemantic,
		})
	}
	return chunks
}

// cutPoints returns the chunk start offsets. It greedily extends the current
// chunk paragraph by paragraph while it stays within maxSize.
func (c *SemanticChunker) cutPoints(text string) []int {
	paragraphs := paragraphStarts(text)

	cuts := []int{0}
	chunkStart := 0
	for i := 0; i < len(paragraphs); i++ {
		start := paragraphs[i]
		end := len(text)
		if i+1 < len(paragraphs) {
			end = paragraphs[i+1]
		}

		if end-start > c.maxSize {
			// Oversized paragraph: cut inside it at sentence boundaries.
			if start > chunkStart {
				cuts = appendCut(cuts, start)
			}
			for _, cut := range c.sentenceCuts(text[start:end]) {
				cuts = appendCut(cuts, start+cut)
			}
			chunkStart = cuts[len(cuts)-1]
			continue
		}

		if end-chunkStart > c.maxSize && start > chunkStart {
			cuts = appendCut(cuts, start)
			chunkStart = start
		}
	}
	return cuts
}

// paragraphStarts returns the start offset of every paragraph, including the
// first at offset zero. Separator whitespace belongs to the preceding chunk.
func paragraphStarts(text string) []int {
	starts := []int{0}
	for _, loc := range paragraphSeparator.FindAllStringIndex(text, -1) {
		if loc[1] < len(text) {
			starts = append(starts, loc[1])
		}
	}
	return starts
}

// sentenceCuts splits a span at sentence terminators; spans with no usable
// terminator fall back to hard cuts every maxSize characters.
func (c *SemanticChunker) sentenceCuts(span string) []int {
	var cuts []int
	last := 0
	for i := 0; i < len(span)-1; i++ {
		ch := span[i]
		if (ch == '.' || ch == '!' || ch == '?') && (span[i+1] == ' ' || span[i+1] == '\n') {
			if i+1-last > c.maxSize/2 {
				cuts = append(cuts, i+1)
				last = i + 1
			}
		}
	}
	if len(cuts) == 0 {
		for cut := c.maxSize; cut < len(span); cut += c.maxSize {
			cuts = append(cuts, cut)
		}
	}
	return cuts
}

func appendCut(cuts []int, cut int) []int {
	if cut > cuts[len(cuts)-1] {
		cuts = append(cuts, cut)
	}
	return cuts
}
