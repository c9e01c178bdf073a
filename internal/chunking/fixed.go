// internal/chunking/fixed.go
package chunking

import (
	"strings"

	"github.com/google/uuid"

	"tender-analyzer/internal/models"
)

// sentenceLookahead bounds how far past the target size a chunk boundary may
// be nudged to land on a sentence terminator.
const sentenceLookahead = 100

// FixedChunker emits chunks of roughly targetSize characters with a fixed
// character overlap between consecutive chunks.
type FixedChunker struct {
	targetSize int
	overlap    int
}

func NewFixedChunker(targetSize, overlap int) *FixedChunker {
	return &FixedChunker{targetSize: targetSize, overlap: overlap}
}

func (c *FixedChunker) Chunk(text string) []models.DocumentChunk {
	if len(text) == 0 {
		return nil
	}

	var chunks []models.DocumentChunk
	start := 0
	for start < len(text) {
		end := start + c.targetSize
		if end >= len(text) {
			end = len(text)
		} else {
			// Nudge the boundary to the next sentence terminator when one
			// sits within the lookahead window.
			window := text[end:min(end+sentenceLookahead, len(text))]
			if idx := strings.IndexByte(window, '.'); idx >= 0 {
				end += idx + 1
			}
		}

		chunks = append(chunks, models.DocumentChunk{
			ID:           uuid.NewString(),
			Index:        len(chunks),
			Text:         text[start:end],
			StartOffset:  start,
			EndOffset:    end,
			SourceKind:   models.SourceText,
			StrategyUsed: models.StrategyFixed,
		})

		if end >= len(text) {
			break
		}
		start = end - c.overlap
	}

	return chunks
}
