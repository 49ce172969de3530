package chunker

import (
	"fmt"
	"strings"

	"compliance-rag/internal/models"
)

const sentenceDelimiter = ". "

// Chunk splits text into sentence-aligned chunks of at most maxSize bytes.
// The size limit is a soft target: a single sentence longer than maxSize is
// emitted whole rather than split mid-sentence. Output is fully determined by
// the input; empty input yields no chunks.
func Chunk(text string, maxSize int) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := strings.Split(text, sentenceDelimiter)
	var chunks []models.Chunk
	var buf strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(buf.String())
		buf.Reset()
		if chunk == "" {
			return
		}
		chunks = append(chunks, models.Chunk{
			ID:    fmt.Sprintf("chunk-%d", len(chunks)),
			Index: len(chunks),
			Text:  chunk,
		})
	}

	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		if buf.Len()+len(sentence) >= maxSize {
			flush()
		}
		buf.WriteString(sentence)
		// Splitting consumed the delimiter; restore it, but do not double
		// the period on a final sentence that kept its own.
		if !strings.HasSuffix(sentence, ".") {
			buf.WriteString(".")
		}
		buf.WriteString(" ")
	}
	flush()

	return chunks
}
