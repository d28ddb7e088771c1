package utils

import "strings"

// TextChunk is a slice of a document together with its rune offset.
type TextChunk struct {
	Text   string
	Offset int
}

// SplitText splits a long string into chunks of approximately 'chunkSize' characters.
// It includes an 'overlap' to preserve context at boundaries.
func SplitText(text string, chunkSize int, overlap int) []string {
	chunks := SplitTextWithOffsets(text, chunkSize, overlap)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// SplitTextWithOffsets is SplitText that also reports where each chunk
// starts, counted in runes. Whitespace-only chunks are skipped.
func SplitTextWithOffsets(text string, chunkSize int, overlap int) []TextChunk {
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen == 0 || chunkSize <= 0 {
		return nil
	}
	if totalLen <= chunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []TextChunk{{Text: text, Offset: 0}}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []TextChunk
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		// Strict character slicing; breaking at word boundaries would make
		// offsets depend on content.
		part := string(runes[i:end])
		if strings.TrimSpace(part) != "" {
			chunks = append(chunks, TextChunk{Text: part, Offset: i})
		}

		if end == totalLen {
			break
		}
	}

	return chunks
}
