package ingest

import (
	"unicode/utf8"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
)

// SplitText partitions text into consecutive pieces of at most limit characters.
// Joining the pieces in order gives back text unchanged. Empty text yields no pieces.
func SplitText(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = config.ChunkCharLimit
	}

	chunks := make([]string, 0, utf8.RuneCountInString(text)/limit+1)
	start, count := 0, 0
	for i := range text {
		if count == limit {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	return append(chunks, text[start:])
}

func PrepareChunks(jobId string, text string, limit int) []commonModels.TextChunk {
	pieces := SplitText(text, limit)
	chunks := make([]commonModels.TextChunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = commonModels.TextChunk{
			JobId:         jobId,
			SequenceIndex: i,
			Text:          p,
		}
	}
	return chunks
}
