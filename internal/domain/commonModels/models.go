package commonModels

import "time"

// ExtractedDocument is the aggregated OCR text of one job. Never persisted.
type ExtractedDocument struct {
	JobId     string
	FullText  string
	LineCount int
}

type TextChunk struct {
	JobId         string `json:"job_id"`
	SequenceIndex int    `json:"sequence_index"`
	Text          string `json:"text"`
}

// IndexedDocument is the record written to the search index, keyed by DocumentId.
type IndexedDocument struct {
	DocumentId  string    `json:"document_id"`
	TextContent string    `json:"text_content"`
	Embedding   []float32 `json:"embedding"`
	Timestamp   time.Time `json:"timestamp"`
}

// SearchHit is a raw match returned by the index.
type SearchHit struct {
	Score       float32
	DocumentId  string
	TextContent string
	Timestamp   time.Time
}

type SearchResult struct {
	Score       float32   `json:"score"`
	JobId       string    `json:"job_id"`
	DocumentId  string    `json:"document_id"`
	TextPreview string    `json:"full_text_preview"`
	Timestamp   time.Time `json:"timestamp"`
}
