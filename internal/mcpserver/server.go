package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/DocSearch/internal/rag"
	"github.com/akolanti/DocSearch/internal/rag/search"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

var logger = logger_i.NewLogger("MCP")

type SearchInput struct {
	Query string `json:"query" jsonschema:"natural language text to search the indexed documents for"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of results (default 5, max 100)"`
}

type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

type SearchResultOutput struct {
	DocumentId string    `json:"document_id"`
	Score      float32   `json:"score"`
	Preview    string    `json:"full_text_preview"`
	Timestamp  time.Time `json:"timestamp"`
}

type StatusInput struct {
	JobId string `json:"job_id" jsonschema:"the ingestion job id returned when the document was submitted"`
}

type StatusOutput struct {
	JobId         string `json:"job_id"`
	Status        string `json:"status"`
	Source        string `json:"source,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	NeedsReview   bool   `json:"needs_review,omitempty"`
}

// Server exposes document search and ingestion status as MCP tools.
type Server struct {
	ragService rag.Service
	server     *mcp.Server
}

func New(ragService rag.Service) *Server {
	s := &Server{
		ragService: ragService,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "docsearch",
			Title:   "DocSearch",
			Version: Version,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Semantic search over OCR-ingested documents. Returns the closest documents with a text preview.",
	}, s.searchTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingestion_status",
		Description: "Current state of a document ingestion job (STARTED, EXTRACTING, EXTRACTED, EMBEDDING, INDEXED or FAILED).",
	}, s.statusTool)

	return s
}

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) searchTool(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	k := search.NormalizeK(input.K)
	results, err := s.ragService.Search(ctx, input.Query, k)
	if err != nil {
		logger.FromContext(ctx).Warn("search tool failed", "error", err)
		return nil, SearchOutput{}, fmt.Errorf("search: %w", err)
	}

	out := SearchOutput{Results: make([]SearchResultOutput, 0, len(results)), Count: len(results)}
	for _, r := range results {
		out.Results = append(out.Results, SearchResultOutput{
			DocumentId: r.DocumentId,
			Score:      r.Score,
			Preview:    r.TextPreview,
			Timestamp:  r.Timestamp,
		})
	}
	return nil, out, nil
}

func (s *Server) statusTool(ctx context.Context, _ *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	if input.JobId == "" {
		return nil, StatusOutput{}, fmt.Errorf("job_id is required")
	}
	job, err := s.ragService.JobStatus(ctx, input.JobId)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		JobId:         job.Id,
		Status:        string(job.Status),
		Source:        job.SourceLocation(),
		FailureReason: job.FailureReason,
		NeedsReview:   job.NeedsReview,
	}, nil
}
