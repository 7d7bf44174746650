package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/rag/ocr"
)

// Aggregator pulls every result page of a finished OCR job and joins the lines.
type Aggregator struct {
	pager       ocr.ResultPager
	maxPages    int
	callTimeout time.Duration
}

func NewAggregator(pager ocr.ResultPager) *Aggregator {
	return &Aggregator{
		pager:       pager,
		maxPages:    config.OCRMaxPages,
		callTimeout: config.OCRCallTimeout,
	}
}

// Aggregate returns the full text of the job, one line per LINE block, each followed by a newline.
// Any page failure fails the whole extraction.
func (a *Aggregator) Aggregate(ctx context.Context, jobId string) (commonModels.ExtractedDocument, error) {
	log := logger.FromContext(ctx).With("jobId", jobId)

	var text strings.Builder
	lineCount := 0
	token := ""
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		if page > a.maxPages {
			return commonModels.ExtractedDocument{}, fmt.Errorf("%w: job %s has more than %d result pages", commonModels.ErrExtractionFailed, jobId, a.maxPages)
		}

		result, err := a.fetch(ctx, jobId, token)
		if err != nil {
			log.Error("result page retrieval failed", "page", page, "error", err)
			return commonModels.ExtractedDocument{}, fmt.Errorf("%w: page %d of job %s: %w", commonModels.ErrExtractionFailed, page, jobId, err)
		}

		for _, line := range result.Lines {
			text.WriteString(line)
			text.WriteByte('\n')
			lineCount++
		}

		if result.NextToken == "" {
			log.Debug("extraction complete", "pages", page, "lines", lineCount)
			break
		}
		if _, dup := seen[result.NextToken]; dup {
			return commonModels.ExtractedDocument{}, fmt.Errorf("%w: page token repeated for job %s", commonModels.ErrExtractionFailed, jobId)
		}
		seen[result.NextToken] = struct{}{}
		token = result.NextToken
	}

	return commonModels.ExtractedDocument{
		JobId:     jobId,
		FullText:  text.String(),
		LineCount: lineCount,
	}, nil
}

func (a *Aggregator) fetch(ctx context.Context, jobId, token string) (ocr.Page, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()
	return a.pager.GetResultPage(callCtx, jobId, token)
}
