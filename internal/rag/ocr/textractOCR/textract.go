package textractOCR

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/internal/rag/ocr"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
)

var logger = logger_i.NewLogger("textract")

// API is the subset of the textract client used here.
type API interface {
	StartDocumentAnalysis(ctx context.Context, params *textract.StartDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.StartDocumentAnalysisOutput, error)
	GetDocumentAnalysis(ctx context.Context, params *textract.GetDocumentAnalysisInput, optFns ...func(*textract.Options)) (*textract.GetDocumentAnalysisOutput, error)
}

type Client struct {
	api        API
	maxResults int32
}

func New(cfg aws.Config) *Client {
	return NewFromAPI(textract.NewFromConfig(cfg))
}

func NewFromAPI(api API) *Client {
	return &Client{api: api, maxResults: config.OCRMaxResultsPerPage}
}

func (c *Client) StartAnalysis(ctx context.Context, req ocr.StartRequest) (string, error) {
	log := logger.FromContext(ctx).With("source", fmt.Sprintf("s3://%s/%s", req.Bucket, req.Key))

	features := make([]types.FeatureType, 0, len(req.Features))
	for _, f := range req.Features {
		features = append(features, types.FeatureType(f))
	}

	input := &textract.StartDocumentAnalysisInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: aws.String(req.Bucket),
				Name:   aws.String(req.Key),
			},
		},
		FeatureTypes: features,
	}
	if req.NotificationTopicArn != "" {
		input.NotificationChannel = &types.NotificationChannel{
			SNSTopicArn: aws.String(req.NotificationTopicArn),
			RoleArn:     aws.String(req.NotificationRoleArn),
		}
	}
	if req.OutputBucket != "" {
		input.OutputConfig = &types.OutputConfig{
			S3Bucket: aws.String(req.OutputBucket),
			S3Prefix: aws.String(req.OutputPrefix),
		}
	}
	if req.ClientRequestToken != "" {
		input.ClientRequestToken = aws.String(req.ClientRequestToken)
	}

	start := time.Now()
	out, err := c.api.StartDocumentAnalysis(ctx, input)
	metrics.CaptureExecutionMetrics("ocr", time.Since(start))
	if err != nil {
		log.Error("StartDocumentAnalysis failed", "error", err)
		return "", classify(err)
	}
	if out.JobId == nil || *out.JobId == "" {
		return "", fmt.Errorf("%w: textract returned no job id", commonModels.ErrValidation)
	}
	log.Info("OCR job started", "ocrJobId", *out.JobId)
	return *out.JobId, nil
}

func (c *Client) GetResultPage(ctx context.Context, jobId string, nextToken string) (ocr.Page, error) {
	input := &textract.GetDocumentAnalysisInput{
		JobId:      aws.String(jobId),
		MaxResults: aws.Int32(c.maxResults),
	}
	if nextToken != "" {
		input.NextToken = aws.String(nextToken)
	}

	start := time.Now()
	out, err := c.api.GetDocumentAnalysis(ctx, input)
	metrics.CaptureExecutionMetrics("ocr", time.Since(start))
	if err != nil {
		return ocr.Page{}, classify(err)
	}

	page := ocr.Page{
		JobStatus: string(out.JobStatus),
		NextToken: aws.ToString(out.NextToken),
	}
	if out.JobStatus != types.JobStatusSucceeded && out.JobStatus != types.JobStatusPartialSuccess {
		msg := aws.ToString(out.StatusMessage)
		return page, fmt.Errorf("%w: ocr job %s is %s %s", commonModels.ErrUpstreamJobFailed, jobId, out.JobStatus, msg)
	}

	for _, block := range out.Blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		page.Lines = append(page.Lines, *block.Text)
	}
	return page, nil
}

// classify maps throttling and service-side faults to transient errors.
func classify(err error) error {
	wrapped := fmt.Errorf("%w: %w", commonModels.ErrTransport, err)

	var throttled *types.ProvisionedThroughputExceededException
	var limit *types.ThrottlingException
	var internal *types.InternalServerError
	if errors.As(err, &throttled) || errors.As(err, &limit) || errors.As(err, &internal) {
		return commonModels.Transient(wrapped)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorFault() == smithy.FaultServer {
			return commonModels.Transient(wrapped)
		}
		return fmt.Errorf("%w: %w", commonModels.ErrValidation, err)
	}
	return wrapped
}
