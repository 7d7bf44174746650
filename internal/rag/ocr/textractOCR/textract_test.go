package textractOCR

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/rag/ocr"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

type mockAPI struct {
	OnStart func(*textract.StartDocumentAnalysisInput) (*textract.StartDocumentAnalysisOutput, error)
	OnGet   func(*textract.GetDocumentAnalysisInput) (*textract.GetDocumentAnalysisOutput, error)
}

func (m *mockAPI) StartDocumentAnalysis(ctx context.Context, in *textract.StartDocumentAnalysisInput, _ ...func(*textract.Options)) (*textract.StartDocumentAnalysisOutput, error) {
	return m.OnStart(in)
}

func (m *mockAPI) GetDocumentAnalysis(ctx context.Context, in *textract.GetDocumentAnalysisInput, _ ...func(*textract.Options)) (*textract.GetDocumentAnalysisOutput, error) {
	return m.OnGet(in)
}

func TestStartAnalysis_BuildsRequest(t *testing.T) {
	var captured *textract.StartDocumentAnalysisInput
	api := &mockAPI{OnStart: func(in *textract.StartDocumentAnalysisInput) (*textract.StartDocumentAnalysisOutput, error) {
		captured = in
		return &textract.StartDocumentAnalysisOutput{JobId: aws.String("job-123")}, nil
	}}

	id, err := NewFromAPI(api).StartAnalysis(context.Background(), ocr.StartRequest{
		Bucket:               "uploads",
		Key:                  "a.pdf",
		Features:             []string{ocr.FeatureForms, ocr.FeatureTables},
		NotificationTopicArn: "arn:topic",
		NotificationRoleArn:  "arn:role",
		ClientRequestToken:   "tok",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "job-123" {
		t.Errorf("job id got %s", id)
	}
	if aws.ToString(captured.DocumentLocation.S3Object.Name) != "a.pdf" {
		t.Errorf("object name not forwarded")
	}
	if len(captured.FeatureTypes) != 2 || captured.FeatureTypes[0] != types.FeatureTypeForms {
		t.Errorf("features got %v", captured.FeatureTypes)
	}
	if captured.NotificationChannel == nil || aws.ToString(captured.NotificationChannel.RoleArn) != "arn:role" {
		t.Errorf("notification channel not set")
	}
	if captured.OutputConfig != nil {
		t.Errorf("output config should be omitted without an output bucket")
	}
	if aws.ToString(captured.ClientRequestToken) != "tok" {
		t.Errorf("client request token not forwarded")
	}
}

func TestStartAnalysis_ThrottlingIsRetryable(t *testing.T) {
	api := &mockAPI{OnStart: func(*textract.StartDocumentAnalysisInput) (*textract.StartDocumentAnalysisOutput, error) {
		return nil, &types.ThrottlingException{Message: aws.String("slow down")}
	}}
	_, err := NewFromAPI(api).StartAnalysis(context.Background(), ocr.StartRequest{Bucket: "b", Key: "k"})
	if !commonModels.IsRetryable(err) {
		t.Errorf("expected throttling to be retryable, got %v", err)
	}
}

func TestGetResultPage_KeepsOnlyLineBlocks(t *testing.T) {
	api := &mockAPI{OnGet: func(in *textract.GetDocumentAnalysisInput) (*textract.GetDocumentAnalysisOutput, error) {
		if aws.ToInt32(in.MaxResults) != 1000 {
			t.Errorf("max results got %d", aws.ToInt32(in.MaxResults))
		}
		return &textract.GetDocumentAnalysisOutput{
			JobStatus: types.JobStatusSucceeded,
			NextToken: aws.String("t2"),
			Blocks: []types.Block{
				{BlockType: types.BlockTypePage},
				{BlockType: types.BlockTypeLine, Text: aws.String("first")},
				{BlockType: types.BlockTypeWord, Text: aws.String("first")},
				{BlockType: types.BlockTypeLine, Text: aws.String("second")},
			},
		}, nil
	}}

	page, err := NewFromAPI(api).GetResultPage(context.Background(), "job-123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Lines) != 2 || page.Lines[0] != "first" || page.Lines[1] != "second" {
		t.Errorf("lines got %v", page.Lines)
	}
	if page.NextToken != "t2" {
		t.Errorf("next token got %q", page.NextToken)
	}
}

func TestGetResultPage_FailedJob(t *testing.T) {
	api := &mockAPI{OnGet: func(*textract.GetDocumentAnalysisInput) (*textract.GetDocumentAnalysisOutput, error) {
		return &textract.GetDocumentAnalysisOutput{JobStatus: types.JobStatusFailed, StatusMessage: aws.String("bad pdf")}, nil
	}}
	_, err := NewFromAPI(api).GetResultPage(context.Background(), "job-1", "")
	if !errors.Is(err, commonModels.ErrUpstreamJobFailed) {
		t.Errorf("expected upstream failure, got %v", err)
	}
}
