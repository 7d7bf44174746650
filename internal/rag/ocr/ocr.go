package ocr

import "context"

const (
	FeatureForms  = "FORMS"
	FeatureTables = "TABLES"
)

// StartRequest describes one asynchronous document analysis submission.
type StartRequest struct {
	Bucket               string
	Key                  string
	Features             []string
	NotificationTopicArn string
	NotificationRoleArn  string
	OutputBucket         string
	OutputPrefix         string
	// ClientRequestToken makes repeated submissions of the same object return the same job.
	ClientRequestToken string
}

// Page is one page of OCR results. Lines holds the text of each LINE block in reading order.
type Page struct {
	Lines     []string
	NextToken string
	JobStatus string
}

type JobStarter interface {
	StartAnalysis(ctx context.Context, req StartRequest) (string, error)
}

type ResultPager interface {
	GetResultPage(ctx context.Context, jobId string, nextToken string) (Page, error)
}
