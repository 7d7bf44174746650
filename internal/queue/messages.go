package queue

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
)

type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

type ocrNotification struct {
	JobId            string `json:"JobId"`
	Status           string `json:"Status"`
	StatusMessage    string `json:"StatusMessage"`
	FailureReason    string `json:"FailureReason"`
	DocumentLocation struct {
		S3Bucket     string `json:"S3Bucket"`
		S3ObjectName string `json:"S3ObjectName"`
	} `json:"DocumentLocation"`
}

type s3Event struct {
	Event   string `json:"Event"`
	Records []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key       string `json:"key"`
				Sequencer string `json:"sequencer"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// unwrap returns the inner message of an SNS envelope, or body itself.
func unwrap(body []byte) []byte {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return []byte(env.Message)
	}
	return body
}

// ParseCompletionNotification reads an OCR completion notification delivered raw or inside an SNS envelope.
func ParseCompletionNotification(body []byte) (jobModel.CompletionNotification, error) {
	var n ocrNotification
	if err := json.Unmarshal(unwrap(body), &n); err != nil {
		return jobModel.CompletionNotification{}, fmt.Errorf("%w: notification is not json: %w", commonModels.ErrValidation, err)
	}
	if n.JobId == "" || n.Status == "" {
		return jobModel.CompletionNotification{}, fmt.Errorf("%w: notification needs JobId and Status", commonModels.ErrValidation)
	}

	reason := n.FailureReason
	if reason == "" {
		reason = n.StatusMessage
	}
	return jobModel.CompletionNotification{
		JobId:         n.JobId,
		Status:        strings.ToUpper(strings.TrimSpace(n.Status)),
		Bucket:        n.DocumentLocation.S3Bucket,
		Key:           n.DocumentLocation.S3ObjectName,
		FailureReason: reason,
	}, nil
}

// ParseObjectCreatedEvents reads an S3 event notification. Test events yield no events.
// Object keys arrive URL-encoded and are decoded here.
func ParseObjectCreatedEvents(body []byte) ([]jobModel.ObjectCreatedEvent, error) {
	var ev s3Event
	if err := json.Unmarshal(unwrap(body), &ev); err != nil {
		return nil, fmt.Errorf("%w: event is not json: %w", commonModels.ErrValidation, err)
	}
	if ev.Event == "s3:TestEvent" {
		return nil, nil
	}
	if len(ev.Records) == 0 {
		return nil, fmt.Errorf("%w: event has no records", commonModels.ErrValidation)
	}

	events := make([]jobModel.ObjectCreatedEvent, 0, len(ev.Records))
	for i, r := range ev.Records {
		if r.EventName != "" && !strings.HasPrefix(r.EventName, "ObjectCreated:") {
			continue
		}
		key, err := url.QueryUnescape(r.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d key %q: %w", commonModels.ErrValidation, i, r.S3.Object.Key, err)
		}
		if r.S3.Bucket.Name == "" || key == "" {
			return nil, fmt.Errorf("%w: record %d needs bucket and key", commonModels.ErrValidation, i)
		}
		events = append(events, jobModel.ObjectCreatedEvent{
			Bucket:    r.S3.Bucket.Name,
			Key:       key,
			Sequencer: r.S3.Object.Sequencer,
		})
	}
	return events, nil
}
