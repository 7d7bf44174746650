package queue

import (
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/google/uuid"
)

// Decoder turns one queue message body into zero or more worker tasks.
type Decoder func(body []byte) ([]jobModel.Task, error)

func CompletionTasks(body []byte) ([]jobModel.Task, error) {
	n, err := ParseCompletionNotification(body)
	if err != nil {
		return nil, err
	}
	return []jobModel.Task{{
		Id:           uuid.NewString(),
		TraceId:      uuid.NewString(),
		Type:         jobModel.TaskTypeCompletion,
		Notification: &n,
	}}, nil
}

func ObjectCreatedTasks(body []byte) ([]jobModel.Task, error) {
	events, err := ParseObjectCreatedEvents(body)
	if err != nil {
		return nil, err
	}
	tasks := make([]jobModel.Task, 0, len(events))
	for _, ev := range events {
		tasks = append(tasks, jobModel.Task{
			Id:      uuid.NewString(),
			TraceId: uuid.NewString(),
			Type:    jobModel.TaskTypeObjectCreated,
			Object:  &ev,
		})
	}
	return tasks, nil
}
