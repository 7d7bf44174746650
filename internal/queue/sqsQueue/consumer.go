package sqsQueue

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/internal/queue"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// API is the subset of the sqs client the consumer needs.
type API interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Consumer long-polls one queue and hands every decoded task to enqueue.
// Messages are deleted only through the task Ack, so unfinished or malformed
// messages become visible again and end in the dead-letter queue after redrive.
type Consumer struct {
	api         API
	name        string
	queueURL    string
	decode      queue.Decoder
	enqueue     func(jobModel.Task)
	waitSeconds int32
	maxMessages int32
	visibility  int32
	backoff     time.Duration
	logger      *logger_i.Logger
}

func NewConsumer(api API, name, queueURL string, decode queue.Decoder, enqueue func(jobModel.Task)) *Consumer {
	return &Consumer{
		api:         api,
		name:        name,
		queueURL:    queueURL,
		decode:      decode,
		enqueue:     enqueue,
		waitSeconds: config.SQSWaitTimeSeconds,
		maxMessages: config.SQSMaxMessages,
		visibility:  config.SQSVisibilityTimeout,
		backoff:     config.SQSReceiveErrorBackoff,
		logger:      logger_i.NewLogger("sqs_consumer").With("queue", name),
	}
}

// Run polls until ctx is done.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("consumer started", "url", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopped")
			return
		default:
		}

		if _, err := c.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.Error("receive failed, backing off", "error", err, "backoff", c.backoff)
			select {
			case <-ctx.Done():
			case <-time.After(c.backoff):
			}
		}
	}
}

// PollOnce receives one batch and returns how many tasks were enqueued.
func (c *Consumer) PollOnce(ctx context.Context) (int, error) {
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: c.maxMessages,
		WaitTimeSeconds:     c.waitSeconds,
		VisibilityTimeout:   c.visibility,
	})
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, msg := range out.Messages {
		enqueued += c.dispatch(ctx, aws.ToString(msg.MessageId), aws.ToString(msg.ReceiptHandle), aws.ToString(msg.Body))
	}
	return enqueued, nil
}

// dispatch handles one message in isolation; a bad message never affects the rest of the batch.
func (c *Consumer) dispatch(ctx context.Context, messageId, receipt, body string) int {
	log := c.logger.With("messageId", messageId)

	tasks, err := c.decode([]byte(body))
	if err != nil {
		metrics.IncrementRejectedMessage(c.name)
		log.Error("could not decode message, leaving it for redrive", "error", err)
		return 0
	}
	if len(tasks) == 0 {
		log.Debug("message carries no work, deleting")
		c.delete(ctx, receipt, log)
		return 0
	}

	remaining := int32(len(tasks))
	ack := func(ctx context.Context) error {
		if atomic.AddInt32(&remaining, -1) == 0 {
			return c.delete(ctx, receipt, log)
		}
		return nil
	}
	for _, task := range tasks {
		task.Ack = ack
		c.enqueue(task)
	}
	return len(tasks)
}

func (c *Consumer) delete(ctx context.Context, receipt string, log *logger_i.Logger) error {
	_, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receipt),
	})
	if err != nil {
		log.Error("could not delete message", "error", err)
	}
	return err
}
