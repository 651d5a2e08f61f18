package councilsrvc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/veriwork/backend/logger"
	"github.com/veriwork/backend/srvcerror"
)

// StartReceiving long-polls the intake queue and runs a council round for
// every request received. Blocks until ctx is cancelled. A request rejected
// by the security screen is still acknowledged: retrying it cannot change
// the verdict without a changed submission.
func (s *CouncilSrvc) StartReceiving(ctx context.Context) error {
	if s.sqsClient == nil || s.queueUrl == "" {
		return ErrQueueNotConfigured()
	}
	log := logger.FromContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		output, err := s.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueUrl),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     5,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error("failed to receive from evaluation queue", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		for _, msg := range output.Messages {
			if msg.Body == nil || msg.ReceiptHandle == nil {
				continue
			}

			var queued queuedRequest
			if err := json.Unmarshal([]byte(*msg.Body), &queued); err != nil {
				log.Error("failed to unmarshal queued request", "error", err)
				s.ack(ctx, *msg.ReceiptHandle)
				continue
			}

			_, err := s.Evaluate(ctx, Request{
				ProjectID:       queued.ProjectId,
				SubmissionURL:   queued.SubmissionUrl,
				SubmissionNotes: queued.SubmissionNotes,
			})
			if err != nil {
				log.Warn("queued evaluation failed",
					"round_id", queued.RoundId, "error", err)
				if !terminalForQueue(err) {
					// leave the message for redelivery
					continue
				}
			}

			if err := s.ack(ctx, *msg.ReceiptHandle); err != nil {
				log.Error("failed to ack message", "error", err)
			}
		}
	}
}

// terminalForQueue reports whether retrying a failed request could change
// the outcome. Security rejections and malformed requests are terminal;
// transient conditions such as no available judges are redelivered.
func terminalForQueue(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	srvcErr := &srvcerror.Error{}
	if !errors.As(err, &srvcErr) {
		return false
	}
	switch srvcErr.ErrorCode() {
	case ErrCodeSubmissionRejected, ErrCodeInvalidRequest:
		return true
	}
	return false
}

func (s *CouncilSrvc) ack(ctx context.Context, handle string) error {
	_, err := s.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueUrl),
		ReceiptHandle: aws.String(handle),
	})
	return err
}
