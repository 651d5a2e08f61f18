package councilsrvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

// queuedRequest is the wire format of an evaluation request on the intake
// queue. RoundId is assigned at enqueue time so the producer can correlate.
type queuedRequest struct {
	RoundId         string `json:"round_id"`
	ProjectId       string `json:"project_id"`
	SubmissionUrl   string `json:"submission_url"`
	SubmissionNotes string `json:"submission_notes"`
}

// EnqueueEvaluation submits a round request to the intake queue instead of
// running it inline. A worker running StartReceiving picks it up.
func (s *CouncilSrvc) EnqueueEvaluation(ctx context.Context, req Request) (uuid.UUID, error) {
	if s.sqsClient == nil || s.queueUrl == "" {
		return uuid.Nil, ErrQueueNotConfigured()
	}
	if req.ProjectID == "" || req.SubmissionURL == "" {
		return uuid.Nil, ErrInvalidRequest()
	}

	roundID, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate UUID: %w", err)
	}

	jsonReq, err := json.Marshal(queuedRequest{
		RoundId:         roundID.String(),
		ProjectId:       req.ProjectID,
		SubmissionUrl:   req.SubmissionURL,
		SubmissionNotes: req.SubmissionNotes,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal evaluation request: %w", err)
	}

	_, err = s.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(string(jsonReq)),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to send message to evaluation queue: %w", err)
	}

	return roundID, nil
}
