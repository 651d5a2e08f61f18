package councilsrvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veriwork/backend/s3bucket"
)

// S3RoundArchive stores each finished round as a json object so a round can
// be audited long after its votes have been overwritten by a re-evaluation.
type S3RoundArchive struct {
	bucket *s3bucket.S3Bucket
}

func NewS3RoundArchive(bucket *s3bucket.S3Bucket) *S3RoundArchive {
	return &S3RoundArchive{bucket: bucket}
}

func (a *S3RoundArchive) StoreRound(ctx context.Context, result *EvaluationResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal round result: %w", err)
	}
	key := fmt.Sprintf("rounds/%s.json", result.RoundID)
	_, err = a.bucket.Upload(ctx, body, key, "application/json")
	if err != nil {
		return fmt.Errorf("failed to upload round result: %w", err)
	}
	return nil
}
