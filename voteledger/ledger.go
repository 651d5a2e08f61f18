// Package voteledger persists one vote per (project, judge) pair. Writes are
// idempotent upserts: re-running an evaluation replaces a judge's prior vote
// for the project instead of appending a second row.
package voteledger

import (
	"context"
	"time"
)

type VoteRow struct {
	ProjectID string    `dynamo:"project_id,hash"` // partition key
	JudgeID   string    `dynamo:"judge_id,range"`  // sort key
	JudgeName string    `dynamo:"judge_name"`
	Provider  string    `dynamo:"provider"`
	Approve   bool      `dynamo:"approve"`
	Reasoning string    `dynamo:"reasoning"`
	CreatedAt time.Time `dynamo:"created_at"`
}

type Ledger interface {
	Upsert(ctx context.Context, row VoteRow) error
	GetVotes(ctx context.Context, projectID string) ([]VoteRow, error)
}
