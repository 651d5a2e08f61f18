package councilsrvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/veriwork/backend/logger"
	"github.com/veriwork/backend/voteledger"
)

const recorderQueueSize = 256
const recorderWriteTimeout = 30 * time.Second

type recordJob struct {
	result *EvaluationResult
	log    *slog.Logger
}

// voteRecorder persists finished rounds off the round's critical path.
// A ledger or archive failure is logged and never overturns a computed
// consensus; a full queue drops the job rather than blocking the caller.
type voteRecorder struct {
	ledger  voteledger.Ledger
	archive RoundArchive
	jobs    chan recordJob
	done    chan struct{}
}

func newVoteRecorder(ledger voteledger.Ledger, archive RoundArchive) *voteRecorder {
	return &voteRecorder{
		ledger:  ledger,
		archive: archive,
		jobs:    make(chan recordJob, recorderQueueSize),
		done:    make(chan struct{}),
	}
}

func (r *voteRecorder) start() {
	go func() {
		defer close(r.done)
		for job := range r.jobs {
			r.record(job)
		}
	}()
}

func (r *voteRecorder) stop() {
	close(r.jobs)
	<-r.done
}

func (r *voteRecorder) enqueue(ctx context.Context, result *EvaluationResult) {
	job := recordJob{result: result, log: logger.FromContext(ctx)}
	select {
	case r.jobs <- job:
	default:
		job.log.Error("vote recorder queue full, dropping round persistence",
			"round_id", result.RoundID)
	}
}

func (r *voteRecorder) record(job recordJob) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderWriteTimeout)
	defer cancel()

	result := job.result
	if r.ledger != nil {
		for _, vote := range result.Votes {
			err := r.ledger.Upsert(ctx, voteledger.VoteRow{
				ProjectID: result.ProjectID,
				JudgeID:   vote.JudgeID,
				JudgeName: vote.JudgeName,
				Provider:  string(vote.Provider),
				Approve:   vote.Approve,
				Reasoning: vote.Reasoning,
				CreatedAt: vote.CreatedAt,
			})
			if err != nil {
				job.log.Error("failed to persist vote",
					"round_id", result.RoundID,
					"judge_id", vote.JudgeID,
					"error", err)
			}
		}
	}

	if r.archive != nil {
		if err := r.archive.StoreRound(ctx, result); err != nil {
			job.log.Error("failed to archive round",
				"round_id", result.RoundID, "error", err)
		}
	}
}
