package councilsrvc

import (
	"context"

	"github.com/veriwork/backend/judge"
)

// GetConsensus recomputes the consensus for a project from its currently
// stored votes. Consensus is never stored independently, so two reads
// without an intervening evaluation always agree.
func (s *CouncilSrvc) GetConsensus(ctx context.Context, projectID string) (Consensus, error) {
	votes, err := s.GetVotes(ctx, projectID)
	if err != nil {
		return Consensus{}, err
	}
	if len(votes) == 0 {
		return Consensus{}, ErrConsensusNotFound()
	}
	// seat count equals stored votes here: absent judges left no rows, so a
	// later read cannot tell a full round from a degraded one and does not
	// re-flag it inconclusive
	return ComputeConsensus(votes, len(votes), s.config.ApprovalThreshold), nil
}

// GetVotes returns the stored vote set for a project.
func (s *CouncilSrvc) GetVotes(ctx context.Context, projectID string) ([]Vote, error) {
	rows, err := s.ledger.GetVotes(ctx, projectID)
	if err != nil {
		return nil, err
	}
	votes := make([]Vote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, Vote{
			JudgeID:   row.JudgeID,
			JudgeName: row.JudgeName,
			Provider:  judge.Provider(row.Provider),
			Approve:   row.Approve,
			Reasoning: row.Reasoning,
			CreatedAt: row.CreatedAt,
		})
	}
	return votes, nil
}
