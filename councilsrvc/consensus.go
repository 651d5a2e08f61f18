package councilsrvc

// guards the exact-fraction boundary against float division noise
const thresholdEpsilon = 1e-9

// ComputeConsensus reduces a vote set into a single decision. The approval
// rate's denominator is the number of votes actually received: a judge that
// errored or timed out is excluded, not counted as a rejection. Zero votes
// is inconclusive, never an approval or a silent rejection.
func ComputeConsensus(votes []Vote, seatCount int, threshold float64) Consensus {
	if len(votes) == 0 {
		return Consensus{
			Approved:     false,
			Inconclusive: true,
		}
	}

	approvals := 0
	for _, vote := range votes {
		if vote.Approve {
			approvals++
		}
	}

	rate := float64(approvals) / float64(len(votes))
	return Consensus{
		Approved:       rate+thresholdEpsilon >= threshold,
		ApprovalCount:  approvals,
		RejectionCount: len(votes) - approvals,
		ApprovalRate:   rate,
		Inconclusive:   len(votes) < seatCount,
	}
}
