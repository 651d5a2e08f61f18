package councilsrvc

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/veriwork/backend/judge"
	"github.com/veriwork/backend/logger"
	"github.com/veriwork/backend/secscreen"
)

// Evaluate runs one complete council round for a submission:
//  1. security screen; a blocked submission terminates the round before any
//     judge sees it, a flagged-but-strippable one proceeds sanitized;
//  2. concurrent fan-out to every seated judge, each call under its own
//     timeout inside the round's wall-clock budget;
//  3. defensive normalization of each raw response as it completes; a judge
//     that errors or times out contributes no vote;
//  4. one inter-judge summary exchange over the completed vote set;
//  5. consensus reduction over received votes;
//  6. best-effort persistence off the critical path.
func (s *CouncilSrvc) Evaluate(ctx context.Context, req Request) (*EvaluationResult, error) {
	if req.ProjectID == "" || req.SubmissionURL == "" {
		return nil, ErrInvalidRequest()
	}

	roundID, err := uuid.NewV7()
	if err != nil {
		roundID = uuid.New()
	}
	ctx = logger.WithRoundID(ctx, roundID.String())
	ctx = logger.WithProjectID(ctx, req.ProjectID)
	log := logger.FromContext(ctx)

	analysis := secscreen.Screen(req.SubmissionURL, req.SubmissionNotes)
	result := &EvaluationResult{
		RoundID:     roundID,
		ProjectID:   req.ProjectID,
		Votes:       []Vote{},
		Security:    analysis,
		ContentType: analysis.ContentType,
	}

	if analysis.Blocked {
		log.Warn("submission blocked by security screen", "reasons", analysis.Reasons)
		result.Consensus = Consensus{Approved: false}
		return result, ErrSubmissionRejected()
	}
	if analysis.Flagged {
		log.Warn("submission sanitized before fan-out", "reasons", analysis.Reasons)
	}

	seated := s.seatedJudges(ctx)
	if len(seated) == 0 {
		return nil, ErrNoJudgesAvailable()
	}

	subCtx := judge.SubmissionContext{
		ProjectID:       req.ProjectID,
		SubmissionURL:   req.SubmissionURL,
		SubmissionNotes: analysis.SanitizedNotes,
		ContentType:     analysis.ContentType,
	}

	roundCtx, cancel := context.WithTimeout(ctx, s.config.RoundBudget)
	defer cancel()

	result.Votes = s.fanOut(roundCtx, seated, subCtx)
	result.Communications = exchange(result.Votes, analysis.ContentType, s.config.SummaryMaxLen)
	if s.config.DeliberationPass && len(result.Votes) >= 2 {
		result.Votes = s.deliberate(roundCtx, seated, subCtx, result.Votes, result.Communications)
	}
	result.Consensus = ComputeConsensus(result.Votes, len(s.seats), s.config.ApprovalThreshold)

	log.Info("council round finished",
		"votes", len(result.Votes),
		"approved", result.Consensus.Approved,
		"approval_rate", result.Consensus.ApprovalRate,
		"inconclusive", result.Consensus.Inconclusive)

	s.recorder.enqueue(ctx, result)

	return result, nil
}

type seatedJudge struct {
	persona   judge.Persona
	responder judge.Responder
}

// seatedJudges resolves each council seat to a responder. A seat whose
// provider has no usable responder degrades to an absent judge rather than
// failing the round.
func (s *CouncilSrvc) seatedJudges(ctx context.Context) []seatedJudge {
	log := logger.FromContext(ctx)
	seated := make([]seatedJudge, 0, len(s.seats))
	for _, persona := range s.seats {
		responder, ok := s.responders[persona.Provider]
		if !ok || responder == nil {
			log.Warn("judge absent, provider unavailable",
				"judge_id", persona.JudgeID, "provider", persona.Provider)
			continue
		}
		seated = append(seated, seatedJudge{persona: persona, responder: responder})
	}
	return seated
}

// fanOut issues every judge call in parallel and waits for all of them to
// complete or hit their individual timeout. No first-N-complete shortcut:
// every seat's vote matters to the threshold. The only shared state is the
// mutex-guarded vote slice at the join point.
func (s *CouncilSrvc) fanOut(ctx context.Context, seated []seatedJudge,
	subCtx judge.SubmissionContext,
) []Vote {
	log := logger.FromContext(ctx)

	var lock sync.Mutex
	votes := make([]Vote, 0, len(seated))

	var wg sync.WaitGroup
	for _, seat := range seated {
		wg.Add(1)
		go func(seat seatedJudge) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.config.VoteTimeout)
			defer cancel()

			raw, err := seat.responder.Evaluate(callCtx, seat.persona, subCtx, nil)
			if err != nil {
				// transport failure or timeout: this judge contributes no
				// vote and is excluded from the approval rate denominator
				log.Warn("judge call failed",
					"judge_id", seat.persona.JudgeID,
					"provider", seat.persona.Provider,
					"error", err)
				return
			}

			verdict := normalizeRaw(raw)
			vote := Vote{
				JudgeID:   seat.persona.JudgeID,
				JudgeName: seat.persona.JudgeName,
				Provider:  seat.persona.Provider,
				Approve:   verdict.Approve,
				Reasoning: verdict.Reasoning,
				CreatedAt: time.Now().UTC(),
			}

			lock.Lock()
			votes = append(votes, vote)
			lock.Unlock()
		}(seat)
	}
	wg.Wait()

	// stable order for callers and the exchange log
	sort.Slice(votes, func(i, j int) bool {
		return votes[i].JudgeID < votes[j].JudgeID
	})

	return votes
}

// deliberate runs the optional second phase: every judge that voted is
// re-invoked once with its peers' condensed findings and may revise its
// verdict. It runs strictly after the exchange so every judge sees the same
// complete peer set. A failed second call keeps the first-pass vote; the
// denominator of the approval rate is never changed by this phase.
func (s *CouncilSrvc) deliberate(ctx context.Context, seated []seatedJudge,
	subCtx judge.SubmissionContext, votes []Vote, comms []Communication,
) []Vote {
	log := logger.FromContext(ctx)

	byID := make(map[string]seatedJudge, len(seated))
	for _, seat := range seated {
		byID[seat.persona.JudgeID] = seat
	}

	final := make([]Vote, len(votes))
	copy(final, votes)

	var wg sync.WaitGroup
	for i, vote := range votes {
		seat, ok := byID[vote.JudgeID]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, seat seatedJudge, vote Vote) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.config.VoteTimeout)
			defer cancel()

			summaries := peerSummaries(comms, vote.JudgeID)
			raw, err := seat.responder.Evaluate(callCtx, seat.persona, subCtx, summaries)
			if err != nil {
				log.Warn("deliberation call failed, keeping first-pass vote",
					"judge_id", vote.JudgeID, "error", err)
				return
			}

			verdict := normalizeRaw(raw)
			// each goroutine writes a distinct index
			final[i].Approve = verdict.Approve
			final[i].Reasoning = verdict.Reasoning
			final[i].CreatedAt = time.Now().UTC()
		}(i, seat, vote)
	}
	wg.Wait()

	return final
}
