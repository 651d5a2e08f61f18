package councilsrvc

import (
	"strings"
)

// exchange condenses each completed vote's reasoning and records one
// Communication per directed (author -> peer) pair. It runs strictly after
// the fan-out barrier so every judge's view of its peers is the same
// complete set. Context enrichment only: no re-vote, consensus uses the
// votes as cast.
func exchange(votes []Vote, contentType string, maxLen int) []Communication {
	if len(votes) < 2 {
		return nil
	}

	comms := make([]Communication, 0, len(votes)*(len(votes)-1))
	for _, author := range votes {
		summary := condense(author, maxLen)
		for _, peer := range votes {
			if peer.JudgeID == author.JudgeID {
				continue
			}
			comms = append(comms, Communication{
				From:        author.JudgeID,
				To:          peer.JudgeID,
				Summary:     summary,
				ContentType: contentType,
			})
		}
	}
	return comms
}

func condense(vote Vote, maxLen int) string {
	verdict := "rejects"
	if vote.Approve {
		verdict = "approves"
	}
	reasoning := strings.Join(strings.Fields(vote.Reasoning), " ")
	summary := vote.JudgeName + " " + verdict + ": " + reasoning
	if len(summary) > maxLen {
		summary = summary[:maxLen]
	}
	return summary
}

// peerSummaries flattens an exchange log into the per-judge summary list a
// responder receives on a subsequent pass for the same submission.
func peerSummaries(comms []Communication, judgeID string) []string {
	var summaries []string
	seen := map[string]bool{}
	for _, comm := range comms {
		if comm.To != judgeID && comm.To != "all" {
			continue
		}
		if comm.From == judgeID || seen[comm.From] {
			continue
		}
		seen[comm.From] = true
		summaries = append(summaries, comm.Summary)
	}
	return summaries
}
