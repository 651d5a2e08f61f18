package judge

import (
	"context"
	"fmt"
	"strings"
)

// SubmissionContext is everything a judge is shown about one submission.
// The orchestrator owns sanitization; adapters forward these fields verbatim.
type SubmissionContext struct {
	ProjectID       string
	SubmissionURL   string
	SubmissionNotes string
	ContentType     string // "code", "video", "social" or "generic"
}

// Responder wraps one model-provider call behind a uniform interface.
// Implementations must honor ctx cancellation and return an error on
// transport failure rather than panic; retries are bounded to one.
type Responder interface {
	Evaluate(ctx context.Context, persona Persona, sub SubmissionContext, peerSummaries []string) (string, error)
}

// buildUserPrompt renders the submission context into the user message sent
// to every provider. Peer summaries, when present, are appended as
// supplementary context and explicitly marked as non-binding.
func buildUserPrompt(sub SubmissionContext, peerSummaries []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate the following work submission.\n")
	fmt.Fprintf(&b, "Project: %s\n", sub.ProjectID)
	fmt.Fprintf(&b, "Submission URL: %s\n", sub.SubmissionURL)
	fmt.Fprintf(&b, "Content type: %s\n", sub.ContentType)
	fmt.Fprintf(&b, "Submission notes:\n%s\n", sub.SubmissionNotes)
	if len(peerSummaries) > 0 {
		b.WriteString("\nSummaries from fellow council members (context only, vote by your own rubric):\n")
		for _, s := range peerSummaries {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}
