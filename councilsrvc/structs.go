package councilsrvc

import (
	"time"

	"github.com/google/uuid"
	"github.com/veriwork/backend/judge"
	"github.com/veriwork/backend/secscreen"
)

// Request is one submission offered to the council for evaluation.
// The orchestrator never mutates it.
type Request struct {
	ProjectID       string `json:"project_id"`
	SubmissionURL   string `json:"submission_url"`
	SubmissionNotes string `json:"submission_notes"`
}

// Vote is one judge's normalized verdict on a submission.
type Vote struct {
	JudgeID   string         `json:"judge_id"`
	JudgeName string         `json:"judge_name"`
	Provider  judge.Provider `json:"provider"`
	Approve   bool           `json:"approve"`
	Reasoning string         `json:"reasoning"`
	CreatedAt time.Time      `json:"created_at"`
}

// Communication records one directed share of a judge's condensed finding
// with a peer. Append-only; has no effect after the round concludes.
type Communication struct {
	From        string `json:"from"`
	To          string `json:"to"` // judge id or "all"
	Summary     string `json:"summary"`
	ContentType string `json:"content_type"`
}

// Consensus is the fraction-threshold reduction of the vote set. Derived,
// never stored; recomputed from votes on demand.
type Consensus struct {
	Approved       bool    `json:"approved"`
	ApprovalCount  int     `json:"approval_count"`
	RejectionCount int     `json:"rejection_count"`
	ApprovalRate   float64 `json:"approval_rate"`

	// Inconclusive marks a round where fewer judges voted than the council
	// has seats (including zero). A 1-of-3 rate is computed over 1 vote,
	// not 3, and this flag is what distinguishes it from a full round.
	Inconclusive bool `json:"inconclusive"`
}

// EvaluationResult is the complete outcome of one council round.
type EvaluationResult struct {
	RoundID   uuid.UUID `json:"round_id"`
	ProjectID string    `json:"project_id"`

	Votes          []Vote             `json:"votes"`
	Consensus      Consensus          `json:"consensus"`
	Security       secscreen.Analysis `json:"security_analysis"`
	ContentType    string             `json:"content_type"`
	Communications []Communication    `json:"communications"`
}
