// Package councilsrvc orchestrates one council evaluation round: security
// screening, concurrent fan-out to judge responders, defensive normalization
// of each raw response, an inter-judge summary exchange, consensus reduction
// and best-effort persistence of the vote set.
package councilsrvc

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/veriwork/backend/judge"
	"github.com/veriwork/backend/voteledger"
)

const (
	DefaultVoteTimeout       = 45 * time.Second
	DefaultRoundBudget       = 2 * time.Minute
	DefaultApprovalThreshold = 2.0 / 3.0
	DefaultSummaryMaxLen     = 240
)

type Config struct {
	VoteTimeout       time.Duration // per judge call
	RoundBudget       time.Duration // whole round, outstanding calls cancelled past it
	ApprovalThreshold float64       // fraction of received votes that must approve
	SummaryMaxLen     int           // inter-judge summary length cap

	// DeliberationPass re-invokes each voted judge once with its peers'
	// condensed findings before consensus. A judge that fails the second
	// call keeps its first-pass vote, so the vote count never changes.
	DeliberationPass bool
}

func DefaultConfig() Config {
	return Config{
		VoteTimeout:       DefaultVoteTimeout,
		RoundBudget:       DefaultRoundBudget,
		ApprovalThreshold: DefaultApprovalThreshold,
		SummaryMaxLen:     DefaultSummaryMaxLen,
	}
}

// RoundArchive stores the full result of a finished round for audit.
type RoundArchive interface {
	StoreRound(ctx context.Context, result *EvaluationResult) error
}

type CouncilSrvc struct {
	seats      []judge.Persona
	responders map[judge.Provider]judge.Responder
	config     Config

	ledger   voteledger.Ledger
	recorder *voteRecorder
	archive  RoundArchive // optional

	sqsClient *sqs.Client // optional, async intake
	queueUrl  string
}

type Option func(*CouncilSrvc)

func WithArchive(archive RoundArchive) Option {
	return func(s *CouncilSrvc) {
		s.archive = archive
	}
}

func WithQueue(client *sqs.Client, queueUrl string) Option {
	return func(s *CouncilSrvc) {
		s.sqsClient = client
		s.queueUrl = queueUrl
	}
}

func WithConfig(config Config) Option {
	return func(s *CouncilSrvc) {
		if config.VoteTimeout > 0 {
			s.config.VoteTimeout = config.VoteTimeout
		}
		if config.RoundBudget > 0 {
			s.config.RoundBudget = config.RoundBudget
		}
		if config.ApprovalThreshold > 0 {
			s.config.ApprovalThreshold = config.ApprovalThreshold
		}
		if config.SummaryMaxLen > 0 {
			s.config.SummaryMaxLen = config.SummaryMaxLen
		}
		if config.DeliberationPass {
			s.config.DeliberationPass = true
		}
	}
}

func NewCouncilSrvc(
	seats []judge.Persona,
	responders map[judge.Provider]judge.Responder,
	ledger voteledger.Ledger,
	opts ...Option,
) *CouncilSrvc {
	srvc := &CouncilSrvc{
		seats:      seats,
		responders: responders,
		config:     DefaultConfig(),
		ledger:     ledger,
	}
	for _, opt := range opts {
		opt(srvc)
	}
	srvc.recorder = newVoteRecorder(ledger, srvc.archive)
	srvc.recorder.start()
	return srvc
}

// Close drains the persistence worker. Pending ledger writes finish first.
func (s *CouncilSrvc) Close() {
	s.recorder.stop()
}
