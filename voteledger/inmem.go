package voteledger

import (
	"context"
	"sort"
	"sync"
)

// InMemLedger keeps votes in memory. Used in tests and local runs.
type InMemLedger struct {
	lock  sync.Mutex
	votes map[string]map[string]VoteRow // project id -> judge id -> row
}

func NewInMemLedger() *InMemLedger {
	return &InMemLedger{
		votes: make(map[string]map[string]VoteRow),
	}
}

func (m *InMemLedger) Upsert(_ context.Context, row VoteRow) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	byJudge, ok := m.votes[row.ProjectID]
	if !ok {
		byJudge = make(map[string]VoteRow)
		m.votes[row.ProjectID] = byJudge
	}
	byJudge[row.JudgeID] = row
	return nil
}

func (m *InMemLedger) GetVotes(_ context.Context, projectID string) ([]VoteRow, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	byJudge := m.votes[projectID]
	rows := make([]VoteRow, 0, len(byJudge))
	for _, row := range byJudge {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].JudgeID < rows[j].JudgeID
	})
	return rows, nil
}
