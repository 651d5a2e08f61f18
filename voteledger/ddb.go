package voteledger

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/guregu/dynamo/v2"
)

// DdbVoteTable stores votes in a DynamoDB table keyed
// (project_id, judge_id); an unconditional put gives upsert semantics.
type DdbVoteTable struct {
	ddbClient *dynamodb.Client
	tableName string
	voteTable *dynamo.Table
}

func NewDdbVoteTable(ddbClient *dynamodb.Client, tableName string) *DdbVoteTable {
	ddb := &DdbVoteTable{
		ddbClient: ddbClient,
		tableName: tableName,
	}
	db := dynamo.NewFromIface(ddb.ddbClient)
	table := db.Table(ddb.tableName)
	ddb.voteTable = &table

	return ddb
}

func (ddb *DdbVoteTable) Upsert(ctx context.Context, row VoteRow) error {
	err := ddb.voteTable.Put(row).Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert vote row: %w", err)
	}
	return nil
}

func (ddb *DdbVoteTable) GetVotes(ctx context.Context, projectID string) ([]VoteRow, error) {
	var rows []VoteRow
	err := ddb.voteTable.Get("project_id", projectID).All(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote rows: %w", err)
	}
	return rows, nil
}
