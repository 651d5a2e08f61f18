package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/veriwork/backend/councilsrvc"
	"github.com/veriwork/backend/http"
	"github.com/veriwork/backend/judge"
	"github.com/veriwork/backend/s3bucket"
	"github.com/veriwork/backend/voteledger"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	jwtKey := os.Getenv("JWT_KEY")
	if jwtKey == "" {
		slog.Error("JWT_KEY is not set")
		os.Exit(1)
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-central-1"
	}

	seats := judge.DefaultCouncil()
	if councilPath := os.Getenv("COUNCIL_TOML"); councilPath != "" {
		seats, err = judge.LoadCouncil(councilPath)
		if err != nil {
			slog.Error("failed to load council file", "error", err)
			os.Exit(1)
		}
	}

	responders, responderErrs := judge.NewResponders()
	for _, err := range responderErrs {
		slog.Warn("provider unavailable, its seats will be absent", "error", err)
	}
	if len(responders) == 0 {
		slog.Error("no judge provider credentials configured")
		os.Exit(1)
	}

	var ledger voteledger.Ledger = voteledger.NewInMemLedger()
	if tableName := os.Getenv("VOTE_TABLE"); tableName != "" {
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
		if err != nil {
			slog.Error("unable to load AWS SDK config", "error", err)
			os.Exit(1)
		}
		ledger = voteledger.NewDdbVoteTable(dynamodb.NewFromConfig(cfg), tableName)
	} else {
		slog.Warn("VOTE_TABLE not set, using in-memory vote ledger")
	}

	opts := []councilsrvc.Option{
		councilsrvc.WithConfig(configFromEnv()),
	}

	if bucketName := os.Getenv("ROUND_ARCHIVE_BUCKET"); bucketName != "" {
		bucket, err := s3bucket.NewS3Bucket(region, bucketName)
		if err != nil {
			slog.Error("failed to create round archive bucket", "error", err)
			os.Exit(1)
		}
		opts = append(opts, councilsrvc.WithArchive(councilsrvc.NewS3RoundArchive(bucket)))
	}

	queueUrl := os.Getenv("EVAL_QUEUE_URL")
	if queueUrl != "" {
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
		if err != nil {
			slog.Error("unable to load AWS SDK config", "error", err)
			os.Exit(1)
		}
		opts = append(opts, councilsrvc.WithQueue(sqs.NewFromConfig(cfg), queueUrl))
	}

	councilSrvc := councilsrvc.NewCouncilSrvc(seats, responders, ledger, opts...)
	defer councilSrvc.Close()

	if queueUrl != "" {
		go func() {
			err := councilSrvc.StartReceiving(context.Background())
			slog.Error("queue receiver stopped", "error", err)
		}()
	}

	httpServer := http.NewHttpServer(councilSrvc, []byte(jwtKey))

	address := os.Getenv("ADDRESS")
	if address == "" {
		address = ":8080"
	}
	log.Printf("Starting server on %s", address)
	err = httpServer.Start(address)
	log.Printf("Server stopped with error: %v", err)
}

func configFromEnv() councilsrvc.Config {
	cfg := councilsrvc.Config{}
	if v := os.Getenv("VOTE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.VoteTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("ROUND_BUDGET_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RoundBudget = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("APPROVAL_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ApprovalThreshold = f
		}
	}
	return cfg
}
