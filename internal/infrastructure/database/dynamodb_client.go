package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// Settings is the DynamoDB connection part of the service configuration.
type Settings struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// ConnectDynamoDB creates a DynamoDB client. An endpoint switches the client
// to a local DynamoDB (e.g. http://dynamodb:8000).
func ConnectDynamoDB(ctx context.Context, s Settings, logger *zap.Logger) (*dynamodb.Client, error) {
	cfg, err := NewDynamoDBConfig(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamodb config: %w", err)
	}
	if logger != nil {
		logger.Info("[database][dynamodb] client ready", zap.String("region", cfg.Region), zap.Bool("local_endpoint", s.Endpoint != ""))
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
	}), nil
}

func NewDynamoDBConfig(ctx context.Context, s Settings) (aws.Config, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(orDefault(s.Region, "us-east-1")),
	}

	// Local DynamoDB does not validate credentials, but the AWS SDK requires them.
	if s.Endpoint != "" || s.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			orDefault(s.AccessKeyID, "local"),
			orDefault(s.SecretAccessKey, "local"),
			"",
		)))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
