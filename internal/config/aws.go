package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// LoadAWS builds the shared AWS SDK configuration used by the S3,
// Textract and Lambda clients.
func LoadAWS(ctx context.Context, cfg *Config) (aws.Config, error) {
	if cfg.AwsAccessKey == "" || cfg.AwsSecretKey == "" {
		return aws.Config{}, fmt.Errorf("AWS credentials not set")
	}
	if cfg.AwsRegion == "" {
		return aws.Config{}, fmt.Errorf("AWS_REGION not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.AwsRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}
