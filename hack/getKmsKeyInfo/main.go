package main

import (
	"context"
	"os"

	"github.com/Layr-Labs/eigenx-ccr-go/internal/aws"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner/awsKmsSigner"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/logger"
)

// Prints the address a KMS key signs requests as.
func main() {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	ctx := context.Background()

	keyId := os.Getenv("KEY_ID")
	if keyId == "" {
		l.Sugar().Fatal("KEY_ID environment variable is not set")
	}

	awsCfg, err := aws.LoadAWSConfig(ctx, os.Getenv("AWS_REGION"))
	if err != nil {
		l.Sugar().Fatalw("failed to load AWS config", "error", err)
	}

	identity, err := aws.GetCallerIdentity(ctx, awsCfg)
	if err != nil {
		l.Sugar().Fatalw("failed to get caller identity", "error", err)
	}

	signer, err := awsKmsSigner.NewAWSKMSSignerFromConfig(ctx, awsCfg, keyId, l)
	if err != nil {
		l.Sugar().Fatalw("failed to load KMS key", "error", err)
	}

	l.Sugar().Infow("KMS key",
		"keyId", keyId,
		"address", signer.GetAddress().Hex(),
		"callerArn", *identity.Arn,
	)
}
