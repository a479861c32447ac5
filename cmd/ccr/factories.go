package main

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/eigenx-ccr-go/internal/aws"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/clients/web3signer"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/config"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner/awsKmsSigner"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner/privateKeySigner"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner/web3Signer"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence/badger"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence/memory"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence/redis"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

func newHashSigner(ctx context.Context, cfg *config.SignerConfig, l *zap.Logger) (hashSigner.IHashSigner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no signer configured")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signer configuration: %w", err)
	}

	switch cfg.Type {
	case config.SignerType_PrivateKey:
		return privateKeySigner.NewPrivateKeySigner(cfg.PrivateKey, l)

	case config.SignerType_AwsKms:
		awsCfg, err := aws.LoadAWSConfig(ctx, cfg.AwsKms.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		if identity, err := aws.GetCallerIdentity(ctx, awsCfg); err != nil {
			l.Sugar().Warnw("Failed to resolve AWS caller identity", "error", err)
		} else {
			l.Sugar().Debugw("Using AWS identity", "arn", identity.Arn, "account", identity.Account)
		}
		return awsKmsSigner.NewAWSKMSSignerFromConfig(ctx, awsCfg, cfg.AwsKms.KeyId, l)

	case config.SignerType_Web3Signer:
		client, err := web3signer.NewWeb3SignerClientFromRemoteSignerConfig(cfg.Web3Signer, l)
		if err != nil {
			return nil, fmt.Errorf("failed to create web3signer client: %w", err)
		}
		return web3Signer.NewWeb3Signer(client, cfg.Web3Signer.PublicKey, common.HexToAddress(cfg.Web3Signer.FromAddress), l)
	}

	return nil, fmt.Errorf("unsupported signer type %q", cfg.Type)
}

// newJournal returns nil when journaling is disabled.
func newJournal(cfg *config.PersistenceConfig, l *zap.Logger) (persistence.IEnvelopePersistence, error) {
	if cfg == nil || cfg.Type == config.PersistenceType_None {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid persistence configuration: %w", err)
	}

	switch cfg.Type {
	case config.PersistenceType_Memory:
		return memory.NewMemoryPersistence(l), nil
	case config.PersistenceType_Badger:
		return badger.NewBadgerPersistence(cfg.DataPath, l)
	case config.PersistenceType_Redis:
		return redis.NewRedisPersistence(&redis.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, l)
	}

	return nil, fmt.Errorf("unsupported persistence type %q", cfg.Type)
}
