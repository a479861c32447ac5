package main

import (
	"log"
	"os"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ccr",
		Usage: "Build, sign and submit confidential compute requests",
		Description: `A client for confidential compute request transactions.

This client can:
- Compute the signing hash of a transaction request and its confidential inputs
- Sign requests with a private key, AWS KMS or Web3Signer
- Decode envelopes and recover their sender
- Submit envelopes with eth_sendRawTransaction and journal what was sent`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file; flags override its values",
				EnvVars: []string{config.EnvCCRConfigFile},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvCCRDebug},
			},
			&cli.StringFlag{
				Name:    "kettle-address",
				Aliases: []string{"kettle"},
				Usage:   "Execution node the confidential inputs are addressed to",
				EnvVars: []string{config.EnvCCRKettleAddress},
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Ethereum RPC URL of the execution node",
				Value:   "http://localhost:8545",
				EnvVars: []string{config.EnvCCRRpcURL},
			},
			&cli.StringFlag{
				Name:    "signer-type",
				Usage:   "Signer backend (private_key, aws_kms, web3signer)",
				EnvVars: []string{config.EnvCCRSignerType},
			},
			&cli.StringFlag{
				Name:    "private-key",
				Usage:   "Hex encoded secp256k1 private key for the private_key signer",
				EnvVars: []string{config.EnvCCRPrivateKey},
			},
			&cli.StringFlag{
				Name:    "aws-kms-key-id",
				Usage:   "AWS KMS key id or ARN for the aws_kms signer",
				EnvVars: []string{config.EnvCCRAwsKmsKeyId},
			},
			&cli.StringFlag{
				Name:    "aws-region",
				Usage:   "AWS region override",
				EnvVars: []string{config.EnvCCRAwsRegion},
			},
			&cli.StringFlag{
				Name:    "web3signer-url",
				Usage:   "Web3Signer base URL",
				EnvVars: []string{config.EnvCCRWeb3SignerURL},
			},
			&cli.StringFlag{
				Name:    "web3signer-from-address",
				Usage:   "Address of the Web3Signer key",
				EnvVars: []string{config.EnvCCRWeb3SignerFrom},
			},
			&cli.StringFlag{
				Name:    "web3signer-public-key",
				Usage:   "Public key identifying the Web3Signer key",
				EnvVars: []string{config.EnvCCRWeb3SignerKey},
			},
			&cli.Float64Flag{
				Name:    "web3signer-requests-per-second",
				Usage:   "Rate limit for Web3Signer calls, 0 for unlimited",
				EnvVars: []string{config.EnvCCRWeb3SignerRPS},
			},
			&cli.StringFlag{
				Name:    "web3signer-ca-cert",
				Usage:   "PEM encoded CA certificate for Web3Signer TLS",
				EnvVars: []string{config.EnvCCRWeb3SignerCA},
			},
			&cli.StringFlag{
				Name:    "web3signer-cert",
				Usage:   "PEM encoded client certificate for Web3Signer mTLS",
				EnvVars: []string{config.EnvCCRWeb3SignerCert},
			},
			&cli.StringFlag{
				Name:    "web3signer-key",
				Usage:   "PEM encoded client key for Web3Signer mTLS",
				EnvVars: []string{config.EnvCCRWeb3SignerTLSKey},
			},
			&cli.StringFlag{
				Name:    "persistence-type",
				Usage:   "Envelope journal backend (memory, badger, redis); empty disables journaling",
				EnvVars: []string{config.EnvCCRPersistenceType},
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Badger data directory",
				EnvVars: []string{config.EnvCCRDataPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis address (host:port)",
				EnvVars: []string{config.EnvCCRRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvCCRRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				EnvVars: []string{config.EnvCCRRedisDB},
			},
			&cli.StringFlag{
				Name:    "redis-key-prefix",
				Usage:   "Prefix for every Redis key",
				EnvVars: []string{config.EnvCCRRedisKeyPrefix},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "hash",
				Usage: "Print the signing hash of a transaction request",
				Flags: append(requestFlags(),
					&cli.BoolFlag{
						Name:  "eip712",
						Usage: "Print the EIP-712 typed data hash instead of the signing hash",
					},
				),
				Action: hashCommand,
			},
			{
				Name:   "sign",
				Usage:  "Sign a transaction request and print the envelope",
				Flags:  requestFlags(),
				Action: signCommand,
			},
			{
				Name:  "decode",
				Usage: "Decode an envelope and recover its sender",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "envelope",
						Usage:    "Hex encoded envelope",
						Required: true,
					},
				},
				Action: decodeCommand,
			},
			{
				Name:   "send",
				Usage:  "Sign a transaction request and submit it with eth_sendRawTransaction",
				Flags:  requestFlags(),
				Action: sendCommand,
			},
			{
				Name:   "address",
				Usage:  "Print the address of the configured signer",
				Action: addressCommand,
			},
			{
				Name:  "journal",
				Usage: "Inspect the envelope journal",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List journaled envelopes, oldest first",
						Action: journalListCommand,
					},
					{
						Name:  "show",
						Usage: "Print a journaled request",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "hash",
								Usage:    "Request hash",
								Required: true,
							},
						},
						Action: journalShowCommand,
					},
					{
						Name:  "delete",
						Usage: "Remove an envelope from the journal",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "hash",
								Usage:    "Request hash",
								Required: true,
							},
						},
						Action: journalDeleteCommand,
					},
				},
			},
		},
	}
}

func requestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "request",
			Aliases:  []string{"r"},
			Usage:    "Path to a JSON transaction request, - for stdin",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "confidential-inputs",
			Usage: "Hex encoded confidential inputs",
			Value: "0x",
		},
	}
}
