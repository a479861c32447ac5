package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/ccr"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/config"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/requestSigner"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/submitter"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// buildConfig loads the config file, if any, and applies flags and environment
// variables on top of it.
func buildConfig(c *cli.Context) (*config.CCRConfig, error) {
	cfg := &config.CCRConfig{}
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("kettle-address") {
		cfg.KettleAddress = c.String("kettle-address")
	}
	if c.IsSet("rpc-url") || cfg.RpcUrl == "" {
		cfg.RpcUrl = c.String("rpc-url")
	}

	signer := func() *config.SignerConfig {
		if cfg.Signer == nil {
			cfg.Signer = &config.SignerConfig{}
		}
		return cfg.Signer
	}
	awsKms := func() *config.AwsKmsSignerConfig {
		if signer().AwsKms == nil {
			cfg.Signer.AwsKms = &config.AwsKmsSignerConfig{}
		}
		return cfg.Signer.AwsKms
	}
	remote := func() *config.RemoteSignerConfig {
		if signer().Web3Signer == nil {
			cfg.Signer.Web3Signer = &config.RemoteSignerConfig{}
		}
		return cfg.Signer.Web3Signer
	}

	if c.IsSet("signer-type") {
		signer().Type = config.SignerType(c.String("signer-type"))
	}
	if c.IsSet("private-key") {
		signer().PrivateKey = c.String("private-key")
	}
	if c.IsSet("aws-kms-key-id") {
		awsKms().KeyId = c.String("aws-kms-key-id")
	}
	if c.IsSet("aws-region") {
		awsKms().Region = c.String("aws-region")
	}
	if c.IsSet("web3signer-url") {
		remote().Url = c.String("web3signer-url")
	}
	if c.IsSet("web3signer-from-address") {
		remote().FromAddress = c.String("web3signer-from-address")
	}
	if c.IsSet("web3signer-public-key") {
		remote().PublicKey = c.String("web3signer-public-key")
	}
	if c.IsSet("web3signer-requests-per-second") {
		remote().RequestsPerSecond = c.Float64("web3signer-requests-per-second")
	}
	if c.IsSet("web3signer-ca-cert") {
		remote().CACert = c.String("web3signer-ca-cert")
	}
	if c.IsSet("web3signer-cert") {
		remote().Cert = c.String("web3signer-cert")
	}
	if c.IsSet("web3signer-key") {
		remote().Key = c.String("web3signer-key")
	}

	journal := func() *config.PersistenceConfig {
		if cfg.Persistence == nil {
			cfg.Persistence = &config.PersistenceConfig{}
		}
		return cfg.Persistence
	}
	redisCfg := func() *config.RedisConfig {
		if journal().Redis == nil {
			cfg.Persistence.Redis = &config.RedisConfig{}
		}
		return cfg.Persistence.Redis
	}

	if c.IsSet("persistence-type") {
		journal().Type = config.PersistenceType(c.String("persistence-type"))
	}
	if c.IsSet("data-path") {
		journal().DataPath = c.String("data-path")
	}
	if c.IsSet("redis-address") {
		redisCfg().Address = c.String("redis-address")
	}
	if c.IsSet("redis-password") {
		redisCfg().Password = c.String("redis-password")
	}
	if c.IsSet("redis-db") {
		redisCfg().DB = c.Int("redis-db")
	}
	if c.IsSet("redis-key-prefix") {
		redisCfg().KeyPrefix = c.String("redis-key-prefix")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setup(c *cli.Context) (*config.CCRConfig, *zap.Logger, error) {
	cfg, err := buildConfig(c)
	if err != nil {
		return nil, nil, err
	}
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, l, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

func readTransactionRequest(c *cli.Context) (*ccr.TransactionRequest, error) {
	path := c.String("request")

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction request %s: %w", path, err)
	}

	var txReq ccr.TransactionRequest
	if err := json.Unmarshal(data, &txReq); err != nil {
		return nil, fmt.Errorf("failed to parse transaction request %s: %w", path, err)
	}
	return &txReq, nil
}

// buildRequest turns a transaction request into an unsigned request addressed to
// the configured kettle.
func buildRequest(c *cli.Context, cfg *config.CCRConfig, txReq *ccr.TransactionRequest) (*ccr.Request, error) {
	if cfg.KettleAddress == "" {
		return nil, fmt.Errorf("kettle address is required")
	}
	inputs, err := decodeHex(c.String("confidential-inputs"))
	if err != nil {
		return nil, fmt.Errorf("invalid confidential inputs: %w", err)
	}

	record, err := ccr.FromTransactionRequest(txReq, common.HexToAddress(cfg.KettleAddress))
	if err != nil {
		return nil, err
	}
	return ccr.NewRequest(record, inputs), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func hashCommand(c *cli.Context) error {
	cfg, l, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	txReq, err := readTransactionRequest(c)
	if err != nil {
		return err
	}
	req, err := buildRequest(c, cfg, txReq)
	if err != nil {
		return err
	}

	hash := req.SigningHash()
	if c.Bool("eip712") {
		if hash, err = req.Record.EIP712Hash(); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(c.App.Writer, hash.Hex())
	return err
}

func signCommand(c *cli.Context) error {
	cfg, l, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	txReq, err := readTransactionRequest(c)
	if err != nil {
		return err
	}
	req, err := buildRequest(c, cfg, txReq)
	if err != nil {
		return err
	}

	signer, err := newHashSigner(c.Context, cfg.Signer, l)
	if err != nil {
		return err
	}
	signed, err := requestSigner.NewRequestSigner(signer, l).Sign(c.Context, req)
	if err != nil {
		return err
	}
	envelope, err := ccr.EncodeRequest(signed)
	if err != nil {
		return err
	}

	if err := journalRequest(cfg, signed, l); err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.App.Writer, hexutil.Encode(envelope))
	return err
}

type decodedEnvelope struct {
	Hash    common.Hash    `json:"hash"`
	Sender  common.Address `json:"sender"`
	Request *ccr.Request   `json:"request"`
}

func decodeCommand(c *cli.Context) error {
	_, l, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	raw, err := decodeHex(c.String("envelope"))
	if err != nil {
		return fmt.Errorf("invalid envelope hex: %w", err)
	}
	req, err := ccr.DecodeRequest(raw)
	if err != nil {
		return err
	}
	sender, err := req.Sender()
	if err != nil {
		return err
	}

	return writeJSON(c.App.Writer, &decodedEnvelope{
		Hash:    req.Hash(),
		Sender:  sender,
		Request: req,
	})
}

func sendCommand(c *cli.Context) error {
	cfg, l, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	txReq, err := readTransactionRequest(c)
	if err != nil {
		return err
	}
	signer, err := newHashSigner(c.Context, cfg.Signer, l)
	if err != nil {
		return err
	}

	sub, err := submitter.NewRpcSubmitter(c.Context, cfg.RpcUrl, l)
	if err != nil {
		return err
	}
	defer sub.Close()

	if txReq.ChainID == nil {
		chainID, err := sub.ChainID(c.Context)
		if err != nil {
			return err
		}
		if !chainID.IsUint64() {
			return fmt.Errorf("node reported chain id %s which does not fit in 64 bits", chainID)
		}
		id := hexutil.Uint64(chainID.Uint64())
		txReq.ChainID = &id
	}
	if txReq.Nonce == nil {
		nonce, err := sub.PendingNonceAt(c.Context, signer.GetAddress())
		if err != nil {
			return err
		}
		n := hexutil.Uint64(nonce)
		txReq.Nonce = &n
	}

	req, err := buildRequest(c, cfg, txReq)
	if err != nil {
		return err
	}
	signed, err := requestSigner.NewRequestSigner(signer, l).Sign(c.Context, req)
	if err != nil {
		return err
	}
	envelope, err := ccr.EncodeRequest(signed)
	if err != nil {
		return err
	}

	txHash, err := sub.SubmitEnvelope(c.Context, envelope)
	if err != nil {
		return err
	}
	if err := journalRequest(cfg, signed, l); err != nil {
		return err
	}

	l.Sugar().Infow("Submitted request",
		"hash", txHash.Hex(),
		"sender", signer.GetAddress().Hex(),
		"nonce", signed.Record.Nonce,
	)
	_, err = fmt.Fprintln(c.App.Writer, txHash.Hex())
	return err
}

func addressCommand(c *cli.Context) error {
	cfg, l, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	signer, err := newHashSigner(c.Context, cfg.Signer, l)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, signer.GetAddress().Hex())
	return err
}

// journalRequest records a signed request when journaling is enabled.
func journalRequest(cfg *config.CCRConfig, signed *ccr.Request, l *zap.Logger) error {
	journal, err := newJournal(cfg.Persistence, l)
	if err != nil {
		return err
	}
	if journal == nil {
		return nil
	}
	defer func() { _ = journal.Close() }()

	stored, err := persistence.NewStoredEnvelope(signed)
	if err != nil {
		return err
	}
	if err := journal.SaveEnvelope(stored); err != nil {
		return fmt.Errorf("failed to journal envelope: %w", err)
	}
	l.Sugar().Debugw("Journaled envelope", "hash", stored.Hash.Hex())
	return nil
}

func openJournal(c *cli.Context) (persistence.IEnvelopePersistence, *zap.Logger, error) {
	cfg, l, err := setup(c)
	if err != nil {
		return nil, nil, err
	}
	journal, err := newJournal(cfg.Persistence, l)
	if err != nil {
		return nil, nil, err
	}
	if journal == nil {
		return nil, nil, fmt.Errorf("no persistence configured")
	}
	return journal, l, nil
}

func parseHash(s string) (common.Hash, error) {
	raw, err := decodeHex(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash: %w", err)
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash: expected %d bytes, got %d", common.HashLength, len(raw))
	}
	return common.BytesToHash(raw), nil
}

func journalListCommand(c *cli.Context) error {
	journal, l, err := openJournal(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()
	defer func() { _ = journal.Close() }()

	envelopes, err := journal.ListEnvelopes()
	if err != nil {
		return err
	}
	if envelopes == nil {
		envelopes = []*persistence.StoredEnvelope{}
	}
	return writeJSON(c.App.Writer, envelopes)
}

func journalShowCommand(c *cli.Context) error {
	hash, err := parseHash(c.String("hash"))
	if err != nil {
		return err
	}
	journal, l, err := openJournal(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()
	defer func() { _ = journal.Close() }()

	stored, err := journal.LoadEnvelope(hash)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("no envelope with hash %s", hash.Hex())
	}
	req, err := stored.Request()
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, &decodedEnvelope{
		Hash:    stored.Hash,
		Sender:  stored.Sender,
		Request: req,
	})
}

func journalDeleteCommand(c *cli.Context) error {
	hash, err := parseHash(c.String("hash"))
	if err != nil {
		return err
	}
	journal, l, err := openJournal(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()
	defer func() { _ = journal.Close() }()

	return journal.DeleteEnvelope(hash)
}
