package submitter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// IEnvelopeSink accepts encoded envelopes and returns the identifier the
// receiving node assigned.
type IEnvelopeSink interface {
	SubmitEnvelope(ctx context.Context, envelope []byte) (common.Hash, error)
}

// RpcSubmitter forwards envelopes to a node through eth_sendRawTransaction.
type RpcSubmitter struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	logger    *zap.Logger
}

var _ IEnvelopeSink = (*RpcSubmitter)(nil)

// NewRpcSubmitter dials url, which may be http(s), ws(s) or an IPC path.
func NewRpcSubmitter(ctx context.Context, url string, logger *zap.Logger) (*RpcSubmitter, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return NewRpcSubmitterFromClient(rpcClient, logger), nil
}

func NewRpcSubmitterFromClient(rpcClient *rpc.Client, logger *zap.Logger) *RpcSubmitter {
	return &RpcSubmitter{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		logger:    logger,
	}
}

func (s *RpcSubmitter) SubmitEnvelope(ctx context.Context, envelope []byte) (common.Hash, error) {
	if len(envelope) == 0 {
		return common.Hash{}, fmt.Errorf("envelope cannot be empty")
	}

	var txHash common.Hash
	if err := s.rpcClient.CallContext(ctx, &txHash, "eth_sendRawTransaction", hexutil.Bytes(envelope)); err != nil {
		return common.Hash{}, fmt.Errorf("failed to submit envelope: %w", err)
	}

	s.logger.Info("Submitted envelope",
		zap.String("txHash", txHash.Hex()),
		zap.Int("bytes", len(envelope)),
	)
	return txHash, nil
}

// PendingNonceAt returns the next nonce for account, counting pending transactions.
func (s *RpcSubmitter) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := s.ethClient.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("failed to get nonce for %s: %w", account.Hex(), err)
	}
	return nonce, nil
}

func (s *RpcSubmitter) ChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := s.ethClient.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return chainID, nil
}

func (s *RpcSubmitter) Close() {
	s.rpcClient.Close()
}
