package main

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/ccr"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/clients/web3signer"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/config"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner/privateKeySigner"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner/web3Signer"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/requestSigner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Signs the same request through Web3Signer and with the raw private key and
// compares the results. Both use deterministic nonces, so they must match.
func main() {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	ctx := context.Background()

	signerCfg := &config.RemoteSignerConfig{
		Url:         getEnv("WEB3SIGNER_URL", "http://localhost:9000"),
		FromAddress: os.Getenv("FROM_ADDRESS"),
		PublicKey:   os.Getenv("PUBLIC_KEY"),
	}
	if err := signerCfg.Validate(); err != nil {
		l.Sugar().Fatalw("invalid Web3Signer config", "error", err)
	}

	client, err := web3signer.NewWeb3SignerClientFromRemoteSignerConfig(signerCfg, l)
	if err != nil {
		l.Sugar().Fatalw("failed to create Web3Signer client", "error", err)
	}
	w3s, err := web3Signer.NewWeb3Signer(client, signerCfg.PublicKey, common.HexToAddress(signerCfg.FromAddress), l)
	if err != nil {
		l.Sugar().Fatalw("failed to create Web3Signer signer", "error", err)
	}

	pks, err := privateKeySigner.NewPrivateKeySigner(os.Getenv("PRIVATE_KEY"), l)
	if err != nil {
		l.Sugar().Fatalw("failed to create private key signer", "error", err)
	}

	chainID := hexutil.Uint64(1)
	record, err := ccr.FromTransactionRequest(&ccr.TransactionRequest{
		Gas:     (*hexutil.Big)(big.NewInt(1_000_000)),
		ChainID: &chainID,
		Input:   &hexutil.Bytes{0xde, 0xad, 0xbe, 0xef},
	}, common.HexToAddress("0x7d83e42b214b75bf1f3e57adc3415da573d97bff"))
	if err != nil {
		l.Sugar().Fatalw("failed to build record", "error", err)
	}
	req := ccr.NewRequest(record, []byte("Hello, Web3Signer!"))

	viaWeb3Signer, err := requestSigner.NewRequestSigner(w3s, l).Sign(ctx, req)
	if err != nil {
		l.Sugar().Fatalw("failed to sign with Web3Signer", "error", err)
	}
	viaPrivateKey, err := requestSigner.NewRequestSigner(pks, l).Sign(ctx, req)
	if err != nil {
		l.Sugar().Fatalw("failed to sign with private key", "error", err)
	}

	sigWeb3 := viaWeb3Signer.Record.Signature.Bytes()
	sigPK := viaPrivateKey.Record.Signature.Bytes()

	fmt.Printf("Signing hash:            %s\n", req.SigningHash().Hex())
	fmt.Printf("Signature (Web3Signer):  %s\n", common.Bytes2Hex(sigWeb3))
	fmt.Printf("Signature (Private Key): %s\n", common.Bytes2Hex(sigPK))

	if common.Bytes2Hex(sigWeb3) == common.Bytes2Hex(sigPK) {
		fmt.Println("Signatures match!")
	} else {
		fmt.Println("Signatures do not match!")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
