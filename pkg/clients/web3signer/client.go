package web3signer

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/config"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	signRawPath    = "/api/v1/eth1/sign/"
	publicKeysPath = "/api/v1/eth1/publicKeys"
	upcheckPath    = "/upcheck"
)

// Config holds the settings for a Web3Signer client.
type Config struct {
	// BaseURL is the Web3Signer root, e.g. http://localhost:9000
	BaseURL string
	// Timeout bounds every HTTP request
	Timeout time.Duration
	// RequestsPerSecond limits outgoing requests; zero disables the limit
	RequestsPerSecond float64
	// Burst is the limiter's bucket size, at least 1 when a limit is set
	Burst int
}

// DefaultConfig returns a config pointing at a local Web3Signer.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:9000",
		Timeout: 30 * time.Second,
	}
}

// Client talks to Web3Signer over its JSON-RPC and REST APIs.
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	nextID     atomic.Uint64
}

// NewClient creates a client from cfg; a nil cfg uses DefaultConfig.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("web3signer base URL cannot be empty")
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

// NewWeb3SignerClientFromRemoteSignerConfig builds a client from a remote signer
// config, setting up mutual TLS when certificates are provided. A nil config
// uses DefaultConfig.
func NewWeb3SignerClientFromRemoteSignerConfig(rsc *config.RemoteSignerConfig, logger *zap.Logger) (*Client, error) {
	cfg := DefaultConfig()
	if rsc == nil {
		return NewClient(cfg, logger)
	}
	if rsc.Url != "" {
		cfg.BaseURL = rsc.Url
	}
	cfg.RequestsPerSecond = rsc.RequestsPerSecond

	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := buildTLSConfig(rsc)
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS for web3signer: %w", err)
	}
	if tlsConfig != nil {
		client.SetHttpClient(&http.Client{
			Timeout:   cfg.Timeout,
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		})
	}
	return client, nil
}

// buildTLSConfig returns nil when no TLS material is configured. CACert, Cert
// and Key hold PEM data.
func buildTLSConfig(rsc *config.RemoteSignerConfig) (*tls.Config, error) {
	if rsc.CACert == "" && rsc.Cert == "" && rsc.Key == "" {
		return nil, nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if rsc.CACert != "" {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM([]byte(rsc.CACert)) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		tlsConfig.RootCAs = pool
	}
	if rsc.Cert != "" || rsc.Key != "" {
		cert, err := tls.X509KeyPair([]byte(rsc.Cert), []byte(rsc.Key))
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

type jsonRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *jsonRPCError) Error() string {
	return fmt.Sprintf("web3signer rpc error %d: %s", e.Code, e.Message)
}

type jsonRPCResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *jsonRPCError   `json:"error"`
}

func (c *Client) EthAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.callJSONRPC(ctx, "eth_accounts", []interface{}{}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) ListPublicKeys(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, publicKeysPath, nil)
	if err != nil {
		return nil, err
	}

	var keys []string
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode public keys: %w", err)
	}
	return keys, nil
}

func (c *Client) SignRaw(ctx context.Context, identifier string, data []byte) (string, error) {
	if identifier == "" {
		return "", fmt.Errorf("signing identifier cannot be empty")
	}

	payload, err := json.Marshal(map[string]string{"data": hexutil.Encode(data)})
	if err != nil {
		return "", fmt.Errorf("failed to encode sign request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, signRawPath+identifier, payload)
	if err != nil {
		return "", err
	}

	sig := strings.TrimSpace(string(body))
	if _, err := hexutil.Decode(sig); err != nil {
		return "", fmt.Errorf("web3signer returned a malformed signature %q: %w", sig, err)
	}

	c.logger.Sugar().Debugw("Signed payload with web3signer", "identifier", identifier, "bytes", len(data))
	return sig, nil
}

func (c *Client) Upcheck(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, upcheckPath, nil)
	return err
}

func (c *Client) callJSONRPC(ctx context.Context, method string, params []interface{}, result interface{}) error {
	payload, err := json.Marshal(&jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	body, err := c.do(ctx, http.MethodPost, "", payload)
	if err != nil {
		return err
	}

	var res jsonRPCResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if res.Error != nil {
		return res.Error
	}
	if err := json.Unmarshal(res.Result, result); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

// do sends a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("web3signer rate limiter: %w", err)
		}
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + path

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web3signer request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read web3signer response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Sugar().Warnw("web3signer returned an error status",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("web3signer returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
