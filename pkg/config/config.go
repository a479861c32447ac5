package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the ccr CLI
const (
	EnvCCRConfigFile    = "CCR_CONFIG"
	EnvCCRDebug         = "CCR_DEBUG"
	EnvCCRKettleAddress = "CCR_KETTLE_ADDRESS"
	EnvCCRRpcURL        = "CCR_RPC_URL"

	EnvCCRSignerType       = "CCR_SIGNER_TYPE"
	EnvCCRPrivateKey       = "CCR_PRIVATE_KEY"
	EnvCCRAwsKmsKeyId      = "CCR_AWS_KMS_KEY_ID"
	EnvCCRAwsRegion        = "CCR_AWS_REGION"
	EnvCCRWeb3SignerURL    = "CCR_WEB3SIGNER_URL"
	EnvCCRWeb3SignerFrom   = "CCR_WEB3SIGNER_FROM_ADDRESS"
	EnvCCRWeb3SignerKey    = "CCR_WEB3SIGNER_PUBLIC_KEY"
	EnvCCRWeb3SignerRPS    = "CCR_WEB3SIGNER_REQUESTS_PER_SECOND"
	EnvCCRWeb3SignerCA     = "CCR_WEB3SIGNER_CA_CERT"
	EnvCCRWeb3SignerCert   = "CCR_WEB3SIGNER_CERT"
	EnvCCRWeb3SignerTLSKey = "CCR_WEB3SIGNER_KEY"

	EnvCCRPersistenceType = "CCR_PERSISTENCE_TYPE"
	EnvCCRDataPath        = "CCR_DATA_PATH"
	EnvCCRRedisAddress    = "CCR_REDIS_ADDRESS"
	EnvCCRRedisPassword   = "CCR_REDIS_PASSWORD"
	EnvCCRRedisDB         = "CCR_REDIS_DB"
	EnvCCRRedisKeyPrefix  = "CCR_REDIS_KEY_PREFIX"
)

type SignerType string

const (
	SignerType_PrivateKey SignerType = "private_key"
	SignerType_AwsKms     SignerType = "aws_kms"
	SignerType_Web3Signer SignerType = "web3signer"
)

type PersistenceType string

const (
	PersistenceType_None   PersistenceType = ""
	PersistenceType_Memory PersistenceType = "memory"
	PersistenceType_Badger PersistenceType = "badger"
	PersistenceType_Redis  PersistenceType = "redis"
)

// CCRConfig is the complete configuration of the ccr CLI.
type CCRConfig struct {
	Debug bool `json:"debug" yaml:"debug"`

	// KettleAddress is the execution node requests are addressed to
	KettleAddress string `json:"kettleAddress" yaml:"kettleAddress"`

	// RpcUrl is where envelopes are submitted
	RpcUrl string `json:"rpcUrl" yaml:"rpcUrl"`

	Signer      *SignerConfig      `json:"signer" yaml:"signer"`
	Persistence *PersistenceConfig `json:"persistence" yaml:"persistence"`
}

// Validate aggregates every problem in the configuration into one error.
func (c *CCRConfig) Validate() error {
	var allErrors field.ErrorList

	if c.KettleAddress != "" && !common.IsHexAddress(c.KettleAddress) {
		allErrors = append(allErrors, field.Invalid(field.NewPath("kettleAddress"), c.KettleAddress, "must be a hex address"))
	}
	if c.Signer != nil {
		allErrors = append(allErrors, c.Signer.validate(field.NewPath("signer"))...)
	}
	if c.Persistence != nil {
		allErrors = append(allErrors, c.Persistence.validate(field.NewPath("persistence"))...)
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// LoadConfigFromFile reads a YAML config file.
func LoadConfigFromFile(path string) (*CCRConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg CCRConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// SignerConfig selects and configures the key that signs requests.
type SignerConfig struct {
	Type       SignerType          `json:"type" yaml:"type"`
	PrivateKey string              `json:"privateKey" yaml:"privateKey"`
	AwsKms     *AwsKmsSignerConfig `json:"awsKms" yaml:"awsKms"`
	Web3Signer *RemoteSignerConfig `json:"web3Signer" yaml:"web3Signer"`
}

func (sc *SignerConfig) Validate() error {
	if allErrors := sc.validate(nil); len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (sc *SignerConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList

	switch sc.Type {
	case SignerType_PrivateKey:
		if sc.PrivateKey == "" {
			allErrors = append(allErrors, field.Required(path.Child("privateKey"), "privateKey is required for the private_key signer"))
		} else if key := strings.TrimPrefix(sc.PrivateKey, "0x"); len(key) != 64 {
			allErrors = append(allErrors, field.Invalid(path.Child("privateKey"), "<redacted>", "must be 32 bytes of hex"))
		}
	case SignerType_AwsKms:
		if sc.AwsKms == nil {
			allErrors = append(allErrors, field.Required(path.Child("awsKms"), "awsKms is required for the aws_kms signer"))
		} else {
			allErrors = append(allErrors, sc.AwsKms.validate(path.Child("awsKms"))...)
		}
	case SignerType_Web3Signer:
		if sc.Web3Signer == nil {
			allErrors = append(allErrors, field.Required(path.Child("web3Signer"), "web3Signer is required for the web3signer signer"))
		} else {
			allErrors = append(allErrors, sc.Web3Signer.validate(path.Child("web3Signer"))...)
		}
	case "":
		allErrors = append(allErrors, field.Required(path.Child("type"), "signer type is required"))
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), sc.Type,
			[]string{string(SignerType_PrivateKey), string(SignerType_AwsKms), string(SignerType_Web3Signer)}))
	}

	return allErrors
}

type AwsKmsSignerConfig struct {
	KeyId  string `json:"keyId" yaml:"keyId"`
	Region string `json:"region" yaml:"region"`
}

func (akc *AwsKmsSignerConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if akc.KeyId == "" {
		allErrors = append(allErrors, field.Required(path.Child("keyId"), "keyId is required"))
	}
	return allErrors
}

type RemoteSignerConfig struct {
	Url         string `json:"url" yaml:"url"`
	CACert      string `json:"caCert" yaml:"caCert"`
	Cert        string `json:"cert" yaml:"cert"`
	Key         string `json:"key" yaml:"key"`
	FromAddress string `json:"fromAddress" yaml:"fromAddress"`
	PublicKey   string `json:"publicKey" yaml:"publicKey"`

	// RequestsPerSecond limits calls to the signer; zero means unlimited
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"`
}

func (rsc *RemoteSignerConfig) Validate() error {
	if allErrors := rsc.validate(nil); len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (rsc *RemoteSignerConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if rsc.FromAddress == "" {
		allErrors = append(allErrors, field.Required(path.Child("fromAddress"), "fromAddress is required"))
	} else if !common.IsHexAddress(rsc.FromAddress) {
		allErrors = append(allErrors, field.Invalid(path.Child("fromAddress"), rsc.FromAddress, "must be a hex address"))
	}
	if rsc.PublicKey == "" {
		allErrors = append(allErrors, field.Required(path.Child("publicKey"), "publicKey is required"))
	}
	if (rsc.Cert == "") != (rsc.Key == "") {
		allErrors = append(allErrors, field.Invalid(path.Child("cert"), "<redacted>", "cert and key must be set together"))
	}
	if rsc.RequestsPerSecond < 0 {
		allErrors = append(allErrors, field.Invalid(path.Child("requestsPerSecond"), rsc.RequestsPerSecond, "must not be negative"))
	}
	return allErrors
}

// PersistenceConfig selects the envelope journal backend. An empty Type
// disables journaling.
type PersistenceConfig struct {
	Type     PersistenceType `json:"type" yaml:"type"`
	DataPath string          `json:"dataPath" yaml:"dataPath"`
	Redis    *RedisConfig    `json:"redis" yaml:"redis"`
}

func (pc *PersistenceConfig) Validate() error {
	if allErrors := pc.validate(nil); len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (pc *PersistenceConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList

	switch pc.Type {
	case PersistenceType_None, PersistenceType_Memory:
	case PersistenceType_Badger:
		if pc.DataPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("dataPath"), "dataPath is required for badger persistence"))
		}
	case PersistenceType_Redis:
		if pc.Redis == nil || pc.Redis.Address == "" {
			allErrors = append(allErrors, field.Required(path.Child("redis", "address"), "redis address is required for redis persistence"))
		} else if pc.Redis.DB < 0 || pc.Redis.DB > 15 {
			allErrors = append(allErrors, field.Invalid(path.Child("redis", "db"), pc.Redis.DB, "must be between 0 and 15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), pc.Type,
			[]string{string(PersistenceType_Memory), string(PersistenceType_Badger), string(PersistenceType_Redis)}))
	}

	return allErrors
}

type RedisConfig struct {
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}
