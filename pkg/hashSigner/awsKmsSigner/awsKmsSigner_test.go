package awsKmsSigner

import (
	"context"
	"crypto/ecdsa"
	"encoding/asn1"
	"errors"
	"math/big"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	oidEcPublicKey = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidSecp256k1   = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

// fakeKMS signs with a local key and answers like KMS: DER public keys and DER
// signatures without a recovery id.
type fakeKMS struct {
	key       *ecdsa.PrivateKey
	highS     bool
	signErr   error
	signCalls int
	lastSign  *kms.SignInput
}

func (f *fakeKMS) GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error) {
	pub := crypto.FromECDSAPub(&f.key.PublicKey)
	der, err := asn1.Marshal(asn1EcPublicKey{
		EcPublicKeyInfo: asn1EcPublicKeyInfo{Algorithm: oidEcPublicKey, Parameters: oidSecp256k1},
		PublicKey:       asn1.BitString{Bytes: pub, BitLength: len(pub) * 8},
	})
	if err != nil {
		return nil, err
	}
	return &kms.GetPublicKeyOutput{KeyId: params.KeyId, PublicKey: der}, nil
}

func (f *fakeKMS) Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error) {
	f.signCalls++
	f.lastSign = params
	if f.signErr != nil {
		return nil, f.signErr
	}

	sig, err := crypto.Sign(params.Message, f.key)
	if err != nil {
		return nil, err
	}
	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if f.highS {
		s = new(big.Int).Sub(secp256k1N, s)
	}

	der, err := asn1.Marshal(struct{ R, S *big.Int }{r, s})
	if err != nil {
		return nil, err
	}
	return &kms.SignOutput{KeyId: params.KeyId, Signature: der}, nil
}

func newFakeKMS(t *testing.T) *fakeKMS {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &fakeKMS{key: key}
}

func Test_AWSKMSSigner(t *testing.T) {
	ctx := context.Background()

	t.Run("Should derive the address from the KMS public key", func(t *testing.T) {
		fake := newFakeKMS(t)
		signer, err := NewAWSKMSSigner(ctx, fake, "alias/ccr", zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(fake.key.PublicKey), signer.GetAddress())
	})

	t.Run("Should sign the digest and recover to the KMS key", func(t *testing.T) {
		for _, highS := range []bool{false, true} {
			fake := newFakeKMS(t)
			fake.highS = highS
			signer, err := NewAWSKMSSigner(ctx, fake, "alias/ccr", zaptest.NewLogger(t))
			require.NoError(t, err)

			hash := crypto.Keccak256Hash([]byte("payload"))
			sig, err := signer.SignHash(ctx, hash)
			require.NoError(t, err)
			require.Len(t, sig, crypto.SignatureLength)

			assert.Equal(t, types.MessageTypeDigest, fake.lastSign.MessageType)
			assert.Equal(t, types.SigningAlgorithmSpecEcdsaSha256, fake.lastSign.SigningAlgorithm)
			assert.Equal(t, hash.Bytes(), fake.lastSign.Message)

			s := new(big.Int).SetBytes(sig[32:64])
			assert.LessOrEqual(t, s.Cmp(secp256k1HalfN), 0, "highS=%v", highS)
			assert.LessOrEqual(t, sig[64], byte(1))

			pub, err := crypto.SigToPub(hash[:], sig)
			require.NoError(t, err)
			assert.Equal(t, signer.GetAddress(), crypto.PubkeyToAddress(*pub))
		}
	})

	t.Run("Should wrap KMS errors", func(t *testing.T) {
		fake := newFakeKMS(t)
		fake.signErr = errors.New("AccessDeniedException")
		signer, err := NewAWSKMSSigner(ctx, fake, "alias/ccr", zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = signer.SignHash(ctx, crypto.Keccak256Hash([]byte("payload")))
		require.Error(t, err)
		assert.ErrorIs(t, err, fake.signErr)
		assert.Contains(t, err.Error(), "alias/ccr")
	})

	t.Run("Should fail when the signature belongs to another key", func(t *testing.T) {
		fake := newFakeKMS(t)
		signer, err := NewAWSKMSSigner(ctx, fake, "alias/ccr", zaptest.NewLogger(t))
		require.NoError(t, err)

		other, err := crypto.GenerateKey()
		require.NoError(t, err)
		fake.key = other

		_, err = signer.SignHash(ctx, crypto.Keccak256Hash([]byte("payload")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recovery")
	})

	t.Run("Should require a key id", func(t *testing.T) {
		_, err := NewAWSKMSSigner(ctx, newFakeKMS(t), "", zaptest.NewLogger(t))
		assert.Error(t, err)
	})
}
