package persistence

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/ccr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// StoredEnvelope is a signed, encoded request together with the fields needed to
// index it without decoding.
type StoredEnvelope struct {
	// Hash is the signing hash of the request, which also identifies it.
	Hash common.Hash `json:"hash"`

	// Envelope is the type-tagged wire encoding.
	Envelope hexutil.Bytes `json:"envelope"`

	Sender        common.Address `json:"sender"`
	ExecutionNode common.Address `json:"executionNode"`
	ChainId       uint64         `json:"chainId"`
	Nonce         uint64         `json:"nonce"`

	// CreatedAt is a unix timestamp in milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

// NewStoredEnvelope encodes a signed request and records who signed it.
func NewStoredEnvelope(req *ccr.Request) (*StoredEnvelope, error) {
	envelope, err := ccr.EncodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	sender, err := req.Sender()
	if err != nil {
		return nil, fmt.Errorf("failed to recover sender: %w", err)
	}

	return &StoredEnvelope{
		Hash:          req.Hash(),
		Envelope:      envelope,
		Sender:        sender,
		ExecutionNode: req.Record.KettleAddress,
		ChainId:       req.Record.ChainID,
		Nonce:         req.Record.Nonce,
		CreatedAt:     time.Now().UnixMilli(),
	}, nil
}

// Request decodes the stored envelope.
func (se *StoredEnvelope) Request() (*ccr.Request, error) {
	return ccr.DecodeRequest(se.Envelope)
}

func (se *StoredEnvelope) Copy() *StoredEnvelope {
	if se == nil {
		return nil
	}
	cpy := *se
	cpy.Envelope = append(hexutil.Bytes{}, se.Envelope...)
	return &cpy
}

// SortEnvelopes orders envelopes by CreatedAt, breaking ties by hash.
func SortEnvelopes(envelopes []*StoredEnvelope) {
	sort.Slice(envelopes, func(i, j int) bool {
		if envelopes[i].CreatedAt != envelopes[j].CreatedAt {
			return envelopes[i].CreatedAt < envelopes[j].CreatedAt
		}
		return bytes.Compare(envelopes[i].Hash[:], envelopes[j].Hash[:]) < 0
	})
}
