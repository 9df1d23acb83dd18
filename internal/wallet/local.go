package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// LocalSigner signs typed data with an in-process secp256k1 key.
type LocalSigner struct {
	privKey *ecdsa.PrivateKey
	addr    common.Address
	chainID int64
}

// NewLocalSigner parses a hex private key (with or without 0x prefix).
func NewLocalSigner(hexKey string, chainID int64) (*LocalSigner, error) {
	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &LocalSigner{
		privKey: privKey,
		addr:    crypto.PubkeyToAddress(privKey.PublicKey),
		chainID: chainID,
	}, nil
}

func (s *LocalSigner) Address() common.Address { return s.addr }

func (s *LocalSigner) ChainID() int64 { return s.chainID }

// SignTypedData hashes per EIP-712 and signs. The recovery byte is converted
// from 0/1 to 27/28, matching what browser wallets emit and what on-chain
// ecrecover expects.
func (s *LocalSigner) SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("hash typed data: %w", err)
	}
	sig, err := crypto.Sign(digest, s.privKey)
	if err != nil {
		return nil, fmt.Errorf("sign typed data: %w", err)
	}
	sig[64] += 27
	return sig, nil
}
