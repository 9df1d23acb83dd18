package x402

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/investbud/chat-gateway/internal/wallet"
)

// Authorization validity window around signing time.
const (
	validAfterSkew    = 600 * time.Second // tolerate clock drift behind us
	validBeforeWindow = 900 * time.Second
)

// Known USDC deployments. The EIP-712 domain of EIP-3009 tokens is keyed by
// the token's own name/version, so these must match the contract exactly.
var usdcAssets = map[string]struct{}{
	"0x036cbd53842c5426634e7929541ec2318f3dcf7e": {}, // Base Sepolia
	"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": {}, // Base Mainnet
	"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": {}, // Ethereum Mainnet
}

// TokenMetadata returns the EIP-712 domain name/version for a token address.
// Unknown tokens get placeholder metadata, which yields a well-formed but
// likely unverifiable signature; callers should log when that happens.
func TokenMetadata(asset string) (name, version string) {
	if _, ok := usdcAssets[strings.ToLower(asset)]; ok {
		return "USD Coin", "2"
	}
	return "Token", "1"
}

// transferWithAuthorizationTypes is the typed-data schema of EIP-3009.
var transferWithAuthorizationTypes = apitypes.Types{
	"EIP712Domain": []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"TransferWithAuthorization": []apitypes.Type{
		{Name: "from", Type: "address"},
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "validAfter", Type: "uint256"},
		{Name: "validBefore", Type: "uint256"},
		{Name: "nonce", Type: "bytes32"},
	},
}

// BuildPaymentToken constructs a TransferWithAuthorization typed-data message
// for the given instructions, obtains the wallet signature, and returns the
// serialized envelope ready for the PaymentHeader.
//
// The authorization carries a fresh random 32-byte nonce on every call, so a
// signed token can never be replayed. All numeric fields serialize as decimal
// strings and addresses are checksummed; that exact rendering is what gets
// signed and what the verifier re-hashes.
func BuildPaymentToken(ctx context.Context, signer wallet.Signer, instr *PaymentInstructions) (string, error) {
	if instr.Recipient == "" || instr.Amount == "" {
		return "", fmt.Errorf("%w: recipient=%q amount=%q", ErrMissingField, instr.Recipient, instr.Amount)
	}

	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	now := time.Now()
	auth := Authorization{
		From:        signer.Address().Hex(),
		To:          common.HexToAddress(instr.Recipient).Hex(),
		Value:       instr.Amount,
		ValidAfter:  strconv.FormatInt(now.Add(-validAfterSkew).Unix(), 10),
		ValidBefore: strconv.FormatInt(now.Add(validBeforeWindow).Unix(), 10),
		Nonce:       hexutil.Encode(nonce[:]),
	}

	name, version := TokenMetadata(instr.Token)
	typedData := apitypes.TypedData{
		Types:       transferWithAuthorizationTypes,
		PrimaryType: "TransferWithAuthorization",
		Domain: apitypes.TypedDataDomain{
			Name:              name,
			Version:           version,
			ChainId:           math.NewHexOrDecimal256(instr.ChainID),
			VerifyingContract: instr.Token,
		},
		Message: apitypes.TypedDataMessage{
			"from":        auth.From,
			"to":          auth.To,
			"value":       auth.Value,
			"validAfter":  auth.ValidAfter,
			"validBefore": auth.ValidBefore,
			"nonce":       auth.Nonce,
		},
	}

	sig, err := signer.SignTypedData(ctx, typedData)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigningRejected, err)
	}

	envelope := PaymentEnvelope{
		X402Version: Version,
		Scheme:      Scheme,
		Network:     instr.Network,
		Payload: Payload{
			Signature:     hexutil.Encode(sig),
			Authorization: auth,
		},
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal payment envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodePaymentToken reverses BuildPaymentToken's encoding.
func DecodePaymentToken(token string) (*PaymentEnvelope, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode payment token: %w", err)
	}
	var env PaymentEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal payment envelope: %w", err)
	}
	return &env, nil
}
