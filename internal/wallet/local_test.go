package wallet

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const testKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

var testTypedData = apitypes.TypedData{
	Types: apitypes.Types{
		"EIP712Domain": []apitypes.Type{
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		"Ping": []apitypes.Type{
			{Name: "value", Type: "uint256"},
		},
	},
	PrimaryType: "Ping",
	Domain: apitypes.TypedDataDomain{
		Name:              "Test",
		Version:           "1",
		ChainId:           math.NewHexOrDecimal256(84532),
		VerifyingContract: "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
	},
	Message: apitypes.TypedDataMessage{"value": "42"},
}

func TestNewLocalSigner(t *testing.T) {
	for _, key := range []string{testKey, "0x" + testKey} {
		signer, err := NewLocalSigner(key, 84532)
		if err != nil {
			t.Fatalf("NewLocalSigner(%q): %v", key, err)
		}
		if signer.ChainID() != 84532 {
			t.Errorf("ChainID: got %d", signer.ChainID())
		}
		if signer.Address().Hex() == "" {
			t.Error("empty address")
		}
	}
	if _, err := NewLocalSigner("not-hex", 1); err == nil {
		t.Error("expected error for invalid key")
	}
}

func TestLocalSigner_SignTypedData(t *testing.T) {
	signer, err := NewLocalSigner(testKey, 84532)
	if err != nil {
		t.Fatal(err)
	}

	sig, err := signer.SignTypedData(context.Background(), testTypedData)
	if err != nil {
		t.Fatalf("SignTypedData: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length: got %d want 65", len(sig))
	}
	if sig[64] != 27 && sig[64] != 28 {
		t.Errorf("recovery byte: got %d want 27 or 28", sig[64])
	}

	// Recover and compare.
	digest, _, err := apitypes.TypedDataAndHash(testTypedData)
	if err != nil {
		t.Fatal(err)
	}
	recoverable := make([]byte, 65)
	copy(recoverable, sig)
	recoverable[64] -= 27
	pub, err := crypto.SigToPub(digest, recoverable)
	if err != nil {
		t.Fatalf("SigToPub: %v", err)
	}
	if got := crypto.PubkeyToAddress(*pub); got != signer.Address() {
		t.Errorf("recovered %s, want %s", got.Hex(), signer.Address().Hex())
	}
}

func TestLocalSigner_CancelledContext(t *testing.T) {
	signer, err := NewLocalSigner(testKey, 84532)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := signer.SignTypedData(ctx, testTypedData); err == nil {
		t.Error("expected error for cancelled context")
	}
}
