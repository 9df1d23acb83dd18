package x402

import (
	"errors"
	"testing"
)

// ── Shape (a): standardized accepts list ─────────────────────────────────────

func TestParseChallenge_AcceptsList(t *testing.T) {
	body := []byte(`{
		"x402Version": 1,
		"accepts": [{
			"scheme": "exact",
			"network": "base-sepolia",
			"payTo": "0x1111111111111111111111111111111111111111",
			"maxAmountRequired": "100000",
			"asset": "0x036CbD53842c5426634e7929541eC2318f3dCF7e"
		}]
	}`)

	instr, err := ParseChallenge(body)
	if err != nil {
		t.Fatalf("ParseChallenge: %v", err)
	}
	if instr.Recipient != "0x1111111111111111111111111111111111111111" {
		t.Errorf("Recipient: got %q", instr.Recipient)
	}
	if instr.Amount != "100000" {
		t.Errorf("Amount: got %q want 100000", instr.Amount)
	}
	if instr.Token != "0x036CbD53842c5426634e7929541eC2318f3dCF7e" {
		t.Errorf("Token: got %q", instr.Token)
	}
	if instr.Network != "base-sepolia" {
		t.Errorf("Network: got %q", instr.Network)
	}
	if instr.ChainID != 84532 {
		t.Errorf("ChainID: got %d want 84532", instr.ChainID)
	}
	if instr.PaymentID == "" {
		t.Error("PaymentID: expected generated id, got empty")
	}
}

func TestParseChallenge_FirstOptionWins(t *testing.T) {
	body := []byte(`{
		"accepts": [
			{"payTo": "0x1111111111111111111111111111111111111111", "maxAmountRequired": "1", "network": "base"},
			{"payTo": "0x2222222222222222222222222222222222222222", "maxAmountRequired": "2", "network": "base"}
		]
	}`)

	instr, err := ParseChallenge(body)
	if err != nil {
		t.Fatalf("ParseChallenge: %v", err)
	}
	if instr.Recipient != "0x1111111111111111111111111111111111111111" {
		t.Errorf("expected first option selected, got recipient %q", instr.Recipient)
	}
	if instr.ChainID != 8453 {
		t.Errorf("ChainID: got %d want 8453", instr.ChainID)
	}
}

func TestParseChallenge_AcceptsCarriesPaymentID(t *testing.T) {
	body := []byte(`{
		"accepts": [{"payTo": "0x1111111111111111111111111111111111111111", "maxAmountRequired": "5", "network": "base-sepolia"}],
		"payment_instructions": {"payment_id": "pay-123"}
	}`)

	instr, err := ParseChallenge(body)
	if err != nil {
		t.Fatalf("ParseChallenge: %v", err)
	}
	if instr.PaymentID != "pay-123" {
		t.Errorf("PaymentID: got %q want pay-123", instr.PaymentID)
	}
}

func TestParseChallenge_UnknownNetworkDefaultsToTestnet(t *testing.T) {
	body := []byte(`{
		"accepts": [{"payTo": "0x1111111111111111111111111111111111111111", "maxAmountRequired": "5", "network": "some-l3"}]
	}`)

	instr, err := ParseChallenge(body)
	if err != nil {
		t.Fatalf("ParseChallenge: %v", err)
	}
	if instr.ChainID != 84532 {
		t.Errorf("ChainID: got %d want 84532", instr.ChainID)
	}
}

// ── Shape (b): bespoke payment_instructions ──────────────────────────────────

func TestParseChallenge_BespokeInstructions(t *testing.T) {
	body := []byte(`{
		"payment_instructions": {
			"recipient": "0x2222222222222222222222222222222222222222",
			"amount": "250000",
			"token": "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
			"chain_id": 8453,
			"payment_id": "pay-777"
		}
	}`)

	instr, err := ParseChallenge(body)
	if err != nil {
		t.Fatalf("ParseChallenge: %v", err)
	}
	if instr.Recipient != "0x2222222222222222222222222222222222222222" {
		t.Errorf("Recipient: got %q", instr.Recipient)
	}
	if instr.Amount != "250000" {
		t.Errorf("Amount: got %q", instr.Amount)
	}
	if instr.ChainID != 8453 {
		t.Errorf("ChainID: got %d want 8453", instr.ChainID)
	}
	if instr.PaymentID != "pay-777" {
		t.Errorf("PaymentID: got %q want pay-777", instr.PaymentID)
	}
}

func TestParseChallenge_BespokeFillsMissingPaymentID(t *testing.T) {
	body := []byte(`{
		"payment_instructions": {
			"recipient": "0x2222222222222222222222222222222222222222",
			"amount": "1"
		}
	}`)

	instr, err := ParseChallenge(body)
	if err != nil {
		t.Fatalf("ParseChallenge: %v", err)
	}
	if instr.PaymentID == "" {
		t.Error("PaymentID: expected generated id")
	}
	if instr.Network != DefaultNetwork {
		t.Errorf("Network: got %q want %q", instr.Network, DefaultNetwork)
	}
	if instr.ChainID != 84532 {
		t.Errorf("ChainID: got %d want 84532", instr.ChainID)
	}
}

// ── Failures ─────────────────────────────────────────────────────────────────

func TestParseChallenge_NeitherShape(t *testing.T) {
	for name, body := range map[string]string{
		"empty object":  `{}`,
		"error only":    `{"error": "payment required"}`,
		"empty accepts": `{"accepts": []}`,
		"not json":      `payment required`,
	} {
		if _, err := ParseChallenge([]byte(body)); !errors.Is(err, ErrMalformedChallenge) {
			t.Errorf("%s: got %v, want ErrMalformedChallenge", name, err)
		}
	}
}

func TestParseChallenge_MissingRecipientOrAmount(t *testing.T) {
	for name, body := range map[string]string{
		"accepts no payTo":     `{"accepts": [{"maxAmountRequired": "5"}]}`,
		"accepts no amount":    `{"accepts": [{"payTo": "0x1111111111111111111111111111111111111111"}]}`,
		"bespoke no amount":    `{"payment_instructions": {"recipient": "0x1111111111111111111111111111111111111111"}}`,
		"bespoke no recipient": `{"payment_instructions": {"amount": "5"}}`,
	} {
		if _, err := ParseChallenge([]byte(body)); !errors.Is(err, ErrMalformedChallenge) {
			t.Errorf("%s: got %v, want ErrMalformedChallenge", name, err)
		}
	}
}
