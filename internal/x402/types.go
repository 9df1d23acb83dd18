package x402

// Protocol constants for the exact-scheme payment envelope.
const (
	Version = 1
	Scheme  = "exact"

	// PaymentHeader carries the base64-encoded signed payment envelope on the
	// retried request.
	PaymentHeader = "X-PAYMENT"

	// DefaultNetwork is assumed when a challenge names no network.
	DefaultNetwork = "base-sepolia"
)

// PaymentInstructions is the canonical record distilled from a 402 challenge,
// regardless of which wire shape the server used. Recipient and Amount are
// guaranteed non-empty after a successful parse.
type PaymentInstructions struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"` // integer string, smallest token unit
	Token     string `json:"token"`
	Network   string `json:"network"`
	ChainID   int64  `json:"chain_id"`
	PaymentID string `json:"payment_id"`
}

// Authorization mirrors EIP-3009 TransferWithAuthorization. Every numeric
// field is a decimal string and both addresses are checksummed; the backend
// verifier compares these byte-for-byte against what was signed.
type Authorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"` // 0x-prefixed 32-byte hex
}

// Payload couples the authorization with its signature.
type Payload struct {
	Signature     string        `json:"signature"`
	Authorization Authorization `json:"authorization"`
}

// PaymentEnvelope is the full signed structure serialized into PaymentHeader.
type PaymentEnvelope struct {
	X402Version int     `json:"x402Version"`
	Scheme      string  `json:"scheme"`
	Network     string  `json:"network"`
	Payload     Payload `json:"payload"`
}
