package x402

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// chainIDByNetwork maps x402 network names to EVM chain ids.
var chainIDByNetwork = map[string]int64{
	"base":            8453,
	"base-mainnet":    8453,
	"base-sepolia":    84532,
	"ethereum":        1,
	"eth-mainnet":     1,
	"polygon":         137,
	"polygon-mainnet": 137,
	"arbitrum":        42161,
	"optimism":        10,
}

// ChainIDForNetwork resolves a network name; unknown names fall back to the
// Base Sepolia testnet.
func ChainIDForNetwork(network string) int64 {
	if id, ok := chainIDByNetwork[strings.ToLower(network)]; ok {
		return id
	}
	return 84532
}

// challengeBody is the 402 response envelope. Both wire shapes are decoded
// once here; nothing downstream re-sniffs the body.
type challengeBody struct {
	X402Version         int                  `json:"x402Version"`
	Accepts             []paymentOption      `json:"accepts"`
	PaymentInstructions *PaymentInstructions `json:"payment_instructions"`
	Error               string               `json:"error"`
}

// paymentOption is one entry of the standardized accepts list.
type paymentOption struct {
	Scheme            string `json:"scheme"`
	Network           string `json:"network"`
	PayTo             string `json:"payTo"`
	MaxAmountRequired string `json:"maxAmountRequired"`
	Asset             string `json:"asset"`
	Description       string `json:"description"`
}

// ParseChallenge normalizes a 402 challenge body into PaymentInstructions.
//
// Shape (a), the standardized accepts list, wins when present: the first
// option is selected and payTo/maxAmountRequired/asset/network map onto the
// canonical record, with the chain id derived from the network name. Shape (b)
// is the bespoke payment_instructions object, used directly. Either way a
// missing correlation id is replaced with a fresh one, and a record without
// recipient or amount is a fatal parse error.
func ParseChallenge(body []byte) (*PaymentInstructions, error) {
	var ch challengeBody
	if err := json.Unmarshal(body, &ch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedChallenge, err)
	}

	var instr *PaymentInstructions
	switch {
	case len(ch.Accepts) > 0:
		opt := ch.Accepts[0]
		paymentID := ""
		if ch.PaymentInstructions != nil {
			paymentID = ch.PaymentInstructions.PaymentID
		}
		instr = &PaymentInstructions{
			Recipient: opt.PayTo,
			Amount:    opt.MaxAmountRequired,
			Token:     opt.Asset,
			Network:   opt.Network,
			ChainID:   ChainIDForNetwork(opt.Network),
			PaymentID: paymentID,
		}
	case ch.PaymentInstructions != nil:
		clone := *ch.PaymentInstructions
		instr = &clone
	default:
		return nil, fmt.Errorf("%w: neither accepts nor payment_instructions present", ErrMalformedChallenge)
	}

	if instr.Recipient == "" || instr.Amount == "" {
		return nil, fmt.Errorf("%w: recipient or amount unresolved", ErrMalformedChallenge)
	}
	if instr.Network == "" {
		instr.Network = DefaultNetwork
	}
	if instr.ChainID == 0 {
		instr.ChainID = ChainIDForNetwork(instr.Network)
	}
	if instr.PaymentID == "" {
		instr.PaymentID = uuid.NewString()
	}
	return instr, nil
}
