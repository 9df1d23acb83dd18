package x402

import "errors"

// Terminal failure kinds for the payment-gated request flow. Each one ends the
// executor in its failed state and is surfaced to the user as-is; none of them
// trigger an automatic retry. Match with errors.Is.
var (
	// ErrMalformedChallenge: a 402 body carried neither a recognized payment
	// option list nor bespoke payment instructions, or lacked recipient/amount.
	ErrMalformedChallenge = errors.New("malformed payment challenge")

	// ErrMissingField: instructions reached the authorization builder without
	// a recipient or amount.
	ErrMissingField = errors.New("payment instructions missing required field")

	// ErrSigningRejected: the wallet declined or failed to sign.
	ErrSigningRejected = errors.New("payment signing rejected")

	// ErrPaymentRejected: the server answered 402 again after a signed retry.
	ErrPaymentRejected = errors.New("payment rejected by server")

	// ErrTransport: network failure, unexpected status, or a non-JSON body.
	ErrTransport = errors.New("transport error")
)
