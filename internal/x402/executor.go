package x402

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/investbud/chat-gateway/internal/wallet"
)

// State of the payment-gated request lifecycle.
type State int32

const (
	StateIdle State = iota
	StateAwaitingChallenge
	StateAwaitingSignature
	StateRetrying
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingChallenge:
		return "awaiting_challenge"
	case StateAwaitingSignature:
		return "awaiting_signature"
	case StateRetrying:
		return "retrying"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Executor drives one payment-gated request at a time: send bare, parse the
// 402 challenge, sign an authorization, retry exactly once with the proof.
// A second 402 is terminal; there is never a second signing prompt.
type Executor struct {
	http   *http.Client
	signer wallet.Signer
	log    *zap.Logger
	state  atomic.Int32
}

func NewExecutor(client *http.Client, signer wallet.Signer, log *zap.Logger) *Executor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Executor{http: client, signer: signer, log: log}
}

// State reports the current lifecycle state; callers gate new submissions on
// it (only idle/complete/failed may start a request).
func (e *Executor) State() State { return State(e.state.Load()) }

func (e *Executor) setState(s State) { e.state.Store(int32(s)) }

// Do posts body as JSON to url, transparently completing the payment flow if
// the server answers 402. Returns the final response body. All failures are
// terminal and wrap one of the sentinel errors in this package.
func (e *Executor) Do(ctx context.Context, url string, body any) ([]byte, error) {
	switch e.State() {
	case StateIdle, StateComplete, StateFailed:
	default:
		return nil, fmt.Errorf("%w: request already in flight (%s)", ErrTransport, e.State())
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, e.fail(fmt.Errorf("%w: marshal request: %w", ErrTransport, err))
	}

	e.setState(StateAwaitingChallenge)
	status, respBody, err := e.post(ctx, url, raw, "")
	if err != nil {
		return nil, e.fail(err)
	}

	if status != http.StatusPaymentRequired {
		return e.finish(status, respBody)
	}

	instr, err := ParseChallenge(respBody)
	if err != nil {
		return nil, e.fail(err)
	}
	e.log.Info("payment challenge received",
		zap.String("recipient", instr.Recipient),
		zap.String("amount", instr.Amount),
		zap.String("network", instr.Network),
	)
	if name, _ := TokenMetadata(instr.Token); name == "Token" {
		e.log.Warn("unknown token asset, signing with placeholder domain metadata",
			zap.String("asset", instr.Token))
	}

	e.setState(StateAwaitingSignature)
	token, err := BuildPaymentToken(ctx, e.signer, instr)
	if err != nil {
		return nil, e.fail(err)
	}

	e.setState(StateRetrying)
	status, respBody, err = e.post(ctx, url, raw, token)
	if err != nil {
		return nil, e.fail(err)
	}
	if status == http.StatusPaymentRequired {
		// One challenge/sign/retry cycle only. Re-entering here would loop
		// forever and spam the wallet with signing prompts.
		return nil, e.fail(fmt.Errorf("%w: 402 after signed retry", ErrPaymentRejected))
	}
	return e.finish(status, respBody)
}

func (e *Executor) post(ctx context.Context, url string, body []byte, paymentToken string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if paymentToken != "" {
		req.Header.Set(PaymentHeader, paymentToken)
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	return resp.StatusCode, respBody, nil
}

func (e *Executor) finish(status int, body []byte) ([]byte, error) {
	if status < 200 || status >= 300 {
		return nil, e.fail(fmt.Errorf("%w: status %d", ErrTransport, status))
	}
	if !json.Valid(body) {
		return nil, e.fail(fmt.Errorf("%w: non-JSON response body", ErrTransport))
	}
	e.setState(StateComplete)
	return body, nil
}

func (e *Executor) fail(err error) error {
	e.setState(StateFailed)
	e.log.Warn("payment-gated request failed", zap.Error(err))
	return err
}
