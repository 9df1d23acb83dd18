package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/investbud/chat-gateway/internal/backend"
	"github.com/investbud/chat-gateway/internal/entitlement"
	"github.com/investbud/chat-gateway/internal/rag"
	"github.com/investbud/chat-gateway/internal/router"
	"github.com/investbud/chat-gateway/internal/session"
	"github.com/investbud/chat-gateway/internal/wallet"
	"github.com/investbud/chat-gateway/internal/x402"
)

// Service drives one conversation: routes each message to a backend
// capability, runs the payment flow when the premium analysis is selected,
// and reformats replies for the user.
type Service struct {
	backend  *backend.Client
	executor *x402.Executor
	ent      *entitlement.Cache
	sess     *session.Manager
	signer   wallet.Signer
	reform   rag.Reformatter // optional; nil skips enhancement
	network  string
	log      *zap.Logger
	now      func() time.Time
}

func NewService(
	bc *backend.Client,
	ex *x402.Executor,
	ent *entitlement.Cache,
	sess *session.Manager,
	signer wallet.Signer,
	reform rag.Reformatter,
	network string,
	log *zap.Logger,
) *Service {
	return &Service{
		backend:  bc,
		executor: ex,
		ent:      ent,
		sess:     sess,
		signer:   signer,
		reform:   reform,
		network:  network,
		log:      log,
		now:      time.Now,
	}
}

// Reply is the final, user-facing outcome of one message.
type Reply struct {
	Text             string
	Route            router.Route
	Subject          string
	RegimeSignal     *backend.RegimeSignal
	PortfolioSummary *backend.PortfolioSummary
}

// Busy reports whether a payment-gated request is mid-flight; callers must
// not start a new Send while it is.
func (s *Service) Busy() bool {
	switch s.executor.State() {
	case x402.StateIdle, x402.StateComplete, x402.StateFailed:
		return false
	}
	return true
}

// Send routes and executes one user message end to end.
func (s *Service) Send(ctx context.Context, message string) (*Reply, error) {
	sessionID, err := s.sess.ID(ctx)
	if err != nil {
		return nil, err
	}
	remembered, err := s.sess.Subject(ctx)
	if err != nil {
		return nil, err
	}
	entitled := false
	if remembered != "" {
		entitled, err = s.ent.IsEntitledToday(ctx, remembered)
		if err != nil {
			return nil, err
		}
	}

	dec := router.Decide(message, entitled, remembered, s.signer.Address().Hex())
	s.log.Info("message routed",
		zap.Stringer("route", dec.Route),
		zap.String("subject", dec.Subject),
		zap.Bool("entitled_today", entitled),
	)

	switch dec.Route {
	case router.RouteAnalysis:
		return s.sendAnalysis(ctx, message, remembered, dec)
	case router.RouteFollowUp:
		return s.sendFollowUp(ctx, sessionID, message, remembered, dec)
	default:
		return s.sendChat(ctx, sessionID, message, remembered, dec)
	}
}

// Reset clears the conversation: session id, remembered subject, and the
// entitlement record go together.
func (s *Service) Reset(ctx context.Context) error {
	return s.sess.Reset(ctx)
}

func (s *Service) sendChat(ctx context.Context, sessionID, message, remembered string, dec router.Decision) (*Reply, error) {
	resp, err := s.backend.Chat(ctx, backend.ChatRequest{
		SessionID: sessionID,
		Message:   message,
		Metadata:  map[string]any{"wallet_address": s.signer.Address().Hex()},
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("backend error: %s", resp.Error)
	}
	return s.finishChatReply(ctx, message, remembered, dec, resp)
}

func (s *Service) sendFollowUp(ctx context.Context, sessionID, message, remembered string, dec router.Decision) (*Reply, error) {
	resp, err := s.backend.Chat(ctx, backend.ChatRequest{
		SessionID:     sessionID,
		Message:       message,
		WalletAddress: dec.Subject,
		Network:       s.network,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("backend error: %s", resp.Error)
	}
	return s.finishChatReply(ctx, message, remembered, dec, resp)
}

func (s *Service) sendAnalysis(ctx context.Context, message, remembered string, dec router.Decision) (*Reply, error) {
	req := backend.AdviseRequest{
		WalletAddress: dec.Subject,
		Network:       s.network,
		ChainID:       s.signer.ChainID(),
	}
	raw, err := s.executor.Do(ctx, s.backend.AdviseURL(), req)
	if err != nil {
		return nil, err
	}
	var resp backend.AdviseResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode advise response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("backend error: %s", resp.Error)
	}

	// Subject first, then the entitlement write: a follow-up question arriving
	// right after must already see the subject this purchase was for.
	if err := s.sess.SetSubject(ctx, dec.Subject); err != nil {
		return nil, err
	}
	if err := s.ent.Record(ctx, dec.Subject, s.now()); err != nil {
		return nil, err
	}

	text := resp.Recommendation
	if text == "" {
		text = string(raw)
	}
	reply := &Reply{Text: text, Route: dec.Route, Subject: dec.Subject}
	reply.Text = s.enhance(ctx, message, reply.Text, s.userContext(true, remembered, dec.Subject, nil, nil))
	return reply, nil
}

func (s *Service) finishChatReply(ctx context.Context, message, remembered string, dec router.Decision, resp *backend.ChatResponse) (*Reply, error) {
	reply := &Reply{
		Text:             resp.Text(),
		Route:            dec.Route,
		Subject:          dec.Subject,
		RegimeSignal:     resp.RegimeSignal,
		PortfolioSummary: resp.PortfolioSummary,
	}
	reply.Text = s.enhance(ctx, message, reply.Text, s.userContext(false, remembered, dec.Subject, resp.RegimeSignal, resp.PortfolioSummary))
	return reply, nil
}

// userContext is the JSON context blob handed to the reformatter.
func (s *Service) userContext(isAdvise bool, remembered, subject string, regime *backend.RegimeSignal, portfolio *backend.PortfolioSummary) string {
	ctxBlob := map[string]any{
		"isAdviseResponse":      isAdvise,
		"hasWalletContext":      remembered != "",
		"previousWalletAddress": remembered,
		"wallet_address":        subject,
		"regime":                regime,
		"portfolio":             portfolio,
	}
	raw, err := json.Marshal(ctxBlob)
	if err != nil {
		return ""
	}
	return string(raw)
}

// enhance reformats text for the user, falling back to the raw backend text
// when the reformatter is absent or fails.
func (s *Service) enhance(ctx context.Context, message, text, userContext string) string {
	if s.reform == nil {
		return text
	}
	enhanced, err := s.reform.Enhance(ctx, message, text, userContext)
	if err != nil {
		s.log.Warn("response enhancement failed, using raw reply", zap.Error(err))
		return text
	}
	return enhanced
}
