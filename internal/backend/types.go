package backend

import "encoding/json"

// ChatRequest is the general-chat and follow-up request body. WalletAddress
// and Network are set only on premium follow-ups.
type ChatRequest struct {
	SessionID     string         `json:"session_id"`
	Message       string         `json:"message"`
	WalletAddress string         `json:"wallet_address,omitempty"`
	Network       string         `json:"network,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// RegimeSignal is the backend's current macro regime read.
type RegimeSignal struct {
	Current     string  `json:"current"` // "risk-on" | "risk-off"
	Confidence  float64 `json:"confidence"`
	LastUpdated string  `json:"last_updated"`
}

// Holding is one position in a portfolio summary.
type Holding struct {
	Symbol     string  `json:"symbol"`
	Percentage float64 `json:"percentage"`
}

// PortfolioSummary is an aggregate view of the analyzed wallet.
type PortfolioSummary struct {
	TotalValueUSD float64   `json:"total_value_usd"`
	TopHoldings   []Holding `json:"top_holdings"`
}

// ChatResponse is the chat capability's reply. Some backend versions answer
// in `reply`, others in `response`; Text() resolves that.
type ChatResponse struct {
	SessionID        string            `json:"session_id,omitempty"`
	Reply            string            `json:"reply,omitempty"`
	Response         string            `json:"response,omitempty"`
	MessageCount     int               `json:"message_count,omitempty"`
	ContextUsed      []string          `json:"context_used,omitempty"`
	RegimeSignal     *RegimeSignal     `json:"regime_signal,omitempty"`
	PortfolioSummary *PortfolioSummary `json:"portfolio_summary,omitempty"`
	Error            string            `json:"error,omitempty"`
}

// AdviseRequest triggers the paid premium analysis.
type AdviseRequest struct {
	WalletAddress string `json:"wallet_address"`
	Network       string `json:"network"`
	ChainID       int64  `json:"chain_id"`
}

// AdviseResponse is the premium analysis result.
type AdviseResponse struct {
	AdviceID          string          `json:"advice_id"`
	MacroSignal       json.RawMessage `json:"macro_signal,omitempty"`
	PortfolioAnalysis json.RawMessage `json:"portfolio_analysis,omitempty"`
	Recommendation    string          `json:"recommendation,omitempty"`
	Timestamp         string          `json:"timestamp,omitempty"`
	Error             string          `json:"error,omitempty"`
}
