package router

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Route names one of the three backend capabilities.
type Route int

const (
	// RouteChat is the free general-chat capability.
	RouteChat Route = iota
	// RouteAnalysis is the paid premium analysis; choosing it triggers the
	// payment-gated flow.
	RouteAnalysis
	// RouteFollowUp is a premium follow-up on an already-purchased subject;
	// no new payment.
	RouteFollowUp
)

func (r Route) String() string {
	switch r {
	case RouteChat:
		return "chat"
	case RouteAnalysis:
		return "analysis"
	case RouteFollowUp:
		return "follow-up"
	default:
		return "unknown"
	}
}

// Decision is the routing outcome plus the subject wallet to attach.
// Subject is empty for RouteChat.
type Decision struct {
	Route   Route
	Subject string
}

var addressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)

// Wallet-analysis intent markers. The audience is mixed English/Spanish, so
// both vocabularies count.
var intentKeywords = []string{
	"analyze", "analysis", "analiza", "analizar", "analisis", "análisis",
	"portfolio", "portafolio", "cartera",
	"wallet", "billetera",
	"holdings", "balance",
}

// wantsAnalysis reports whether the message asks for wallet analysis, by
// keyword or by containing a literal address.
func wantsAnalysis(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range intentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return addressPattern.MatchString(msg)
}

// extractAddress pulls the first literal wallet address out of the message,
// checksummed, or "" when none is present.
func extractAddress(msg string) string {
	match := addressPattern.FindString(msg)
	if match == "" {
		return ""
	}
	return common.HexToAddress(match).Hex()
}

// Decide picks the backend capability for a message.
//
// A literal new address always forces a fresh premium analysis, even when
// today's entitlement was spent on another wallet: a different wallet is a
// different product. Follow-up requires today's entitlement, a remembered
// subject, and no differing literal address. Addresses are compared in
// checksummed form so casing differences cannot fake a new wallet.
func Decide(msg string, entitledToday bool, remembered, connected string) Decision {
	if !wantsAnalysis(msg) {
		return Decision{Route: RouteChat}
	}

	extracted := extractAddress(msg)
	rememberedCk := ""
	if remembered != "" {
		rememberedCk = common.HexToAddress(remembered).Hex()
	}

	if entitledToday && rememberedCk != "" && (extracted == "" || extracted == rememberedCk) {
		return Decision{Route: RouteFollowUp, Subject: rememberedCk}
	}

	subject := extracted
	if subject == "" && connected != "" {
		subject = common.HexToAddress(connected).Hex()
	}
	return Decision{Route: RouteAnalysis, Subject: subject}
}
