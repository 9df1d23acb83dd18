package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChat_SendsAndDecodes(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("path: got %s want /chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"reply": "hello", "regime_signal": {"current": "risk-on", "confidence": 0.8}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Chat(context.Background(), ChatRequest{
		SessionID: "sess-1",
		Message:   "what's the regime",
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got.SessionID != "sess-1" || got.Message != "what's the regime" {
		t.Errorf("request: %+v", got)
	}
	if resp.Reply != "hello" {
		t.Errorf("Reply: got %q", resp.Reply)
	}
	if resp.RegimeSignal == nil || resp.RegimeSignal.Current != "risk-on" {
		t.Errorf("RegimeSignal: %+v", resp.RegimeSignal)
	}
}

func TestChat_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Chat(context.Background(), ChatRequest{}); err == nil {
		t.Fatal("expected error for 502")
	}
}

// ── Reply text resolution ────────────────────────────────────────────────────

func TestText_PrefersNormalizedResponse(t *testing.T) {
	r := &ChatResponse{Response: `{'response': 'BTC is up', 'cached': True, 'extra': None}`}
	if got := r.Text(); got != "BTC is up" {
		t.Errorf("Text: got %q want normalized inner response", got)
	}
}

func TestText_FallsBackToRawResponse(t *testing.T) {
	r := &ChatResponse{Response: "plain text, not a dict"}
	if got := r.Text(); got != "plain text, not a dict" {
		t.Errorf("Text: got %q", got)
	}
}

func TestText_Reply(t *testing.T) {
	r := &ChatResponse{Reply: "just a reply"}
	if got := r.Text(); got != "just a reply" {
		t.Errorf("Text: got %q", got)
	}
}

func TestText_LastResortMarshals(t *testing.T) {
	r := &ChatResponse{SessionID: "s"}
	got := r.Text()
	if !json.Valid([]byte(got)) {
		t.Errorf("Text fallback is not JSON: %q", got)
	}
}
