package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to the advisory backend's capability endpoints. Only the free
// paths go through here; the paid /advise call is issued by the payment
// executor, which owns the challenge/retry cycle.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ChatURL and AdviseURL expose the capability endpoints for callers that
// drive requests themselves (the payment executor, the gateway proxy).
func (c *Client) ChatURL() string   { return c.baseURL + "/chat" }
func (c *Client) AdviseURL() string { return c.baseURL + "/advise" }

// Chat sends a general-chat or follow-up message.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ChatURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend chat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend chat: status %d", resp.StatusCode)
	}
	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("backend chat: decode: %w", err)
	}
	return &out, nil
}

// Text resolves the reply text from whichever field the backend populated.
// The `response` field sometimes arrives as a Python dict repr; that gets
// normalized before use.
func (r *ChatResponse) Text() string {
	if r.Response != "" {
		if inner := decodePythonDict(r.Response); inner != "" {
			return inner
		}
		return r.Response
	}
	if r.Reply != "" {
		return r.Reply
	}
	raw, _ := json.Marshal(r)
	return string(raw)
}

// decodePythonDict recovers the "response" value from a Python dict repr like
// {'response': 'text', 'ok': True}. Returns "" when s is not parseable that
// way; callers fall back to the raw string.
func decodePythonDict(s string) string {
	replacer := strings.NewReplacer(
		"'", `"`,
		"True", "true",
		"False", "false",
		"None", "null",
	)
	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal([]byte(replacer.Replace(s)), &parsed); err != nil {
		return ""
	}
	return parsed.Response
}
