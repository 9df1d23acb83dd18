package gateway

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/investbud/chat-gateway/internal/rag"
	"github.com/investbud/chat-gateway/internal/x402"
)

// Handler wires the public proxy routes onto a Gin engine. The browser widget
// talks to these instead of the backend directly, so payment challenges and
// the X-PAYMENT proof pass through unaltered in both directions.
type Handler struct {
	backendURL string
	http       *http.Client
	reform     rag.Reformatter
	log        *zap.Logger
}

func NewHandler(backendURL string, reform rag.Reformatter, log *zap.Logger) *Handler {
	return &Handler{
		backendURL: strings.TrimRight(backendURL, "/"),
		http:       &http.Client{Timeout: 60 * time.Second},
		reform:     reform,
		log:        log,
	}
}

// Register mounts all routes. CORS applies to the whole group; the widget is
// embedded on the marketing page, so the allowed headers include X-PAYMENT.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.Use(corsMiddleware())
	rg.POST("/chat", h.forward("/chat"))
	rg.POST("/advise", h.forward("/advise"))
	rg.POST("/rag", h.handleRag)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+x402.PaymentHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// forward relays a JSON body to the backend capability endpoint, carrying the
// payment header through and mirroring the upstream status (a 402 challenge
// must reach the client untouched).
func (h *Handler) forward(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
			return
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, h.backendURL+path, bytes.NewReader(body))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to connect to backend"})
			return
		}
		req.Header.Set("Content-Type", "application/json")
		if payment := c.GetHeader(x402.PaymentHeader); payment != "" {
			req.Header.Set(x402.PaymentHeader, payment)
		}

		resp, err := h.http.Do(req)
		if err != nil {
			h.log.Error("backend forward failed", zap.String("path", path), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to connect to backend"})
			return
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read backend response"})
			return
		}
		c.Data(resp.StatusCode, "application/json", respBody)
	}
}

type ragRequest struct {
	UserMessage     string `json:"userMessage"`
	BackendResponse string `json:"backendResponse"`
	UserContext     string `json:"userContext"`
}

// handleRag reformats a raw backend reply through the LLM service.
func (h *Handler) handleRag(c *gin.Context) {
	var req ragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	enhanced, err := h.reform.Enhance(c.Request.Context(), req.UserMessage, req.BackendResponse, req.UserContext)
	if err != nil {
		h.log.Error("rag enhancement failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "enhancedResponse": enhanced})
}
