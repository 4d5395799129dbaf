package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/logger"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/monitoring"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// GenerateRequest is the proxy endpoint request body
type GenerateRequest struct {
	Transcript string `json:"transcript" validate:"required,notblank"`
}

// GenerateResponse is the proxy endpoint success body
type GenerateResponse struct {
	Note *types.SOAPNote `json:"note"`
}

// ErrorResponse is the proxy endpoint failure body
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProxyClient generates notes through a backend proxy so that the provider
// credential stays on the server
type ProxyClient struct {
	endpoint   string
	httpClient *http.Client
	tracing    *monitoring.TracingManager
}

// ProxyOption configures a ProxyClient
type ProxyOption func(*ProxyClient)

// WithProxyTracing propagates the caller's trace to the backend
func WithProxyTracing(tm *monitoring.TracingManager) ProxyOption {
	return func(c *ProxyClient) { c.tracing = tm }
}

// NewProxyClient creates a proxied-mode client for the backend at baseURL
func NewProxyClient(baseURL string, httpClient *http.Client, opts ...ProxyOption) *ProxyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	c := &ProxyClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/api/generate",
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate posts the transcript to the backend and decodes the returned note
func (c *ProxyClient) Generate(ctx context.Context, transcript string) (*types.SOAPNote, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, types.NewInputError()
	}

	body, err := json.Marshal(GenerateRequest{Transcript: transcript})
	if err != nil {
		return nil, types.NewNetworkError(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewNetworkError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(monitoring.RequestIDHeader, requestID)
	}
	if c.tracing != nil {
		c.tracing.InjectTraceContext(ctx, req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.NewNetworkError(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewNetworkError(fmt.Errorf("backend returned %d: %s", resp.StatusCode, readErrorBody(resp.Body)))
	}

	var envelope struct {
		Note json.RawMessage `json:"note"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, types.NewParseError(fmt.Errorf("decode backend response: %w", err))
	}
	if len(envelope.Note) == 0 || string(envelope.Note) == "null" {
		return nil, types.NewParseError(fmt.Errorf("backend response has no note"))
	}

	return DecodeNote(string(envelope.Note))
}
