package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/schema"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// Defaults for the direct provider
const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
)

// GeminiConfig configures a direct-mode client
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiClient calls the generateContent endpoint of the Gemini API with a
// fixed system instruction and response schema
type GeminiClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	schema     *schema.Schema
}

// NewGeminiClient creates a direct-mode client. A missing API key is a
// credential error.
func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, types.NewCredentialError()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(cfg.BaseURL, "/"), url.PathEscape(cfg.Model))

	return &GeminiClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		endpoint:   endpoint,
		httpClient: cfg.HTTPClient,
		schema:     schema.SOAPNote(),
	}, nil
}

type geminiRequest struct {
	SystemInstruction geminiContent          `json:"systemInstruction"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   *schema.Schema `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Generate sends the transcript as the sole user turn and decodes the reply
func (c *GeminiClient) Generate(ctx context.Context, transcript string) (*types.SOAPNote, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, types.NewInputError()
	}

	body, err := json.Marshal(c.buildRequest(transcript))
	if err != nil {
		return nil, types.NewNetworkError(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewNetworkError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.NewNetworkError(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewNetworkError(fmt.Errorf("provider returned %d: %s", resp.StatusCode, readErrorBody(resp.Body)))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, types.NewParseError(fmt.Errorf("decode provider envelope: %w", err))
	}

	text, err := responseText(&parsed)
	if err != nil {
		return nil, types.NewParseError(err)
	}

	return DecodeNote(text)
}

// Model returns the configured model name
func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) buildRequest(transcript string) geminiRequest {
	return geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: SystemInstruction}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: transcript}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   c.schema,
		},
	}
}

// responseText joins the non-thought text parts of the first candidate
func responseText(resp *geminiResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("provider returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("candidate has no text (finish reason %q)", resp.Candidates[0].FinishReason)
	}
	return sb.String(), nil
}
