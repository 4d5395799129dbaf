package generation

import (
	"net/http"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/config"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// Mode is how a client reaches the model
type Mode string

const (
	// ModeDirect calls the provider with a local credential
	ModeDirect Mode = "direct"
	// ModeProxied calls the backend proxy endpoint
	ModeProxied Mode = "proxied"
)

// NewClient selects the generation mode once from configuration: a backend
// URL means proxied, otherwise a credential means direct. Neither is a
// credential error.
func NewClient(cfg *config.Config, httpClient *http.Client, opts ...ProxyOption) (interfaces.NoteGenerator, Mode, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.ProviderTimeout()}
	}

	if cfg.Proxied() {
		return NewProxyClient(cfg.BackendURL, httpClient, opts...), ModeProxied, nil
	}

	if cfg.HasCredential() {
		client, err := NewDirectClient(cfg, httpClient)
		if err != nil {
			return nil, "", err
		}
		return client, ModeDirect, nil
	}

	return nil, "", types.NewCredentialError()
}

// NewDirectClient builds a direct-mode client from configuration regardless
// of any backend URL; the proxy endpoint itself always runs in direct mode
func NewDirectClient(cfg *config.Config, httpClient *http.Client) (*GeminiClient, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.ProviderTimeout()}
	}
	return NewGeminiClient(GeminiConfig{
		APIKey:     cfg.Provider.APIKey,
		Model:      cfg.Provider.Model,
		BaseURL:    cfg.Provider.BaseURL,
		HTTPClient: httpClient,
	})
}
