package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	openai "github.com/sashabaranov/go-openai"

	"pano_backend/core"
	"pano_backend/logging"
)

// completionAPI is the slice of the backend client the enrichment client
// needs. Satisfied by *openai.Client; tests substitute a fake.
type completionAPI interface {
	CreateCompletion(ctx context.Context, request openai.CompletionRequest) (openai.CompletionResponse, error)
}

// Client enriches short environment prompts into detailed scene
// descriptions via a completion backend.
type Client struct {
	api    completionAPI
	params Params
	logger *logging.Logger
}

// Compile-time check that the real backend client satisfies the interface.
var _ completionAPI = (*openai.Client)(nil)

// NewClient builds a Client from the enrichment configuration.
func NewClient(cfg core.EnrichConfig, logger *logging.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.URL != "" {
		clientConfig.BaseURL = cfg.URL
	}
	// The project identifier rides in the org header; hosted backends
	// that scope keys per project require it.
	clientConfig.OrgID = cfg.ProjectID

	return &Client{
		api:    openai.NewClientWithConfig(clientConfig),
		params: ParamsFromConfig(cfg),
		logger: logger.Named("enrich"),
	}
}

// newClientWithAPI wires a custom backend, used by tests.
func newClientWithAPI(api completionAPI, params Params, logger *logging.Logger) *Client {
	return &Client{api: api, params: params, logger: logger.Named("enrich")}
}

// Enrich sends the prompt through the enrichment backend and returns the
// trimmed generated description. Parameters are validated before any call;
// validation failures return a *BackendError with CallMade=false. Exactly
// one backend call is made per invocation, never more.
func (c *Client) Enrich(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &BackendError{CallMade: false, Err: ErrEmptyPrompt}
	}
	if err := c.params.Validate(); err != nil {
		return "", &BackendError{CallMade: false, Err: err}
	}

	c.logger.Debug("enriching prompt",
		zap.String("model", c.params.Model),
		zap.Int("max_tokens", c.params.MaxTokens))

	resp, err := c.api.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       c.params.Model,
		Prompt:      BuildPrompt(prompt),
		MaxTokens:   c.params.MaxTokens,
		Temperature: c.params.WireTemperature(),
	})
	if err != nil {
		return "", &BackendError{CallMade: true, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &BackendError{CallMade: true, Err: ErrEmptyResponse}
	}
	text := strings.TrimSpace(resp.Choices[0].Text)
	if text == "" {
		return "", &BackendError{CallMade: true, Err: fmt.Errorf("%w: first choice is blank", ErrEmptyResponse)}
	}

	c.logger.Debug("prompt enriched", zap.Int("length", len(text)))
	return text, nil
}
