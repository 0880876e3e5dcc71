// Package llm provides a unified client for the LLM providers the verdict
// pipeline calls: the verdict-authoring model and the keyword-extraction
// model. Provider specifics (OpenAI, Anthropic, Google) sit behind the
// CoreLLM interface, and cross-cutting concerns such as retries, timeouts,
// rate limiting, metrics, and tracing compose as middleware around it.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/keyublog/gaepan-core/internal/ports"
)

// CoreLLM is the minimal surface a provider must implement. The middleware
// chain wraps any conforming implementation.
type CoreLLM interface {
	// DoRequest sends a prompt and returns the response text along with
	// input and output token counts (estimated when the provider does not
	// report them).
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Middleware wraps a CoreLLM to add cross-cutting behavior without touching
// provider logic.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds everything needed to build a provider-backed client.
type ClientConfig struct {
	// APIKey authenticates against the provider.
	APIKey string

	// Model is the model identifier to request.
	Model string

	// BaseURL overrides the provider's default endpoint when set.
	BaseURL string

	// Timeout caps each individual request; zero means no per-request cap.
	Timeout time.Duration

	// Middleware is applied in order, first entry outermost.
	Middleware []Middleware
}

// ProviderFactory builds a CoreLLM from configuration. Providers register
// themselves at init time.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a name usable in
// configuration files.
func RegisterProviderFactory(name string, factory ProviderFactory) {
	providerFactories[name] = factory
}

// Client adapts a middleware-wrapped CoreLLM to the ports.LLMClient
// interface the pipeline consumes.
type Client struct {
	core CoreLLM
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient assembles a provider and its middleware chain.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", providerType, err)
	}

	// Reverse order so the first configured middleware is outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// Wrap builds a Client directly around a CoreLLM, for tests and custom
// provider implementations.
func Wrap(core CoreLLM, middleware ...Middleware) *Client {
	for i := len(middleware) - 1; i >= 0; i-- {
		core = middleware[i](core)
	}
	return &Client{core: core}
}

// Complete sends a prompt through the middleware chain and returns the
// response text.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.core.DoRequest(ctx, prompt, options)
	return response, err
}

// GetModel returns the underlying provider's model name.
func (c *Client) GetModel() string { return c.core.GetModel() }
