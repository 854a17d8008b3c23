package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-backend/internal/config"
)

// ChatTurn is one prior message handed to the model.
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

// ChatRequest is a single stateless chat completion.
type ChatRequest struct {
	System      string
	Messages    []ChatTurn
	Temperature float64
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// errNoContent means the provider answered without any message content, as
// opposed to answering with an empty string.
var errNoContent = errors.New("model returned no content")

// LLM completes a chat and returns the text of the first choice.
type LLM interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// completer is the provider-specific call behind a limiter.
type completer interface {
	complete(ctx context.Context, req ChatRequest) (string, error)
	close()
}

// LLMClient bounds concurrent provider calls and applies a per-call timeout.
type LLMClient struct {
	provider completer
	timeout  time.Duration
	rateChan chan struct{} // Token bucket
}

func newLLMClient(p completer, concurrentReqs int, timeout time.Duration) *LLMClient {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}
	return &LLMClient{provider: p, timeout: timeout, rateChan: rateChan}
}

// NewLLM builds the client selected by cfg.LLMProvider.
func NewLLM(cfg *config.Config) (*LLMClient, error) {
	var (
		p   completer
		err error
	)
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		p = newOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	case config.ProviderGemini:
		p, err = newGeminiProvider(context.Background(), cfg.LLMAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
	return newLLMClient(p, cfg.LLMConcurrentReqs, cfg.LLMTimeout), nil
}

func (c *LLMClient) Close() {
	c.provider.close()
}

// acquireRate blocks until a rate slot is available
func (c *LLMClient) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *LLMClient) releaseRate() {
	c.rateChan <- struct{}{}
}

func (c *LLMClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if err := c.acquireRate(ctx); err != nil {
		return "", err
	}
	defer c.releaseRate()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	return c.provider.complete(ctx, req)
}

// stripCodeFence removes a ```json ... ``` wrapper some models add.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
