package synth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/time/rate"
)

const (
	defaultModel          = "gpt-4o-mini"
	defaultTimeout        = 45 * time.Second
	defaultRequestsPerMin = 30
	defaultBurst          = 5
	maxSummaryTokens      = 1024
)

// OpenAIConfig configures the production summarizer.
type OpenAIConfig struct {
	// Model is the chat model name. Defaults to gpt-4o-mini.
	Model string

	// Token is the API key.
	Token string

	// BaseURL overrides the API endpoint, for OpenAI-compatible gateways.
	// Empty means the upstream default.
	BaseURL string

	// Timeout bounds each Summarize call. Defaults to 45s.
	Timeout time.Duration

	// RequestsPerMinute rate-limits outbound calls. Defaults to 30.
	RequestsPerMinute int
}

// OpenAISummarizer implements Summarizer on an OpenAI-compatible chat
// endpoint. Constructed once at startup and injected into the aggregator
// and orchestrator; a rate limiter and per-call timeout keep a slow
// upstream from piling up requests.
type OpenAISummarizer struct {
	llm     *openai.LLM
	limiter *rate.Limiter
	timeout time.Duration
}

// NewOpenAISummarizer creates the production summarizer.
func NewOpenAISummarizer(cfg OpenAIConfig) (*OpenAISummarizer, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("summarizer API token required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMin
	}

	opts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(cfg.Token),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create summarizer client: %w", err)
	}

	return &OpenAISummarizer{
		llm:     llm,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), defaultBurst),
		timeout: timeout,
	}, nil
}

// Summarize sends the instruction and text to the chat model and returns
// the generated prose. The call is rate-limited and bounded by the
// configured timeout; a timeout reads like any other collaborator failure
// to the caller.
func (s *OpenAISummarizer) Summarize(ctx context.Context, instruction, text string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, instruction),
		llms.TextParts(schema.ChatMessageTypeHuman, text),
	}

	resp, err := s.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(0.3),
		llms.WithMaxTokens(maxSummaryTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate summary: empty response")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
