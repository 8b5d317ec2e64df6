// Package instrument proxies chat completions to an OpenAI-compatible
// endpoint and records every call, success or failure, as a call log.
package instrument

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/ncecere/llm_observability/backend/internal/config"
	"github.com/ncecere/llm_observability/backend/internal/ingest"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

// ErrDisabled is returned when no upstream API key is configured.
var ErrDisabled = errors.New("llm completion is not configured")

// Message is one chat turn in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is an instrumented completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int64    `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// Response carries the completion text plus the observation recorded for it.
type Response struct {
	Content          string  `json:"content"`
	Model            string  `json:"model"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	LatencyMs        float64 `json:"latency_ms"`
	CallID           int64   `json:"call_id"`
}

// Client wraps the upstream SDK client and the ingest write path.
type Client struct {
	api     *openai.Client
	ingest  *ingest.Service
	timeout time.Duration
}

// New returns a nil Client when cfg carries no API key; callers treat a
// nil Client as a disabled feature.
func New(cfg config.LLMConfig, ing *ingest.Service) *Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	api := openai.NewClient(opts...)
	return &Client{api: &api, ingest: ing, timeout: cfg.Timeout}
}

// Complete forwards the request upstream, measures wall-clock latency,
// and records the outcome under the calling user. Upstream failures are
// recorded as error-status calls and returned to the caller.
func (c *Client) Complete(ctx context.Context, userID uuid.UUID, req Request) (Response, error) {
	if c == nil {
		return Response{}, ErrDisabled
	}
	if req.Model == "" {
		return Response{}, errors.New("model required")
	}
	if len(req.Messages) == 0 {
		return Response{}, errors.New("at least one message required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := buildParams(req)
	prompt := lastUserContent(req.Messages)

	started := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	latencyMs := float64(time.Since(started)) / float64(time.Millisecond)

	if err != nil {
		status := store.StatusError
		if errors.Is(err, context.DeadlineExceeded) {
			status = store.StatusTimeout
		}
		if _, recErr := c.ingest.LogCall(ctx, userID, ingest.Record{
			ModelName:    req.Model,
			LatencyMs:    latencyMs,
			Status:       status,
			ErrorMessage: err.Error(),
			Prompt:       prompt,
		}); recErr != nil {
			err = errors.Join(err, recErr)
		}
		return Response{}, err
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	call, err := c.ingest.LogCall(ctx, userID, ingest.Record{
		ModelName:        req.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		LatencyMs:        latencyMs,
		Status:           store.StatusSuccess,
		Prompt:           prompt,
		Response:         content,
	})
	if err != nil {
		return Response{}, err
	}

	return Response{
		Content:          content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		LatencyMs:        call.LatencyMs,
		CallID:           call.ID,
	}, nil
}

func buildParams(req Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch strings.ToLower(msg.Role) {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.ChatCompletionMessageParamOfAssistant(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.MaxTokens != nil {
		params.MaxTokens = param.NewOpt(*req.MaxTokens)
	}
	if req.Temperature != nil {
		params.Temperature = param.NewOpt(*req.Temperature)
	}
	return params
}

func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			return messages[i].Content
		}
	}
	return ""
}
