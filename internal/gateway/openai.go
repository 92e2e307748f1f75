package gateway

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type OpenAIGateway struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewOpenAIGateway(apiKey string, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIGateway {
	return &OpenAIGateway{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (g *OpenAIGateway) Complete(ctx context.Context, messages []Message) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:   g.maxTokens,
		Temperature: float32(g.temperature),
	}
	for _, msg := range messages {
		request.Messages = append(request.Messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil {
		g.logger.Error("Chat completion request failed", zap.Error(err))
		return "", errors.Wrap(err, "chat completion")
	}

	if len(resp.Choices) == 0 {
		g.logger.Warn("Chat completion returned no choices", zap.String("model", g.model))
		return "", nil
	}

	return normalizeReply(resp.Choices[0].Message), nil
}

// normalizeReply flattens a completion message to plain text. A
// non-text payload (tool calls, multi-part content) is serialized to
// its JSON form rather than rejected.
func normalizeReply(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" {
		return msg.Content
	}

	if len(msg.MultiContent) > 0 {
		if raw, err := json.Marshal(msg.MultiContent); err == nil {
			return string(raw)
		}
	}
	if len(msg.ToolCalls) > 0 {
		if raw, err := json.Marshal(msg.ToolCalls); err == nil {
			return string(raw)
		}
	}

	return ""
}
