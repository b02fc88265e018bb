package vision

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
)

// Model extracts structured data from a document image. Exactly one call per
// file; the caller never retries.
type Model interface {
	Extract(ctx context.Context, imageURL string) (*Result, error)
}

// OpenAIClient calls the OpenAI chat-completions API with the extraction
// prompt and an image_url part, requesting a JSON-formatted reply.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

var _ Model = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg types.VisionConfig) *OpenAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	config.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}
}

func (c *OpenAIClient) Extract(ctx context.Context, imageURL string) (*Result, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: ExtractionPrompt,
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices in reply", ErrModelInvocation)
	}

	reply := resp.Choices[0].Message.Content
	tool.DefaultLogger.Debugf("[Vision] Model reply: %s", reply)
	return ParseResult(reply)
}
