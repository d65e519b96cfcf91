package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/transroute"
)

const openAITemperature = 0.3

// OpenAIShape speaks the chat-completions format shared by OpenAI and the
// compatible providers. The descriptor endpoint is used as the client base URL.
type OpenAIShape struct {
	httpClient *http.Client
}

// NewOpenAIShape creates the chat-completions shape.
func NewOpenAIShape(client *http.Client) *OpenAIShape {
	return &OpenAIShape{httpClient: client}
}

// Send makes one chat completion call.
func (s *OpenAIShape) Send(ctx context.Context, c Call) (string, error) {
	config := openai.DefaultConfig(c.APIKey)
	config.BaseURL = strings.TrimSuffix(c.Endpoint, "/")
	config.HTTPClient = s.httpClient
	client := openai.NewClientWithConfig(config)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.Model,
		Messages:    []openai.ChatCompletionMessage{buildUserMessage(c)},
		Temperature: openAITemperature,
	})
	if err != nil {
		return "", classifyOpenAIError(c, err)
	}

	if len(resp.Choices) == 0 {
		return "", malformed(c.Provider, c.Model, "response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// buildUserMessage sends plain content for text and multi-part content when
// images are attached.
func buildUserMessage(c Call) openai.ChatCompletionMessage {
	if !c.Multimodal() {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: c.Prompt}
	}

	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: c.Prompt}}
	for _, img := range c.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: img.DataURL()},
		})
	}
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts}
}

func classifyOpenAIError(c Call, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &ProviderError{
			Kind:       transroute.StatusKind(apiErr.HTTPStatusCode),
			Provider:   c.Provider,
			Model:      c.Model,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    truncate(apiErr.Message),
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusError(c.Provider, c.Model, reqErr.HTTPStatusCode, reqErr.Body)
	}

	return transportError(c.Provider, c.Model, err)
}
