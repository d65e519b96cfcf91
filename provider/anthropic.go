package provider

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	anthropicVersion         = "2023-06-01"
	anthropicMaxTokens       = 1024
	anthropicMaxTokensImages = 4096
)

// AnthropicShape speaks the Messages API format.
type AnthropicShape struct {
	client *http.Client
}

// NewAnthropicShape creates the Anthropic shape.
func NewAnthropicShape(client *http.Client) *AnthropicShape {
	return &AnthropicShape{client: client}
}

// Send posts one Messages request.
func (s *AnthropicShape) Send(ctx context.Context, c Call) (string, error) {
	body, err := s.buildBody(c)
	if err != nil {
		return "", malformed(c.Provider, c.Model, "building request: %v", err)
	}

	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": anthropicVersion,
	}
	data, err := postJSON(ctx, s.client, c.Endpoint, headers, body, c.Provider, c.Model)
	if err != nil {
		return "", err
	}
	return s.parseResponse(c, data)
}

// buildBody puts the image blocks before the text block.
func (s *AnthropicShape) buildBody(c Call) ([]byte, error) {
	maxTokens := anthropicMaxTokens
	if c.Multimodal() {
		maxTokens = anthropicMaxTokensImages
	}

	body := []byte(`{"messages":[{"role":"user","content":[]}]}`)
	body, err := sjson.SetBytes(body, "model", c.Model)
	if err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "max_tokens", maxTokens); err != nil {
		return nil, err
	}

	for i, img := range c.Images {
		block := map[string]any{
			"type": "image",
			"source": map[string]string{
				"type":       "base64",
				"media_type": img.MIME,
				"data":       img.Data,
			},
		}
		if body, err = sjson.SetBytes(body, "messages.0.content."+strconv.Itoa(i), block); err != nil {
			return nil, err
		}
	}

	text := map[string]string{"type": "text", "text": c.Prompt}
	return sjson.SetBytes(body, "messages.0.content.-1", text)
}

func (s *AnthropicShape) parseResponse(c Call, data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", malformed(c.Provider, c.Model, "invalid JSON response")
	}

	text := gjson.GetBytes(data, "content.0.text")
	if !text.Exists() {
		return "", malformed(c.Provider, c.Model, "response has no text content")
	}
	return text.String(), nil
}
