package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// GoogleShape speaks the Gemini generateContent REST format.
type GoogleShape struct {
	client *http.Client
}

// NewGoogleShape creates the Gemini shape.
func NewGoogleShape(client *http.Client) *GoogleShape {
	return &GoogleShape{client: client}
}

// Send posts one generateContent request.
func (s *GoogleShape) Send(ctx context.Context, c Call) (string, error) {
	body, err := s.buildBody(c)
	if err != nil {
		return "", malformed(c.Provider, c.Model, "building request: %v", err)
	}

	endpoint := strings.ReplaceAll(c.Endpoint, "{model}", url.PathEscape(c.Model))
	data, err := postJSON(ctx, s.client, endpoint, map[string]string{"x-goog-api-key": c.APIKey}, body, c.Provider, c.Model)
	if err != nil {
		return "", err
	}
	return s.parseResponse(c, data)
}

// buildBody puts the prompt first, then each image as inline data.
func (s *GoogleShape) buildBody(c Call) ([]byte, error) {
	body := []byte(`{"contents":[{"role":"user","parts":[]}]}`)
	body, err := sjson.SetBytes(body, "contents.0.parts.0.text", c.Prompt)
	if err != nil {
		return nil, err
	}
	for i, img := range c.Images {
		prefix := "contents.0.parts." + strconv.Itoa(i+1) + ".inline_data."
		if body, err = sjson.SetBytes(body, prefix+"mime_type", img.MIME); err != nil {
			return nil, err
		}
		if body, err = sjson.SetBytes(body, prefix+"data", img.Data); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (s *GoogleShape) parseResponse(c Call, data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", malformed(c.Provider, c.Model, "invalid JSON response")
	}
	if reason := gjson.GetBytes(data, "promptFeedback.blockReason").String(); reason != "" {
		return "", malformed(c.Provider, c.Model, "prompt blocked: %s", reason)
	}

	var parts []string
	gjson.GetBytes(data, "candidates.0.content.parts.#.text").ForEach(func(_, v gjson.Result) bool {
		parts = append(parts, v.String())
		return true
	})
	if len(parts) == 0 {
		return "", malformed(c.Provider, c.Model, "response has no text parts")
	}
	return strings.Join(parts, ""), nil
}
