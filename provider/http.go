package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/ZaguanLabs/transroute/registry"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// postJSON sends body to url and returns the response body of a 2xx answer.
// Other statuses become classified provider errors.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body []byte, p registry.ProviderName, model string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, malformed(p, model, "building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(p, model, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(p, model, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(p, model, resp.StatusCode, data)
	}
	return data, nil
}
