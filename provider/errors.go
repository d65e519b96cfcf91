package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"

	"github.com/ZaguanLabs/transroute"
	"github.com/ZaguanLabs/transroute/registry"
)

const maxSummaryLen = 200

// statusError classifies a non-2xx response.
func statusError(p registry.ProviderName, model string, status int, body []byte) error {
	return &ProviderError{
		Kind:       transroute.StatusKind(status),
		Provider:   p,
		Model:      model,
		StatusCode: status,
		Message:    summarizeBody(body),
	}
}

// transportError classifies a failure that produced no response.
func transportError(p registry.ProviderName, model string, err error) error {
	kind := transroute.KindProtocol
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		kind = transroute.KindNetwork
	}
	return &ProviderError{
		Kind:     kind,
		Provider: p,
		Model:    model,
		Cause:    err,
	}
}

// malformed reports a 2xx response that carries no usable answer.
func malformed(p registry.ProviderName, model, format string, args ...any) error {
	return &ProviderError{
		Kind:     transroute.KindProtocol,
		Provider: p,
		Model:    model,
		Message:  fmt.Sprintf(format, args...),
	}
}

// summarizeBody extracts a one-line diagnostic from an error body. JSON error
// objects give their message; HTML gateway pages give their title and heading.
func summarizeBody(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "error", "message", "detail"} {
			if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
				return truncate(v.String())
			}
		}
	}

	if mimetype.Detect(body).Is("text/html") {
		if s := summarizeHTML(body); s != "" {
			return s
		}
	}

	return truncate(strings.Join(strings.Fields(string(body)), " "))
}

func summarizeHTML(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var parts []string
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title != "" {
		parts = append(parts, title)
	}

	heading := strings.TrimSpace(doc.Find("h1, h2, p").First().Text())
	if heading != "" && heading != title {
		parts = append(parts, heading)
	}
	if len(parts) == 0 {
		text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
		if text == "" {
			return ""
		}
		parts = append(parts, text)
	}
	return truncate(strings.Join(parts, ": "))
}

func truncate(s string) string {
	if len(s) <= maxSummaryLen {
		return s
	}
	cut := maxSummaryLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
