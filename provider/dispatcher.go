package provider

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ZaguanLabs/transroute"
	"github.com/ZaguanLabs/transroute/registry"
)

// Shape sends one call in a provider family's wire format.
type Shape interface {
	Send(ctx context.Context, c Call) (string, error)
}

// Call is one resolved request: endpoint, credentials and the encoded payload.
type Call struct {
	Provider registry.ProviderName
	Endpoint string
	Model    string
	APIKey   string
	Prompt   string  // Prompt with attached file texts appended
	Images   []Image // Readable images, in request order
}

// Multimodal reports whether the call carries images.
func (c Call) Multimodal() bool {
	return len(c.Images) > 0
}

// Options configures a Dispatcher.
type Options struct {
	HTTPClient *http.Client                     // Default: NewHTTPClient()
	Endpoints  map[registry.ProviderName]string // Per-provider endpoint overrides
	Logger     log.FieldLogger
}

// Dispatcher implements transroute.Dispatcher over the provider registry.
type Dispatcher struct {
	shapes    map[registry.Shape]Shape
	endpoints map[registry.ProviderName]string
	logger    log.FieldLogger
}

// NewDispatcher creates a Dispatcher with the three built-in shapes.
func NewDispatcher(opts Options) *Dispatcher {
	client := opts.HTTPClient
	if client == nil {
		client = NewHTTPClient()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	endpoints := make(map[registry.ProviderName]string, len(opts.Endpoints))
	for name, url := range opts.Endpoints {
		endpoints[name] = url
	}

	return &Dispatcher{
		shapes: map[registry.Shape]Shape{
			registry.ShapeOpenAI:    NewOpenAIShape(client),
			registry.ShapeGoogle:    NewGoogleShape(client),
			registry.ShapeAnthropic: NewAnthropicShape(client),
		},
		endpoints: endpoints,
		logger:    logger,
	}
}

// Dispatch sends req to the candidate's provider and returns the trimmed answer.
func (d *Dispatcher) Dispatch(ctx context.Context, c Candidate, req Request) (string, error) {
	desc, ok := registry.Lookup(c.Provider)
	if !ok {
		return "", unknownProvider(c)
	}
	shape, ok := d.shapes[desc.Shape]
	if !ok {
		return "", unknownProvider(c)
	}

	endpoint := desc.Endpoint
	if override, ok := d.endpoints[desc.Name]; ok {
		endpoint = override
	}

	call := Call{
		Provider: desc.Name,
		Endpoint: endpoint,
		Model:    c.Model,
		APIKey:   c.APIKey,
		Prompt:   req.FullPrompt(),
		Images:   LoadImages(req.Images, d.logger),
	}

	text, err := shape.Send(ctx, call)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ProviderError{
			Kind:     transroute.KindProtocol,
			Provider: desc.Name,
			Model:    c.Model,
			Message:  "empty response",
		}
	}
	return text, nil
}

func unknownProvider(c Candidate) error {
	return &ProviderError{
		Kind:     transroute.KindUnknownProvider,
		Provider: c.Provider,
		Model:    c.Model,
		Message:  "no wire format for provider " + string(c.Provider),
	}
}

// Verify Dispatcher implements transroute.Dispatcher
var _ transroute.Dispatcher = (*Dispatcher)(nil)
