package provider

import (
	"context"
	"net/http"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ZaguanLabs/transroute"
	"github.com/ZaguanLabs/transroute/registry"
)

// relayProvider labels relay failures in diagnostics.
const relayProvider registry.ProviderName = "trial"

// RelayConfig configures an HTTPRelay.
type RelayConfig struct {
	URL        string
	HTTPClient *http.Client // Default: NewHTTPClient()
	Logger     log.FieldLogger
}

// HTTPRelay forwards trial prompts to the shared relay endpoint.
type HTTPRelay struct {
	url    string
	client *http.Client
	logger log.FieldLogger
}

// NewRelay creates a relay client. It returns nil when no URL is configured,
// which leaves trial mode disabled.
func NewRelay(cfg RelayConfig) *HTTPRelay {
	if cfg.URL == "" {
		return nil
	}
	client := cfg.HTTPClient
	if client == nil {
		client = NewHTTPClient()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &HTTPRelay{url: cfg.URL, client: client, logger: logger}
}

// Complete posts {"prompt","device_id"} and returns the relay's text.
func (r *HTTPRelay) Complete(ctx context.Context, prompt, deviceID string) (string, error) {
	if r == nil {
		return "", transroute.ErrTrialDisabled
	}
	body, err := sjson.SetBytes([]byte(`{}`), "prompt", prompt)
	if err == nil {
		body, err = sjson.SetBytes(body, "device_id", deviceID)
	}
	if err != nil {
		return "", malformed(relayProvider, "", "building request: %v", err)
	}

	requestID := uuid.NewString()
	headers := map[string]string{
		"X-Device-ID":  deviceID,
		"X-Request-ID": requestID,
	}

	data, err := postJSON(ctx, r.client, r.url, headers, body, relayProvider, "")
	if err != nil {
		r.logger.WithField("request_id", requestID).WithError(err).Debug("Relay call failed")
		return "", err
	}

	for _, path := range []string{"text", "translation"} {
		if v := gjson.GetBytes(data, path); v.Type == gjson.String && v.String() != "" {
			return v.String(), nil
		}
	}
	return "", malformed(relayProvider, "", "relay response has no text")
}

// DeviceID returns a stable, app-scoped identifier for this machine, or a
// random one when the machine id cannot be read.
func DeviceID() string {
	id, err := machineid.ProtectedID(transroute.Name)
	if err != nil || id == "" {
		return uuid.NewString()
	}
	return id
}

// Verify HTTPRelay implements transroute.Relay
var _ transroute.Relay = (*HTTPRelay)(nil)
