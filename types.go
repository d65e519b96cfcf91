package transroute

import (
	"context"
	"strings"

	"github.com/ZaguanLabs/transroute/registry"
)

// ProviderConfig is one user-supplied key, optionally pinned to a model and provider.
type ProviderConfig struct {
	Model    string `yaml:"model" json:"model"`       // Empty means auto-resolve
	APIKey   string `yaml:"api_key" json:"api_key"`   // Required; configs without a key are skipped
	Provider string `yaml:"provider" json:"provider"` // Empty or "Auto" means infer
}

// IsAuto reports whether the config leaves the model to be discovered.
func (c ProviderConfig) IsAuto() bool {
	return strings.TrimSpace(c.Model) == ""
}

// Hint returns the provider hint as a registry name.
func (c ProviderConfig) Hint() registry.ProviderName {
	return registry.ProviderName(strings.TrimSpace(c.Provider))
}

// Candidate is a concrete (provider, model, key) tuple considered for one attempt.
type Candidate struct {
	Index    int // 1-based position of the source config
	Provider registry.ProviderName
	Model    string
	APIKey   string
}

// FileText is the extracted text of an attached file.
type FileText struct {
	Name    string
	Content string
}

// Request is the payload of one logical translate call.
type Request struct {
	Prompt string
	Images []string   // Image file paths, in order
	Files  []FileText // Attached file texts, in order
}

// NeedsVision reports whether the request carries images.
func (r Request) NeedsVision() bool {
	return len(r.Images) > 0
}

// IsMultimodal reports whether the request carries images or files.
func (r Request) IsMultimodal() bool {
	return len(r.Images) > 0 || len(r.Files) > 0
}

// Dispatcher sends a request to one candidate and returns the plain-text answer.
type Dispatcher interface {
	Dispatch(ctx context.Context, c Candidate, req Request) (string, error)
}

// ModelCache stores the last working model per provider and key prefix.
type ModelCache interface {
	// Get retrieves a cached model. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a model in the cache.
	Set(key string, value string) error

	// Delete removes a cached model.
	Delete(key string) error
}

// Relay forwards a prompt to the shared trial endpoint.
type Relay interface {
	Complete(ctx context.Context, prompt, deviceID string) (string, error)
}
