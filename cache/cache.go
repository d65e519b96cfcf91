// Package cache stores the last working model per provider and API key prefix,
// so keys configured without a model skip discovery on later calls.
package cache

// ModelCache is the interface for working-model caches.
type ModelCache interface {
	// Get retrieves a cached model. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a model in the cache.
	Set(key string, model string) error

	// Delete removes a model, typically after it stopped answering.
	Delete(key string) error
}

// Lister is implemented by caches whose contents can be enumerated for export.
type Lister interface {
	// Entries returns all live entries as key-model pairs.
	Entries() (map[string]string, error)
}
