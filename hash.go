package transroute

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ZaguanLabs/transroute/registry"
)

// KeyPrefixLen is how many leading characters of an API key identify it in caches.
const KeyPrefixLen = 12

// KeyPrefix returns the first KeyPrefixLen characters of the trimmed key.
// The full secret is never used as a cache key.
func KeyPrefix(apiKey string) string {
	k := strings.TrimSpace(apiKey)
	if len(k) > KeyPrefixLen {
		return k[:KeyPrefixLen]
	}
	return k
}

// MaskKey renders a key for logs: at most its first four characters.
func MaskKey(apiKey string) string {
	k := strings.TrimSpace(apiKey)
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return k[:4] + "..."
}

// ModelCacheKey generates the working-model cache key for a provider and key.
func ModelCacheKey(provider registry.ProviderName, apiKey string) string {
	return string(provider) + ":" + KeyPrefix(apiKey)
}

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	return hashExact(strings.TrimSpace(text))
}

// hashExact hashes text as given, surrounding whitespace included.
func hashExact(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// RequestHash fingerprints a request's prompt and attachments.
func RequestHash(req Request) string {
	var b strings.Builder
	b.WriteString(req.Prompt)
	for _, img := range req.Images {
		b.WriteString("\x00img:")
		b.WriteString(img)
	}
	for _, f := range req.Files {
		b.WriteString("\x00file:")
		b.WriteString(f.Name)
		b.WriteString("\x00")
		b.WriteString(f.Content)
	}
	return HashText(b.String())
}
