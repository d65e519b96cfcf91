package registry

import (
	"path"
	"strings"
)

// IsVisionCapable reports whether a model of the given provider accepts image input.
// It depends only on its arguments.
func IsVisionCapable(model string, provider ProviderName) bool {
	d, ok := Lookup(provider)
	if !ok || len(d.VisionPatterns) == 0 {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(model))
	if lower == "" {
		return false
	}
	for _, pattern := range d.VisionPatterns {
		if matched, err := path.Match(pattern, lower); err == nil && matched {
			return true
		}
	}
	return strings.Contains(lower, "vision") || strings.Contains(lower, "pixtral")
}

// VisionModels returns the catalogue entries of a provider that accept images.
func VisionModels(provider ProviderName) []string {
	d, ok := Lookup(provider)
	if !ok {
		return nil
	}
	var out []string
	for _, m := range d.Models {
		if IsVisionCapable(m, d.Name) {
			out = append(out, m)
		}
	}
	return out
}
