package registry

import "strings"

type prefixRule struct {
	prefix   string
	provider ProviderName
}

var pathPrefixes = []prefixRule{
	{"openrouter/", OpenRouter},
	{"together/", Together},
	{"meta-llama/", Together},
	{"silicon/", SiliconFlow},
	{"sf/", SiliconFlow},
}

// orgPrefixes are case-sensitive; aggregators spell organisations differently.
var orgPrefixes = []prefixRule{
	{"Qwen/", SiliconFlow},
	{"deepseek-ai/", SiliconFlow},
	{"THUDM/", SiliconFlow},
	{"01-ai/", SiliconFlow},
	{"internlm/", SiliconFlow},
	{"Pro/", SiliconFlow},
	{"meta-llama/", Together},
	{"mistralai/", Together},
	{"google/", Together},
}

// keyPrefixes must list longer vendor prefixes before any shorter one they share.
var keyPrefixes = []prefixRule{
	{"gsk_", Groq},
	{"sk-ant-", Anthropic},
	{"xai-", XAI},
	{"sk-or-v1-", OpenRouter},
	{"pplx-", Perplexity},
	{"hf_", HuggingFace},
}

var mistralPrefixes = []string{"mistral-", "codestral-", "pixtral-", "ministral-", "open-mistral", "open-mixtral"}

var groqSuffixes = []string{"-32768", "-8192", "-versatile", "-instant", "-preview", "-specdec"}

var groqPrefixes = []string{"llama3-", "llama-3", "gemma-", "gemma2-", "mixtral-", "whisper-", "distil-"}

// catalogue maps a lowercased model name to its provider.
var catalogue = func() map[string]ProviderName {
	m := make(map[string]ProviderName)
	for _, d := range descriptors {
		for _, model := range d.Models {
			key := strings.ToLower(model)
			if _, dup := m[key]; !dup {
				m[key] = d.Name
			}
		}
	}
	return m
}()

// Identify infers the provider of a configuration from its model name, API key
// and optional hint. A non-auto hint always wins. When nothing matches it falls
// back to Google so that it never fails; callers that need certainty should pass
// an explicit hint.
func Identify(model, apiKey string, hint ProviderName) ProviderName {
	if !hint.IsAuto() {
		return ProviderName(strings.ToLower(strings.TrimSpace(string(hint))))
	}

	model = strings.TrimSpace(model)
	lower := strings.ToLower(model)
	apiKey = strings.TrimSpace(apiKey)

	if p, ok := catalogue[lower]; ok && lower != "" {
		return p
	}

	for _, r := range pathPrefixes {
		if strings.HasPrefix(lower, r.prefix) {
			return r.provider
		}
	}

	if strings.Contains(model, "/") {
		for _, r := range orgPrefixes {
			if strings.HasPrefix(model, r.prefix) {
				return r.provider
			}
		}
	}

	for _, r := range keyPrefixes {
		if strings.HasPrefix(apiKey, r.prefix) {
			return r.provider
		}
	}

	if p, ok := identifyByVendor(lower); ok {
		return p
	}
	if p, ok := identifyByFormat(model, lower); ok {
		return p
	}

	switch {
	case strings.Contains(lower, "qwen"), strings.HasPrefix(lower, "yi-"):
		return SiliconFlow
	case strings.Contains(lower, "llama"), strings.Contains(lower, "mixtral"),
		strings.Contains(lower, "gemma"), strings.Contains(lower, "whisper"):
		return Groq
	}

	return Google
}

func identifyByVendor(lower string) (ProviderName, bool) {
	switch {
	case strings.Contains(lower, "gemini"):
		return Google, true
	case strings.Contains(lower, "claude"):
		return Anthropic, true
	case strings.Contains(lower, "gpt"), strings.HasPrefix(lower, "o1"),
		strings.HasPrefix(lower, "o3"), strings.Contains(lower, "dall-e"):
		return OpenAI, true
	case strings.Contains(lower, "grok"):
		return XAI, true
	case strings.HasPrefix(lower, "deepseek-"):
		return DeepSeek, true
	}
	for _, p := range mistralPrefixes {
		if strings.HasPrefix(lower, p) {
			return Mistral, true
		}
	}
	if strings.Contains(lower, "sonar") {
		return Perplexity, true
	}
	return "", false
}

func identifyByFormat(model, lower string) (ProviderName, bool) {
	for _, s := range groqSuffixes {
		if strings.HasSuffix(lower, s) {
			return Groq, true
		}
	}
	if !strings.Contains(lower, "/") {
		for _, p := range groqPrefixes {
			if strings.HasPrefix(lower, p) {
				return Groq, true
			}
		}
	}
	if strings.HasPrefix(model, "Meta-Llama-") {
		return SambaNova, true
	}
	if strings.HasPrefix(lower, "llama3.") {
		return Cerebras, true
	}
	return "", false
}
