// Package registry holds the static provider catalogue: endpoints, request shapes,
// model catalogues, key prefixes and vision patterns for every supported AI provider.
//
// Everything in this package is immutable after init and safe for concurrent use.
package registry

import "strings"

// ProviderName identifies an AI provider (e.g. "google", "groq").
type ProviderName string

const (
	Auto        ProviderName = "auto"
	Google      ProviderName = "google"
	OpenAI      ProviderName = "openai"
	Anthropic   ProviderName = "anthropic"
	Groq        ProviderName = "groq"
	XAI         ProviderName = "xai"
	DeepSeek    ProviderName = "deepseek"
	Mistral     ProviderName = "mistral"
	Perplexity  ProviderName = "perplexity"
	Cerebras    ProviderName = "cerebras"
	SambaNova   ProviderName = "sambanova"
	Together    ProviderName = "together"
	SiliconFlow ProviderName = "siliconflow"
	OpenRouter  ProviderName = "openrouter"
	HuggingFace ProviderName = "huggingface"
)

// IsAuto reports whether the name asks for provider inference.
func (p ProviderName) IsAuto() bool {
	return p == "" || strings.EqualFold(string(p), string(Auto))
}

// Shape is the wire format family a provider speaks.
type Shape int

const (
	// ShapeOpenAI is the chat-completions format shared by most providers.
	ShapeOpenAI Shape = iota
	// ShapeGoogle is the Gemini generateContent format.
	ShapeGoogle
	// ShapeAnthropic is the Messages API format with content blocks.
	ShapeAnthropic
)

func (s Shape) String() string {
	switch s {
	case ShapeGoogle:
		return "google"
	case ShapeAnthropic:
		return "anthropic"
	default:
		return "openai"
	}
}

// Descriptor is the static description of one provider.
type Descriptor struct {
	Name        ProviderName
	DisplayName string
	// Endpoint is the base URL for OpenAI-compatible providers, or a full URL
	// template containing {model} for Google.
	Endpoint string
	Shape    Shape
	// Models is the known model catalogue, in display order.
	Models []string
	// KeyPrefixes are API key prefixes unique to this provider.
	KeyPrefixes []string
	// VisionPatterns are lowercase glob patterns of vision-capable models.
	// A provider with no patterns never accepts images.
	VisionPatterns []string
	// DefaultModels is the shortlist probed when a key has no model configured.
	DefaultModels []string
}

// descriptors is ordered; identification walks it front to back.
var descriptors = []Descriptor{
	{
		Name:        Google,
		DisplayName: "Google (Gemini)",
		Endpoint:    "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent",
		Shape:       ShapeGoogle,
		Models: []string{
			"gemini-2.5-pro", "gemini-2.5-flash", "gemini-2.0-flash", "gemini-2.0-flash-lite",
			"gemini-1.5-pro", "gemini-1.5-flash", "gemini-1.5-flash-8b",
		},
		VisionPatterns: []string{"gemini-*"},
		DefaultModels:  []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-2.0-flash-lite"},
	},
	{
		Name:        OpenAI,
		DisplayName: "OpenAI",
		Endpoint:    "https://api.openai.com/v1",
		Shape:       ShapeOpenAI,
		Models: []string{
			"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-4", "gpt-3.5-turbo",
			"gpt-4.1", "gpt-4.1-mini", "o1", "o1-mini", "o3-mini",
		},
		VisionPatterns: []string{"gpt-4o*", "gpt-4-turbo*", "gpt-4.1*", "gpt-4-vision*", "o1", "o1-20*"},
		DefaultModels:  []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"},
	},
	{
		Name:        Anthropic,
		DisplayName: "Anthropic (Claude)",
		Endpoint:    "https://api.anthropic.com/v1/messages",
		Shape:       ShapeAnthropic,
		Models: []string{
			"claude-3-5-sonnet-latest", "claude-3-5-haiku-latest", "claude-3-opus-latest",
			"claude-3-5-sonnet-20241022", "claude-3-haiku-20240307",
		},
		KeyPrefixes:    []string{"sk-ant-"},
		VisionPatterns: []string{"claude-3*", "claude-*-4*", "claude-sonnet-*", "claude-opus-*"},
		DefaultModels:  []string{"claude-3-5-haiku-latest", "claude-3-5-sonnet-latest", "claude-3-haiku-20240307"},
	},
	{
		Name:        Groq,
		DisplayName: "Groq",
		Endpoint:    "https://api.groq.com/openai/v1",
		Shape:       ShapeOpenAI,
		Models: []string{
			"llama-3.1-70b-versatile", "llama-3.1-8b-instant", "llama-3.2-1b-preview",
			"llama-3.2-3b-preview", "llama-3.2-11b-vision-preview", "llama-3.2-90b-vision-preview",
			"llama-3.3-70b-versatile", "llama-3.3-70b-specdec",
			"llama3-70b-8192", "llama3-8b-8192", "llama-guard-3-8b",
			"mixtral-8x7b-32768", "gemma-7b-it", "gemma2-9b-it",
			"whisper-large-v3", "whisper-large-v3-turbo", "distil-whisper-large-v3-en",
		},
		KeyPrefixes:    []string{"gsk_"},
		VisionPatterns: []string{"llama-3.2-*-vision-*", "meta-llama/llama-4-*"},
		DefaultModels:  []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant", "gemma2-9b-it"},
	},
	{
		Name:           XAI,
		DisplayName:    "xAI (Grok)",
		Endpoint:       "https://api.x.ai/v1",
		Shape:          ShapeOpenAI,
		Models:         []string{"grok-beta", "grok-vision-beta", "grok-2", "grok-2-vision", "grok-2-1212"},
		KeyPrefixes:    []string{"xai-"},
		VisionPatterns: []string{"grok-*vision*", "grok-4*"},
		DefaultModels:  []string{"grok-2", "grok-beta"},
	},
	{
		Name:          DeepSeek,
		DisplayName:   "DeepSeek",
		Endpoint:      "https://api.deepseek.com",
		Shape:         ShapeOpenAI,
		Models:        []string{"deepseek-chat", "deepseek-coder", "deepseek-reasoner"},
		DefaultModels: []string{"deepseek-chat", "deepseek-reasoner"},
	},
	{
		Name:        Mistral,
		DisplayName: "Mistral AI",
		Endpoint:    "https://api.mistral.ai/v1",
		Shape:       ShapeOpenAI,
		Models: []string{
			"mistral-large-latest", "mistral-large-2411", "mistral-large-2407",
			"mistral-medium-latest", "mistral-small-latest", "mistral-small-2409",
			"ministral-8b-latest", "ministral-3b-latest",
			"open-mistral-nemo", "open-mistral-7b", "open-mixtral-8x7b", "open-mixtral-8x22b",
			"codestral-latest", "codestral-mamba-latest",
			"pixtral-large-latest", "pixtral-12b-latest",
		},
		VisionPatterns: []string{"pixtral-*", "mistral-small-2503*", "mistral-medium-*"},
		DefaultModels:  []string{"mistral-small-latest", "open-mistral-nemo", "mistral-large-latest"},
	},
	{
		Name:        Perplexity,
		DisplayName: "Perplexity",
		Endpoint:    "https://api.perplexity.ai",
		Shape:       ShapeOpenAI,
		Models: []string{
			"sonar", "sonar-pro", "sonar-reasoning", "sonar-reasoning-pro",
			"llama-3.1-sonar-small-128k-online", "llama-3.1-sonar-large-128k-online",
			"llama-3.1-sonar-huge-128k-online",
		},
		KeyPrefixes:   []string{"pplx-"},
		DefaultModels: []string{"sonar", "sonar-pro"},
	},
	{
		Name:          Cerebras,
		DisplayName:   "Cerebras",
		Endpoint:      "https://api.cerebras.ai/v1",
		Shape:         ShapeOpenAI,
		Models:        []string{"llama3.1-8b", "llama3.1-70b", "llama-3.3-70b"},
		DefaultModels: []string{"llama3.1-8b", "llama-3.3-70b"},
	},
	{
		Name:        SambaNova,
		DisplayName: "SambaNova",
		Endpoint:    "https://api.sambanova.ai/v1",
		Shape:       ShapeOpenAI,
		Models: []string{
			"Meta-Llama-3.1-8B-Instruct", "Meta-Llama-3.1-70B-Instruct",
			"Meta-Llama-3.1-405B-Instruct", "Meta-Llama-3.2-1B-Instruct",
			"Meta-Llama-3.2-3B-Instruct", "Meta-Llama-3.3-70B-Instruct",
		},
		VisionPatterns: []string{"llama-3.2-*-vision-*"},
		DefaultModels:  []string{"Meta-Llama-3.3-70B-Instruct", "Meta-Llama-3.1-8B-Instruct"},
	},
	{
		Name:        Together,
		DisplayName: "Together AI",
		Endpoint:    "https://api.together.xyz/v1",
		Shape:       ShapeOpenAI,
		Models: []string{
			"meta-llama/Llama-3.2-3B-Instruct-Turbo", "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo",
			"meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo", "meta-llama/Meta-Llama-3.1-405B-Instruct-Turbo",
			"meta-llama/Llama-3.3-70B-Instruct-Turbo",
			"mistralai/Mixtral-8x7B-Instruct-v0.1", "mistralai/Mistral-7B-Instruct-v0.3",
			"Qwen/Qwen2.5-7B-Instruct-Turbo", "Qwen/Qwen2.5-72B-Instruct-Turbo",
			"google/gemma-2-9b-it", "google/gemma-2-27b-it",
			"deepseek-ai/deepseek-llm-67b-chat",
		},
		VisionPatterns: []string{"meta-llama/llama-3.2-*-vision-*", "meta-llama/llama-4-*", "qwen/qwen2-vl-*", "qwen/qwen2.5-vl-*"},
		DefaultModels:  []string{"meta-llama/Llama-3.3-70B-Instruct-Turbo", "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo"},
	},
	{
		Name:        SiliconFlow,
		DisplayName: "SiliconFlow",
		Endpoint:    "https://api.siliconflow.cn/v1",
		Shape:       ShapeOpenAI,
		Models: []string{
			"Qwen/Qwen2.5-7B-Instruct", "Qwen/Qwen2.5-14B-Instruct", "Qwen/Qwen2.5-32B-Instruct",
			"Qwen/Qwen2.5-72B-Instruct", "Qwen/Qwen2.5-Coder-7B-Instruct",
			"Qwen/QwQ-32B-Preview", "Qwen/Qwen2-VL-72B-Instruct",
			"deepseek-ai/DeepSeek-V3", "deepseek-ai/DeepSeek-V2.5", "deepseek-ai/DeepSeek-Coder-V2-Instruct",
			"THUDM/glm-4-9b-chat", "internlm/internlm2_5-7b-chat",
			"01-ai/Yi-1.5-9B-Chat", "01-ai/Yi-1.5-34B-Chat",
			"Pro/Qwen/Qwen2.5-7B-Instruct", "Pro/deepseek-ai/DeepSeek-V3",
		},
		VisionPatterns: []string{"qwen/qwen2-vl-*", "qwen/qwen2.5-vl-*", "pro/qwen/qwen2-vl-*"},
		DefaultModels:  []string{"Qwen/Qwen2.5-7B-Instruct", "deepseek-ai/DeepSeek-V3", "THUDM/glm-4-9b-chat"},
	},
	{
		Name:        OpenRouter,
		DisplayName: "OpenRouter",
		Endpoint:    "https://openrouter.ai/api/v1",
		Shape:       ShapeOpenAI,
		Models: []string{
			"openrouter/auto", "openai/gpt-4o-mini", "anthropic/claude-3.5-sonnet",
			"google/gemini-2.0-flash-001", "meta-llama/llama-3.3-70b-instruct:free",
		},
		KeyPrefixes:    []string{"sk-or-v1-"},
		VisionPatterns: []string{"openai/gpt-4o*", "anthropic/claude-3*", "google/gemini-*", "openrouter/auto"},
		DefaultModels:  []string{"openai/gpt-4o-mini", "google/gemini-2.0-flash-001", "meta-llama/llama-3.3-70b-instruct:free"},
	},
	{
		Name:        HuggingFace,
		DisplayName: "Hugging Face",
		Endpoint:    "https://router.huggingface.co/v1",
		Shape:       ShapeOpenAI,
		Models: []string{
			"meta-llama/Llama-3.1-8B-Instruct", "Qwen/Qwen2.5-72B-Instruct:novita",
			"HuggingFaceH4/zephyr-7b-beta",
		},
		KeyPrefixes:    []string{"hf_"},
		VisionPatterns: []string{"qwen/qwen2.5-vl-*", "meta-llama/llama-3.2-*-vision-*"},
		DefaultModels:  []string{"meta-llama/Llama-3.1-8B-Instruct", "HuggingFaceH4/zephyr-7b-beta"},
	},
}

var byName = func() map[ProviderName]int {
	m := make(map[ProviderName]int, len(descriptors))
	for i, d := range descriptors {
		m[d.Name] = i
	}
	return m
}()

// Descriptors returns a copy of the registry in identification order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Names returns every known provider name in registry order.
func Names() []ProviderName {
	names := make([]ProviderName, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}
	return names
}

// Lookup returns the descriptor for a provider name. Matching is case-insensitive.
func Lookup(name ProviderName) (Descriptor, bool) {
	i, ok := byName[ProviderName(strings.ToLower(strings.TrimSpace(string(name))))]
	if !ok {
		return Descriptor{}, false
	}
	return descriptors[i], true
}

// ParseProvider normalizes a user-facing provider label ("OpenAI", "Auto", "xAI").
// It returns false when the label names no known provider and is not Auto.
func ParseProvider(label string) (ProviderName, bool) {
	name := ProviderName(strings.ToLower(strings.TrimSpace(label)))
	if name.IsAuto() {
		return Auto, true
	}
	if _, ok := byName[name]; ok {
		return name, true
	}
	return name, false
}

// DisplayName returns the human-readable provider name used in the UI.
func DisplayName(name ProviderName) string {
	if d, ok := Lookup(name); ok {
		return d.DisplayName
	}
	s := string(name)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DefaultModels returns the auto-resolution shortlist for a provider.
func DefaultModels(name ProviderName) []string {
	d, ok := Lookup(name)
	if !ok {
		return nil
	}
	out := make([]string, len(d.DefaultModels))
	copy(out, d.DefaultModels)
	return out
}
