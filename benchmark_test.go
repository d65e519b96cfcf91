package transroute_test

import (
	"context"
	"testing"
	"time"

	"github.com/ZaguanLabs/transroute"
	"github.com/ZaguanLabs/transroute/cache"
	"github.com/ZaguanLabs/transroute/provider"
	"github.com/ZaguanLabs/transroute/registry"
)

// Benchmarks for the per-call hot paths

func BenchmarkHashText(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		transroute.HashText(text)
	}
}

func BenchmarkModelCacheKey(b *testing.B) {
	key := "gsk_0123456789abcdefghijklmnopqrstuvwxyz"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		transroute.ModelCacheKey(registry.Groq, key)
	}
}

func BenchmarkIdentify_Catalogue(b *testing.B) {
	for i := 0; i < b.N; i++ {
		registry.Identify("gemini-2.0-flash", "", registry.Auto)
	}
}

func BenchmarkIdentify_Fallback(b *testing.B) {
	for i := 0; i < b.N; i++ {
		registry.Identify("some-unlisted-model-7b", "abc", registry.Auto)
	}
}

func BenchmarkIsVisionCapable(b *testing.B) {
	for i := 0; i < b.N; i++ {
		registry.IsVisionCapable("llama-3.2-90b-vision-preview", registry.Groq)
	}
}

func BenchmarkInMemoryCache_Get(b *testing.B) {
	c := cache.NewInMemoryCache(3600)
	c.Set("groq:gsk_01234567", "llama-3.1-8b-instant")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("groq:gsk_01234567")
	}
}

func BenchmarkInMemoryCache_Set(b *testing.B) {
	c := cache.NewInMemoryCache(3600)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set("groq:gsk_01234567", "llama-3.1-8b-instant")
	}
}

func BenchmarkHealthTracker_PrioritySorted(b *testing.B) {
	h := transroute.NewHealthTracker()
	providers := registry.Names()
	for i, p := range providers {
		if i%3 == 0 {
			h.RecordFailure(p)
		} else {
			h.RecordSuccess(p, time.Duration(i)*100*time.Millisecond)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.PrioritySorted(providers)
	}
}

func BenchmarkRouter_Translate(b *testing.B) {
	r := transroute.NewRouter(provider.NewMockDispatcher(), transroute.WithLogger(nullLogger()))
	r.Configure([]transroute.ProviderConfig{
		{APIKey: "k1", Model: "gemini-2.0-flash"},
	}, nil)

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Translate(ctx, "Hello"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetLanguageName(b *testing.B) {
	codes := []string{"es_ES", "ja", "zh-TW", "French", "pt_BR"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		transroute.GetLanguageName(codes[i%len(codes)])
	}
}
