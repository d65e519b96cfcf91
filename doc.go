// Package transroute routes translation prompts across many AI providers.
//
// A Router holds an ordered list of user keys, each optionally pinned to a
// model and provider. Every call builds candidates from that list, drops the
// ones that cannot serve the request (for example, non-vision models for an
// image), orders the rest by provider health and tries them in turn. Each
// candidate gets its own retry budget for transient failures. Keys without a
// model are resolved from the provider's shortlist and the working model is
// cached. When no key is configured the Router can fall back to a shared,
// quota-limited trial relay.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/transroute"
//	    "github.com/ZaguanLabs/transroute/provider"
//	)
//
//	func main() {
//	    r := transroute.NewRouter(provider.NewDispatcher(provider.Options{}))
//	    r.Configure([]transroute.ProviderConfig{
//	        {APIKey: os.Getenv("GROQ_API_KEY")},
//	        {APIKey: os.Getenv("GEMINI_API_KEY"), Model: "gemini-2.0-flash"},
//	    }, nil)
//
//	    text, err := r.TranslateText(context.Background(), "Hello", "fr", "")
//	    if err != nil {
//	        log.Fatal(transroute.UserMessage(err))
//	    }
//	    fmt.Println(text) // Bonjour
//	}
package transroute
