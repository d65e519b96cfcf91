package transroute

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/ZaguanLabs/transroute/cache"
	"github.com/ZaguanLabs/transroute/registry"
)

// AttemptFunc performs one candidate attempt, including retries and health bookkeeping.
type AttemptFunc func(ctx context.Context, c Candidate) (string, error)

// Resolution is the outcome of resolving a config that has no model.
type Resolution struct {
	Model     string
	Text      string
	FromCache bool     // The cached model answered
	Lines     []string // "{model}: {error}" for every model that failed
	Errors    []error
}

func (r *Resolution) fail(model string, err error) {
	r.Lines = append(r.Lines, model+": "+err.Error())
	r.Errors = append(r.Errors, err)
}

// ModelResolver finds a working model for keys configured without one. The first
// model that answers is cached per provider and key prefix.
type ModelResolver struct {
	cache  ModelCache
	group  singleflight.Group
	logger log.FieldLogger
}

// NewModelResolver creates a resolver over the given cache. A nil cache uses an
// in-memory cache without expiry; a nil logger uses the logrus standard logger.
func NewModelResolver(c ModelCache, logger log.FieldLogger) *ModelResolver {
	if c == nil {
		c = cache.NewInMemoryCache(0)
	}
	if logger == nil {
		logger = defaultLogger()
	}
	return &ModelResolver{cache: c, logger: logger}
}

// Cache returns the underlying model cache.
func (m *ModelResolver) Cache() ModelCache {
	return m.cache
}

// CachedModel returns the model cached for a provider and key, if any.
func (m *ModelResolver) CachedModel(provider registry.ProviderName, apiKey string) (string, bool) {
	return m.cache.Get(ModelCacheKey(provider, apiKey))
}

// CanServe reports whether a key of the provider has any model that could take
// req: the cached one or an entry of the default shortlist.
func (m *ModelResolver) CanServe(provider registry.ProviderName, apiKey string, req Request) bool {
	if model, ok := m.CachedModel(provider, apiKey); ok && model != "" && m.usable(model, provider, req) {
		return true
	}
	for _, model := range registry.DefaultModels(provider) {
		if m.usable(model, provider, req) {
			return true
		}
	}
	return false
}

// Resolve answers req with the base candidate's key, trying the cached model
// first and then the provider's default shortlist. ok is false when every model
// failed; that is an expected outcome and the failures are in the Resolution.
// Identical concurrent requests for the same key share one resolution; a waiter
// whose context is still live re-runs one that ended with the leader's cancellation.
func (m *ModelResolver) Resolve(ctx context.Context, base Candidate, req Request, try AttemptFunc) (Resolution, bool) {
	flight := ModelCacheKey(base.Provider, base.APIKey) + ":" + RequestHash(req)
	for {
		v, _, _ := m.group.Do(flight, func() (interface{}, error) {
			res, ok := m.resolve(ctx, base, req, try)
			return resolveResult{res: res, ok: ok, canceled: !ok && ctx.Err() != nil}, nil
		})
		r := v.(resolveResult)
		if r.ok || !r.canceled || ctx.Err() != nil {
			return r.res, r.ok
		}
	}
}

type resolveResult struct {
	res      Resolution
	ok       bool
	canceled bool // The leading caller's context ended mid-resolution
}

func (m *ModelResolver) resolve(ctx context.Context, base Candidate, req Request, try AttemptFunc) (Resolution, bool) {
	var res Resolution
	key := ModelCacheKey(base.Provider, base.APIKey)

	tried := ""
	if model, ok := m.cache.Get(key); ok && model != "" && m.usable(model, base.Provider, req) {
		tried = model
		c := base
		c.Model = model
		text, err := try(ctx, c)
		if err == nil {
			res.Model, res.Text, res.FromCache = model, text, true
			logModelResolved(m.logger, base.Provider, base.APIKey, model, true)
			return res, true
		}
		res.fail(model, err)
		if ctx.Err() != nil {
			return res, false
		}
		logModelEvicted(m.logger, base.Provider, base.APIKey, model)
		if delErr := m.cache.Delete(key); delErr != nil {
			m.logger.WithError(delErr).Warn("Failed to evict cached model")
		}
	}

	for _, model := range registry.DefaultModels(base.Provider) {
		if ctx.Err() != nil {
			break
		}
		if model == tried || !m.usable(model, base.Provider, req) {
			continue
		}
		c := base
		c.Model = model
		text, err := try(ctx, c)
		if err != nil {
			res.fail(model, err)
			continue
		}
		res.Model, res.Text = model, text
		if setErr := m.cache.Set(key, model); setErr != nil {
			m.logger.WithError(setErr).Warn("Failed to cache resolved model")
		}
		logModelResolved(m.logger, base.Provider, base.APIKey, model, false)
		return res, true
	}

	return res, false
}

func (m *ModelResolver) usable(model string, provider registry.ProviderName, req Request) bool {
	return !req.NeedsVision() || registry.IsVisionCapable(model, provider)
}
