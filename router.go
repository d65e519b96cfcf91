package transroute

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ZaguanLabs/transroute/registry"
)

// MultimodalTimeout is the minimum attempt timeout for requests with attachments.
const MultimodalTimeout = 60 * time.Second

const probePrompt = "Say OK"

// Router runs one logical translate call across the configured keys: it builds
// candidates, drops those that cannot handle the request, orders the rest by
// provider health and returns the first answer.
type Router struct {
	dispatcher Dispatcher
	snapshot   atomic.Pointer[routerConfig]
	retryCfg   RetryConfig
	retrier    *Retrier
	cache      ModelCache
	resolver   *ModelResolver
	trial      *TrialClient
	trialMode  atomic.Bool
	logger     log.FieldLogger
	now        func() time.Time
}

// routerConfig is an immutable configuration snapshot.
type routerConfig struct {
	configs []ProviderConfig
	health  *HealthTracker
}

// RouterOption is a functional option for configuring the Router.
type RouterOption func(*Router)

// WithLogger sets the logger.
func WithLogger(l log.FieldLogger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// WithRetryConfig sets the retry policy for every candidate.
func WithRetryConfig(cfg RetryConfig) RouterOption {
	return func(r *Router) {
		r.retryCfg = cfg
	}
}

// WithModelCache sets the cache used for auto-resolved models.
func WithModelCache(c ModelCache) RouterOption {
	return func(r *Router) {
		r.cache = c
	}
}

// WithTrialClient sets the client used while trial mode is on.
func WithTrialClient(t *TrialClient) RouterOption {
	return func(r *Router) {
		r.trial = t
	}
}

// WithClock sets the time source used to measure latency.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		r.now = now
	}
}

// NewRouter creates a Router that sends requests through d.
func NewRouter(d Dispatcher, opts ...RouterOption) *Router {
	r := &Router{
		dispatcher: d,
		retryCfg:   DefaultRetryConfig(),
		logger:     defaultLogger(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.retrier = NewRetrier(r.retryCfg, r.logger)
	r.resolver = NewModelResolver(r.cache, r.logger)
	if r.trial == nil {
		r.trial = NewTrialClient(nil, nil, WithTrialLogger(r.logger))
	}
	r.snapshot.Store(&routerConfig{health: NewHealthTracker()})
	return r
}

// Configure replaces the configuration list and health tracker. Calls already
// running keep the snapshot they started with. A nil tracker keeps the current one.
func (r *Router) Configure(configs []ProviderConfig, health *HealthTracker) {
	if health == nil {
		health = r.snapshot.Load().health
	}
	cp := make([]ProviderConfig, len(configs))
	copy(cp, configs)
	r.snapshot.Store(&routerConfig{configs: cp, health: health})
}

// Configs returns a copy of the current configuration list.
func (r *Router) Configs() []ProviderConfig {
	snap := r.snapshot.Load()
	cp := make([]ProviderConfig, len(snap.configs))
	copy(cp, snap.configs)
	return cp
}

// Health returns the tracker in use.
func (r *Router) Health() *HealthTracker {
	return r.snapshot.Load().health
}

// Resolver returns the auto-model resolver.
func (r *Router) Resolver() *ModelResolver {
	return r.resolver
}

// Translate sends a text prompt.
func (r *Router) Translate(ctx context.Context, prompt string) (string, error) {
	if r.trialMode.Load() {
		return r.trial.Translate(ctx, prompt)
	}
	return r.route(ctx, Request{Prompt: prompt})
}

// TranslateText translates text into targetLang, a language name or code.
func (r *Router) TranslateText(ctx context.Context, text, targetLang, customPrompt string) (string, error) {
	return r.Translate(ctx, BuildTranslationPrompt(text, targetLang, customPrompt))
}

// TranslateImage sends a prompt with one image. Only vision-capable candidates are tried.
func (r *Router) TranslateImage(ctx context.Context, prompt, imagePath string) (string, error) {
	return r.TranslateMultimodal(ctx, prompt, []string{imagePath}, nil)
}

// TranslateMultimodal sends a prompt with images and file texts, in the given order.
func (r *Router) TranslateMultimodal(ctx context.Context, prompt string, imagePaths []string, files []FileText) (string, error) {
	if r.trialMode.Load() {
		return "", ErrTrialFeature
	}
	return r.route(ctx, Request{Prompt: prompt, Images: imagePaths, Files: files})
}

// TestConnection makes one probe call with a single config, without retries or
// failover. It returns the model that answered.
func (r *Router) TestConnection(ctx context.Context, cfg ProviderConfig) (string, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return "", ErrNotConfigured
	}
	provider, err := r.identify(0, cfg)
	if err != nil {
		return "", err
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		if cached, ok := r.resolver.CachedModel(provider, key); ok {
			model = cached
		} else if shortlist := registry.DefaultModels(provider); len(shortlist) > 0 {
			model = shortlist[0]
		}
	}

	c := Candidate{Provider: provider, Model: model, APIKey: key}
	probe := NewRetrier(RetryConfig{}, r.logger)
	_, err = probe.Execute(ctx, r.Health().AdaptiveTimeout(provider), func(ctx context.Context) (string, error) {
		return r.dispatcher.Dispatch(ctx, c, Request{Prompt: probePrompt})
	})
	if err != nil {
		return "", err
	}
	return model, nil
}

// RecheckKeys probes every configured key and reports whether any of them works,
// so the caller can leave trial mode.
func (r *Router) RecheckKeys(ctx context.Context) bool {
	for _, cfg := range r.snapshot.Load().configs {
		if strings.TrimSpace(cfg.APIKey) == "" {
			continue
		}
		if _, err := r.TestConnection(ctx, cfg); err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

// IsVisionCapable reports whether model accepts images. provider may be a
// display label or "Auto", in which case it is inferred from the model.
func (r *Router) IsVisionCapable(model, provider string) bool {
	name := registry.Identify(model, "", registry.ProviderName(provider))
	return registry.IsVisionCapable(model, name)
}

// SetTrialMode switches trial mode on or off.
func (r *Router) SetTrialMode(on bool) {
	r.trialMode.Store(on)
}

// TrialMode reports whether trial mode is on.
func (r *Router) TrialMode() bool {
	return r.trialMode.Load()
}

// IsQuotaAvailable reports whether another trial call may start today.
func (r *Router) IsQuotaAvailable() bool {
	return r.trial.Quota().IsAvailable()
}

// Remaining returns the trial calls left today.
func (r *Router) Remaining() int {
	return r.trial.Quota().Remaining()
}

// DailyLimit returns the trial daily limit.
func (r *Router) DailyLimit() int {
	return r.trial.Quota().DailyLimit()
}

// QuotaState returns the trial quota state for persistence.
func (r *Router) QuotaState() QuotaState {
	return r.trial.Quota().State()
}

// RestoreQuota seeds the trial quota from persisted state.
func (r *Router) RestoreQuota(s QuotaState) {
	r.trial.Quota().Restore(s)
}

func (r *Router) identify(index int, cfg ProviderConfig) (registry.ProviderName, error) {
	hint := cfg.Hint()
	provider := registry.Identify(cfg.Model, cfg.APIKey, hint)
	if _, ok := registry.Lookup(provider); !ok {
		return "", &ProviderError{
			Kind:     KindUnknownProvider,
			Provider: provider,
			Model:    cfg.Model,
			Message:  fmt.Sprintf("key #%d names provider %q", index, cfg.Provider),
		}
	}
	return provider, nil
}

func (r *Router) route(ctx context.Context, req Request) (string, error) {
	snap := r.snapshot.Load()
	agg := &AggregateError{}
	try := r.attempt(snap.health, req)

	var explicit []Candidate
	usable := 0
	autoCapable := false

	for i, cfg := range snap.configs {
		idx := i + 1
		key := strings.TrimSpace(cfg.APIKey)
		if key == "" {
			logCandidateSkipped(r.logger, idx, "no api key")
			continue
		}
		usable++

		provider, err := r.identify(idx, cfg)
		if err != nil {
			return "", err
		}

		if !cfg.IsAuto() {
			explicit = append(explicit, Candidate{
				Index:    idx,
				Provider: provider,
				Model:    strings.TrimSpace(cfg.Model),
				APIKey:   key,
			})
			continue
		}

		// Auto configs are resolved right away; there is no model to rank yet.
		if req.NeedsVision() && !r.resolver.CanServe(provider, key, req) {
			logCandidateSkipped(r.logger, idx, "no vision model to resolve")
			continue
		}
		autoCapable = true

		res, ok := r.resolver.Resolve(ctx, Candidate{Index: idx, Provider: provider, APIKey: key}, req, try)
		if ok {
			return res.Text, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if len(res.Lines) == 0 {
			agg.add(fmt.Sprintf("Key #%d: no model could be selected for %s", idx, registry.DisplayName(provider)), nil)
		}
		for j, line := range res.Lines {
			agg.add(fmt.Sprintf("Key #%d: %s", idx, line), res.Errors[j])
		}
	}

	if usable == 0 {
		return "", ErrNotConfigured
	}

	if req.NeedsVision() {
		explicit = filterVision(explicit)
		if len(explicit) == 0 && !autoCapable {
			return "", ErrNoCapableProvider
		}
	}

	for _, c := range r.sortByHealth(snap.health, explicit) {
		text, err := try(ctx, c)
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		agg.add(c.Model+": "+err.Error(), err)
	}

	return "", agg
}

// attempt returns the per-candidate call: adaptive timeout, retries and health bookkeeping.
func (r *Router) attempt(health *HealthTracker, req Request) AttemptFunc {
	return func(ctx context.Context, c Candidate) (string, error) {
		timeout := health.AdaptiveTimeout(c.Provider)
		if req.IsMultimodal() && timeout < MultimodalTimeout {
			timeout = MultimodalTimeout
		}

		entry := r.logger.WithFields(log.Fields{
			FieldProvider: string(c.Provider),
			FieldModel:    c.Model,
			FieldKeyIndex: c.Index,
			FieldTimeout:  timeout.String(),
		})

		var latency time.Duration
		text, err := r.retrier.WithLogger(entry).Execute(ctx, timeout, func(ctx context.Context) (string, error) {
			start := r.now()
			text, err := r.dispatcher.Dispatch(ctx, c, req)
			latency = r.now().Sub(start)
			return text, err
		})
		if err != nil {
			if ctx.Err() == nil {
				health.RecordFailure(c.Provider)
			}
			logAttemptFailed(r.logger, c, err)
			return "", err
		}

		health.RecordSuccess(c.Provider, latency)
		logAttemptSucceeded(r.logger, c, latency)
		return text, nil
	}
}

func filterVision(cands []Candidate) []Candidate {
	out := cands[:0:0]
	for _, c := range cands {
		if registry.IsVisionCapable(c.Model, c.Provider) {
			out = append(out, c)
		}
	}
	return out
}

// sortByHealth orders candidates by their provider's rank, keeping input order
// within a provider.
func (r *Router) sortByHealth(health *HealthTracker, cands []Candidate) []Candidate {
	var providers []registry.ProviderName
	seen := make(map[registry.ProviderName]bool)
	for _, c := range cands {
		if !seen[c.Provider] {
			seen[c.Provider] = true
			providers = append(providers, c.Provider)
		}
	}

	rank := make(map[registry.ProviderName]int, len(providers))
	for i, p := range health.PrioritySorted(providers) {
		rank[p] = i
	}

	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank[sorted[i].Provider] < rank[sorted[j].Provider]
	})
	return sorted
}
