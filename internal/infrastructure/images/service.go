package images

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultFailureThreshold = 3
	DefaultCooldown         = 60 * time.Second
	DefaultCacheTTL         = time.Hour

	defaultKey = "__default__"
)

// Options builds the standard chain: store, public asset, embedded.
type Options struct {
	StoreDefaultURL  string
	PublicDefaultURL string
	StoreTimeout     time.Duration
	PublicTimeout    time.Duration
	FailureThreshold int
	Cooldown         time.Duration
	CacheTTL         time.Duration
}

func DefaultOptions() Options {
	return Options{
		StoreTimeout:     5 * time.Second,
		PublicTimeout:    10 * time.Second,
		FailureThreshold: DefaultFailureThreshold,
		Cooldown:         DefaultCooldown,
		CacheTTL:         DefaultCacheTTL,
	}
}

// Service resolves images through a priority ordered list of providers.
// One instance is shared by every request so that cache and circuit state
// are process wide.
type Service struct {
	providers []Provider
	cache     Cache
	ttl       time.Duration
	logger    *zap.Logger
}

// NewService always adds the embedded provider when it is missing.
func NewService(providers []Provider, cache Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewMemoryCache()
	}

	hasEmbedded := false
	for _, p := range providers {
		if p.Priority() == EmbeddedPriority && p.Name() == "embedded" {
			hasEmbedded = true
		}
	}
	list := append([]Provider(nil), providers...)
	if !hasEmbedded {
		list = append(list, NewEmbeddedProvider())
	}

	return &Service{providers: list, cache: cache, ttl: ttl, logger: logger}
}

func NewChain(opts Options, client *http.Client, cache Cache, logger *zap.Logger) *Service {
	if client == nil {
		client = &http.Client{}
	}
	return NewService([]Provider{
		NewStoreProvider(client, opts.StoreDefaultURL, opts.StoreTimeout, NewBreaker(opts.FailureThreshold, opts.Cooldown)),
		NewPublicAssetProvider(client, opts.PublicDefaultURL, opts.PublicTimeout, NewBreaker(opts.FailureThreshold, opts.Cooldown)),
		NewEmbeddedProvider(),
	}, cache, opts.CacheTTL, logger)
}

// Resolve never fails. When every provider fails it returns the emergency
// placeholder.
func (s *Service) Resolve(ctx context.Context, ref string) (res Result) {
	start := time.Now()
	key := cacheKey(ref)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("[images][service] provider panicked", zap.Any("panic", r), zap.String("ref", ref))
			res = emergency(start)
		}
		resolutionsTotal.WithLabelValues(string(res.Source)).Inc()
	}()

	if entry, ok := s.cache.Get(ctx, key); ok {
		return Result{Success: true, Payload: entry.Payload, Source: entry.Source, Latency: time.Since(start), Cached: true}
	}

	for _, p := range s.healthy() {
		r := p.GetImage(ctx, ref)
		if r.Success && r.Payload != "" {
			// A fallback served to an aborted caller says nothing about the
			// upstream, so it must not stick for the whole TTL.
			if ctx.Err() == nil {
				s.cache.Set(ctx, key, Entry{Payload: r.Payload, Source: r.Source}, s.ttl)
			}
			r.Latency = time.Since(start)
			return r
		}
		providerFailuresTotal.WithLabelValues(p.Name()).Inc()
		s.logger.Warn("[images][service] provider failed",
			zap.String("provider", p.Name()),
			zap.String("ref", ref),
			zap.String("error", r.Err),
			zap.Duration("latency", r.Latency),
		)
	}

	s.logger.Error("[images][service] all providers failed, using emergency placeholder", zap.String("ref", ref))
	return emergency(start)
}

// ResolveBase64 returns only the encoded payload; it is never empty.
func (s *Service) ResolveBase64(ctx context.Context, ref string) string {
	return s.Resolve(ctx, ref).Payload
}

// ProviderHealth reports the health of every provider by name.
func (s *Service) ProviderHealth() map[string]bool {
	out := make(map[string]bool, len(s.providers))
	for _, p := range s.providers {
		out[p.Name()] = p.IsHealthy()
	}
	return out
}

func (s *Service) healthy() []Provider {
	out := make([]Provider, 0, len(s.providers))
	for _, p := range s.providers {
		if p.IsHealthy() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() < out[j].Priority() })
	return out
}

func cacheKey(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return defaultKey
	}
	return ref
}

func emergency(start time.Time) Result {
	return Result{Success: true, Payload: emergencyPlaceholder, Source: SourceEmergency, Latency: time.Since(start)}
}
