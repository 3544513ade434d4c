package config

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fragsync-dev/fragsync/internal/errors"
)

// DefaultCacheTTL is how long a resolved dashboard layout stays cached.
const DefaultCacheTTL = 5 * time.Minute

// Response is a resolved dashboard layout with resolution metadata.
type Response struct {
	Config    Dashboard `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`

	// Fallback reports that resolution failed and the built-in layout
	// was served instead.
	Fallback bool `json:"fallback,omitempty"`
}

// Service resolves per-persona dashboard layouts with a TTL cache.
// Unknown personas degrade to the fallback layout rather than failing,
// so the shell always has something to render.
type Service struct {
	mu      sync.Mutex
	cache   map[string]cacheEntry
	ttl     time.Duration
	configs map[string]Dashboard
	logger  *slog.Logger

	now func() time.Time
}

type cacheEntry struct {
	config   Dashboard
	cachedAt time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCacheTTL overrides the cache lifetime.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithServiceLogger replaces the default slog logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.With("component", "config")
		}
	}
}

// WithConfigs replaces the built-in persona layouts. Intended for
// deployments that load layouts from an external document.
func WithConfigs(configs map[string]Dashboard) ServiceOption {
	return func(s *Service) {
		s.configs = configs
	}
}

// NewService creates a persona resolution service backed by the
// built-in layouts.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		cache:   make(map[string]cacheEntry),
		ttl:     DefaultCacheTTL,
		configs: builtinConfigs(),
		logger:  slog.Default().With("component", "config"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadConfiguration resolves the layout for a persona. Cache hits skip
// resolution; unknown personas are logged and answered with the
// fallback layout.
func (s *Service) LoadConfiguration(userID string) Response {
	if userID == "" {
		userID = "default-user"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[userID]; ok {
		if s.now().Sub(cached.cachedAt) <= s.ttl {
			return Response{
				Config:    cached.config,
				Timestamp: cached.cachedAt,
				Version:   cached.config.Version,
			}
		}
		delete(s.cache, userID)
	}

	cfg, ok := s.configs[userID]
	if !ok {
		err := errors.New("E104").WithDetail("No configuration for persona " + userID)
		s.logger.Warn("configuration loading failed, using fallback",
			"userId", userID, "error", err.FormatCompact())

		cfg = Fallback()
		cfg.UserID = userID
		s.cache[userID] = cacheEntry{config: cfg, cachedAt: s.now()}
		return Response{
			Config:    cfg,
			Timestamp: s.now(),
			Version:   cfg.Version,
			Fallback:  true,
		}
	}

	if err := cfg.Validate(); err != nil {
		s.logger.Warn("configuration invalid, using fallback",
			"userId", userID, "error", err)
		cfg = Fallback()
		cfg.UserID = userID
	}

	s.cache[userID] = cacheEntry{config: cfg, cachedAt: s.now()}
	return Response{
		Config:    cfg,
		Timestamp: s.now(),
		Version:   cfg.Version,
	}
}

// Personas lists the available personas.
func (s *Service) Personas() []Persona {
	out := make([]Persona, len(builtinPersonas))
	copy(out, builtinPersonas)
	return out
}

// HasConfiguration reports whether a persona resolves without falling
// back.
func (s *Service) HasConfiguration(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.configs[userID]
	return ok
}

// ClearCache drops one persona's cached layout, or all of them when
// userID is empty.
func (s *Service) ClearCache(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == "" {
		s.cache = make(map[string]cacheEntry)
		return
	}
	delete(s.cache, userID)
}

// CacheStats reports the cached persona IDs, sorted.
func (s *Service) CacheStats() (size int, keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.cache {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return len(s.cache), keys
}
