package config

import (
	"sync"
	"time"
)

// Provider supplies configuration with staleness under the caller's control.
//
// Implementations cache the loaded Config. The refreshAfter argument states
// how stale a cached copy may be: a copy loaded before refreshAfter is
// re-read, anything loaded at or after it is returned as-is. Passing the
// zero time always accepts the cache; passing time.Now() forces a reload.
// Callers wanting the conventional "at most N seconds stale" behavior pass
// time.Now().Add(-N).
type Provider interface {
	Config(refreshAfter time.Time) *Config
}

// FileProvider loads configuration through viper and caches the result.
// It is safe for concurrent use.
type FileProvider struct {
	mu       sync.Mutex
	cached   *Config
	loadedAt time.Time

	// load and now are replaceable in tests
	load func() (*Config, error)
	now  func() time.Time
}

// NewFileProvider returns a Provider that reads through Load.
// SetDefaults must have been called before the first read.
func NewFileProvider() *FileProvider {
	return &FileProvider{
		load: Load,
		now:  time.Now,
	}
}

// Config returns the cached configuration, re-reading it when the cache was
// loaded before refreshAfter. Load failures fall back to the last good copy,
// or to Default when nothing has loaded yet; configuration access never
// fails the decision path.
func (p *FileProvider) Config(refreshAfter time.Time) *Config {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && !p.loadedAt.Before(refreshAfter) {
		return p.cached
	}

	cfg, err := p.load()
	if err != nil {
		if p.cached != nil {
			return p.cached
		}
		cfg = Default()
	}
	p.cached = cfg
	p.loadedAt = p.now()
	return p.cached
}

// Invalidate drops the cached configuration so the next call re-reads it
// regardless of the refreshAfter it passes.
func (p *FileProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = nil
	p.loadedAt = time.Time{}
}

// StaticProvider serves a fixed Config and never re-reads anything.
// It is the Provider used in tests and in one-shot commands that load
// configuration once at startup.
type StaticProvider struct {
	cfg *Config
}

// NewStaticProvider returns a Provider that always serves cfg.
// A nil cfg serves Default().
func NewStaticProvider(cfg *Config) *StaticProvider {
	return &StaticProvider{cfg: cfg}
}

// Config returns the wrapped configuration; refreshAfter is ignored.
func (s *StaticProvider) Config(time.Time) *Config {
	if s.cfg == nil {
		return Default()
	}
	return s.cfg
}
