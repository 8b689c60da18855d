package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/revmux/revmux/internal/config"
	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/review"
)

// ErrProviderNotFound is returned when a requested provider is not
// registered, usually because its credential is absent.
var ErrProviderNotFound = errors.New("provider not found")

// Registry holds the adapters whose backends are actually usable.
// Enablement is decided once at construction, from configuration, so
// a run never discovers a missing credential halfway through.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]review.Adapter
	logger   *loggy.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *loggy.Logger) *Registry {
	if logger == nil {
		logger = loggy.NewNoopLogger()
	}

	return &Registry{
		adapters: make(map[string]review.Adapter),
		logger:   logger,
	}
}

// BuildRegistry wires up every adapter whose credential (or endpoint,
// for local backends) is present in cfg.
func BuildRegistry(cfg *config.Config, logger *loggy.Logger) *Registry {
	r := NewRegistry(logger)

	if cfg.Claude.APIKey != "" {
		r.Register(NewClaudeAdapter(cfg.Claude, logger))
	}

	if cfg.Gemini.APIKey != "" {
		r.Register(NewGeminiAdapter(cfg.Gemini, logger))
	}

	if cfg.OpenAI.APIKey != "" {
		r.Register(NewOpenAIAdapter(cfg.OpenAI, logger))
	}

	if cfg.Ollama.Endpoint != "" {
		r.Register(NewOllamaAdapter(cfg.Ollama, logger))
	}

	r.logger.Debug("provider registry built", "enabled", r.Enabled())

	return r
}

// Register adds an adapter under its own name. Registering the same
// name again is a no-op, so rebuilding a registry from the same config
// is idempotent.
func (r *Registry) Register(adapter review.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.adapters[name]; exists {
		return
	}

	r.adapters[name] = adapter
}

// Enabled returns the registered provider names in sorted order.
func (r *Registry) Enabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Resolve looks up an adapter by name.
func (r *Registry) Resolve(name string) (review.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}

	return adapter, nil
}
