package operations

import (
	"context"
	"fmt"
	"sync"

	"descstats/internal/config"
	"descstats/pkg/contracts/domain"
)

// Engine computes the report section of one dataset
type Engine interface {
	// Name is the engine's report name: pure, frame or columnar.
	Name() string
	Analyze(ctx context.Context, ds config.DatasetConfig, path string) (*Result, error)
}

// Result is one engine run over one dataset
type Result struct {
	Section *domain.Section
	// Rows is the number of data rows loaded.
	Rows int
}

// Registry manages engines by name
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	order   []string // Maintains registration order
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Engine),
	}
}

// Register adds an engine to the registry
func (r *Registry) Register(engine Engine) error {
	if engine == nil {
		return fmt.Errorf("cannot register nil engine")
	}

	name := engine.Name()
	if name == "" {
		return fmt.Errorf("engine name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[name]; exists {
		return fmt.Errorf("engine %s already registered", name)
	}

	r.engines[name] = engine
	r.order = append(r.order, name)
	return nil
}

// Get retrieves an engine by name
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, exists := r.engines[name]
	if !exists {
		return nil, fmt.Errorf("engine %s not found", name)
	}
	return engine, nil
}

// Names returns the registered engine names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
