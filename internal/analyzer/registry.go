package analyzer

import (
	"sort"

	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// Factory constructs a fresh analyzer instance.
type Factory func() Analyzer

// Registry maps analyzer names to factories. It is an explicit value
// built at startup and passed to whatever needs to instantiate analyzers
// by name; there is no process-wide registry.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register binds a name to a factory. Registering an existing name fails.
func (r *Registry) Register(name string, factory Factory) error {
	if _, exists := r.factories[name]; exists {
		return errors.Newf(errors.ErrCodeAnalyzerDuplicate, "analyzer %q already registered", name)
	}

	r.factories[name] = factory

	return nil
}

// Create instantiates the analyzer registered under name.
func (r *Registry) Create(name string) (Analyzer, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeAnalyzerNotFound, "analyzer %q not registered", name)
	}

	return factory(), nil
}

// Names lists the registered analyzers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// DefaultRegistry builds a registry with every built-in analyzer.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	builtins := map[string]Factory{
		"timereturn": func() Analyzer { return NewTimeReturn() },
		"tradestats": func() Analyzer { return NewTradeStats() },
		"sharpe":     func() Analyzer { return NewSharpeRatio(0, 252) },
		"drawdown":   func() Analyzer { return NewDrawDown() },
		"sqn":        func() Analyzer { return NewSQN() },
	}

	for name, factory := range builtins {
		// Names are distinct literals; Register cannot fail here.
		_ = r.Register(name, factory)
	}

	return r
}
