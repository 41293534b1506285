package audiograph

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownEffect is returned when an axis references an unregistered effect type.
var ErrUnknownEffect = errors.New("unknown effect type")

var errDuplicateEffect = errors.New("duplicate effect type")

// Context provides environmental information that effect runtimes need.
type Context struct {
	SampleRate float64
}

// Runtime is the per-axis processing and configuration contract. Configure
// may be called repeatedly on a live runtime and must keep its signal state
// (delay lines, filter memory) so that parameter changes do not click.
type Runtime interface {
	Configure(ctx Context, params Params) error
	Process(block []float64)
}

// Factory builds one Runtime instance for an axis.
type Factory func(ctx Context) (Runtime, error)

// Registry maps effect type names to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given effect type.
func (r *Registry) Register(effectType string, factory Factory) error {
	if effectType == "" {
		return errors.New("empty effect type")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[effectType]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEffect, effectType)
	}

	r.factories[effectType] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(effectType string, factory Factory) {
	err := r.Register(effectType, factory)
	if err != nil {
		panic("audiograph registry: " + err.Error())
	}
}

// Lookup returns the factory for the given effect type, or nil.
func (r *Registry) Lookup(effectType string) Factory {
	return r.factories[effectType]
}

// Names returns the registered effect types in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func (r *Registry) newRuntime(ctx Context, effectType string) (Runtime, error) {
	factory := r.Lookup(effectType)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, effectType)
	}

	return factory(ctx)
}
