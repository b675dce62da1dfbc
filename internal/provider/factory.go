package provider

import (
	"fmt"
	"strings"
)

// Factory resolves a provider implementation by name at runtime. Clients
// are stateless, so one instance per vendor is shared across all calls.
type Factory struct {
	providers map[string]Provider
}

func NewFactory() *Factory {
	f := &Factory{providers: make(map[string]Provider)}
	f.register(NewOpenAIProvider())
	f.register(NewDeepSeekProvider())
	f.register(NewAnthropicProvider())
	f.register(NewCompatibleProvider())
	return f
}

func (f *Factory) register(p Provider) {
	f.providers[p.Name()] = p
}

// Resolve returns the provider for the given name, case-insensitively.
func (f *Factory) Resolve(name string) (Provider, error) {
	p, ok := f.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported provider %q", name)
	}
	return p, nil
}

// Names lists the registered provider names.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	return names
}
