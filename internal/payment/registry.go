package payment

import "sort"

// Provider bundles the three pieces a payment provider contributes.
type Provider struct {
	Name         string
	ReadableName string
	Builder      OrderBuilder
	Verifier     NotificationVerifier
	Client       GatewayClient
}

// Registry maps provider names to providers. It is filled once at startup
// and only read afterwards.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name] = p
	}
	return r
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
