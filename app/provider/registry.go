package provider

// Registry maps hostnames to providers. It is built once at startup and
// never mutated afterwards; pass it by reference into the dispatcher.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry indexes the given providers by every hostname they claim.
// Domain sets are not expected to overlap; if they do, the later
// registration wins.
func NewRegistry(providers ...Provider) *Registry {
	index := make(map[string]Provider)
	for _, p := range providers {
		for _, domain := range p.Domains() {
			index[domain] = p
		}
	}
	return &Registry{providers: index}
}

// Lookup returns the provider owning the hostname, or nil.
func (r *Registry) Lookup(hostname string) Provider {
	return r.providers[hostname]
}
