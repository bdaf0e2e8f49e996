// Package sources tracks the upstream data sources the API proxies
package sources

import "sync"

// Endpoint is a single route exposed for a source
type Endpoint struct {
	Name   string // key in the endpoint index, e.g. "solarFlares"
	Path   string // full path, e.g. "/api/nasa/solar-flares"
	Method string
}

// Source describes one upstream family mounted under the API
type Source struct {
	Name       string
	Mount      string // e.g. "/api/nasa"
	Configured bool   // false means the routes serve demo data
	Endpoints  []Endpoint
}

// Mode reports whether the source serves live or demo data
func (s Source) Mode() string {
	if s.Configured {
		return "live"
	}
	return "demo"
}

// Registry manages available sources in registration order
type Registry struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]Source
}

// NewRegistry creates an empty source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds a source, replacing an earlier one with the same name
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[s.Name]; !exists {
		r.order = append(r.order, s.Name)
	}
	r.sources[s.Name] = s
}

// Get retrieves a source by name
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, exists := r.sources[name]
	return s, exists
}

// List returns all registered sources in registration order
func (r *Registry) List() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sources[name])
	}
	return out
}

// Status maps each source name to "live" or "demo"
func (r *Registry) Status() map[string]string {
	out := make(map[string]string)
	for _, s := range r.List() {
		out[s.Name] = s.Mode()
	}
	return out
}

// Index returns the endpoint listing served at /api. Non-GET endpoints carry
// their method as a suffix.
func (r *Registry) Index() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, s := range r.List() {
		eps := make(map[string]string, len(s.Endpoints))
		for _, e := range s.Endpoints {
			p := e.Path
			if e.Method != "" && e.Method != "GET" {
				p += " [" + e.Method + "]"
			}
			eps[e.Name] = p
		}
		out[s.Name] = eps
	}
	return out
}
