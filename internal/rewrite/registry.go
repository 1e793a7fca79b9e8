package rewrite

import "sync"

// Script is a script body lifted out of an HTML document and served under a
// synthetic name.
type Script struct {
	Name string
	Body string
}

// Registry holds extracted scripts for the lifetime of a server.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{scripts: make(map[string]string)}
}

// Register stores body under name, replacing any previous body.
func (r *Registry) Register(name, body string) {
	r.mu.Lock()
	r.scripts[name] = body
	r.mu.Unlock()
}

// Lookup returns the body registered under name.
func (r *Registry) Lookup(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	body, ok := r.scripts[name]
	return body, ok
}

// Len returns the number of registered scripts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scripts)
}

// Reset drops every registered script.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.scripts = make(map[string]string)
	r.mu.Unlock()
}
