package runtime

import "sync"

// Handler runs one claimed job to completion. Implementations call
// Progress/Succeed/Fail on the context; returning without a terminal
// call leaves the row running until the stale sweep reclaims it.
type Handler interface {
	Run(c *Context)
}

type HandlerFunc func(c *Context)

func (f HandlerFunc) Run(c *Context) { f(c) }

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(jobType string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = h
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}
