// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/sitedesk blank-imports
// the components it ships, builds one Env, and asks every registered
// component to add its routes to the shared /api router.
//
// Notes
// -----
// • All() returns components sorted by name so route registration order
//   is stable between runs.
// • Registering two components with the same name panics at start-up.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Routes() adds handlers to r, which is already mounted at /api, e.g:
//
//	func (c *Component) Routes(r chi.Router, env *component.Env) {
//		r.Post("/auth/login", c.login)
//		r.Group(func(pr chi.Router) {
//			pr.Use(env.Authenticator.Middleware)
//			pr.Get("/auth/user", c.user)
//		})
//	}
type Component interface {
	Name() string
	Routes(r chi.Router, env *Env)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[c.Name()]; dup {
		panic(fmt.Sprintf("component %q registered twice", c.Name()))
	}
	registry[c.Name()] = c
}

// All returns every registered component ordered by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount adds the routes of comps (or of every registered component when
// comps is empty) to r.
func Mount(r chi.Router, env *Env, comps ...Component) {
	if len(comps) == 0 {
		comps = All()
	}
	for _, c := range comps {
		c.Routes(r, env)
	}
}
