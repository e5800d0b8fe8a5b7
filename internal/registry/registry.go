// Package registry holds the static catalog of public API operations. The
// catalog is built once at process start and is read-only afterwards, so
// lookups need no synchronization.
package registry

import (
	"context"
	"fmt"
	"strings"

	apierrors "github.com/Hamidon94/ultra.dogwalking-sub000/internal/errors"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
)

// Request is the validated input a handler receives: normalized query/body
// parameters merged with bound path parameters, plus the raw request body.
type Request struct {
	Params map[string]any
	Body   map[string]any
}

// Handler executes one operation against the data plane. Handlers are pure
// functions of the request; they return an envelope or a domain APIError
// (e.g. WALKER_NOT_FOUND) which the pipeline propagates unchanged.
type Handler func(ctx context.Context, req Request) (*models.Envelope, *apierrors.APIError)

// Endpoint is one operation in the catalog.
type Endpoint struct {
	// Path is the template, possibly with {param} placeholder segments.
	Path   string
	Method string
	// Category names the resource this endpoint operates on; together with
	// the method it determines the permission a caller needs.
	Category     string
	Summary      string
	Parameters   []models.Parameter
	Responses    []models.ResponseDoc
	AuthRequired bool
	// RateCeiling documents a per-endpoint requests/hour ceiling for
	// integrators. Admission is enforced against the key's ceiling.
	RateCeiling int
	Handler     Handler
}

// Registry is the immutable endpoint catalog.
type Registry struct {
	byRoute map[string]*Endpoint
	ordered []*Endpoint
	info    Info
}

// New creates an empty registry carrying the documentation info block.
func New(info Info) *Registry {
	return &Registry{
		byRoute: make(map[string]*Endpoint),
		info:    info,
	}
}

// Register adds an endpoint. It errors on a duplicate (path, method) pair;
// duplicates are a wiring bug, caught at startup.
func (r *Registry) Register(e *Endpoint) error {
	if e.Path == "" || !strings.HasPrefix(e.Path, "/") {
		return fmt.Errorf("endpoint path %q must start with '/'", e.Path)
	}
	method := strings.ToUpper(e.Method)
	switch method {
	case "GET", "POST", "PUT", "DELETE":
	default:
		return fmt.Errorf("unsupported method %q for %s", e.Method, e.Path)
	}
	e.Method = method

	key := method + " " + e.Path
	if _, exists := r.byRoute[key]; exists {
		return fmt.Errorf("duplicate endpoint %s", key)
	}

	r.byRoute[key] = e
	r.ordered = append(r.ordered, e)
	return nil
}

// MustRegister registers or panics; for use in startup wiring only.
func (r *Registry) MustRegister(e *Endpoint) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Resolve matches a concrete path and method against the catalog. Placeholder
// segments bind to path parameters, returned alongside the endpoint.
func (r *Registry) Resolve(path, method string) (*Endpoint, map[string]string, *apierrors.APIError) {
	method = strings.ToUpper(method)
	segments := splitPath(path)

	for _, e := range r.ordered {
		if e.Method != method {
			continue
		}
		params, ok := matchTemplate(splitPath(e.Path), segments)
		if !ok {
			continue
		}
		return e, params, nil
	}

	return nil, nil, apierrors.NewEndpointNotFound(method, path)
}

// List returns endpoints in registration order.
func (r *Registry) List() []*Endpoint {
	return r.ordered
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

// matchTemplate does segment-wise matching: literal segments must be equal,
// {name} segments bind the incoming value.
func matchTemplate(template, segments []string) (map[string]string, bool) {
	if len(template) != len(segments) {
		return nil, false
	}

	var params map[string]string
	for i, t := range template {
		if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
			if segments[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[t[1:len(t)-1]] = segments[i]
			continue
		}
		if t != segments[i] {
			return nil, false
		}
	}

	return params, true
}
