// package server contains the local HTTP plumbing for the OAuth
// authorization-code flow: a handler interface, a minimal router, and the
// callback handler that exchanges the code for tokens.
package server

import (
	"net/http"
)

// Handler defines the interface for HTTP request handlers served locally
// during authorization.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// BasicRouter is a simple HTTP router built on [http.ServeMux].
type BasicRouter struct {
	mux *http.ServeMux
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered with this handler.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.mux.Handle(route, handler)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
