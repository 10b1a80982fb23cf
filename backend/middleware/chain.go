// ABOUTME: Middleware chaining utility for composing HTTP middleware
// ABOUTME: Applies middleware in declaration order (first is outermost)

package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Chain applies middleware to a handler in order.
// The first middleware in the list is the outermost (executes first).
// Example: Chain(handler, LogRequest, cors) applies as: LogRequest(cors(handler))
func Chain(h http.Handler, middlewares ...mux.MiddlewareFunc) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
