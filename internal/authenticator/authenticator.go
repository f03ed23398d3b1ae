// Package authenticator declares the middleware contract the router
// depends on, so tests can swap the real JWT gate for a stub.
package authenticator

import "net/http"

// Authenticator gates protected routes.
type Authenticator interface {
	Authenticate(h http.Handler) http.Handler
}
