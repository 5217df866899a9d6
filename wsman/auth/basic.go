package auth

import (
	"log"
	"net/http"
	"sync"
)

// BasicAuth implements HTTP Basic authentication, the default scheme
// for management controller endpoints.
type BasicAuth struct {
	creds Credentials
}

// NewBasicAuth creates a Basic authentication handler.
func NewBasicAuth(creds Credentials) *BasicAuth {
	return &BasicAuth{creds: creds}
}

// Name returns the authentication scheme name.
func (a *BasicAuth) Name() string {
	return "Basic"
}

// Transport wraps an http.RoundTripper with Basic authentication.
func (a *BasicAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &basicTransport{
		base:  base,
		creds: a.creds,
	}
}

type basicTransport struct {
	base     http.RoundTripper
	creds    Credentials
	warnOnce sync.Once
}

// RoundTrip implements http.RoundTripper. The incoming request is
// cloned, never mutated.
func (t *basicTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		t.warnOnce.Do(func() {
			log.Printf("WARNING: Basic authentication over non-HTTPS connection to %s - credentials are not encrypted", req.URL.Host)
		})
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.SetBasicAuth(t.creds.Username, t.creds.Password)
	return t.base.RoundTrip(reqCopy)
}
