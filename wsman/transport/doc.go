// Package transport provides the HTTP/TLS transport layer for WS-Man
// communication, including connection pooling, certificate-validation
// defaults, and the transport error taxonomy.
package transport
