// Package wsman implements a WS-Management (WS-Man) client for
// communicating with DCIM management endpoints.
//
// This package provides the protocol layer: SOAP envelope construction,
// WS-Addressing headers, fault parsing, response normalization, and the
// four wire primitives:
//
//   - Identify: discover the endpoint's product and firmware version
//   - Get: fetch one instance addressed by a selector set
//   - Enumerate: list instances, following Pull continuations
//   - Invoke: call a method on an addressed instance
//
// # Subpackages
//
//   - auth: Authentication handlers (Basic, NTLM)
//   - transport: HTTP/TLS transport layer
//
// Typed attribute access, value mapping, and schema-driven binding live
// in the dcim package; this package deals in raw normalized records.
package wsman
