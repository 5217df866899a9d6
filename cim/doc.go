// Package cim provides the special value types flowing between the
// binding layer and callers: QualifiedValue pairing raw wire values
// with schema value maps, and endpoint-reference types (Reference,
// SoftwareIdentity) usable as method arguments.
package cim
