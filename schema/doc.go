// Package schema models versioned DCIM class definitions loaded from
// YAML documents: classes with capability flags, attributes, methods,
// and value maps. Documents are validated wholesale at load time and
// are immutable afterwards; a Registry resolves the best document for
// a discovered firmware version.
package schema
