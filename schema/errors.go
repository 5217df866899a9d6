package schema

import "fmt"

// SchemaError reports a schema document that failed load-time
// validation. The document is rejected wholesale; there is no partially
// usable schema.
type SchemaError struct {
	// Class names the offending class definition, when one is known.
	Class  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("schema: class %s: %s", e.Class, e.Reason)
	}
	return "schema: " + e.Reason
}
