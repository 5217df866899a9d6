package dcim

import (
	"fmt"
	"strings"
)

// InvalidArgumentError reports a method argument rejected before any
// request was sent: missing required parameter, unknown parameter
// name, or a value matching neither a value-map code nor label.
type InvalidArgumentError struct {
	Class  string
	Method string
	Arg    string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	if e.Arg != "" {
		return fmt.Sprintf("dcim: %s.%s: argument %s: %s", e.Class, e.Method, e.Arg, e.Reason)
	}
	return fmt.Sprintf("dcim: %s.%s: %s", e.Class, e.Method, e.Reason)
}

// RemoteOperationError reports an invoked method whose return code is
// not among the schema's success codes. MessageID, Message and
// MessageArgs carry the endpoint's diagnostic fields verbatim.
type RemoteOperationError struct {
	Class       string
	Method      string
	Code        string
	MessageID   string
	Message     string
	MessageArgs []string
}

func (e *RemoteOperationError) Error() string {
	msg := fmt.Sprintf("dcim: %s.%s failed with code %s", e.Class, e.Method, e.Code)
	if e.MessageID != "" {
		msg += " [" + e.MessageID + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.MessageArgs) > 0 {
		msg += " (" + strings.Join(e.MessageArgs, ", ") + ")"
	}
	return msg
}

// DuplicateKeyError reports an enumeration whose derived keys collide.
// The keyed mapping must cover every instance exactly once; a collision
// is surfaced, never silently overwritten.
type DuplicateKeyError struct {
	Class string
	Key   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("dcim: enumerating %s: duplicate key %q", e.Class, e.Key)
}

// CapabilityError reports a call against a capability surface the
// schema does not declare for the class.
type CapabilityError struct {
	Class      string
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("dcim: class %s does not support %s", e.Class, e.Capability)
}
