package wsman

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// Fault represents a WS-Man SOAP fault reported by the endpoint.
type Fault struct {
	// Code is the SOAP fault code (e.g., "s:Sender", "s:Receiver").
	Code string

	// Subcode is the WS-Man-specific subcode (e.g., "wsman:InvalidSelectors").
	Subcode string

	// Reason is the human-readable fault reason.
	Reason string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	var parts []string
	if f.Code != "" {
		parts = append(parts, f.Code)
	}
	if f.Subcode != "" {
		parts = append(parts, f.Subcode)
	}
	if f.Reason != "" {
		parts = append(parts, f.Reason)
	}
	return "wsman fault: " + strings.Join(parts, ": ")
}

// IsNoMatch reports whether the fault indicates no instance matched the
// request's selectors.
func (f *Fault) IsNoMatch() bool {
	return strings.Contains(f.Subcode, "InvalidSelectors") ||
		strings.Contains(f.Subcode, "DestinationUnreachable") ||
		strings.Contains(f.Reason, "No instance found")
}

// IsFault reports whether err is a WS-Man Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// ParseFault parses a SOAP response and returns a Fault if one is
// present. Returns nil when the response is not a fault.
func ParseFault(data []byte) (*Fault, error) {
	// Quick check before paying for a full unmarshal
	if !strings.Contains(string(data), ":Fault") {
		return nil, nil
	}

	var env faultEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, &MalformedResponseError{Reason: "unparseable fault", Err: err}
	}

	if env.Body.Fault.Code.Value == "" {
		return nil, nil
	}

	return &Fault{
		Code:    env.Body.Fault.Code.Value,
		Subcode: env.Body.Fault.Code.Subcode.Value,
		Reason:  strings.TrimSpace(env.Body.Fault.Reason.Text),
	}, nil
}

// CheckFault parses a response and returns an error if it contains a
// fault.
func CheckFault(data []byte) error {
	fault, err := ParseFault(data)
	if err != nil {
		return err
	}
	if fault != nil {
		return fault
	}
	return nil
}

// faultEnvelope is the XML structure for parsing SOAP faults.
type faultEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault struct {
			Code struct {
				Value   string `xml:"Value"`
				Subcode struct {
					Value string `xml:"Value"`
				} `xml:"Subcode"`
			} `xml:"Code"`
			Reason struct {
				Text string `xml:"Text"`
			} `xml:"Reason"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

// ProtocolError indicates the endpoint answered an Identify with
// something that is not a WS-Man Identify response.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "wsman: protocol error: " + e.Reason
}

// MalformedResponseError indicates a SOAP body that could not be parsed.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wsman: malformed response: %s: %v", e.Reason, e.Err)
	}
	return "wsman: malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// NotFoundError indicates a Get found no instance matching the selector
// set.
type NotFoundError struct {
	Class     string
	Selectors Selectors
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("wsman: no %s instance matches selectors", e.Class)
}

// AmbiguousTargetError indicates selector auto-discovery for an Invoke
// matched zero or several instances. No Invoke request is sent when it
// is returned.
type AmbiguousTargetError struct {
	Class   string
	Matches int
}

func (e *AmbiguousTargetError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("wsman: no %s instance to invoke on", e.Class)
	}
	return fmt.Sprintf("wsman: %d %s instances match, refusing to pick one", e.Matches, e.Class)
}
