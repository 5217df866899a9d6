package transport

import "fmt"

// ConnectError indicates the TCP/TLS connection to the endpoint could
// not be established.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("transport: connect %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// TimeoutError indicates the caller-supplied timeout expired before the
// endpoint answered.
type TimeoutError struct {
	Endpoint string
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transport: request to %s timed out: %v", e.Endpoint, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Timeout implements the net.Error convention.
func (e *TimeoutError) Timeout() bool { return true }

// Error is a transport-level failure that is neither a connection
// failure nor a timeout: request building, mid-stream I/O, or an HTTP
// error status.
type Error struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
