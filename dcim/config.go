package dcim

import (
	"crypto/tls"
	"errors"
	"log/slog"
	"time"

	"github.com/oobmgmt/go-drac/wsman/transport"
)

// AuthType specifies the authentication mechanism.
type AuthType int

const (
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic AuthType = iota
	// AuthNTLM uses NTLM authentication.
	AuthNTLM
)

// Config holds configuration for a management session.
type Config struct {
	// Port is the HTTPS port of the WS-Man endpoint (default: 443).
	Port int

	// InsecureSkipVerify skips TLS certificate verification.
	// WARNING: Only use for testing. Controllers commonly ship
	// self-signed certificates; prefer installing them over skipping
	// verification.
	InsecureSkipVerify bool

	// TLSConfig optionally replaces the default TLS configuration.
	TLSConfig *tls.Config

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// AuthType specifies the authentication type (Basic or NTLM).
	AuthType AuthType

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// Domain for NTLM authentication.
	Domain string

	// Logger receives session debug logging. Credentials are redacted
	// before any record reaches it. Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:     443,
		Timeout:  transport.DefaultTimeout,
		AuthType: AuthBasic,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("port out of range")
	}
	return nil
}
