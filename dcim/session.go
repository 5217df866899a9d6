package dcim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	ilog "github.com/oobmgmt/go-drac/internal/log"
	"github.com/oobmgmt/go-drac/schema"
	"github.com/oobmgmt/go-drac/wsman"
	"github.com/oobmgmt/go-drac/wsman/auth"
	"github.com/oobmgmt/go-drac/wsman/transport"
)

// protocolClient is the wire surface the binding layer consumes. The
// concrete implementation is *wsman.Client; tests substitute a fake.
type protocolClient interface {
	Identify(ctx context.Context) (*wsman.Identity, error)
	Get(ctx context.Context, class string, sel wsman.Selectors) (*wsman.Record, error)
	Enumerate(ctx context.Context, class string) ([]*wsman.Record, error)
	Invoke(ctx context.Context, class, method string, sel wsman.Selectors, params []wsman.Param) (*wsman.Record, error)
}

// Session is a connected management endpoint: the discovered firmware
// version, the resolved schema document, and one Binding per schema
// class. The binding registry is built exactly once at Connect and
// never changes afterwards; a Session is safe for concurrent use.
type Session struct {
	hostname string
	endpoint string
	config   Config
	logger   *slog.Logger
	registry *schema.Registry

	transport *transport.HTTPTransport
	client    protocolClient

	mu        sync.Mutex
	connected bool
	version   string
	doc       *schema.Document
	bindings  map[string]*Binding
	order     []string
}

// NewSession creates a session for the endpoint at hostname. The
// session is not connected until Connect is called.
func NewSession(hostname string, cfg Config, reg *schema.Registry) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s:%d/wsman", hostname, cfg.Port)

	opts := []transport.HTTPTransportOption{
		transport.WithTimeout(cfg.Timeout),
		transport.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
	}
	if cfg.TLSConfig != nil {
		opts = append(opts, transport.WithTLSConfig(cfg.TLSConfig))
	}
	tr := transport.NewHTTPTransport(opts...)

	creds := auth.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
		Domain:   cfg.Domain,
	}

	var authenticator auth.Authenticator
	switch cfg.AuthType {
	case AuthNTLM:
		authenticator = auth.NewNTLMAuth(creds)
	default:
		authenticator = auth.NewBasicAuth(creds)
	}
	tr.Client().Transport = authenticator.Transport(tr.Client().Transport)

	logger := ilog.Discard()
	if cfg.Logger != nil {
		logger = slog.New(ilog.NewRedactingHandler(cfg.Logger.Handler()))
	}

	return &Session{
		hostname:  hostname,
		endpoint:  endpoint,
		config:    cfg,
		logger:    logger,
		registry:  reg,
		transport: tr,
		client:    wsman.NewClient(endpoint, tr),
	}, nil
}

// Endpoint returns the endpoint URL the session talks to.
func (s *Session) Endpoint() string {
	return s.endpoint
}

// Connect performs version discovery, resolves the schema document for
// the discovered version, and builds the class binding registry. A
// schema resolution failure aborts the whole session; there is no
// partially bound state. Connect is idempotent.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	identity, err := s.client.Identify(ctx)
	if err != nil {
		return fmt.Errorf("connect %s: %w", s.hostname, err)
	}

	version := identity.Version()
	if version == "" {
		return fmt.Errorf("connect %s: %w", s.hostname,
			&wsman.ProtocolError{Reason: "Identify response carries no version"})
	}

	doc, err := s.registry.Resolve(version)
	if err != nil {
		return fmt.Errorf("connect %s: %w", s.hostname, err)
	}

	bindings := make(map[string]*Binding)
	var order []string
	for _, class := range doc.Classes() {
		if !class.SupportsGet && !class.SupportsEnumerate && !class.HasMethods() {
			continue
		}
		bindings[class.Name] = &Binding{
			client: s.client,
			class:  class,
			logger: s.logger,
		}
		order = append(order, class.Name)
	}

	s.version = version
	s.doc = doc
	s.bindings = bindings
	s.order = order
	s.connected = true

	s.logger.Info("session connected",
		slog.String("host", s.hostname),
		slog.String("version", version),
		slog.String("schema", doc.Version),
		slog.Int("classes", len(order)))

	return nil
}

// Version returns the firmware version discovered at Connect.
func (s *Session) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// SchemaVersion returns the version of the resolved schema document.
func (s *Session) SchemaVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ""
	}
	return s.doc.Version
}

// Class returns the binding for the named class.
func (s *Session) Class(name string) (*Binding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bindings[name]
	return b, ok
}

// ClassNames returns the bound class names in schema declaration
// order.
func (s *Session) ClassNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Close releases idle connections. The session must not be used
// afterwards.
func (s *Session) Close() {
	if s.transport != nil {
		s.transport.CloseIdleConnections()
	}
}
