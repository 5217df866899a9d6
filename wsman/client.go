package wsman

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oobmgmt/go-drac/wsman/transport"
)

// DefaultOperationTimeout is the WS-Man OperationTimeout applied to every
// request unless overridden.
const DefaultOperationTimeout = 60 * time.Second

// maxPullElements is the page size requested on Pull continuations.
const maxPullElements = 50

// discoverySelectorNames are the canonical CIM key attributes copied from
// a discovered instance into an Invoke selector set, in wire order.
var discoverySelectorNames = []string{
	"CreationClassName",
	"SystemCreationClassName",
	"SystemName",
	"Name",
	"InstanceID",
}

// Client speaks the four WS-Man primitives against one management
// endpoint. It holds no per-call state and is safe for concurrent use;
// connection reuse is delegated to the underlying HTTP transport.
type Client struct {
	endpoint  string
	transport *transport.HTTPTransport
	opTimeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithOperationTimeout sets the WS-Man OperationTimeout header value sent
// on every request.
func WithOperationTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.opTimeout = d
	}
}

// NewClient creates a WS-Man client for the given endpoint URL.
func NewClient(endpoint string, tr *transport.HTTPTransport, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:  endpoint,
		transport: tr,
		opTimeout: DefaultOperationTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the endpoint URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// CloseIdleConnections closes idle connections in the underlying
// transport.
func (c *Client) CloseIdleConnections() {
	c.transport.CloseIdleConnections()
}

func newMessageID() string {
	return "uuid:" + strings.ToUpper(uuid.New().String())
}

// isoTimeout renders a duration as an ISO 8601 second count ("PT60S").
func isoTimeout(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("PT%dS", secs)
}

// newEnvelope builds an envelope with the headers shared by every
// addressed operation.
func (c *Client) newEnvelope(action, resourceURI string) *Envelope {
	return NewEnvelope().
		WithAction(action).
		WithTo(c.endpoint).
		WithResourceURI(resourceURI).
		WithMessageID(newMessageID()).
		WithReplyTo(AddressAnonymous).
		WithOperationTimeout(isoTimeout(c.opTimeout))
}

// sendEnvelope marshals and posts a SOAP envelope, returning the raw
// response body after fault checking.
func (c *Client) sendEnvelope(ctx context.Context, env *Envelope) ([]byte, error) {
	body, err := env.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return c.post(ctx, body)
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	respBody, err := c.transport.Post(ctx, c.endpoint, body)
	if err != nil {
		return nil, err
	}
	if err := CheckFault(respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// Identify performs the version-discovery handshake and returns the
// normalized Identify response. An answer without an IdentifyResponse
// block is a ProtocolError.
func (c *Client) Identify(ctx context.Context) (*Identity, error) {
	respBody, err := c.post(ctx, []byte(IdentifyEnvelope))
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}

	root, err := parseDoc(respBody)
	if err != nil {
		return nil, &ProtocolError{Reason: "unparseable Identify response"}
	}
	container := root.find("IdentifyResponse")
	if container == nil {
		return nil, &ProtocolError{Reason: "response carries no IdentifyResponse"}
	}

	return &Identity{Record: *recordFromNode("", container)}, nil
}

// Get fetches the single instance of class addressed by sel and returns
// its normalized attributes. A no-match fault surfaces as NotFoundError.
func (c *Client) Get(ctx context.Context, class string, sel Selectors) (*Record, error) {
	env := c.newEnvelope(ActionGet, ClassResourceURI(class)).
		WithSelectors(sel)

	respBody, err := c.sendEnvelope(ctx, env)
	if err != nil {
		var fault *Fault
		if errors.As(err, &fault) && fault.IsNoMatch() {
			return nil, &NotFoundError{Class: class, Selectors: sel}
		}
		return nil, fmt.Errorf("get %s: %w", class, err)
	}

	root, err := parseDoc(respBody)
	if err != nil {
		return nil, err
	}
	container := root.find(class)
	if container == nil {
		return nil, &MalformedResponseError{Reason: "GetResponse carries no " + class + " instance"}
	}

	return recordFromNode(class, container), nil
}

// Enumerate lists every instance of class, following Pull continuations
// until the endpoint signals end of sequence. Results are concatenated
// in response order. A mid-sequence failure aborts the whole call; a
// truncated result is never returned. The context is checked between
// pages, so cancelling it stops a long enumeration.
func (c *Client) Enumerate(ctx context.Context, class string) ([]*Record, error) {
	enumCtx, err := c.openEnumeration(ctx, class)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", class, err)
	}

	var records []*Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("enumerate %s: %w", class, err)
		}

		page, err := c.pull(ctx, class, enumCtx)
		if err != nil {
			return nil, fmt.Errorf("enumerate %s: %w", class, err)
		}
		records = append(records, page.records...)

		if page.end {
			return records, nil
		}
		if page.context != "" {
			enumCtx = page.context
		}
	}
}

// openEnumeration sends the Enumerate request and returns the
// enumeration context token.
func (c *Client) openEnumeration(ctx context.Context, class string) (string, error) {
	env := c.newEnvelope(ActionEnumerate, ClassResourceURI(class)).
		WithBody(EnumerateBody())

	respBody, err := c.sendEnvelope(ctx, env)
	if err != nil {
		return "", err
	}

	root, err := parseDoc(respBody)
	if err != nil {
		return "", err
	}
	node := root.find("EnumerationContext")
	if node == nil {
		return "", &MalformedResponseError{Reason: "EnumerateResponse carries no EnumerationContext"}
	}
	return node.value(), nil
}

type pullPage struct {
	records []*Record
	context string
	end     bool
}

// pull retrieves one page of an open enumeration.
func (c *Client) pull(ctx context.Context, class, enumCtx string) (*pullPage, error) {
	body, err := PullBody(enumCtx, maxPullElements)
	if err != nil {
		return nil, fmt.Errorf("marshal pull body: %w", err)
	}
	env := c.newEnvelope(ActionPull, ClassResourceURI(class)).
		WithBody(body)

	respBody, err := c.sendEnvelope(ctx, env)
	if err != nil {
		return nil, err
	}

	root, err := parseDoc(respBody)
	if err != nil {
		return nil, err
	}
	resp := root.find("PullResponse")
	if resp == nil {
		return nil, &MalformedResponseError{Reason: "response carries no PullResponse"}
	}

	page := &pullPage{end: resp.find("EndOfSequence") != nil}
	if nextCtx := resp.find("EnumerationContext"); nextCtx != nil {
		page.context = nextCtx.value()
	}
	if items := resp.find("Items"); items != nil {
		for _, item := range items.children {
			page.records = append(page.records, recordFromNode(class, item))
		}
	}
	return page, nil
}

// Invoke calls method on the instance of class addressed by sel. A nil
// sel triggers selector auto-discovery: the class is enumerated and the
// call proceeds only when exactly one instance exists. Input parameters
// are XML-escaped into the method input body.
func (c *Client) Invoke(ctx context.Context, class, method string, sel Selectors, params []Param) (*Record, error) {
	if sel == nil {
		var err error
		sel, err = c.DiscoverSelectors(ctx, class)
		if err != nil {
			return nil, err
		}
	}

	env := c.newEnvelope(MethodActionURI(class, method), ClassResourceURI(class)).
		WithSelectors(sel).
		WithBody(InvokeBody(class, method, params))

	respBody, err := c.sendEnvelope(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("invoke %s.%s: %w", class, method, err)
	}

	root, err := parseDoc(respBody)
	if err != nil {
		return nil, err
	}
	container := root.find(method + "_OUTPUT")
	if container == nil {
		return nil, &MalformedResponseError{Reason: "response carries no " + method + "_OUTPUT"}
	}

	return recordFromNode(class, container), nil
}

// DiscoverSelectors enumerates class and derives the selector set
// addressing its only instance. Zero or several instances yield
// AmbiguousTargetError and no Invoke request is ever built from the
// result.
func (c *Client) DiscoverSelectors(ctx context.Context, class string) (Selectors, error) {
	records, err := c.Enumerate(ctx, class)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, &AmbiguousTargetError{Class: class, Matches: len(records)}
	}

	sel := Selectors{{Name: SelectorCIMNamespace, Value: CIMNamespaceDCIM}}
	for _, name := range discoverySelectorNames {
		if f, ok := records[0].Lookup(name); ok && !f.Nil() {
			sel = append(sel, Selector{Name: name, Value: f.Value()})
		}
	}
	return sel, nil
}
