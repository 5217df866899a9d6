package wsman

import (
	"bytes"
	"encoding/xml"
)

// Envelope represents a SOAP 1.2 envelope for WS-Management messages.
type Envelope struct {
	XMLName xml.Name `xml:"s:Envelope"`

	// Namespace declarations
	NsSoap  string `xml:"xmlns:s,attr"`
	NsAddr  string `xml:"xmlns:a,attr"`
	NsWsman string `xml:"xmlns:w,attr"`

	Header *Header `xml:"s:Header"`
	Body   *Body   `xml:"s:Body"`
}

// Header represents the SOAP header containing WS-Addressing and
// WS-Management headers.
type Header struct {
	// WS-Addressing headers
	Action    string   `xml:"a:Action,omitempty"`
	To        string   `xml:"a:To,omitempty"`
	MessageID string   `xml:"a:MessageID,omitempty"`
	ReplyTo   *ReplyTo `xml:"a:ReplyTo,omitempty"`

	// WS-Management headers
	ResourceURI      string `xml:"w:ResourceURI,omitempty"`
	MaxEnvelopeSize  int    `xml:"w:MaxEnvelopeSize,omitempty"`
	OperationTimeout string `xml:"w:OperationTimeout,omitempty"`

	SelectorSet *SelectorSet `xml:"w:SelectorSet,omitempty"`
}

// ReplyTo represents the WS-Addressing ReplyTo element.
type ReplyTo struct {
	Address string `xml:"a:Address"`
}

// SelectorSet contains selectors addressing one managed instance.
type SelectorSet struct {
	Selectors []Selector `xml:"w:Selector"`
}

// Body represents the SOAP body.
type Body struct {
	Content []byte `xml:",innerxml"`
}

// NewEnvelope creates a new SOAP envelope with the required namespace
// declarations.
func NewEnvelope() *Envelope {
	return &Envelope{
		NsSoap:  NsSoap,
		NsAddr:  NsAddressing,
		NsWsman: NsWsman,
		Header:  &Header{},
		Body:    &Body{},
	}
}

// WithAction sets the WS-Addressing Action header.
func (e *Envelope) WithAction(action string) *Envelope {
	e.Header.Action = action
	return e
}

// WithTo sets the WS-Addressing To header (the endpoint URL).
func (e *Envelope) WithTo(to string) *Envelope {
	e.Header.To = to
	return e
}

// WithMessageID sets the WS-Addressing MessageID header.
func (e *Envelope) WithMessageID(messageID string) *Envelope {
	e.Header.MessageID = messageID
	return e
}

// WithReplyTo sets the WS-Addressing ReplyTo header.
func (e *Envelope) WithReplyTo(address string) *Envelope {
	e.Header.ReplyTo = &ReplyTo{Address: address}
	return e
}

// WithResourceURI sets the WS-Management ResourceURI header.
func (e *Envelope) WithResourceURI(uri string) *Envelope {
	e.Header.ResourceURI = uri
	return e
}

// WithMaxEnvelopeSize sets the WS-Management MaxEnvelopeSize header.
func (e *Envelope) WithMaxEnvelopeSize(size int) *Envelope {
	e.Header.MaxEnvelopeSize = size
	return e
}

// WithOperationTimeout sets the WS-Management OperationTimeout header.
// The timeout must be in ISO 8601 duration format (e.g., "PT60S").
func (e *Envelope) WithOperationTimeout(timeout string) *Envelope {
	e.Header.OperationTimeout = timeout
	return e
}

// WithSelector adds a selector to the SelectorSet.
func (e *Envelope) WithSelector(name, value string) *Envelope {
	if e.Header.SelectorSet == nil {
		e.Header.SelectorSet = &SelectorSet{}
	}
	e.Header.SelectorSet.Selectors = append(e.Header.SelectorSet.Selectors,
		Selector{Name: name, Value: value})
	return e
}

// WithSelectors adds every selector in order.
func (e *Envelope) WithSelectors(sel Selectors) *Envelope {
	for _, s := range sel {
		e.WithSelector(s.Name, s.Value)
	}
	return e
}

// WithBody sets the SOAP body content.
func (e *Envelope) WithBody(content []byte) *Envelope {
	e.Body.Content = content
	return e
}

// Marshal serializes the envelope to XML.
func (e *Envelope) Marshal() ([]byte, error) {
	return xml.Marshal(e)
}

// IdentifyEnvelope is the version-discovery message. Per DSP0266 it is a
// bare SOAP envelope with no addressing headers; the wsmid:Identify block
// in the body is the entire request.
const IdentifyEnvelope = `<?xml version="1.0"?>` +
	`<s:Envelope xmlns:s="` + NsSoap + `" xmlns:wsmid="` + NsIdentity + `">` +
	`<s:Header></s:Header>` +
	`<s:Body><wsmid:Identify></wsmid:Identify></s:Body>` +
	`</s:Envelope>`

// Param is one Invoke input parameter. Value carries the text payload;
// Ref, when non-nil, takes precedence and is serialized as a nested
// endpoint-reference fragment instead.
type Param struct {
	Name  string
	Value string
	Ref   ReferenceMarshaler
}

// ReferenceMarshaler is implemented by value types that serialize to a
// WS-Addressing endpoint-reference fragment when passed as an Invoke
// argument (cim.Reference, cim.SoftwareIdentity).
type ReferenceMarshaler interface {
	AppendReferenceXML(dst []byte) []byte
}

// InvokeBody builds the <METHOD_INPUT> body for an Invoke request. All
// text payloads are XML-escaped; reference parameters emit their EPR
// fragment verbatim.
func InvokeBody(class, method string, params []Param) []byte {
	uri := ClassResourceURI(class)

	var buf bytes.Buffer
	buf.WriteString(`<p:` + method + `_INPUT xmlns:p="` + uri + `">`)
	for _, p := range params {
		buf.WriteString(`<p:` + p.Name + `>`)
		if p.Ref != nil {
			buf.Write(p.Ref.AppendReferenceXML(nil))
		} else {
			_ = xml.EscapeText(&buf, []byte(p.Value))
		}
		buf.WriteString(`</p:` + p.Name + `>`)
	}
	buf.WriteString(`</p:` + method + `_INPUT>`)

	return buf.Bytes()
}

// EnumerateBody builds the body of an Enumerate request.
func EnumerateBody() []byte {
	return []byte(`<wsen:Enumerate xmlns:wsen="` + NsEnumeration + `"></wsen:Enumerate>`)
}

// PullBody builds the body of a Pull request continuing the enumeration
// identified by context. maxElements > 1 asks the endpoint to batch.
func PullBody(context string, maxElements int) ([]byte, error) {
	pull := Pull{
		Wsen:               NsEnumeration,
		Wsman:              NsWsman,
		EnumerationContext: context,
	}
	if maxElements > 1 {
		pull.OptimizeEnumeration = &struct{}{}
		pull.MaxElements = maxElements
	}
	return xml.Marshal(pull)
}
