package wsman

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Field is one normalized response element. Values preserves wire order;
// a nil/empty Values means the element was present but empty (the
// absence marker); it is never the literal text "None".
type Field struct {
	Name   string
	Values []string
}

// Nil reports whether the field carries no value.
func (f Field) Nil() bool {
	return len(f.Values) == 0
}

// Value returns the first value, or "" for an empty field.
func (f Field) Value() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// Record is the normalized body of one response instance: an ordered
// mapping from unqualified element name to value. Repeated sibling
// elements accumulate into one Field in response order.
type Record struct {
	Class  string
	Fields []Field
}

// Lookup returns the named field.
func (r *Record) Lookup(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value returns the first value of the named field, or "".
func (r *Record) Value(name string) string {
	f, _ := r.Lookup(name)
	return f.Value()
}

// Has reports whether the named field is present, valueless or not.
func (r *Record) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the field names in response order.
func (r *Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

func (r *Record) add(name string, values ...string) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Values = append(r.Fields[i].Values, values...)
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Values: values})
}

// node is a minimal parsed-XML element used for response normalization.
// Namespace prefixes are dropped at parse time; only local names are
// kept for lookup.
type node struct {
	name     string
	text     string
	attrs    []xml.Attr
	children []*node
}

// parseDoc parses an XML document into a node tree. Character data is
// accumulated per element; processing instructions and comments are
// ignored.
func parseDoc(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *node
	var stack []*node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedResponseError{Reason: "invalid XML", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: t.Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}
	if root == nil {
		return nil, &MalformedResponseError{Reason: "empty response document"}
	}
	return root, nil
}

// find returns the first descendant (depth-first) with the given local
// name, or nil.
func (n *node) find(local string) *node {
	for _, c := range n.children {
		if c.name == local {
			return c
		}
		if m := c.find(local); m != nil {
			return m
		}
	}
	return nil
}

// attr returns the value of the named attribute.
func (n *node) attr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// value returns the element's trimmed character data.
func (n *node) value() string {
	return strings.TrimSpace(n.text)
}

// isLeaf reports whether the element has no child elements.
func (n *node) isLeaf() bool {
	return len(n.children) == 0
}

// jobInstanceID collapses an embedded endpoint reference to its
// InstanceID selector. Invoke outputs reference created jobs this way;
// callers want the job id, not the reference plumbing.
func (n *node) jobInstanceID() (string, bool) {
	if n.find("EndpointReference") == nil && n.find("ReferenceParameters") == nil {
		return "", false
	}
	var walk func(*node) (string, bool)
	walk = func(m *node) (string, bool) {
		if m.name == "Selector" {
			if name, ok := m.attr("Name"); ok && name == "InstanceID" {
				return m.value(), true
			}
		}
		for _, c := range m.children {
			if id, ok := walk(c); ok {
				return id, true
			}
		}
		return "", false
	}
	return walk(n)
}

// recordFromNode flattens a container element into a Record: leaf
// children become fields keyed by unqualified name, nested containers
// are flattened in place, and embedded job references collapse to their
// InstanceID. Empty leaves yield a valueless field.
func recordFromNode(class string, container *node) *Record {
	rec := &Record{Class: class}
	var flatten func(*node)
	flatten = func(n *node) {
		for _, c := range n.children {
			switch {
			case c.isLeaf():
				if v := c.value(); v != "" {
					rec.add(c.name, v)
				} else {
					rec.add(c.name)
				}
			default:
				if id, ok := c.jobInstanceID(); ok {
					rec.add(c.name, id)
					continue
				}
				flatten(c)
			}
		}
	}
	flatten(container)
	return rec
}

// Identity is the normalized Identify response.
type Identity struct {
	Record
}

// Version returns the management-controller version reported by
// Identify.
func (id *Identity) Version() string {
	return id.Value("LifecycleControllerVersion")
}

// Product returns the reported product name.
func (id *Identity) Product() string {
	return id.Value("ProductName")
}

// Vendor returns the reported product vendor.
func (id *Identity) Vendor() string {
	return id.Value("ProductVendor")
}
