package wsman

import "encoding/xml"

// Selector represents a WS-Management selector.
type Selector struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
}

// Selectors is an ordered selector set addressing one managed instance.
// Order is preserved on the wire.
type Selectors []Selector

// Set appends a selector, replacing an existing one with the same name.
func (s Selectors) Set(name, value string) Selectors {
	for i := range s {
		if s[i].Name == name {
			s[i].Value = value
			return s
		}
	}
	return append(s, Selector{Name: name, Value: value})
}

// Get returns the value of the named selector.
func (s Selectors) Get(name string) (string, bool) {
	for _, sel := range s {
		if sel.Name == name {
			return sel.Value, true
		}
	}
	return "", false
}

// SelectorsFromMap builds an ordered selector set from a map. Ordering
// follows the given names slice; names absent from the map are skipped.
func SelectorsFromMap(m map[string]string, names []string) Selectors {
	var out Selectors
	for _, n := range names {
		if v, ok := m[n]; ok {
			out = append(out, Selector{Name: n, Value: v})
		}
	}
	return out
}

// EndpointReference represents a WS-Addressing Endpoint Reference (EPR)
// identifying one managed instance on a remote endpoint.
type EndpointReference struct {
	Address     string     `xml:"Address"`
	ResourceURI string     `xml:"ReferenceParameters>ResourceURI"`
	Selectors   []Selector `xml:"ReferenceParameters>SelectorSet>Selector"`
}

// InstanceID returns the InstanceID selector of the reference, the
// natural identity of job and software-identity references.
func (e *EndpointReference) InstanceID() (string, bool) {
	return Selectors(e.Selectors).Get("InstanceID")
}

// Pull represents the body of a Pull request.
type Pull struct {
	XMLName             xml.Name  `xml:"wsen:Pull"`
	Wsen                string    `xml:"xmlns:wsen,attr"`
	Wsman               string    `xml:"xmlns:wsman,attr"`
	EnumerationContext  string    `xml:"wsen:EnumerationContext"`
	OptimizeEnumeration *struct{} `xml:"wsman:OptimizeEnumeration,omitempty"`
	MaxElements         int       `xml:"wsman:MaxElements,omitempty"`
}
