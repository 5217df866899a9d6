package cim

import (
	"bytes"
	"encoding/xml"

	"github.com/oobmgmt/go-drac/wsman"
)

// Reference is a WS-Addressing endpoint reference to one managed
// instance: a class resource URI plus the ordered selector set
// addressing the instance. References are passed as method arguments
// where a schema parameter expects another instance, and serialize as
// an EPR fragment inside the method input body.
type Reference struct {
	class     string
	selectors wsman.Selectors
}

// NewReference builds a reference to the instance of class addressed
// by selectors.
func NewReference(class string, selectors wsman.Selectors) *Reference {
	return &Reference{class: class, selectors: selectors}
}

// Class returns the referenced class name.
func (r *Reference) Class() string {
	return r.class
}

// ResourceURI returns the referenced class resource URI.
func (r *Reference) ResourceURI() string {
	return wsman.ClassResourceURI(r.class)
}

// Selectors returns the selector set addressing the instance.
func (r *Reference) Selectors() wsman.Selectors {
	out := make(wsman.Selectors, len(r.selectors))
	copy(out, r.selectors)
	return out
}

// AppendReferenceXML appends the EPR fragment to dst: the anonymous
// address plus reference parameters carrying the resource URI and
// selector set. The fragment declares its own namespace prefixes so it
// embeds into any parent element.
func (r *Reference) AppendReferenceXML(dst []byte) []byte {
	var buf bytes.Buffer
	buf.Write(dst)

	buf.WriteString(`<a:Address xmlns:a="` + wsman.NsAddressing + `">`)
	buf.WriteString(wsman.AddressAnonymous)
	buf.WriteString(`</a:Address>`)

	buf.WriteString(`<a:ReferenceParameters xmlns:a="` + wsman.NsAddressing + `" xmlns:w="` + wsman.NsWsman + `">`)
	buf.WriteString(`<w:ResourceURI>`)
	_ = xml.EscapeText(&buf, []byte(r.ResourceURI()))
	buf.WriteString(`</w:ResourceURI>`)
	buf.WriteString(`<w:SelectorSet>`)
	for _, sel := range r.selectors {
		buf.WriteString(`<w:Selector Name="`)
		_ = xml.EscapeText(&buf, []byte(sel.Name))
		buf.WriteString(`">`)
		_ = xml.EscapeText(&buf, []byte(sel.Value))
		buf.WriteString(`</w:Selector>`)
	}
	buf.WriteString(`</w:SelectorSet>`)
	buf.WriteString(`</a:ReferenceParameters>`)

	return buf.Bytes()
}

// SoftwareIdentityClass is the DCIM class naming one firmware image.
const SoftwareIdentityClass = "DCIM_SoftwareIdentity"

// SoftwareIdentity identifies one firmware image on the endpoint.
// Firmware-style invocations take it as an EPR argument; the instance
// ID alone addresses the image, the version fields carry inventory
// detail for the caller.
type SoftwareIdentity struct {
	Reference

	InstanceID string
	Version    string
	Component  string
}

// NewSoftwareIdentity builds the identity for a firmware image
// instance ID (e.g. "DCIM:INSTALLED#741__BIOS.Setup.1-1").
func NewSoftwareIdentity(instanceID string) *SoftwareIdentity {
	return &SoftwareIdentity{
		Reference: *NewReference(SoftwareIdentityClass, wsman.Selectors{
			{Name: "InstanceID", Value: instanceID},
		}),
		InstanceID: instanceID,
	}
}
