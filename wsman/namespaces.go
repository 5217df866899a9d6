package wsman

// XML Namespace URIs for the WS-Management protocol.
const (
	// NsSoap is the SOAP 1.2 envelope namespace.
	NsSoap = "http://www.w3.org/2003/05/soap-envelope"

	// NsAddressing is the WS-Addressing namespace.
	NsAddressing = "http://schemas.xmlsoap.org/ws/2004/08/addressing"

	// NsWsman is the DMTF WS-Management namespace.
	NsWsman = "http://schemas.dmtf.org/wbem/wsman/1/wsman.xsd"

	// NsIdentity is the WS-Management Identify namespace.
	NsIdentity = "http://schemas.dmtf.org/wbem/wsman/identity/1/wsmanidentity.xsd"

	// NsTransfer is the WS-Transfer namespace.
	NsTransfer = "http://schemas.xmlsoap.org/ws/2004/09/transfer"

	// NsEnumeration is the WS-Enumeration namespace.
	NsEnumeration = "http://schemas.xmlsoap.org/ws/2004/09/enumeration"

	// NsDCIM is the Dell DCIM schema namespace. Class resource URIs are
	// formed as NsDCIM + "/" + class name.
	NsDCIM = "http://schemas.dell.com/wbem/wscim/1/cim-schema/2"
)

// WS-Addressing constants.
const (
	// AddressAnonymous is the WS-Addressing anonymous reply address.
	AddressAnonymous = "http://schemas.xmlsoap.org/ws/2004/08/addressing/role/anonymous"
)

// Action URIs for WS-Transfer operations.
const (
	// ActionGet fetches a single resource instance addressed by selectors.
	ActionGet = "http://schemas.xmlsoap.org/ws/2004/09/transfer/Get"

	// ActionGetResponse is the response to Get.
	ActionGetResponse = "http://schemas.xmlsoap.org/ws/2004/09/transfer/GetResponse"
)

// Action URIs for WS-Enumeration operations.
const (
	// ActionEnumerate opens an enumeration and returns an EnumerationContext.
	ActionEnumerate = "http://schemas.xmlsoap.org/ws/2004/09/enumeration/Enumerate"

	// ActionEnumerateResponse is the response to Enumerate.
	ActionEnumerateResponse = "http://schemas.xmlsoap.org/ws/2004/09/enumeration/EnumerateResponse"

	// ActionPull retrieves the next page of an open enumeration.
	ActionPull = "http://schemas.xmlsoap.org/ws/2004/09/enumeration/Pull"

	// ActionPullResponse is the response to Pull.
	ActionPullResponse = "http://schemas.xmlsoap.org/ws/2004/09/enumeration/PullResponse"
)

// Selector names with wire-level meaning.
const (
	// SelectorCIMNamespace addresses the CIM namespace the target class
	// lives in. Every Invoke selector set carries it.
	SelectorCIMNamespace = "__cimnamespace"

	// CIMNamespaceDCIM is the CIM namespace of the DCIM schema.
	CIMNamespaceDCIM = "root/dcim"
)

// ClassResourceURI returns the WS-Man resource URI for a DCIM class.
func ClassResourceURI(class string) string {
	return NsDCIM + "/" + class
}

// MethodActionURI returns the WS-Addressing action URI for invoking a
// method on a DCIM class.
func MethodActionURI(class, method string) string {
	return ClassResourceURI(class) + "/" + method
}
