package wsman

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/oobmgmt/go-drac/wsman/transport"
)

func soapEnvelope(inner string) string {
	return `<?xml version="1.0"?>` +
		`<s:Envelope xmlns:s="` + NsSoap + `" xmlns:a="` + NsAddressing + `" xmlns:w="` + NsWsman + `">` +
		`<s:Header></s:Header><s:Body>` + inner + `</s:Body></s:Envelope>`
}

const identifyBody = `<wsmid:IdentifyResponse xmlns:wsmid="http://schemas.dmtf.org/wbem/wsman/identity/1/wsmanidentity.xsd">` +
	`<wsmid:ProductVendor>Dell</wsmid:ProductVendor>` +
	`<wsmid:ProductName>iDRAC</wsmid:ProductName>` +
	`<wsmid:LifecycleControllerVersion>2.40.40.40</wsmid:LifecycleControllerVersion>` +
	`</wsmid:IdentifyResponse>`

// testEndpoint is a fake WS-Man endpoint dispatching on request bodies.
type testEndpoint struct {
	mu       sync.Mutex
	requests []string

	handle func(body string) (status int, response string)
}

func (e *testEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	body := string(data)

	e.mu.Lock()
	e.requests = append(e.requests, body)
	e.mu.Unlock()

	status, response := e.handle(body)
	w.WriteHeader(status)
	fmt.Fprint(w, response)
}

func (e *testEndpoint) requestCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

func (e *testEndpoint) request(i int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requests[i]
}

func newTestClient(t *testing.T, endpoint *testEndpoint) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(endpoint)
	t.Cleanup(server.Close)
	return NewClient(server.URL, transport.NewHTTPTransport()), server
}

func TestClient_Identify(t *testing.T) {
	endpoint := &testEndpoint{handle: func(body string) (int, string) {
		if !strings.Contains(body, "wsmid:Identify") {
			return http.StatusBadRequest, ""
		}
		return http.StatusOK, soapEnvelope(identifyBody)
	}}
	client, _ := newTestClient(t, endpoint)

	id, err := client.Identify(context.Background())
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if id.Version() != "2.40.40.40" {
		t.Errorf("Version = %q", id.Version())
	}
	if id.Product() != "iDRAC" || id.Vendor() != "Dell" {
		t.Errorf("Product/Vendor = %q/%q", id.Product(), id.Vendor())
	}
}

func TestClient_Identify_ProtocolError(t *testing.T) {
	endpoint := &testEndpoint{handle: func(string) (int, string) {
		return http.StatusOK, soapEnvelope("<SomethingElse/>")
	}}
	client, _ := newTestClient(t, endpoint)

	_, err := client.Identify(context.Background())
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
}

func TestClient_Get(t *testing.T) {
	instance := `<n1:DCIM_SystemView xmlns:n1="` + ClassResourceURI("DCIM_SystemView") + `">` +
		`<n1:InstanceID>System.Embedded.1</n1:InstanceID>` +
		`<n1:Model>PowerEdge R740</n1:Model>` +
		`<n1:CPLDVersion/>` +
		`</n1:DCIM_SystemView>`

	endpoint := &testEndpoint{handle: func(body string) (int, string) {
		return http.StatusOK, soapEnvelope(instance)
	}}
	client, _ := newTestClient(t, endpoint)

	rec, err := client.Get(context.Background(), "DCIM_SystemView",
		Selectors{{Name: "InstanceID", Value: "System.Embedded.1"}})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Value("Model") != "PowerEdge R740" {
		t.Errorf("Model = %q", rec.Value("Model"))
	}
	if f, ok := rec.Lookup("CPLDVersion"); !ok || !f.Nil() {
		t.Errorf("empty element should be a valueless field: %v", f)
	}

	req := endpoint.request(0)
	if !strings.Contains(req, ActionGet) {
		t.Errorf("request missing Get action:\n%s", req)
	}
	if !strings.Contains(req, `Name="InstanceID"`) || !strings.Contains(req, "System.Embedded.1") {
		t.Errorf("request missing selector:\n%s", req)
	}
}

func TestClient_Get_NotFound(t *testing.T) {
	endpoint := &testEndpoint{handle: func(string) (int, string) {
		return http.StatusOK, soapEnvelope(`<s:Fault>` +
			`<s:Code><s:Value>s:Sender</s:Value><s:Subcode><s:Value>wsman:InvalidSelectors</s:Value></s:Subcode></s:Code>` +
			`<s:Reason><s:Text>No instance found with given selectors.</s:Text></s:Reason>` +
			`</s:Fault>`)
	}}
	client, _ := newTestClient(t, endpoint)

	_, err := client.Get(context.Background(), "DCIM_SystemView",
		Selectors{{Name: "InstanceID", Value: "nope"}})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if notFound.Class != "DCIM_SystemView" {
		t.Errorf("Class = %q", notFound.Class)
	}
}

// enumEndpoint serves an enumeration of DCIM_NICView instances split
// into pages of two.
func enumEndpoint(instances []string) *testEndpoint {
	page := 0
	return &testEndpoint{handle: func(body string) (int, string) {
		switch {
		case strings.Contains(body, "wsen:Enumerate"):
			return http.StatusOK, soapEnvelope(
				`<wsen:EnumerateResponse xmlns:wsen="` + NsEnumeration + `">` +
					`<wsen:EnumerationContext>ctx-0</wsen:EnumerationContext>` +
					`</wsen:EnumerateResponse>`)
		case strings.Contains(body, "wsen:Pull"):
			start := page * 2
			end := start + 2
			last := false
			if end >= len(instances) {
				end = len(instances)
				last = true
			}
			page++

			items := strings.Join(instances[start:end], "")
			resp := `<wsen:PullResponse xmlns:wsen="` + NsEnumeration + `">`
			if last {
				resp += `<wsen:Items>` + items + `</wsen:Items><wsen:EndOfSequence/>`
			} else {
				resp += fmt.Sprintf(`<wsen:EnumerationContext>ctx-%d</wsen:EnumerationContext>`, page)
				resp += `<wsen:Items>` + items + `</wsen:Items>`
			}
			resp += `</wsen:PullResponse>`
			return http.StatusOK, soapEnvelope(resp)
		}
		return http.StatusBadRequest, ""
	}}
}

func nicInstance(fqdd string) string {
	return `<n1:DCIM_NICView xmlns:n1="` + ClassResourceURI("DCIM_NICView") + `">` +
		`<n1:FQDD>` + fqdd + `</n1:FQDD></n1:DCIM_NICView>`
}

func TestClient_Enumerate_MultiPage(t *testing.T) {
	instances := []string{
		nicInstance("NIC.1"), nicInstance("NIC.2"), nicInstance("NIC.3"),
		nicInstance("NIC.4"), nicInstance("NIC.5"),
	}
	endpoint := enumEndpoint(instances)
	client, _ := newTestClient(t, endpoint)

	records, err := client.Enumerate(context.Background(), "DCIM_NICView")
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	for i, rec := range records {
		want := fmt.Sprintf("NIC.%d", i+1)
		if rec.Value("FQDD") != want {
			t.Errorf("record %d = %q, want %q (order must follow responses)", i, rec.Value("FQDD"), want)
		}
	}
	// One Enumerate plus three Pulls.
	if endpoint.requestCount() != 4 {
		t.Errorf("request count = %d, want 4", endpoint.requestCount())
	}
}

// A failure mid-sequence aborts the whole call. A truncated result is
// never returned.
func TestClient_Enumerate_MidSequenceFailure(t *testing.T) {
	calls := 0
	endpoint := &testEndpoint{handle: func(body string) (int, string) {
		switch {
		case strings.Contains(body, "wsen:Enumerate"):
			return http.StatusOK, soapEnvelope(
				`<wsen:EnumerateResponse xmlns:wsen="` + NsEnumeration + `">` +
					`<wsen:EnumerationContext>ctx</wsen:EnumerationContext>` +
					`</wsen:EnumerateResponse>`)
		case strings.Contains(body, "wsen:Pull"):
			calls++
			if calls == 1 {
				return http.StatusOK, soapEnvelope(
					`<wsen:PullResponse xmlns:wsen="` + NsEnumeration + `">` +
						`<wsen:EnumerationContext>ctx2</wsen:EnumerationContext>` +
						`<wsen:Items>` + nicInstance("NIC.1") + `</wsen:Items>` +
						`</wsen:PullResponse>`)
			}
			return http.StatusInternalServerError, "pull context expired"
		}
		return http.StatusBadRequest, ""
	}}
	client, _ := newTestClient(t, endpoint)

	records, err := client.Enumerate(context.Background(), "DCIM_NICView")
	if err == nil {
		t.Fatal("expected mid-sequence failure to abort the call")
	}
	if records != nil {
		t.Errorf("got %d records, want none on failure", len(records))
	}
}

func TestClient_Enumerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	endpoint := enumEndpoint([]string{nicInstance("NIC.1")})
	client, _ := newTestClient(t, endpoint)

	_, err := client.Enumerate(ctx, "DCIM_NICView")
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func serviceInstance(name string) string {
	return `<n1:DCIM_LCService xmlns:n1="` + ClassResourceURI("DCIM_LCService") + `">` +
		`<n1:CreationClassName>DCIM_LCService</n1:CreationClassName>` +
		`<n1:SystemCreationClassName>DCIM_ComputerSystem</n1:SystemCreationClassName>` +
		`<n1:SystemName>DCIM:ComputerSystem</n1:SystemName>` +
		`<n1:Name>` + name + `</n1:Name>` +
		`</n1:DCIM_LCService>`
}

func TestClient_Invoke_AutoDiscovery(t *testing.T) {
	output := `<n1:GetRSStatus_OUTPUT xmlns:n1="` + ClassResourceURI("DCIM_LCService") + `">` +
		`<n1:ReturnValue>0</n1:ReturnValue>` +
		`<n1:Status>Ready</n1:Status>` +
		`</n1:GetRSStatus_OUTPUT>`

	endpoint := &testEndpoint{}
	endpoint.handle = func(body string) (int, string) {
		switch {
		case strings.Contains(body, "wsen:Enumerate"):
			return http.StatusOK, soapEnvelope(
				`<wsen:EnumerateResponse xmlns:wsen="` + NsEnumeration + `">` +
					`<wsen:EnumerationContext>ctx</wsen:EnumerationContext>` +
					`</wsen:EnumerateResponse>`)
		case strings.Contains(body, "wsen:Pull"):
			return http.StatusOK, soapEnvelope(
				`<wsen:PullResponse xmlns:wsen="` + NsEnumeration + `">` +
					`<wsen:Items>` + serviceInstance("DCIM:LCService") + `</wsen:Items>` +
					`<wsen:EndOfSequence/>` +
					`</wsen:PullResponse>`)
		case strings.Contains(body, "GetRSStatus_INPUT"):
			return http.StatusOK, soapEnvelope(output)
		}
		return http.StatusBadRequest, "unexpected request: " + body
	}
	client, _ := newTestClient(t, endpoint)

	rec, err := client.Invoke(context.Background(), "DCIM_LCService", "GetRSStatus", nil, nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if rec.Value("Status") != "Ready" {
		t.Errorf("Status = %q", rec.Value("Status"))
	}

	// Enumerate, Pull, then the Invoke itself.
	if endpoint.requestCount() != 3 {
		t.Fatalf("request count = %d, want 3", endpoint.requestCount())
	}
	invokeReq := endpoint.request(2)
	for _, want := range []string{
		`Name="__cimnamespace"`, "root/dcim",
		`Name="CreationClassName"`, `Name="SystemName"`, `Name="Name"`,
		MethodActionURI("DCIM_LCService", "GetRSStatus"),
	} {
		if !strings.Contains(invokeReq, want) {
			t.Errorf("invoke request missing %q:\n%s", want, invokeReq)
		}
	}
}

// Zero or several discovered instances abort before any Invoke request
// reaches the wire.
func TestClient_Invoke_AmbiguousDiscovery(t *testing.T) {
	endpoint := &testEndpoint{}
	endpoint.handle = func(body string) (int, string) {
		switch {
		case strings.Contains(body, "wsen:Enumerate"):
			return http.StatusOK, soapEnvelope(
				`<wsen:EnumerateResponse xmlns:wsen="` + NsEnumeration + `">` +
					`<wsen:EnumerationContext>ctx</wsen:EnumerationContext>` +
					`</wsen:EnumerateResponse>`)
		case strings.Contains(body, "wsen:Pull"):
			return http.StatusOK, soapEnvelope(
				`<wsen:PullResponse xmlns:wsen="` + NsEnumeration + `">` +
					`<wsen:Items>` + serviceInstance("Svc.1") + serviceInstance("Svc.2") + `</wsen:Items>` +
					`<wsen:EndOfSequence/>` +
					`</wsen:PullResponse>`)
		}
		return http.StatusBadRequest, "unexpected request: " + body
	}
	client, _ := newTestClient(t, endpoint)

	_, err := client.Invoke(context.Background(), "DCIM_LCService", "GetRSStatus", nil, nil)
	var ambiguous *AmbiguousTargetError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected *AmbiguousTargetError, got %v", err)
	}
	if ambiguous.Matches != 2 {
		t.Errorf("Matches = %d", ambiguous.Matches)
	}
	for i := 0; i < endpoint.requestCount(); i++ {
		if strings.Contains(endpoint.request(i), "_INPUT") {
			t.Error("an Invoke request was sent despite ambiguous discovery")
		}
	}
}

func TestClient_Invoke_ExplicitSelectors(t *testing.T) {
	output := `<n1:SetAttribute_OUTPUT xmlns:n1="` + ClassResourceURI("DCIM_BIOSService") + `">` +
		`<n1:ReturnValue>0</n1:ReturnValue>` +
		`</n1:SetAttribute_OUTPUT>`

	endpoint := &testEndpoint{handle: func(body string) (int, string) {
		if strings.Contains(body, "SetAttribute_INPUT") {
			return http.StatusOK, soapEnvelope(output)
		}
		return http.StatusBadRequest, ""
	}}
	client, _ := newTestClient(t, endpoint)

	sel := Selectors{{Name: SelectorCIMNamespace, Value: CIMNamespaceDCIM}, {Name: "InstanceID", Value: "BIOS.Setup.1-1"}}
	rec, err := client.Invoke(context.Background(), "DCIM_BIOSService", "SetAttribute", sel,
		[]Param{{Name: "Target", Value: "BIOS.Setup.1-1"}})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if rec.Value("ReturnValue") != "0" {
		t.Errorf("ReturnValue = %q", rec.Value("ReturnValue"))
	}
	if endpoint.requestCount() != 1 {
		t.Errorf("request count = %d, explicit selectors must skip discovery", endpoint.requestCount())
	}
	if !strings.Contains(endpoint.request(0), "<p:Target>BIOS.Setup.1-1</p:Target>") {
		t.Errorf("invoke request missing parameter:\n%s", endpoint.request(0))
	}
}

// Concurrent calls share one client; each must receive its own
// response.
func TestClient_ConcurrentGets(t *testing.T) {
	endpoint := &testEndpoint{handle: func(body string) (int, string) {
		// Echo the requested selector value back as the instance id.
		start := strings.Index(body, `Name="InstanceID">`)
		if start == -1 {
			return http.StatusBadRequest, ""
		}
		rest := body[start+len(`Name="InstanceID">`):]
		id := rest[:strings.Index(rest, "<")]
		return http.StatusOK, soapEnvelope(
			`<n1:DCIM_SystemView xmlns:n1="` + ClassResourceURI("DCIM_SystemView") + `">` +
				`<n1:InstanceID>` + id + `</n1:InstanceID>` +
				`</n1:DCIM_SystemView>`)
	}}
	client, _ := newTestClient(t, endpoint)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprintf("System.Embedded.%d", i)
			rec, err := client.Get(context.Background(), "DCIM_SystemView",
				Selectors{{Name: "InstanceID", Value: want}})
			if err != nil {
				t.Errorf("Get %d failed: %v", i, err)
				return
			}
			if rec.Value("InstanceID") != want {
				t.Errorf("Get %d returned %q", i, rec.Value("InstanceID"))
			}
		}(i)
	}
	wg.Wait()
}
