// Package godrac is a Go client for the WS-Man management interface of
// server out-of-band controllers (Dell iDRAC Lifecycle Controller).
//
// The module is layered:
//
//   - wsman: the protocol engine: SOAP envelopes, the Identify / Get /
//     Enumerate / Invoke primitives, fault parsing, and response
//     normalization.
//   - schema: versioned DCIM class definitions loaded from YAML, with a
//     version-keyed registry.
//   - cim: value types crossing the API boundary, QualifiedValue and
//     endpoint references.
//   - dcim: the binding layer, a Session that discovers the endpoint's
//     firmware version, resolves a schema, and exposes each class as a
//     typed Binding.
//
// Most callers only need dcim plus a schema document:
//
//	reg := schema.NewRegistry()
//	doc, err := schema.Load("dcim-2.40.yaml")
//	if err != nil { ... }
//	reg.Add(doc)
//
//	cfg := dcim.DefaultConfig()
//	cfg.Username = "root"
//	cfg.Password = "calvin"
//
//	sess, err := dcim.NewSession("drac-01.example.com", cfg, reg)
//	if err != nil { ... }
//	defer sess.Close()
//
//	if err := sess.Connect(ctx); err != nil { ... }
//	view, _ := sess.Class("DCIM_SystemView")
//	system, err := view.GetByKey(ctx, "System.Embedded.1")
package godrac
