// Package dcim is the schema-driven binding layer: a Session connects
// to one management endpoint, discovers its firmware version, resolves
// the matching schema document, and exposes every schema class as a
// Binding combining the Get/Enumerate/Invoke capability surfaces the
// schema declares.
//
// Bindings are built once at Connect and are immutable afterwards;
// concurrent calls against the same session are safe.
//
//	reg := schema.NewRegistry()
//	reg.Add(doc)
//
//	sess, err := dcim.NewSession("drac-01.example.com", dcim.DefaultConfig(), reg)
//	if err != nil { ... }
//	if err := sess.Connect(ctx); err != nil { ... }
//
//	bios, _ := sess.Class("DCIM_BIOSEnumeration")
//	enum, err := bios.Enumerate(ctx)
package dcim
