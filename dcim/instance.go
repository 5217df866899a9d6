package dcim

import (
	"github.com/oobmgmt/go-drac/cim"
	"github.com/oobmgmt/go-drac/schema"
	"github.com/oobmgmt/go-drac/wsman"
)

// ManagedInstance is one remote instance with schema-qualified
// attribute access. Attribute order follows the response; instances
// hold no reference back to the session.
type ManagedInstance struct {
	class  *schema.Class
	record *wsman.Record
}

func newManagedInstance(class *schema.Class, record *wsman.Record) *ManagedInstance {
	return &ManagedInstance{class: class, record: record}
}

// Class returns the instance's class name.
func (m *ManagedInstance) Class() string {
	return m.class.Name
}

// Names returns the attribute names in response order.
func (m *ManagedInstance) Names() []string {
	return m.record.Names()
}

// Attr returns the named attribute as a QualifiedValue. For
// array-valued attributes it returns the first element. ok is false
// when the response carried no such attribute at all.
func (m *ManagedInstance) Attr(name string) (cim.QualifiedValue, bool) {
	field, ok := m.record.Lookup(name)
	if !ok {
		return cim.QualifiedValue{}, false
	}
	return m.qualify(name, field), true
}

// AttrValues returns an array-valued attribute as ordered
// QualifiedValues, one per repeated element.
func (m *ManagedInstance) AttrValues(name string) ([]cim.QualifiedValue, bool) {
	field, ok := m.record.Lookup(name)
	if !ok {
		return nil, false
	}

	values, description := m.attrMeta(name)
	if field.Nil() {
		return []cim.QualifiedValue{cim.AbsentQualifiedValue(values, description)}, true
	}

	out := make([]cim.QualifiedValue, len(field.Values))
	for i, raw := range field.Values {
		out[i] = cim.NewQualifiedValue(raw, values, description)
	}
	return out, true
}

// Raw returns the unqualified string value of an attribute, ok=false
// when absent or valueless. Key derivation and selector building use
// raw values.
func (m *ManagedInstance) Raw(name string) (string, bool) {
	field, ok := m.record.Lookup(name)
	if !ok || field.Nil() {
		return "", false
	}
	return field.Value(), true
}

// Reference returns an endpoint reference addressing this instance via
// the given key attribute.
func (m *ManagedInstance) Reference(key string) (*cim.Reference, bool) {
	value, ok := m.Raw(key)
	if !ok {
		return nil, false
	}
	return cim.NewReference(m.class.Name, wsman.Selectors{{Name: key, Value: value}}), true
}

func (m *ManagedInstance) qualify(name string, field wsman.Field) cim.QualifiedValue {
	values, description := m.attrMeta(name)
	if field.Nil() {
		return cim.AbsentQualifiedValue(values, description)
	}
	return cim.NewQualifiedValue(field.Value(), values, description)
}

func (m *ManagedInstance) attrMeta(name string) (*schema.ValueMap, string) {
	if attr, ok := m.class.Attribute(name); ok {
		return attr.Values, attr.Description
	}
	// Responses routinely carry attributes the schema does not declare;
	// they pass through unmapped.
	return nil, ""
}

// Enumeration is the result of enumerating a class: the instances in
// response order plus a derived keyed mapping covering each instance
// exactly once.
type Enumeration struct {
	instances []*ManagedInstance
	keys      []string
	byKey     map[string]*ManagedInstance
}

// Len returns the number of instances.
func (e *Enumeration) Len() int {
	return len(e.instances)
}

// Instances returns the instances in response order.
func (e *Enumeration) Instances() []*ManagedInstance {
	out := make([]*ManagedInstance, len(e.instances))
	copy(out, e.instances)
	return out
}

// Keys returns the derived keys in response order.
func (e *Enumeration) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

// ByKey returns the instance with the derived key.
func (e *Enumeration) ByKey(key string) (*ManagedInstance, bool) {
	m, ok := e.byKey[key]
	return m, ok
}

// InvokeResult is the qualified output of a successfully invoked
// method.
type InvokeResult struct {
	class   string
	method  string
	returns *schema.Returns
	record  *wsman.Record
}

// Class returns the invoked class name.
func (r *InvokeResult) Class() string {
	return r.class
}

// Method returns the invoked method name.
func (r *InvokeResult) Method() string {
	return r.method
}

// Names returns the output field names in response order.
func (r *InvokeResult) Names() []string {
	return r.record.Names()
}

// Field returns the named output field as a QualifiedValue per the
// method's return definition.
func (r *InvokeResult) Field(name string) (cim.QualifiedValue, bool) {
	field, ok := r.record.Lookup(name)
	if !ok {
		return cim.QualifiedValue{}, false
	}

	var values *schema.ValueMap
	var description string
	if def, defined := r.returns.Field(name); defined {
		values = def.Values
		description = def.Description
	}
	if field.Nil() {
		return cim.AbsentQualifiedValue(values, description), true
	}
	return cim.NewQualifiedValue(field.Value(), values, description), true
}

// ReturnCode returns the raw value of the designated return-code
// field.
func (r *InvokeResult) ReturnCode() string {
	if field, ok := r.record.Lookup(r.returns.Attr); ok {
		return field.Value()
	}
	return ""
}

// JobID returns the created job's instance ID when the method queued a
// job ("JID_..." in the Job output field).
func (r *InvokeResult) JobID() (string, bool) {
	field, ok := r.record.Lookup("Job")
	if !ok || field.Nil() {
		return "", false
	}
	return field.Value(), true
}
