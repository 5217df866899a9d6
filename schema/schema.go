package schema

// Document is one validated, immutable schema version: an ordered set
// of class definitions unique by name.
type Document struct {
	Version string

	classes []*Class
	byName  map[string]*Class
}

// Class returns the named class definition.
func (d *Document) Class(name string) (*Class, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// Classes returns every class definition in declaration order.
func (d *Document) Classes() []*Class {
	out := make([]*Class, len(d.classes))
	copy(out, d.classes)
	return out
}

// ClassNames returns the class names in declaration order.
func (d *Document) ClassNames() []string {
	names := make([]string, len(d.classes))
	for i, c := range d.classes {
		names[i] = c.Name
	}
	return names
}

// Class defines one DCIM class: its capability flags, optional declared
// key attribute, attributes, and methods. The flags are non-exclusive.
type Class struct {
	Name        string
	Description string

	// Key names the declared key attribute, empty when none is
	// declared (enumeration then falls back to an "FQDD" attribute or
	// generated keys).
	Key string

	SupportsGet       bool
	SupportsEnumerate bool

	Attributes []*Attribute
	Methods    []*Method

	attrByName   map[string]*Attribute
	methodByName map[string]*Method
}

// HasMethods reports whether the class declares any invokable method.
func (c *Class) HasMethods() bool {
	return len(c.Methods) > 0
}

// Attribute returns the named attribute definition.
func (c *Class) Attribute(name string) (*Attribute, bool) {
	a, ok := c.attrByName[name]
	return a, ok
}

// Method returns the named method definition.
func (c *Class) Method(name string) (*Method, bool) {
	m, ok := c.methodByName[name]
	return m, ok
}

// Attribute defines one class attribute.
type Attribute struct {
	Name        string
	Type        string
	Description string

	// Values maps raw wire codes to labels, nil for unmapped
	// attributes.
	Values *ValueMap
}

// Method defines one invokable method: its ordered parameters and the
// shape of its return body.
type Method struct {
	Name        string
	Description string
	Parameters  []*Parameter
	Returns     Returns

	paramByName map[string]*Parameter
}

// Parameter returns the named parameter definition.
func (m *Method) Parameter(name string) (*Parameter, bool) {
	p, ok := m.paramByName[name]
	return p, ok
}

// RequiredParameters returns the names of required parameters in
// declaration order.
func (m *Method) RequiredParameters() []string {
	var names []string
	for _, p := range m.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Parameter defines one method input parameter.
type Parameter struct {
	Name        string
	Type        string
	Required    bool
	Description string
	Values      *ValueMap
}

// Returns defines a method's output: the designated return-code field,
// the codes counted as success, and the named output fields.
type Returns struct {
	// Attr is the return-code field name, "ReturnValue" by default.
	Attr string

	// Success lists the return codes treated as success. Controllers
	// report 0 for completed calls and 4096 when a job was created.
	Success []string

	Fields []*Attribute

	fieldByName map[string]*Attribute
}

// Field returns the named output field definition.
func (r *Returns) Field(name string) (*Attribute, bool) {
	a, ok := r.fieldByName[name]
	return a, ok
}

// IsSuccess reports whether code is one of the method's success codes.
func (r *Returns) IsSuccess(code string) bool {
	for _, s := range r.Success {
		if s == code {
			return true
		}
	}
	return false
}
