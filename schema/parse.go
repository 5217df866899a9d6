package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultReturnAttr is the return-code field checked after an Invoke
// when a method declares no other.
const DefaultReturnAttr = "ReturnValue"

// defaultSuccessCodes covers the common controller convention: 0 for a
// completed call, 4096 when a job was created instead.
var defaultSuccessCodes = []string{"0", "4096"}

var knownTypes = map[string]bool{
	"string":   true,
	"integer":  true,
	"boolean":  true,
	"datetime": true,
}

// rawDocument is the YAML shape of a schema document.
type rawDocument struct {
	Version string     `yaml:"version"`
	Classes []rawClass `yaml:"classes"`
}

type rawClass struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Key         string         `yaml:"key"`
	Get         bool           `yaml:"get"`
	Enumerate   bool           `yaml:"enumerate"`
	Attributes  []rawAttribute `yaml:"attributes"`
	Methods     []rawMethod    `yaml:"methods"`
}

type rawAttribute struct {
	Name        string       `yaml:"name"`
	Type        string       `yaml:"type"`
	Description string       `yaml:"description"`
	Values      []rawMapping `yaml:"values"`
}

// Value maps are YAML sequences, not mappings, so duplicate codes
// survive parsing and can be rejected by validation.
type rawMapping struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
}

type rawMethod struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Parameters  []rawParameter `yaml:"parameters"`
	Returns     rawReturns     `yaml:"returns"`
}

type rawParameter struct {
	Name        string       `yaml:"name"`
	Type        string       `yaml:"type"`
	Required    bool         `yaml:"required"`
	Description string       `yaml:"description"`
	Values      []rawMapping `yaml:"values"`
}

type rawReturns struct {
	Attr    string         `yaml:"attr"`
	Success []string       `yaml:"success"`
	Fields  []rawAttribute `yaml:"fields"`
}

// Parse parses and validates a YAML schema document. Any violation of
// the document contract (missing version, duplicate class names, a
// declared key without a matching attribute, duplicate value-map codes)
// returns a *SchemaError and no document.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("parsing document: %v", err)}
	}
	return buildDocument(&raw)
}

// Load reads and parses a YAML schema document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

func buildDocument(raw *rawDocument) (*Document, error) {
	if raw.Version == "" {
		return nil, &SchemaError{Reason: "document missing version"}
	}
	if len(raw.Classes) == 0 {
		return nil, &SchemaError{Reason: "document declares no classes"}
	}

	doc := &Document{
		Version: raw.Version,
		byName:  make(map[string]*Class, len(raw.Classes)),
	}

	for _, rc := range raw.Classes {
		class, err := buildClass(&rc)
		if err != nil {
			return nil, err
		}
		if _, dup := doc.byName[class.Name]; dup {
			return nil, &SchemaError{Class: class.Name, Reason: "duplicate class name"}
		}
		doc.classes = append(doc.classes, class)
		doc.byName[class.Name] = class
	}

	return doc, nil
}

func buildClass(raw *rawClass) (*Class, error) {
	if raw.Name == "" {
		return nil, &SchemaError{Reason: "class missing name"}
	}

	class := &Class{
		Name:              raw.Name,
		Description:       raw.Description,
		Key:               raw.Key,
		SupportsGet:       raw.Get,
		SupportsEnumerate: raw.Enumerate,
		attrByName:        make(map[string]*Attribute, len(raw.Attributes)),
		methodByName:      make(map[string]*Method, len(raw.Methods)),
	}

	for _, ra := range raw.Attributes {
		attr, err := buildAttribute(class.Name, &ra)
		if err != nil {
			return nil, err
		}
		if _, dup := class.attrByName[attr.Name]; dup {
			return nil, &SchemaError{Class: class.Name, Reason: "duplicate attribute " + attr.Name}
		}
		class.Attributes = append(class.Attributes, attr)
		class.attrByName[attr.Name] = attr
	}

	if class.Key != "" {
		if _, ok := class.attrByName[class.Key]; !ok {
			return nil, &SchemaError{
				Class:  class.Name,
				Reason: "declared key attribute " + class.Key + " not among attributes",
			}
		}
	}

	for _, rm := range raw.Methods {
		method, err := buildMethod(class.Name, &rm)
		if err != nil {
			return nil, err
		}
		if _, dup := class.methodByName[method.Name]; dup {
			return nil, &SchemaError{Class: class.Name, Reason: "duplicate method " + method.Name}
		}
		class.Methods = append(class.Methods, method)
		class.methodByName[method.Name] = method
	}

	return class, nil
}

func buildAttribute(className string, raw *rawAttribute) (*Attribute, error) {
	if raw.Name == "" {
		return nil, &SchemaError{Class: className, Reason: "attribute missing name"}
	}
	typ, err := normalizeType(className, raw.Name, raw.Type)
	if err != nil {
		return nil, err
	}
	values, err := buildValueMap(className, raw.Name, raw.Values)
	if err != nil {
		return nil, err
	}
	return &Attribute{
		Name:        raw.Name,
		Type:        typ,
		Description: raw.Description,
		Values:      values,
	}, nil
}

func buildMethod(className string, raw *rawMethod) (*Method, error) {
	if raw.Name == "" {
		return nil, &SchemaError{Class: className, Reason: "method missing name"}
	}

	method := &Method{
		Name:        raw.Name,
		Description: raw.Description,
		paramByName: make(map[string]*Parameter, len(raw.Parameters)),
	}

	for _, rp := range raw.Parameters {
		if rp.Name == "" {
			return nil, &SchemaError{Class: className, Reason: "method " + method.Name + ": parameter missing name"}
		}
		typ, err := normalizeType(className, method.Name+"."+rp.Name, rp.Type)
		if err != nil {
			return nil, err
		}
		values, err := buildValueMap(className, method.Name+"."+rp.Name, rp.Values)
		if err != nil {
			return nil, err
		}
		param := &Parameter{
			Name:        rp.Name,
			Type:        typ,
			Required:    rp.Required,
			Description: rp.Description,
			Values:      values,
		}
		if _, dup := method.paramByName[param.Name]; dup {
			return nil, &SchemaError{Class: className, Reason: "method " + method.Name + ": duplicate parameter " + param.Name}
		}
		method.Parameters = append(method.Parameters, param)
		method.paramByName[param.Name] = param
	}

	returns, err := buildReturns(className, method.Name, &raw.Returns)
	if err != nil {
		return nil, err
	}
	method.Returns = *returns

	return method, nil
}

func buildReturns(className, methodName string, raw *rawReturns) (*Returns, error) {
	returns := &Returns{
		Attr:        raw.Attr,
		Success:     raw.Success,
		fieldByName: make(map[string]*Attribute, len(raw.Fields)),
	}
	if returns.Attr == "" {
		returns.Attr = DefaultReturnAttr
	}
	if len(returns.Success) == 0 {
		returns.Success = append([]string(nil), defaultSuccessCodes...)
	}

	for _, rf := range raw.Fields {
		field, err := buildAttribute(className, &rf)
		if err != nil {
			return nil, err
		}
		if _, dup := returns.fieldByName[field.Name]; dup {
			return nil, &SchemaError{Class: className, Reason: "method " + methodName + ": duplicate return field " + field.Name}
		}
		returns.Fields = append(returns.Fields, field)
		returns.fieldByName[field.Name] = field
	}

	return returns, nil
}

func buildValueMap(className, owner string, raw []rawMapping) (*ValueMap, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	pairs := make([]Mapping, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, rm := range raw {
		if rm.Code == "" {
			return nil, &SchemaError{Class: className, Reason: owner + ": value mapping missing code"}
		}
		if seen[rm.Code] {
			return nil, &SchemaError{Class: className, Reason: owner + ": duplicate value-map code " + rm.Code}
		}
		seen[rm.Code] = true
		pairs = append(pairs, Mapping{Code: rm.Code, Label: rm.Label})
	}
	return NewValueMap(pairs), nil
}

func normalizeType(className, owner, typ string) (string, error) {
	if typ == "" {
		return "string", nil
	}
	if !knownTypes[typ] {
		return "", &SchemaError{Class: className, Reason: owner + ": unknown type " + typ}
	}
	return typ, nil
}
