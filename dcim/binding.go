package dcim

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/oobmgmt/go-drac/cim"
	"github.com/oobmgmt/go-drac/schema"
	"github.com/oobmgmt/go-drac/wsman"
)

// fallbackKeyAttr keys enumerations of classes that declare no key
// attribute. Controllers put the fully-qualified device descriptor
// here.
const fallbackKeyAttr = "FQDD"

// Args holds named method arguments. Accepted value types: string,
// int, bool, cim.QualifiedValue (its raw value is used), []string for
// array parameters, and endpoint-reference types (cim.Reference,
// cim.SoftwareIdentity).
type Args map[string]any

// Binding is one schema class bound to a live session. It combines the
// capability surfaces the schema declares for the class: Get,
// Enumerate, and method invocation. A call against an undeclared
// surface fails with CapabilityError before any request is sent.
type Binding struct {
	client protocolClient
	class  *schema.Class
	logger *slog.Logger
}

// Name returns the bound class name.
func (b *Binding) Name() string {
	return b.class.Name
}

// Description returns the schema description of the class.
func (b *Binding) Description() string {
	return b.class.Description
}

// Key returns the declared key attribute name, empty when none.
func (b *Binding) Key() string {
	return b.class.Key
}

// Gettable reports whether the class supports Get.
func (b *Binding) Gettable() bool {
	return b.class.SupportsGet
}

// Enumerable reports whether the class supports Enumerate.
func (b *Binding) Enumerable() bool {
	return b.class.SupportsEnumerate
}

// Invokable reports whether the class declares methods.
func (b *Binding) Invokable() bool {
	return b.class.HasMethods()
}

// Methods returns the class's method definitions in declaration order.
func (b *Binding) Methods() []*schema.Method {
	out := make([]*schema.Method, len(b.class.Methods))
	copy(out, b.class.Methods)
	return out
}

// Method returns the named method definition.
func (b *Binding) Method(name string) (*schema.Method, bool) {
	return b.class.Method(name)
}

// Get fetches the instance addressed by the explicit selector set.
func (b *Binding) Get(ctx context.Context, sel wsman.Selectors) (*ManagedInstance, error) {
	if !b.Gettable() {
		return nil, &CapabilityError{Class: b.class.Name, Capability: "get"}
	}

	record, err := b.client.Get(ctx, b.class.Name, sel)
	if err != nil {
		return nil, err
	}
	return newManagedInstance(b.class, record), nil
}

// GetByKey fetches the instance whose key attribute equals value. The
// declared key attribute is used; classes without one fall back to
// InstanceID. value may be a string or a QualifiedValue from an
// earlier call.
func (b *Binding) GetByKey(ctx context.Context, value any) (*ManagedInstance, error) {
	key := b.class.Key
	if key == "" {
		b.logger.Debug("class declares no key attribute, using InstanceID",
			slog.String("class", b.class.Name))
		key = "InstanceID"
	}

	raw, err := argValue(value)
	if err != nil {
		return nil, fmt.Errorf("get %s by key: %w", b.class.Name, err)
	}

	return b.Get(ctx, wsman.Selectors{{Name: key, Value: raw}})
}

// Enumerate lists every instance of the class and derives the keyed
// mapping: the declared key attribute's raw value, else a literal
// "FQDD" attribute, else a generated "Class.N" name. A derivation
// producing the same key twice fails with DuplicateKeyError.
func (b *Binding) Enumerate(ctx context.Context) (*Enumeration, error) {
	if !b.Enumerable() {
		return nil, &CapabilityError{Class: b.class.Name, Capability: "enumerate"}
	}

	records, err := b.client.Enumerate(ctx, b.class.Name)
	if err != nil {
		return nil, err
	}

	enum := &Enumeration{byKey: make(map[string]*ManagedInstance, len(records))}
	for i, record := range records {
		instance := newManagedInstance(b.class, record)
		key := b.deriveKey(instance, i)
		if _, dup := enum.byKey[key]; dup {
			return nil, &DuplicateKeyError{Class: b.class.Name, Key: key}
		}
		enum.instances = append(enum.instances, instance)
		enum.keys = append(enum.keys, key)
		enum.byKey[key] = instance
	}

	b.logger.Debug("enumerated class",
		slog.String("class", b.class.Name),
		slog.Int("instances", enum.Len()))

	return enum, nil
}

func (b *Binding) deriveKey(instance *ManagedInstance, index int) string {
	if b.class.Key != "" {
		if value, ok := instance.Raw(b.class.Key); ok {
			return value
		}
	} else if value, ok := instance.Raw(fallbackKeyAttr); ok {
		return value
	}
	return fmt.Sprintf("%s.%d", b.class.Name, index)
}

// Invoke calls the named method with selector auto-discovery: the
// class is enumerated and the call proceeds only when exactly one
// instance exists.
func (b *Binding) Invoke(ctx context.Context, method string, args Args) (*InvokeResult, error) {
	return b.invoke(ctx, nil, method, args)
}

// InvokeOn calls the named method on the instance addressed by the
// explicit selector set, skipping auto-discovery.
func (b *Binding) InvokeOn(ctx context.Context, sel wsman.Selectors, method string, args Args) (*InvokeResult, error) {
	return b.invoke(ctx, sel, method, args)
}

func (b *Binding) invoke(ctx context.Context, sel wsman.Selectors, method string, args Args) (*InvokeResult, error) {
	if !b.Invokable() {
		return nil, &CapabilityError{Class: b.class.Name, Capability: "invoke"}
	}
	def, ok := b.class.Method(method)
	if !ok {
		return nil, &InvalidArgumentError{Class: b.class.Name, Method: method, Reason: "no such method"}
	}

	params, err := b.buildParams(def, args)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("invoking method",
		slog.String("class", b.class.Name),
		slog.String("method", def.Name),
		slog.Int("params", len(params)))

	record, err := b.client.Invoke(ctx, b.class.Name, def.Name, sel, params)
	if err != nil {
		return nil, err
	}

	result := &InvokeResult{
		class:   b.class.Name,
		method:  def.Name,
		returns: &def.Returns,
		record:  record,
	}

	code := result.ReturnCode()
	if !def.Returns.IsSuccess(code) {
		return nil, b.remoteError(def, code, record)
	}
	return result, nil
}

func (b *Binding) remoteError(def *schema.Method, code string, record *wsman.Record) error {
	remoteErr := &RemoteOperationError{
		Class:  b.class.Name,
		Method: def.Name,
		Code:   code,
	}
	if field, ok := record.Lookup("MessageID"); ok {
		remoteErr.MessageID = field.Value()
	}
	if field, ok := record.Lookup("Message"); ok {
		remoteErr.Message = field.Value()
	}
	if field, ok := record.Lookup("MessageArguments"); ok && !field.Nil() {
		remoteErr.MessageArgs = append(remoteErr.MessageArgs, field.Values...)
	}
	return remoteErr
}

// buildParams validates and normalizes arguments into wire parameters,
// in parameter declaration order. All failures happen before any
// network traffic.
func (b *Binding) buildParams(def *schema.Method, args Args) ([]wsman.Param, error) {
	for name := range args {
		if _, ok := def.Parameter(name); !ok {
			return nil, &InvalidArgumentError{
				Class:  b.class.Name,
				Method: def.Name,
				Arg:    name,
				Reason: "not a parameter of this method",
			}
		}
	}

	var params []wsman.Param
	for _, p := range def.Parameters {
		value, supplied := args[p.Name]
		if !supplied {
			if p.Required {
				return nil, &InvalidArgumentError{
					Class:  b.class.Name,
					Method: def.Name,
					Arg:    p.Name,
					Reason: "required parameter missing",
				}
			}
			continue
		}

		converted, err := b.convertArg(def, p, value)
		if err != nil {
			return nil, err
		}
		params = append(params, converted...)
	}
	return params, nil
}

func (b *Binding) convertArg(def *schema.Method, p *schema.Parameter, value any) ([]wsman.Param, error) {
	switch v := value.(type) {
	case wsman.ReferenceMarshaler:
		return []wsman.Param{{Name: p.Name, Ref: v}}, nil
	case []string:
		params := make([]wsman.Param, 0, len(v))
		for _, item := range v {
			raw, err := b.normalizeArg(def, p, item)
			if err != nil {
				return nil, err
			}
			params = append(params, wsman.Param{Name: p.Name, Value: raw})
		}
		return params, nil
	default:
		text, err := argValue(value)
		if err != nil {
			return nil, &InvalidArgumentError{
				Class:  b.class.Name,
				Method: def.Name,
				Arg:    p.Name,
				Reason: err.Error(),
			}
		}
		raw, err := b.normalizeArg(def, p, text)
		if err != nil {
			return nil, err
		}
		return []wsman.Param{{Name: p.Name, Value: raw}}, nil
	}
}

// normalizeArg resolves a value-mapped argument to its raw code,
// accepting the code itself or the mapped label.
func (b *Binding) normalizeArg(def *schema.Method, p *schema.Parameter, input string) (string, error) {
	raw, ok := p.Values.Normalize(input)
	if !ok {
		return "", &InvalidArgumentError{
			Class:  b.class.Name,
			Method: def.Name,
			Arg:    p.Name,
			Reason: fmt.Sprintf("value %q matches neither a mapped code nor a label", input),
		}
	}
	return raw, nil
}

// argValue renders a scalar argument as its wire string. Qualified
// values from earlier calls are accepted and contribute their raw
// value.
func argValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case cim.QualifiedValue:
		return v.Unmapped(), nil
	case *cim.QualifiedValue:
		return v.Unmapped(), nil
	default:
		return "", fmt.Errorf("unsupported argument type %T", value)
	}
}
