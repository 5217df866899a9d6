package cim

import (
	"fmt"
	"io"

	"github.com/oobmgmt/go-drac/schema"
)

// QualifiedValue pairs a raw wire value with its schema metadata. The
// mapped value is the value map's label for the raw code, falling back
// to the raw code itself when no mapping exists. Controllers answer
// with absent (self-closing) elements for unset attributes; those
// surface as a QualifiedValue with Present() == false, never as a
// literal placeholder string.
type QualifiedValue struct {
	raw         string
	present     bool
	values      *schema.ValueMap
	description string
}

// NewQualifiedValue builds a qualified value from a raw wire value.
// values and description may be zero when the schema declares none.
func NewQualifiedValue(raw string, values *schema.ValueMap, description string) QualifiedValue {
	return QualifiedValue{
		raw:         raw,
		present:     true,
		values:      values,
		description: description,
	}
}

// AbsentQualifiedValue builds the marker for an attribute the endpoint
// reported without a value.
func AbsentQualifiedValue(values *schema.ValueMap, description string) QualifiedValue {
	return QualifiedValue{values: values, description: description}
}

// Present reports whether the endpoint supplied a value at all.
func (q QualifiedValue) Present() bool {
	return q.present
}

// Value returns the mapped value: the value map's label for the raw
// code, or the raw code itself when unmapped. Absent values render
// empty.
func (q QualifiedValue) Value() string {
	if !q.present {
		return ""
	}
	return q.values.Label(q.raw)
}

// Unmapped returns the raw value exactly as the endpoint sent it.
func (q QualifiedValue) Unmapped() string {
	return q.raw
}

// Description returns the schema description for this value, if any.
func (q QualifiedValue) Description() string {
	return q.description
}

// ValueMap returns the value map in effect, nil when unmapped.
func (q QualifiedValue) ValueMap() *schema.ValueMap {
	return q.values
}

func (q QualifiedValue) String() string {
	return q.Value()
}

// Format renders the mapped value for %v and %s; the %+v form shows
// both sides of the mapping as "raw -> value" for debugging.
func (q QualifiedValue) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('+') {
		if !q.present {
			io.WriteString(f, "<absent>")
			return
		}
		fmt.Fprintf(f, "%s -> %s", q.raw, q.Value())
		return
	}
	io.WriteString(f, q.Value())
}
