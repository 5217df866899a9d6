package schema

import "strings"

// Mapping is one raw-code/label pair of a value map.
type Mapping struct {
	Code  string
	Label string
}

// ValueMap is an ordered, bijective mapping between raw wire codes and
// human-readable labels. Codes are unique within a map; uniqueness is
// enforced when the enclosing document is loaded.
type ValueMap struct {
	pairs  []Mapping
	byCode map[string]string
}

// NewValueMap builds a value map from ordered code/label pairs.
func NewValueMap(pairs []Mapping) *ValueMap {
	m := &ValueMap{
		pairs:  pairs,
		byCode: make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		m.byCode[p.Code] = p.Label
	}
	return m
}

// Len returns the number of mappings.
func (m *ValueMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.pairs)
}

// Mappings returns the code/label pairs in declaration order.
func (m *ValueMap) Mappings() []Mapping {
	if m == nil {
		return nil
	}
	out := make([]Mapping, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// Label returns the label for a raw code. Unmapped codes map to
// themselves.
func (m *ValueMap) Label(raw string) string {
	if m == nil {
		return raw
	}
	if label, ok := m.byCode[raw]; ok {
		return label
	}
	return raw
}

// Normalize resolves caller input to a raw code. It accepts either the
// raw code itself or a label, matched case-insensitively; labels win
// over codes when both could match. Input matching neither returns
// ok=false.
func (m *ValueMap) Normalize(input string) (raw string, ok bool) {
	if m == nil || len(m.pairs) == 0 {
		return input, true
	}
	for _, p := range m.pairs {
		if strings.EqualFold(p.Label, input) {
			return p.Code, true
		}
	}
	if _, found := m.byCode[input]; found {
		return input, true
	}
	return "", false
}
