package options

import (
	"fmt"
	"strings"
)

// Version identifies how a Set was declared by the core.
type Version uint8

const (
	VersionFlat Version = iota // SET_VARIABLES
	VersionV1                  // SET_CORE_OPTIONS(_INTL)
	VersionV2                  // SET_CORE_OPTIONS_V2(_INTL)
)

func (v Version) String() string {
	switch v {
	case VersionFlat:
		return "flat"
	case VersionV1:
		return "v1"
	case VersionV2:
		return "v2"
	}
	return fmt.Sprintf("version(%d)", uint8(v))
}

// Value is one selectable option value. An empty Label means the value is
// displayed as is.
type Value struct {
	Value string
	Label string
}

// Display returns the label, or the value when there is no label.
func (v Value) Display() string {
	if v.Label != "" {
		return v.Label
	}
	return v.Value
}

// Category groups v2 definitions in a settings UI.
type Category struct {
	Key  string
	Desc string
	Info string
}

// Definition describes one configurable option.
type Definition struct {
	Key             string
	Desc            string
	DescCategorized string
	Info            string
	InfoCategorized string
	Category        string
	Values          []Value
	Default         string
}

// Has reports whether value is one of the declared values.
func (d *Definition) Has(value string) bool {
	for _, v := range d.Values {
		if v.Value == value {
			return true
		}
	}
	return false
}

// Value returns the declared value entry for value.
func (d *Definition) Value(value string) (Value, bool) {
	for _, v := range d.Values {
		if v.Value == value {
			return v, true
		}
	}
	return Value{}, false
}

func (d *Definition) clone() Definition {
	c := *d
	c.Values = append([]Value(nil), d.Values...)
	return c
}

// Set is one complete declaration of a core's options.
type Set struct {
	Categories  []Category
	Definitions []Definition
	Version     Version
}

// Keys returns definition keys in declaration order.
func (s *Set) Keys() []string {
	keys := make([]string, len(s.Definitions))
	for i := range s.Definitions {
		keys[i] = s.Definitions[i].Key
	}
	return keys
}

// Validate checks keys are present and unique and every definition has at
// least one value.
func (s *Set) Validate() error {
	seen := make(map[string]struct{}, len(s.Definitions))
	for i := range s.Definitions {
		d := &s.Definitions[i]
		if d.Key == "" {
			return fmt.Errorf("definition %d: empty key", i)
		}
		if _, dup := seen[d.Key]; dup {
			return fmt.Errorf("definition %q: duplicate key", d.Key)
		}
		seen[d.Key] = struct{}{}
		if len(d.Values) == 0 {
			return fmt.Errorf("definition %q: no values", d.Key)
		}
	}
	return nil
}

// normalize fills in the default when it is missing or not a declared value.
func (s *Set) normalize() {
	for i := range s.Definitions {
		d := &s.Definitions[i]
		if !d.Has(d.Default) {
			d.Default = d.Values[0].Value
		}
	}
}

// Localize returns a copy of us with descriptions and labels taken from local
// where local declares the same key. Keys only present in local are ignored.
func Localize(us, local Set) Set {
	out := Set{
		Version:     us.Version,
		Categories:  append([]Category(nil), us.Categories...),
		Definitions: make([]Definition, len(us.Definitions)),
	}
	for i := range us.Definitions {
		out.Definitions[i] = us.Definitions[i].clone()
	}

	cats := make(map[string]*Category, len(local.Categories))
	for i := range local.Categories {
		cats[local.Categories[i].Key] = &local.Categories[i]
	}
	for i := range out.Categories {
		c := &out.Categories[i]
		if l, ok := cats[c.Key]; ok {
			c.Desc = pick(l.Desc, c.Desc)
			c.Info = pick(l.Info, c.Info)
		}
	}

	defs := make(map[string]*Definition, len(local.Definitions))
	for i := range local.Definitions {
		defs[local.Definitions[i].Key] = &local.Definitions[i]
	}
	for i := range out.Definitions {
		d := &out.Definitions[i]
		l, ok := defs[d.Key]
		if !ok {
			continue
		}
		d.Desc = pick(l.Desc, d.Desc)
		d.DescCategorized = pick(l.DescCategorized, d.DescCategorized)
		d.Info = pick(l.Info, d.Info)
		d.InfoCategorized = pick(l.InfoCategorized, d.InfoCategorized)
		for j := range d.Values {
			if lv, ok := l.Value(d.Values[j].Value); ok && lv.Label != "" {
				d.Values[j].Label = lv.Label
			}
		}
	}
	return out
}

func pick(local, us string) string {
	if local != "" {
		return local
	}
	return us
}

// ParseFlat parses a legacy retro_variable value of the form
// "Description; first|second|third". The first value is the default.
func ParseFlat(key, spec string) (Definition, error) {
	desc, list, ok := strings.Cut(spec, ";")
	if !ok {
		return Definition{}, fmt.Errorf("variable %q: missing ';' in %q", key, spec)
	}
	list = strings.TrimLeft(list, " ")
	if list == "" {
		return Definition{}, fmt.Errorf("variable %q: no values", key)
	}
	parts := strings.Split(list, "|")
	d := Definition{
		Key:     key,
		Desc:    strings.TrimSpace(desc),
		Values:  make([]Value, len(parts)),
		Default: parts[0],
	}
	for i, p := range parts {
		d.Values[i] = Value{Value: p}
	}
	return d, nil
}

// FormatFlat renders d in the legacy "Description; a|b|c" form with the
// default first.
func FormatFlat(d Definition) string {
	vals := make([]string, 0, len(d.Values))
	if d.Has(d.Default) {
		vals = append(vals, d.Default)
	}
	for _, v := range d.Values {
		if v.Value != d.Default {
			vals = append(vals, v.Value)
		}
	}
	return d.Desc + "; " + strings.Join(vals, "|")
}
