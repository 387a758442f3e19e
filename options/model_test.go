package options

import (
	"sync"
	"testing"
)

func abSet(keys ...string) Set {
	s := Set{Version: VersionV1}
	for _, k := range keys {
		s.Definitions = append(s.Definitions, Definition{
			Key:     k,
			Desc:    k + " desc",
			Values:  []Value{{Value: "a"}, {Value: "b"}},
			Default: "a",
		})
	}
	return s
}

func TestModel_RoundTrip(t *testing.T) {
	m := New()
	if err := m.Define(abSet("k")); err != nil {
		t.Fatal(err)
	}

	if v, ok := m.Get("k"); !ok || v != "a" {
		t.Fatalf("Get before Set = %q, %v; want a", v, ok)
	}
	if !m.Set("k", "b") {
		t.Fatal("Set rejected a declared value")
	}
	if v, _ := m.Get("k"); v != "b" {
		t.Fatalf("Get after Set = %q, want b", v)
	}

	if err := m.Define(abSet("other")); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("k"); ok {
		t.Fatal("k should be absent after redefinition without it")
	}

	if err := m.Define(abSet("k", "other")); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Get("k"); v != "b" {
		t.Fatalf("Get after re-definition = %q, want b", v)
	}
}

func TestModel_SetRejects(t *testing.T) {
	m := New()
	_ = m.Define(abSet("k"))
	m.Set("k", "b")
	m.Updated()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"undeclared value", "k", "z"},
		{"undefined key", "missing", "a"},
		{"empty value", "k", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if m.Set(tt.key, tt.value) {
				t.Fatal("Set should reject")
			}
			if v, _ := m.Get("k"); v != "b" {
				t.Errorf("stored value changed to %q", v)
			}
			if m.Updated() {
				t.Error("rejected Set marked model dirty")
			}
		})
	}
}

func TestModel_InvalidStoredValueMasked(t *testing.T) {
	m := New()
	m.Seed(map[string]string{"k": "zzz"})
	_ = m.Define(abSet("k"))
	if v, _ := m.Get("k"); v != "a" {
		t.Errorf("invalid stored value not masked: %q", v)
	}

	// A later definition that declares the value makes it effective.
	s := abSet("k")
	s.Definitions[0].Values = append(s.Definitions[0].Values, Value{Value: "zzz"})
	_ = m.Define(s)
	if v, _ := m.Get("k"); v != "zzz" {
		t.Errorf("seeded value = %q, want zzz", v)
	}
}

func TestModel_Updated(t *testing.T) {
	m := New()
	_ = m.Define(abSet("k"))
	if m.Updated() {
		t.Fatal("Define must not mark dirty")
	}
	m.Set("k", "a")
	if m.Updated() {
		t.Fatal("setting the current value must not mark dirty")
	}
	m.Set("k", "b")
	if !m.Updated() {
		t.Fatal("changing Set should mark dirty")
	}
	if m.Updated() {
		t.Fatal("Updated should clear the flag")
	}
}

func TestModel_UpdateDisplayCallback(t *testing.T) {
	m := New()
	calls := 0
	m.SetUpdateDisplayCallback(func() {
		calls++
		// the callback may read the model
		m.Get("k")
	})
	_ = m.Define(abSet("k"))
	if calls != 0 {
		t.Fatalf("Define fired callback %d times", calls)
	}
	m.Set("k", "b")
	m.Set("k", "b")
	m.Set("k", "nope")
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	m.SetUpdateDisplayCallback(nil)
	if m.HasUpdateDisplayCallback() {
		t.Fatal("callback should be cleared")
	}
	m.Set("k", "a")
	if calls != 1 {
		t.Fatal("cleared callback fired")
	}
}

func TestModel_Visibility(t *testing.T) {
	m := New()
	_ = m.Define(abSet("k"))
	m.Set("k", "b")

	if !m.Visible("k") || !m.Visible("unknown") {
		t.Fatal("options default to visible")
	}
	m.SetVisible("k", false)
	if m.Visible("k") {
		t.Fatal("k should be hidden")
	}
	if v, _ := m.Get("k"); v != "b" {
		t.Fatal("hiding changed the value")
	}
	_ = m.Define(abSet("k"))
	if m.Visible("k") {
		t.Fatal("visibility should survive redefinition")
	}
}

func TestModel_DefineValidation(t *testing.T) {
	tests := []struct {
		name string
		set  Set
	}{
		{"empty key", Set{Definitions: []Definition{{Values: []Value{{Value: "a"}}}}}},
		{"duplicate key", Set{Definitions: []Definition{
			{Key: "k", Values: []Value{{Value: "a"}}},
			{Key: "k", Values: []Value{{Value: "b"}}},
		}}},
		{"no values", Set{Definitions: []Definition{{Key: "k"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			_ = m.Define(abSet("keep"))
			if err := m.Define(tt.set); err == nil {
				t.Fatal("expected error")
			}
			if _, ok := m.Get("keep"); !ok {
				t.Fatal("failed Define altered the model")
			}
		})
	}
}

func TestModel_DefaultNormalized(t *testing.T) {
	m := New()
	s := Set{Definitions: []Definition{
		{Key: "none", Values: []Value{{Value: "x"}, {Value: "y"}}},
		{Key: "bad", Values: []Value{{Value: "x"}, {Value: "y"}}, Default: "q"},
		{Key: "good", Values: []Value{{Value: "x"}, {Value: "y"}}, Default: "y"},
	}}
	if err := m.Define(s); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"none": "x", "bad": "x", "good": "y"}
	for k, w := range want {
		if v, _ := m.Get(k); v != w {
			t.Errorf("%s = %q, want %q", k, v, w)
		}
	}
}

func TestModel_DefineCopies(t *testing.T) {
	m := New()
	s := abSet("k")
	_ = m.Define(s)
	s.Definitions[0].Values[1].Value = "mutated"
	s.Definitions[0].Key = "renamed"
	if !m.Set("k", "b") {
		t.Fatal("model aliased caller's definitions")
	}

	defs := m.Definitions()
	defs[0].Values[0].Value = "changed"
	if d, _ := m.Definition("k"); d.Values[0].Value != "a" {
		t.Fatal("Definitions returned shared slices")
	}
}

func TestModel_Values(t *testing.T) {
	m := New()
	_ = m.Define(abSet("x", "y"))
	m.Set("y", "b")
	vals := m.Values()
	if len(vals) != 2 || vals["x"] != "a" || vals["y"] != "b" {
		t.Errorf("Values = %v", vals)
	}
}

func TestModel_Concurrent(t *testing.T) {
	m := New()
	_ = m.Define(abSet("k"))
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if (i+j)%2 == 0 {
					m.Set("k", "a")
				} else {
					m.Set("k", "b")
				}
				m.Get("k")
				m.Updated()
			}
		}(i)
	}
	wg.Wait()
	if v, _ := m.Get("k"); v != "a" && v != "b" {
		t.Errorf("value = %q", v)
	}
}
