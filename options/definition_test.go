package options

import (
	"testing"
)

func TestParseFlat(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		desc    string
		values  []string
		wantErr bool
	}{
		{"standard", "Region; Auto|NTSC|PAL", "Region", []string{"Auto", "NTSC", "PAL"}, false},
		{"no space", "Region;Auto|PAL", "Region", []string{"Auto", "PAL"}, false},
		{"single", "Turbo; off", "Turbo", []string{"off"}, false},
		{"empty entry kept", "Mode; |x", "Mode", []string{"", "x"}, false},
		{"missing separator", "Region Auto|PAL", "", nil, true},
		{"no values", "Region; ", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseFlat("k", tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", d)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if d.Desc != tt.desc {
				t.Errorf("Desc = %q, want %q", d.Desc, tt.desc)
			}
			if len(d.Values) != len(tt.values) {
				t.Fatalf("values = %+v", d.Values)
			}
			for i, v := range tt.values {
				if d.Values[i].Value != v {
					t.Errorf("value %d = %q, want %q", i, d.Values[i].Value, v)
				}
			}
			if d.Default != tt.values[0] {
				t.Errorf("Default = %q", d.Default)
			}
		})
	}
}

func TestFormatFlat(t *testing.T) {
	d := Definition{
		Desc:    "Region",
		Values:  []Value{{Value: "Auto"}, {Value: "NTSC"}, {Value: "PAL"}},
		Default: "PAL",
	}
	if got := FormatFlat(d); got != "Region; PAL|Auto|NTSC" {
		t.Errorf("FormatFlat = %q", got)
	}
	parsed, err := ParseFlat("r", FormatFlat(d))
	if err != nil || parsed.Default != "PAL" {
		t.Errorf("reparse = %+v, %v", parsed, err)
	}
}

func TestLocalize(t *testing.T) {
	us := Set{
		Version:    VersionV2,
		Categories: []Category{{Key: "video", Desc: "Video"}},
		Definitions: []Definition{
			{
				Key: "k", Desc: "Speed", Info: "How fast", Category: "video",
				Values:  []Value{{Value: "fast", Label: "Fast"}, {Value: "slow"}},
				Default: "fast",
			},
			{Key: "untouched", Desc: "Other", Values: []Value{{Value: "x"}}},
		},
	}
	local := Set{
		Categories: []Category{{Key: "video", Desc: "Vidéo"}},
		Definitions: []Definition{
			{Key: "k", Desc: "Vitesse", Values: []Value{{Value: "slow", Label: "Lent"}, {Value: "fast"}}},
			{Key: "extra", Desc: "ignored", Values: []Value{{Value: "x"}}},
		},
	}

	out := Localize(us, local)
	if len(out.Definitions) != 2 {
		t.Fatalf("local-only keys must not be added: %d defs", len(out.Definitions))
	}
	k := out.Definitions[0]
	if k.Desc != "Vitesse" {
		t.Errorf("Desc = %q", k.Desc)
	}
	if k.Info != "How fast" {
		t.Errorf("Info should fall back to us, got %q", k.Info)
	}
	if k.Values[0].Label != "Fast" || k.Values[1].Label != "Lent" {
		t.Errorf("labels = %+v", k.Values)
	}
	if out.Categories[0].Desc != "Vidéo" {
		t.Errorf("category = %q", out.Categories[0].Desc)
	}
	if us.Definitions[0].Desc != "Speed" || us.Definitions[0].Values[1].Label != "" {
		t.Error("Localize modified its input")
	}
}

func TestDefineLocalized(t *testing.T) {
	m := New()
	us := abSet("k")
	local := Set{Definitions: []Definition{{Key: "k", Desc: "localized"}}}
	if err := m.DefineLocalized(us, local); err != nil {
		t.Fatal(err)
	}
	d, ok := m.Definition("k")
	if !ok || d.Desc != "localized" {
		t.Errorf("Definition = %+v, %v", d, ok)
	}
	if m.Version() != VersionV1 {
		t.Errorf("Version = %v", m.Version())
	}
}

func TestValueDisplay(t *testing.T) {
	if (Value{Value: "a"}).Display() != "a" {
		t.Error("no label")
	}
	if (Value{Value: "a", Label: "A"}).Display() != "A" {
		t.Error("label")
	}
	if VersionV2.String() != "v2" {
		t.Error("Version.String")
	}
}
