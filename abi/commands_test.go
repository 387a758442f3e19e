package abi

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		code uint32
		want Command
		ok   bool
	}{
		{"exact", 10, SetPixelFormat, true},
		{"exact experimental", uint32(GetSensorInterface), GetSensorInterface, true},
		{"experimental missing", 25, GetSensorInterface, true},
		{"experimental added", uint32(10 | Experimental), SetPixelFormat, true},
		{"family 44 plain", 44, SetSerializationQuirks, true},
		{"family 44 experimental", uint32(44 | Experimental), SetHWSharedContext, true},
		{"microphone", uint32(75 | Experimental), GetMicrophoneInterface, true},
		{"private", uint32(10 | Private), 0, false},
		{"private experimental", uint32(75 | Experimental | Private), 0, false},
		{"unknown", 76, 0, false},
		{"zero", 0, 0, false},
		{"beyond table", 5000, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Lookup(tt.code)
			if ok != tt.ok {
				t.Fatalf("Lookup(%#x) ok = %v, want %v", tt.code, ok, tt.ok)
			}
			if ok && s.Code != tt.want {
				t.Errorf("Lookup(%#x) = %s, want %s", tt.code, s.Code, tt.want)
			}
		})
	}
}

func TestSpecs_Unique(t *testing.T) {
	seenCode := make(map[Command]string)
	seenName := make(map[string]bool)
	for _, s := range Specs() {
		if prev, ok := seenCode[s.Code]; ok {
			t.Errorf("code %#x used by %s and %s", uint32(s.Code), prev, s.Name)
		}
		seenCode[s.Code] = s.Name
		if seenName[s.Name] {
			t.Errorf("duplicate name %s", s.Name)
		}
		seenName[s.Name] = true
		if s.Direction < DirGet || s.Direction > DirCommand {
			t.Errorf("%s: bad direction %d", s.Name, s.Direction)
		}
		if (s.Direction == DirCommand) != (s.Shape == "") {
			t.Errorf("%s: direction %s with shape %q", s.Name, s.Direction, s.Shape)
		}
	}
}

func TestSpecs_Copy(t *testing.T) {
	a := Specs()
	a[0].Name = "changed"
	if Specs()[0].Name == "changed" {
		t.Error("Specs returned the shared table")
	}
}

func TestCommand_String(t *testing.T) {
	tests := []struct {
		c    Command
		want string
	}{
		{SetRotation, "SET_ROTATION"},
		{GetLogInterface | Experimental, "GET_LOG_INTERFACE"},
		{SetHWSharedContext, "SET_HW_SHARED_CONTEXT"},
		{Command(999), "Command(0x3e7)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("%d: String() = %q, want %q", uint32(tt.c), got, tt.want)
		}
	}
}

func TestNullableCommands(t *testing.T) {
	for _, c := range []Command{GetInputBitmasks, SetVariable, GetDevicePower, SetNetpacketInterface} {
		s, ok := Lookup(uint32(c))
		if !ok || !s.Nullable {
			t.Errorf("%s should accept a NULL payload", c)
		}
	}
	s, _ := Lookup(uint32(GetVariable))
	if s.Nullable {
		t.Error("GET_VARIABLE should not be nullable")
	}
}

func TestDeviceSubclass(t *testing.T) {
	d := DeviceSubclass(DeviceJoypad, 1)
	if d&DeviceMask != DeviceJoypad {
		t.Errorf("base = %d", d&DeviceMask)
	}
	if d>>DeviceTypeShift != 2 {
		t.Errorf("subclass = %d", d>>DeviceTypeShift)
	}
}

func TestShapesFor(t *testing.T) {
	if ShapesFor(4).PointerSize != 4 || ShapesFor(8).PointerSize != 8 {
		t.Fatal("pointer sizes")
	}
	s := ShapesFor(8)
	if *s.MicrophoneInterface.Name != "retro_microphone_interface" {
		t.Errorf("name = %s", *s.MicrophoneInterface.Name)
	}
}
