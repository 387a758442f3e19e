package runtime

import (
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/engine"
	"github.com/wippyai/retro-runtime/transcoder"
)

// newRecord allocates a zeroed struct in the fake core's memory.
func newRecord(t *testing.T, c *fakeCore, td *wit.TypeDef) *transcoder.Record {
	t.Helper()
	r, err := c.codec.NewRecord(c.arena, td)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	return r
}

// newArray allocates n zeroed structs laid out as a C array.
func newArray(t *testing.T, c *fakeCore, td *wit.TypeDef, n int) []*transcoder.Record {
	t.Helper()
	size := c.codec.SizeOf(td)
	base, err := c.arena.Alloc(size*uint32(n), 8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	recs, err := c.codec.Array(td, base, n)
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	return recs
}

func u32Payload(t *testing.T, c *fakeCore, v uint32) uint64 {
	t.Helper()
	ptr, err := c.arena.Alloc(4, 4)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := c.arena.WriteU32(ptr, v); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	return ptr
}

// variables builds a NULL-terminated retro_variable array from key/value
// pairs.
func variables(t *testing.T, c *fakeCore, pairs ...string) uint64 {
	t.Helper()
	recs := newArray(t, c, c.codec.Shapes().Variable, len(pairs)/2+1)
	for i := 0; i+1 < len(pairs); i += 2 {
		r := recs[i/2]
		r.SetPtr("key", c.arena.CString(pairs[i]))
		r.SetPtr("value", c.arena.CString(pairs[i+1]))
	}
	return recs[0].Addr()
}

func TestDispatchUnknownCommand(t *testing.T) {
	c := newFakeCore()
	s := newTestSession(t, c, driver.Registry{})
	payload := u32Payload(t, c, 0)

	for _, code := range []uint32{0, 4, 9999, uint32(abi.Private) | 1, uint32(abi.Experimental) | 9999} {
		if s.Dispatch(code, payload) {
			t.Errorf("Dispatch(%#x) = true, want false", code)
		}
	}
}

func TestDispatchThroughEnvironmentCallback(t *testing.T) {
	c := newFakeCore()
	s := newTestSession(t, c, driver.Registry{})
	if c.env == 0 {
		t.Fatal("retro_set_environment not called")
	}
	if !c.environment(abi.Shutdown, 0) {
		t.Fatal("SHUTDOWN refused")
	}
	if !s.ShutdownRequested() {
		t.Error("shutdown not recorded")
	}
}

func TestDispatchExperimentalBitOptional(t *testing.T) {
	c := newFakeCore()
	s := newTestSession(t, c, driver.Registry{Sensor: driver.NewDictSensor()})
	shape := c.codec.Shapes().SensorInterface

	plain := newRecord(t, c, shape)
	flagged := newRecord(t, c, shape)
	if !s.Dispatch(uint32(abi.GetSensorInterface&^abi.Experimental), plain.Addr()) {
		t.Fatal("sensor interface without experimental bit refused")
	}
	if !s.Dispatch(uint32(abi.GetSensorInterface), flagged.Addr()) {
		t.Fatal("sensor interface with experimental bit refused")
	}
	for _, field := range []string{"set_sensor_state", "get_sensor_input"} {
		a, b := plain.Ptr(field), flagged.Ptr(field)
		if a == 0 || a != b {
			t.Errorf("%s: %#x vs %#x", field, a, b)
		}
	}
}

func TestDispatchNullPayload(t *testing.T) {
	c := newFakeCore()
	s := newTestSession(t, c, driver.Registry{Options: driver.NewStandardOptions()})
	tests := []struct {
		name string
		cmd  abi.Command
		want bool
	}{
		{"get variable", abi.GetVariable, false},
		{"pixel format", abi.SetPixelFormat, false},
		{"set variable query", abi.SetVariable, true},
		{"shutdown", abi.Shutdown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Dispatch(uint32(tt.cmd), 0); got != tt.want {
				t.Errorf("Dispatch(%v, NULL) = %v, want %v", tt.cmd, got, tt.want)
			}
		})
	}
}

func TestCapabilityTables(t *testing.T) {
	c := newFakeCore()
	rumble := driver.NewDictRumble()
	s := newTestSession(t, c, driver.Registry{Rumble: rumble})
	shape := c.codec.Shapes().RumbleInterface

	first := newRecord(t, c, shape)
	second := newRecord(t, c, shape)
	if !s.Dispatch(uint32(abi.GetRumbleInterface), first.Addr()) ||
		!s.Dispatch(uint32(abi.GetRumbleInterface), second.Addr()) {
		t.Fatal("rumble interface refused")
	}
	fn := first.Ptr("set_rumble_state")
	if fn == 0 || fn != second.Ptr("set_rumble_state") {
		t.Fatalf("rumble pointers differ: %#x vs %#x", fn, second.Ptr("set_rumble_state"))
	}

	if c.hostCall(t, fn, 0, uint64(abi.RumbleStrong), 100) != 1 {
		t.Fatal("set_rumble_state refused")
	}
	c.hostCall(t, fn, 0, uint64(abi.RumbleStrong), 0xFFFF)
	c.hostCall(t, fn, 0, uint64(abi.RumbleWeak), 7)
	strong, weak := rumble.RumbleState(0)
	if strong != 0xFFFF || weak != 7 {
		t.Errorf("rumble = %d/%d, want 65535/7", strong, weak)
	}
}

func TestCapabilityAbsent(t *testing.T) {
	c := newFakeCore()
	s := newTestSession(t, c, driver.Registry{})
	shapes := c.codec.Shapes()

	tests := []struct {
		name  string
		cmd   abi.Command
		shape *wit.TypeDef
		field string
	}{
		{"rumble", abi.GetRumbleInterface, shapes.RumbleInterface, "set_rumble_state"},
		{"sensor", abi.GetSensorInterface, shapes.SensorInterface, "set_sensor_state"},
		{"led", abi.GetLEDInterface, shapes.LEDInterface, "set_led_state"},
		{"perf", abi.GetPerfInterface, shapes.PerfCallback, "perf_register"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecord(t, c, tt.shape)
			if s.Dispatch(uint32(tt.cmd), r.Addr()) {
				t.Fatal("capability served without a driver")
			}
			if r.Ptr(tt.field) != 0 {
				t.Error("payload written for refused capability")
			}
		})
	}

	log := newRecord(t, c, shapes.LogCallback)
	if !s.Dispatch(uint32(abi.GetLogInterface), log.Addr()) || log.Ptr("log") == 0 {
		t.Error("log interface must be served without a Log driver")
	}
}

func TestPixelFormat(t *testing.T) {
	c := newFakeCore()
	video := driver.NewArrayVideo()
	s := newTestSession(t, c, driver.Registry{Video: video})

	if s.PixelFormat() != abi.PixelFormat0RGB1555 {
		t.Fatalf("initial format = %v", s.PixelFormat())
	}
	if s.Dispatch(uint32(abi.SetPixelFormat), u32Payload(t, c, 7)) {
		t.Fatal("invalid pixel format accepted")
	}
	if s.PixelFormat() != abi.PixelFormat0RGB1555 {
		t.Fatal("invalid pixel format changed state")
	}
	if !s.Dispatch(uint32(abi.SetPixelFormat), u32Payload(t, c, uint32(abi.PixelFormatRGB565))) {
		t.Fatal("RGB565 refused")
	}
	if s.PixelFormat() != abi.PixelFormatRGB565 || video.PixelFormat() != abi.PixelFormatRGB565 {
		t.Errorf("format = %v / %v", s.PixelFormat(), video.PixelFormat())
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	c := newFakeCore()
	opts := driver.NewStandardOptions()
	s := newTestSession(t, c, driver.Registry{Options: opts})

	defs := variables(t, c,
		"fake_speed", "Speed; normal|fast|slow",
		"fake_sound", "Sound; enabled|disabled")
	if !s.Dispatch(uint32(abi.SetVariables), defs) {
		t.Fatal("SET_VARIABLES refused")
	}

	get := func(key string) (string, bool) {
		t.Helper()
		r := newRecord(t, c, c.codec.Shapes().Variable)
		r.SetPtr("key", c.arena.CString(key))
		ok := s.Dispatch(uint32(abi.GetVariable), r.Addr())
		if !ok {
			if r.Ptr("value") != 0 {
				t.Errorf("GET_VARIABLE(%s) refused but wrote a value", key)
			}
			return "", false
		}
		return c.cstring(t, r.Ptr("value")), true
	}
	set := func(key, value string) bool {
		r := newRecord(t, c, c.codec.Shapes().Variable)
		r.SetPtr("key", c.arena.CString(key))
		r.SetPtr("value", c.arena.CString(value))
		return s.Dispatch(uint32(abi.SetVariable), r.Addr())
	}
	updated := func() bool {
		t.Helper()
		ptr := u32Payload(t, c, 0)
		if !s.Dispatch(uint32(abi.GetVariableUpdate), ptr) {
			t.Fatal("GET_VARIABLE_UPDATE refused")
		}
		v, _ := c.arena.ReadU8(ptr)
		return v != 0
	}

	if v, ok := get("fake_speed"); !ok || v != "normal" {
		t.Fatalf("default = %q, %v", v, ok)
	}
	if _, ok := get("fake_missing"); ok {
		t.Error("undefined key answered")
	}
	_ = updated()
	if set("fake_speed", "turbo") {
		t.Error("undeclared value accepted")
	}
	if updated() {
		t.Error("rejected value flagged an update")
	}
	if !set("fake_speed", "fast") {
		t.Fatal("declared value refused")
	}
	if v, _ := get("fake_speed"); v != "fast" {
		t.Errorf("value = %q, want fast", v)
	}
	if !updated() {
		t.Error("update not flagged")
	}
	if updated() {
		t.Error("update flag not cleared by query")
	}

	version := u32Payload(t, c, 0)
	if !s.Dispatch(uint32(abi.GetCoreOptionsVersion), version) {
		t.Fatal("GET_CORE_OPTIONS_VERSION refused")
	}
	if v, _ := c.arena.ReadU32(version); v != abi.CoreOptionsVersion {
		t.Errorf("options version = %d", v)
	}
}

func TestOptionsPreseeded(t *testing.T) {
	c := newFakeCore()
	opts := driver.NewStandardOptions()
	s, err := New(c, driver.Registry{Options: opts}, Config{Options: map[string]string{
		"fake_speed": "slow",
		"fake_sound": "loud",
	}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if !s.Dispatch(uint32(abi.SetVariables), variables(t, c,
		"fake_speed", "Speed; normal|fast|slow",
		"fake_sound", "Sound; enabled|disabled")) {
		t.Fatal("SET_VARIABLES refused")
	}
	if v, _ := opts.Value("fake_speed"); v != "slow" {
		t.Errorf("fake_speed = %q, want configured slow", v)
	}
	if v, _ := opts.Value("fake_sound"); v != "enabled" {
		t.Errorf("fake_sound = %q, invalid configured value must fall back to default", v)
	}
}

func TestOptionsRedefinitionKeepsValues(t *testing.T) {
	c := newFakeCore()
	opts := driver.NewStandardOptions()
	shown := 0
	opts.SetUpdateDisplayCallback(func() { shown++ })
	s, err := New(c, driver.Registry{Options: opts}, Config{Options: map[string]string{"k": "b"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	define := func() {
		t.Helper()
		if !s.Dispatch(uint32(abi.SetVariables), variables(t, c, "k", "K; a|b|c")) {
			t.Fatal("SET_VARIABLES refused")
		}
	}
	define()
	if v, _ := opts.Value("k"); v != "b" {
		t.Errorf("k = %q, want configured b", v)
	}
	if shown != 0 {
		t.Errorf("display callback ran %d times while defining", shown)
	}
	if opts.Updated() {
		t.Error("configured value reported as an update")
	}

	if !opts.SetValue("k", "c") {
		t.Fatal("SetValue refused")
	}
	define()
	if v, _ := opts.Value("k"); v != "c" {
		t.Errorf("k = %q after redefinition, want host value c", v)
	}
	if shown != 1 {
		t.Errorf("display callback ran %d times, want 1 for the host change", shown)
	}
}

func TestOptionsWithoutDriver(t *testing.T) {
	c := newFakeCore()
	s := newTestSession(t, c, driver.Registry{})
	if s.Dispatch(uint32(abi.SetVariables), variables(t, c, "k", "K; a|b")) {
		t.Error("SET_VARIABLES honoured without an options driver")
	}
	if s.Dispatch(uint32(abi.SetVariable), 0) {
		t.Error("SET_VARIABLE query honoured without an options driver")
	}
}

func TestPayloadCopiedOnImport(t *testing.T) {
	c := newFakeCore()
	input := driver.NewIterableInput(nil)
	s := newTestSession(t, c, driver.Registry{Input: input})

	recs := newArray(t, c, c.codec.Shapes().InputDescriptor, 2)
	desc := c.arena.CString("Jump")
	recs[0].SetUint("id", 8)
	recs[0].SetPtr("description", desc)
	if !s.Dispatch(uint32(abi.SetInputDescriptors), recs[0].Addr()) {
		t.Fatal("SET_INPUT_DESCRIPTORS refused")
	}
	if err := c.arena.Write(desc, []byte("XXXX")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	recs[0].SetUint("id", 99)

	got := input.Descriptors()
	if len(got) != 1 {
		t.Fatalf("descriptors = %+v", got)
	}
	if got[0].Description != "Jump" || got[0].ID != 8 {
		t.Errorf("descriptor = %+v, want copy of the original payload", got[0])
	}
}

func TestCommandGating(t *testing.T) {
	c := newFakeCore()
	s := loadedSession(t, c, driver.Registry{Options: driver.NewStandardOptions(), Video: driver.NewArrayVideo()})

	if s.Dispatch(uint32(abi.SetVariables), variables(t, c, "k", "K; a|b")) {
		t.Error("options defined after the game loaded")
	}
	if !s.Dispatch(uint32(abi.SetPixelFormat), u32Payload(t, c, uint32(abi.PixelFormatXRGB8888))) {
		t.Error("pixel format refused before the first frame")
	}
	c.entries[engine.EntryRun] = func([]uint64) (uint64, error) {
		if c.environment(abi.SetPixelFormat, u32Payload(t, c, uint32(abi.PixelFormatRGB565))) {
			t.Error("pixel format accepted while running")
		}
		return 0, nil
	}
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.PixelFormat() != abi.PixelFormatXRGB8888 {
		t.Errorf("format = %v", s.PixelFormat())
	}
}

func TestMessages(t *testing.T) {
	c := newFakeCore()
	msgs := driver.NewLoggerMessage(nil)
	s := newTestSession(t, c, driver.Registry{Message: msgs})

	r := newRecord(t, c, c.codec.Shapes().Message)
	r.SetPtr("msg", c.arena.CString("Disk 2 inserted"))
	r.SetUint("frames", 120)
	if !s.Dispatch(uint32(abi.SetMessage), r.Addr()) {
		t.Fatal("SET_MESSAGE refused")
	}
	got := msgs.Messages()
	if len(got) != 1 || got[0].Text != "Disk 2 inserted" || got[0].Duration != 2000 {
		t.Errorf("messages = %+v", got)
	}
}

func TestDirectories(t *testing.T) {
	c := newFakeCore()
	paths := &driver.StandardPath{SystemDir: "/bios", SaveDir: "/saves"}
	s := newTestSession(t, c, driver.Registry{Path: paths})

	out := newRecord(t, c, c.codec.Shapes().Variable)
	if !s.Dispatch(uint32(abi.GetSystemDirectory), out.Addr()) {
		t.Fatal("GET_SYSTEM_DIRECTORY refused")
	}
	if got := c.cstring(t, c.ptrAt(t, out.Addr())); got != "/bios" {
		t.Errorf("system dir = %q", got)
	}
	if !s.Dispatch(uint32(abi.GetLibretroPath), out.Addr()) {
		t.Fatal("GET_LIBRETRO_PATH refused")
	}
	if got := c.cstring(t, c.ptrAt(t, out.Addr())); got != "fake_libretro.so" {
		t.Errorf("libretro path = %q", got)
	}
}

func TestUnreadablePayloadKeepsCallbacks(t *testing.T) {
	c := newFakeCore()
	s := newTestSession(t, c, driver.Registry{})
	const bad = 8

	ft := newRecord(t, c, c.codec.Shapes().FrameTimeCallback)
	fn := c.fn(func([]uint64) (uint64, error) { return 0, nil })
	ft.SetPtr("callback", fn)
	ft.SetInt("reference", 16667)
	if !s.Dispatch(uint32(abi.SetFrameTimeCallback), ft.Addr()) {
		t.Fatal("SET_FRAME_TIME_CALLBACK refused")
	}
	if s.Dispatch(uint32(abi.SetFrameTimeCallback), bad) {
		t.Error("unreadable frame time payload accepted")
	}
	if s.frameTime.fn != fn || s.frameTime.reference != 16667 {
		t.Errorf("frame time callback = %+v, want the earlier one", s.frameTime)
	}

	pa := newRecord(t, c, c.codec.Shapes().ProcAddressInterface)
	pa.SetPtr("get_proc_address", fn)
	if !s.Dispatch(uint32(abi.SetProcAddressCallback), pa.Addr()) {
		t.Fatal("SET_PROC_ADDRESS_CALLBACK refused")
	}
	if s.Dispatch(uint32(abi.SetProcAddressCallback), bad) {
		t.Error("unreadable proc address payload accepted")
	}
	if s.procAddr != fn {
		t.Errorf("proc address callback = %#x, want %#x", s.procAddr, fn)
	}
}
