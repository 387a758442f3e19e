package runtime

import (
	"encoding/binary"
	"testing"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/resource"
)

// micFailed is read_mic's -1 as it arrives in a raw return register.
const micFailed = ^uint64(0)

type micFuncs struct {
	open, close, params, setState, getState, read uint64
}

func micInterface(t *testing.T, c *fakeCore, s *Session) micFuncs {
	t.Helper()
	r := newRecord(t, c, c.codec.Shapes().MicrophoneInterface)
	r.SetUint("interface_version", abi.MicrophoneInterfaceVersion)
	if !s.Dispatch(uint32(abi.GetMicrophoneInterface), r.Addr()) {
		t.Fatal("GET_MICROPHONE_INTERFACE refused")
	}
	return micFuncs{
		open:     r.Ptr("open_mic"),
		close:    r.Ptr("close_mic"),
		params:   r.Ptr("get_params"),
		setState: r.Ptr("set_mic_state"),
		getState: r.Ptr("get_mic_state"),
		read:     r.Ptr("read_mic"),
	}
}

func readSamples(t *testing.T, c *fakeCore, addr uint64, n int) []int16 {
	t.Helper()
	raw, err := c.arena.Read(addr, uint32(n*2))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return out
}

func equalSamples(a, b []int16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMicrophoneFIFO(t *testing.T) {
	c := newFakeCore()
	mic := driver.NewGeneratorMicrophone(func(driver.MicrophoneParams) driver.SampleGenerator {
		return driver.ChunkGenerator([]int16{1, 2, 3}, []int16{4, 5})
	})
	s := newTestSession(t, c, driver.Registry{Microphone: mic})
	f := micInterface(t, c, s)

	h := c.hostCall(t, f.open, 0)
	if h == 0 {
		t.Fatal("open_mic failed")
	}
	if c.hostCall(t, f.getState, h) != 0 {
		t.Fatal("new microphone is active")
	}
	buf, err := c.arena.Alloc(16, 2)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if got := c.hostCall(t, f.read, h, buf, 4); got != micFailed {
		t.Fatalf("read from inactive microphone = %d, want -1", int64(got))
	}
	if c.hostCall(t, f.setState, h, 1) != 1 || c.hostCall(t, f.getState, h) != 1 {
		t.Fatal("microphone not activated")
	}

	if got := c.hostCall(t, f.read, h, buf, 4); got != 4 {
		t.Fatalf("first read = %d, want 4", int64(got))
	}
	if got := readSamples(t, c, buf, 4); !equalSamples(got, []int16{1, 2, 3, 4}) {
		t.Errorf("first read = %v", got)
	}
	if got := c.hostCall(t, f.read, h, buf, 4); got != 1 {
		t.Fatalf("second read = %d, want 1", int64(got))
	}
	if got := readSamples(t, c, buf, 1); got[0] != 5 {
		t.Errorf("second read = %v", got)
	}
	if got := c.hostCall(t, f.read, h, buf, 4); got != 0 {
		t.Errorf("drained read = %d, want 0", int64(got))
	}
	if got := c.hostCall(t, f.read, h, buf, 0); got != 0 {
		t.Errorf("zero-length read = %d, want 0", int64(got))
	}

	c.hostCall(t, f.close, h)
	if got := c.hostCall(t, f.read, h, buf, 4); got != micFailed {
		t.Errorf("read after close = %d, want -1", int64(got))
	}
	if c.hostCall(t, f.getState, h) != 0 || c.hostCall(t, f.setState, h, 1) != 0 {
		t.Error("closed handle still answers")
	}
	if mic.OpenCount() != 0 {
		t.Errorf("open microphones = %d after close", mic.OpenCount())
	}
}

func TestMicrophoneHandlesNotReused(t *testing.T) {
	c := newFakeCore()
	mic := driver.NewGeneratorMicrophone(nil)
	s := newTestSession(t, c, driver.Registry{Microphone: mic})
	f := micInterface(t, c, s)

	first := c.hostCall(t, f.open, 0)
	c.hostCall(t, f.close, first)
	second := c.hostCall(t, f.open, 0)
	if second == 0 || second == first {
		t.Fatalf("handles %#x then %#x", first, second)
	}
	if c.hostCall(t, f.setState, first, 1) != 0 {
		t.Error("stale handle reached the new microphone")
	}
}

func TestMicrophoneParams(t *testing.T) {
	c := newFakeCore()
	mic := driver.NewGeneratorMicrophone(nil)
	mic.Rate = 16000
	s := newTestSession(t, c, driver.Registry{Microphone: mic})
	f := micInterface(t, c, s)

	req := newRecord(t, c, c.codec.Shapes().MicrophoneParams)
	req.SetUint("rate", 48000)
	h := c.hostCall(t, f.open, req.Addr())
	if h == 0 {
		t.Fatal("open_mic failed")
	}
	out := newRecord(t, c, c.codec.Shapes().MicrophoneParams)
	if c.hostCall(t, f.params, h, out.Addr()) != 1 {
		t.Fatal("get_params refused")
	}
	if out.U32("rate") != 16000 {
		t.Errorf("effective rate = %d, want 16000", out.U32("rate"))
	}
	if c.hostCall(t, f.params, h, 0) != 0 {
		t.Error("get_params accepted NULL")
	}
}

func TestMicrophoneOpenLimit(t *testing.T) {
	c := newFakeCore()
	mic := driver.NewGeneratorMicrophone(nil)
	mic.Max = 1
	s := newTestSession(t, c, driver.Registry{Microphone: mic})
	f := micInterface(t, c, s)

	if c.hostCall(t, f.open, 0) == 0 {
		t.Fatal("first open failed")
	}
	if h := c.hostCall(t, f.open, 0); h != 0 {
		t.Errorf("open past the driver limit = %#x, want 0", h)
	}
}

func TestMicrophoneInterfaceVersion(t *testing.T) {
	c := newFakeCore()
	s := newTestSession(t, c, driver.Registry{Microphone: driver.NewGeneratorMicrophone(nil)})

	r := newRecord(t, c, c.codec.Shapes().MicrophoneInterface)
	r.SetUint("interface_version", abi.MicrophoneInterfaceVersion+1)
	if s.Dispatch(uint32(abi.GetMicrophoneInterface), r.Addr()) {
		t.Fatal("unknown interface version served")
	}
	if r.Ptr("open_mic") != 0 {
		t.Error("function pointers written for refused version")
	}
}

func TestMicrophonesClosedOnDeinit(t *testing.T) {
	c := newFakeCore()
	mic := driver.NewGeneratorMicrophone(nil)
	s := newTestSession(t, c, driver.Registry{Microphone: mic})
	f := micInterface(t, c, s)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.hostCall(t, f.open, 0)
	c.hostCall(t, f.open, 0)
	if mic.OpenCount() != 2 {
		t.Fatalf("open = %d", mic.OpenCount())
	}
	if err := s.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	if mic.OpenCount() != 0 || s.mics.len() != 0 {
		t.Errorf("microphones left open: driver %d, table %d", mic.OpenCount(), s.mics.len())
	}
}

func TestMicTableTyped(t *testing.T) {
	var events []resource.EventType
	tbl := newMicTable(resource.ObserverFunc(func(e resource.Event) {
		events = append(events, e.Type)
	}))
	if _, ok := tbl.get(0); ok {
		t.Error("handle 0 resolved")
	}
	if _, ok := tbl.get(1 << 40); ok {
		t.Error("out of range handle resolved")
	}
	src, _, _ := driver.NewGeneratorMicrophone(nil).Open(driver.MicrophoneParams{})
	h := tbl.open(&microphone{src: src})
	if h == 0 {
		t.Fatal("open returned 0")
	}
	if _, ok := tbl.get(h); !ok {
		t.Fatal("open handle not found")
	}
	if !tbl.close(h) || tbl.close(h) {
		t.Error("close should succeed exactly once")
	}

	src, _, _ = driver.NewGeneratorMicrophone(nil).Open(driver.MicrophoneParams{})
	tbl.open(&microphone{src: src})
	tbl.closeAll()
	want := []resource.EventType{resource.EventCreated, resource.EventDropped, resource.EventCreated, resource.EventDropped}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, events[i], want[i])
		}
	}
}
