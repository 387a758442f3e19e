package runtime

import (
	"errors"
	"testing"

	retroruntime "github.com/wippyai/retro-runtime"
	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/engine"
	"github.com/wippyai/retro-runtime/transcoder"
)

// Host function pointers handed out by fakeCore live far above the arena.
const fakeHostBase = 0x7f00_0000_0000

// Core callbacks registered with fakeCore.fn live in their own range.
const fakeCoreFnBase = 0x6f00_0000_0000

type entryFunc func(args []uint64) (uint64, error)

// fakeCore is an in-process core. Entry points are Go functions; the core
// calls back into the host through the bound dispatcher.
type fakeCore struct {
	arena   *transcoder.Arena
	codec   *transcoder.Codec
	d       engine.Dispatcher
	entries map[engine.Entry]entryFunc
	missing map[engine.Entry]bool
	funcs   map[uint64]entryFunc
	env     uint64
	hostFns map[engine.HostFunc]uint64
	calls   []engine.Entry
	closed  bool
}

func newFakeCore() *fakeCore {
	arena := transcoder.NewArena(1 << 16)
	c := &fakeCore{
		arena:   arena,
		codec:   transcoder.NewCodec(arena, 8),
		entries: make(map[engine.Entry]entryFunc),
		missing: make(map[engine.Entry]bool),
		funcs:   make(map[uint64]entryFunc),
		hostFns: make(map[engine.HostFunc]uint64),
	}
	c.entries[engine.EntryAPIVersion] = func([]uint64) (uint64, error) { return abi.APIVersion, nil }
	c.entries[engine.EntrySetEnvironment] = func(args []uint64) (uint64, error) {
		c.env = args[0]
		return 0, nil
	}
	c.entries[engine.EntryLoadGame] = func([]uint64) (uint64, error) { return 1, nil }
	c.entries[engine.EntryGetSystemAVInfo] = func(args []uint64) (uint64, error) {
		r := c.codec.Record(c.codec.Shapes().SystemAVInfo, args[0])
		g := r.Field("geometry")
		g.SetUint("base_width", 320)
		g.SetUint("base_height", 240)
		g.SetUint("max_width", 320)
		g.SetUint("max_height", 240)
		t := r.Field("timing")
		t.SetF64("fps", 60)
		t.SetF64("sample_rate", 44100)
		return 0, r.Err()
	}
	return c
}

func (c *fakeCore) Info() engine.Info {
	return engine.Info{Path: "fake_libretro.so", Backend: "fake", PointerSize: 8}
}

func (c *fakeCore) Memory() retroruntime.Memory       { return c.arena }
func (c *fakeCore) Allocator() retroruntime.Allocator { return c.arena }

func (c *fakeCore) Has(e engine.Entry) bool { return !c.missing[e] }

func (c *fakeCore) Bind(d engine.Dispatcher) { c.d = d }

func (c *fakeCore) HostFunction(fn engine.HostFunc) (uint64, error) {
	ptr := fakeHostBase + uint64(fn)*16
	c.hostFns[fn] = ptr
	return ptr, nil
}

func (c *fakeCore) Call(ptr uint64, _ engine.Signature, args ...uint64) (uint64, error) {
	f, ok := c.funcs[ptr]
	if !ok {
		return 0, errors.New("call to unknown function pointer")
	}
	return f(args)
}

func (c *fakeCore) CallEntry(e engine.Entry, args ...uint64) (uint64, error) {
	if c.closed {
		return 0, errors.New("core closed")
	}
	if c.missing[e] {
		return 0, errors.New("entry not exported")
	}
	c.calls = append(c.calls, e)
	if f, ok := c.entries[e]; ok {
		return f(args)
	}
	return 0, nil
}

func (c *fakeCore) Close() error {
	c.closed = true
	c.d = nil
	return nil
}

// fn registers a core callback and returns its pointer.
func (c *fakeCore) fn(f entryFunc) uint64 {
	ptr := fakeCoreFnBase + uint64(len(c.funcs)+1)*16
	c.funcs[ptr] = f
	return ptr
}

// environment calls the environment callback the way a core would.
func (c *fakeCore) environment(cmd abi.Command, data uint64) bool {
	if c.d == nil {
		return false
	}
	return c.d.HostCall(engine.HostEnvironment, []uint64{uint64(cmd), data}) != 0
}

// hostCall calls a host function through the pointer the core was given.
func (c *fakeCore) hostCall(t *testing.T, ptr uint64, args ...uint64) uint64 {
	t.Helper()
	for fn, p := range c.hostFns {
		if p == ptr {
			if c.d == nil {
				return 0
			}
			return c.d.HostCall(fn, args)
		}
	}
	t.Fatalf("unknown host pointer 0x%x", ptr)
	return 0
}

func (c *fakeCore) ptrAt(t *testing.T, addr uint64) uint64 {
	t.Helper()
	v, err := c.codec.ReadPtr(addr)
	if err != nil {
		t.Fatalf("read pointer: %v", err)
	}
	return v
}

func (c *fakeCore) cstring(t *testing.T, addr uint64) string {
	t.Helper()
	s, err := c.codec.CString(addr)
	if err != nil {
		t.Fatalf("read string: %v", err)
	}
	return s
}

func (c *fakeCore) entryCount(e engine.Entry) int {
	n := 0
	for _, got := range c.calls {
		if got == e {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T, c *fakeCore, reg driver.Registry) *Session {
	t.Helper()
	s, err := New(c, reg, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// loadedSession returns a session with a game loaded.
func loadedSession(t *testing.T, c *fakeCore, reg driver.Registry) *Session {
	t.Helper()
	s := newTestSession(t, c, reg)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.noGame = true
	if err := s.LoadNoGame(); err != nil {
		t.Fatalf("LoadNoGame: %v", err)
	}
	return s
}
