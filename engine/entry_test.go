package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	rterrors "github.com/wippyai/retro-runtime/errors"
)

func TestEntryTable(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range Entries() {
		sym := e.Symbol()
		if !strings.HasPrefix(sym, "retro_") {
			t.Errorf("entry %d symbol %q", e, sym)
		}
		if seen[sym] {
			t.Errorf("duplicate symbol %s", sym)
		}
		seen[sym] = true
		if e.String() != sym {
			t.Errorf("String = %q, want %q", e.String(), sym)
		}
	}
	if len(seen) != int(numEntries) {
		t.Errorf("%d entries", len(seen))
	}
	if !EntryRun.Required() || EntryReset.Required() || EntryGetMemoryData.Required() {
		t.Error("required flags wrong")
	}
	if Entry(200).Symbol() != "" || Entry(200).Required() || Entry(200).String() != "unknown entry" {
		t.Error("out of range entry answered")
	}
	if sig := EntryLoadGameSpecial.Signature(); sig.String() != "b_upz" {
		t.Errorf("retro_load_game_special signature %s", sig)
	}
}

func TestHostFuncTable(t *testing.T) {
	seen := make(map[string]bool)
	for _, fn := range HostFuncs() {
		name := fn.String()
		if name == "" || seen[name] {
			t.Errorf("host function %d name %q", fn, name)
		}
		seen[name] = true
		if fn.Signature().Result == 0 {
			t.Errorf("%s has no signature", name)
		}
	}
	// Ids are what wasm guests pass to retro_host.invoke.
	for fn, want := range map[HostFunc]uint32{
		HostEnvironment:      0,
		HostInputState:       5,
		HostLog:              15,
		HostPerfLog:          22,
		HostLEDSetState:      23,
		HostMIDIFlush:        28,
		HostMicOpen:          29,
		HostMicRead:          34,
		HostNetpacketSend:    35,
		HostHWGetProcAddress: 38,
	} {
		if uint32(fn) != want {
			t.Errorf("%s = %d, want %d", fn, uint32(fn), want)
		}
	}
	if numHostFuncs != 39 {
		t.Errorf("%d host functions, want 39", numHostFuncs)
	}
	if numHostFuncs.valid() || numHostFuncs.String() != "unknown host function" {
		t.Error("out of range host function is valid")
	}
}

func TestCheckEntries(t *testing.T) {
	if err := checkEntries("all.so", func(Entry) bool { return true }); err != nil {
		t.Fatalf("complete core rejected: %v", err)
	}
	if err := checkEntries("required.so", Entry.Required); err != nil {
		t.Fatalf("core with required entries only rejected: %v", err)
	}

	err := checkEntries("broken.so", func(e Entry) bool { return e != EntryRun && e != EntryLoadGame })
	var missing *rterrors.MissingExportsError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingExportsError", err)
	}
	if missing.Path != "broken.so" || len(missing.Symbols) != 2 {
		t.Errorf("missing = %+v", missing)
	}
	for _, want := range []string{"retro_run", "retro_load_game"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not name %s", err, want)
		}
	}
}

func TestRouteNormalizes(t *testing.T) {
	var gotFn HostFunc
	var gotArgs []uint64
	d := DispatcherFunc(func(fn HostFunc, args []uint64) uint64 {
		gotFn, gotArgs = fn, args
		return 0xABCD_0001_FFFF
	})

	ret := route(d, HostInputState, []uint64{0x1_0000_0001, 2, 3, 4, 0xFF, 0xFF}, 4)
	if gotFn != HostInputState || gotArgs[0] != 1 {
		t.Errorf("dispatched %s %#x", gotFn, gotArgs)
	}
	if ret != ^uint64(0) {
		t.Errorf("int16 result = %#x, want sign-extended -1", ret)
	}

	if route(nil, HostInputPoll, nil, 8) != 0 {
		t.Error("unbound route returned a value")
	}
	if route(d, numHostFuncs, nil, 8) != 0 {
		t.Error("invalid host function routed")
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "", Config{})
	if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseLoad, Kind: rterrors.KindInvalidInput}) {
		t.Errorf("err = %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"core.so", "core.wasm"} {
		if _, err := Open(context.Background(), filepath.Join(dir, name), Config{}); err == nil {
			t.Errorf("Open(%s) succeeded", name)
		}
	}
}
