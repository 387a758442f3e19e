package engine

import (
	"context"
	"path/filepath"
	"strings"

	retroruntime "github.com/wippyai/retro-runtime"
	rterrors "github.com/wippyai/retro-runtime/errors"
)

// Info describes a loaded core's backend.
type Info struct {
	Path        string
	Backend     string // "native" or "wasm"
	PointerSize uint32
	// FormattedLog is set when the core's log calls arrive already formatted
	// as a single string argument instead of a printf format with variadic
	// arguments.
	FormattedLog bool
}

// Dispatcher receives every call a core makes into a host function.
// args holds the raw arguments, already normalized to the function's
// declared parameter kinds; variadic arguments follow, unnormalized. The
// return value is the raw result, with floats passed as their bit patterns.
type Dispatcher interface {
	HostCall(fn HostFunc, args []uint64) uint64
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn HostFunc, args []uint64) uint64

func (f DispatcherFunc) HostCall(fn HostFunc, args []uint64) uint64 { return f(fn, args) }

// Core is a loaded libretro core seen as an opaque table of entry points.
//
// A Core is not safe for concurrent use. Cores call host functions
// synchronously from inside Call or CallEntry, on the calling goroutine.
type Core interface {
	Info() Info
	// Memory is the address space pointers from the core refer to.
	Memory() retroruntime.Memory
	// Allocator allocates memory the core can read, for values the host
	// passes by pointer.
	Allocator() retroruntime.Allocator
	// Has reports whether the core exports the entry point.
	Has(e Entry) bool
	// Bind routes host function calls to d. Calls arriving before Bind or
	// after Close return zero.
	Bind(d Dispatcher)
	// HostFunction returns a core-callable pointer to fn.
	HostFunction(fn HostFunc) (uint64, error)
	// Call invokes a function pointer the core handed to the host.
	Call(ptr uint64, sig Signature, args ...uint64) (uint64, error)
	// CallEntry invokes an exported entry point.
	CallEntry(e Entry, args ...uint64) (uint64, error)
	Close() error
}

// Config selects and configures the backend used by Open.
type Config struct {
	Wasm WasmConfig
}

// Open loads the core at path. Files ending in .wasm are run under wazero;
// anything else is loaded as a native shared library.
func Open(ctx context.Context, path string, cfg Config) (Core, error) {
	if path == "" {
		return nil, rterrors.InvalidInput(rterrors.PhaseLoad, "empty core path")
	}
	if strings.EqualFold(filepath.Ext(path), ".wasm") {
		return OpenWasm(ctx, path, cfg.Wasm)
	}
	return OpenNative(path)
}

// checkEntries returns a MissingExportsError listing every required entry
// point for which has reports false.
func checkEntries(path string, has func(Entry) bool) error {
	var missing []string
	for _, e := range Entries() {
		if e.Required() && !has(e) {
			missing = append(missing, e.Symbol())
		}
	}
	if len(missing) > 0 {
		return rterrors.NewMissingExportsError(path, missing)
	}
	return nil
}

func callArgsError(e Entry, got int) error {
	return rterrors.New(rterrors.PhaseEngine, rterrors.KindInvalidInput).
		Symbol(e.Symbol()).
		Detail("%d arguments, want %d", got, len(e.Signature().Params)).
		Build()
}

// route normalizes a host call and hands it to d.
func route(d Dispatcher, fn HostFunc, args []uint64, pointerSize uint32) uint64 {
	if d == nil || !fn.valid() {
		return 0
	}
	sig := fn.Signature()
	sig.NormalizeArgs(args, pointerSize)
	return sig.Result.Normalize(d.HostCall(fn, args), pointerSize)
}
