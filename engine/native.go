//go:build (darwin || linux || freebsd || netbsd) && (amd64 || arm64)

package engine

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	retroruntime "github.com/wippyai/retro-runtime"
	rterrors "github.com/wippyai/retro-runtime/errors"
)

const nativePointerSize = 8

// maxNativeArgs is the SyscallN limit.
const maxNativeArgs = 15

// Cores keep their state in globals, and dlopen hands out the same handle
// for the same library, so one library may back at most one open core.
var (
	openLibsMu sync.Mutex
	openLibs   = make(map[uintptr]string)
)

// NativeCore is a libretro core loaded from a shared library with purego.
//
// Host function pointers are purego callbacks created on first use and
// cached for the life of the core. purego never frees callbacks and caps
// them per process, so a process can open a bounded number of cores over
// its lifetime.
type NativeCore struct {
	d         Dispatcher
	alloc     *pinnedAllocator
	path      string
	syms      [numEntries]uintptr
	callbacks [numHostFuncs]uintptr
	handle    uintptr
	mu        sync.Mutex
	closed    bool
}

var _ Core = (*NativeCore)(nil)

// OpenNative dlopens path and resolves the libretro entry points.
func OpenNative(path string) (Core, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, rterrors.Load("dlopen "+path, err)
	}

	openLibsMu.Lock()
	if prev, busy := openLibs[h]; busy {
		openLibsMu.Unlock()
		_ = purego.Dlclose(h)
		return nil, rterrors.New(rterrors.PhaseLoad, rterrors.KindInvalidInput).
			Detail("library already open as %s", prev).
			Build()
	}
	openLibs[h] = path
	openLibsMu.Unlock()

	c := &NativeCore{path: path, handle: h, alloc: newPinnedAllocator()}
	for _, e := range Entries() {
		if sym, err := purego.Dlsym(h, e.Symbol()); err == nil {
			c.syms[e] = sym
		}
	}
	if err := checkEntries(path, c.Has); err != nil {
		c.release()
		return nil, err
	}
	Logger().Debug("native core loaded", zap.String("path", path))
	return c, nil
}

func (c *NativeCore) Info() Info {
	return Info{Path: c.path, Backend: "native", PointerSize: nativePointerSize}
}

func (c *NativeCore) Memory() retroruntime.Memory       { return nativeMemory{} }
func (c *NativeCore) Allocator() retroruntime.Allocator { return c.alloc }

func (c *NativeCore) Has(e Entry) bool {
	return e < numEntries && c.syms[e] != 0
}

func (c *NativeCore) Bind(d Dispatcher) {
	c.mu.Lock()
	c.d = d
	c.mu.Unlock()
}

func (c *NativeCore) dispatcher() Dispatcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.d
}

func (c *NativeCore) HostFunction(fn HostFunc) (ptr uint64, err error) {
	if !fn.valid() {
		return 0, rterrors.InvalidInput(rterrors.PhaseEngine, "unknown host function")
	}
	if fn.Signature().Result.Float() {
		// purego callbacks can only return integer registers.
		return 0, rterrors.Unsupported(rterrors.PhaseEngine, fmt.Sprintf("native %s callback", fn))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, rterrors.Closed(rterrors.PhaseEngine, "native core")
	}
	if cb := c.callbacks[fn]; cb != 0 {
		return uint64(cb), nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = rterrors.Wrap(rterrors.PhaseEngine, rterrors.KindAllocation,
				fmt.Errorf("%v", r), "create callback for "+fn.String())
		}
	}()
	// Six integer registers are read on every call. Callers passing fewer
	// leave garbage in the rest, which the declared signature never reads;
	// variadic log arguments arrive in the trailing slots.
	cb := purego.NewCallback(func(a0, a1, a2, a3, a4, a5 uintptr) uintptr {
		args := []uint64{uint64(a0), uint64(a1), uint64(a2), uint64(a3), uint64(a4), uint64(a5)}
		return uintptr(route(c.dispatcher(), fn, args, nativePointerSize))
	})
	c.callbacks[fn] = cb
	return uint64(cb), nil
}

func (c *NativeCore) Call(ptr uint64, sig Signature, args ...uint64) (uint64, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	if ptr == 0 {
		return 0, rterrors.NilPointer(rterrors.PhaseEngine, []string{"function"})
	}
	if len(args) != len(sig.Params) {
		return 0, rterrors.InvalidInput(rterrors.PhaseEngine, "argument count does not match signature")
	}
	return c.syscall(fmt.Sprintf("%#x", ptr), uintptr(ptr), sig, args)
}

func (c *NativeCore) CallEntry(e Entry, args ...uint64) (uint64, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	if !c.Has(e) {
		return 0, rterrors.NotFound(rterrors.PhaseEngine, "entry point", e.Symbol())
	}
	sig := e.Signature()
	if len(args) != len(sig.Params) {
		return 0, callArgsError(e, len(args))
	}
	return c.syscall(e.Symbol(), c.syms[e], sig, args)
}

func (c *NativeCore) syscall(name string, fn uintptr, sig Signature, args []uint64) (uint64, error) {
	if sig.HasFloat() {
		// SyscallN cannot place float arguments or read float results.
		return 0, rterrors.Unsupported(rterrors.PhaseEngine, "native call with float signature "+sig.String())
	}
	if len(args) > maxNativeArgs {
		return 0, rterrors.InvalidInput(rterrors.PhaseEngine, "too many arguments for "+name)
	}
	uargs := make([]uintptr, len(args))
	for i, k := range sig.Params {
		uargs[i] = uintptr(k.Normalize(args[i], nativePointerSize))
	}
	r1, _, _ := purego.SyscallN(fn, uargs...)
	return sig.Result.Normalize(uint64(r1), nativePointerSize), nil
}

func (c *NativeCore) usable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return rterrors.Closed(rterrors.PhaseEngine, "native core")
	}
	return nil
}

// Close unloads the library. Callbacks handed to the core stay allocated and
// return zero from then on.
func (c *NativeCore) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.d = nil
	c.mu.Unlock()
	c.alloc.releaseAll()
	return c.release()
}

func (c *NativeCore) release() error {
	openLibsMu.Lock()
	delete(openLibs, c.handle)
	openLibsMu.Unlock()
	if err := purego.Dlclose(c.handle); err != nil {
		return rterrors.Wrap(rterrors.PhaseEngine, rterrors.KindCallFailed, err, "dlclose")
	}
	return nil
}
