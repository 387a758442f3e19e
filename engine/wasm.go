package engine

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	retroruntime "github.com/wippyai/retro-runtime"
	rterrors "github.com/wippyai/retro-runtime/errors"
)

// Guest ABI for WebAssembly cores.
const (
	// HostModuleName is the import module providing host functions.
	HostModuleName = "retro_host"
	// HostInvokeName is invoke(id i32, a0..a5 i64) i64 in HostModuleName.
	HostInvokeName = "invoke"
	// HostPointerBit marks a function pointer as a host function id. Guest
	// code calling such a pointer must route it through invoke.
	HostPointerBit = 0x80000000
	// InvokeExportPrefix names the guest trampolines that call a core
	// function pointer: __retro_invoke_<signature>(fn i32, args...).
	InvokeExportPrefix = "__retro_invoke_"

	hostInvokeArgs = 6
	wasiModuleName = "wasi_snapshot_preview1"
)

// WasmConfig configures the WebAssembly backend.
type WasmConfig struct {
	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps wazero's
	// default of 4GiB.
	MemoryLimitPages uint32
	// DisableWASI skips instantiating wasi_snapshot_preview1 even when the
	// core imports it. Instantiation then fails.
	DisableWASI bool
	Stdout      io.Writer
	Stderr      io.Writer
}

// WasmCore is a libretro core compiled to wasm32 and run by wazero.
type WasmCore struct {
	ctx      context.Context
	runtime  wazero.Runtime
	mod      api.Module
	mem      *guestMemory
	alloc    *guestAllocator
	d        Dispatcher
	invokers map[string]api.Function
	path     string
	entries  [numEntries]api.Function
	mu       sync.Mutex
	closed   bool
}

var _ Core = (*WasmCore)(nil)

// OpenWasm reads and instantiates a WebAssembly core from path.
func OpenWasm(ctx context.Context, path string, cfg WasmConfig) (*WasmCore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rterrors.Load("read core", err)
	}
	return OpenWasmBytes(ctx, path, data, cfg)
}

// OpenWasmBytes instantiates a WebAssembly core. name is used in errors and
// Info only. On failure every wazero resource created so far is released.
func OpenWasmBytes(ctx context.Context, name string, wasmBytes []byte, cfg WasmConfig) (*WasmCore, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rcfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		rcfg = rcfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, rcfg)

	c := &WasmCore{
		ctx:      ctx,
		runtime:  r,
		path:     name,
		invokers: make(map[string]api.Function),
	}
	ok := false
	defer func() {
		if !ok {
			_ = r.Close(ctx)
		}
	}()

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, rterrors.Load("compile wasm core", err)
	}
	exports := compiled.ExportedFunctions()
	if err := checkEntries(name, func(e Entry) bool {
		_, found := exports[e.Symbol()]
		return found
	}); err != nil {
		return nil, err
	}

	if !cfg.DisableWASI && importsModule(compiled, wasiModuleName) {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
			return nil, rterrors.Load("instantiate WASI", err)
		}
	}
	if _, err := c.hostModule(r).Instantiate(ctx); err != nil {
		return nil, rterrors.Load("instantiate host module", err)
	}

	mcfg := wazero.NewModuleConfig().
		WithName("core").
		WithStartFunctions().
		WithSysWalltime().
		WithSysNanotime()
	if cfg.Stdout != nil {
		mcfg = mcfg.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		mcfg = mcfg.WithStderr(cfg.Stderr)
	}
	mod, err := r.InstantiateModule(ctx, compiled, mcfg)
	if err != nil {
		return nil, rterrors.Load("instantiate wasm core", err)
	}
	// Reactor modules built by wasi-sdk run their constructors here.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return nil, rterrors.Load("_initialize", err)
		}
	}

	c.mod = mod
	c.mem = &guestMemory{mem: mod.Memory()}
	c.alloc = &guestAllocator{
		ctx:    ctx,
		malloc: mod.ExportedFunction("malloc"),
		free:   mod.ExportedFunction("free"),
	}
	for _, e := range Entries() {
		c.entries[e] = mod.ExportedFunction(e.Symbol())
	}

	Logger().Debug("wasm core loaded",
		zap.String("path", name),
		zap.Int("exports", len(exports)),
		zap.Bool("allocator", c.alloc.malloc != nil))
	ok = true
	return c, nil
}

func importsModule(compiled wazero.CompiledModule, module string) bool {
	for _, def := range compiled.ImportedFunctions() {
		if m, _, isImport := def.Import(); isImport && m == module {
			return true
		}
	}
	return false
}

func (c *WasmCore) hostModule(r wazero.Runtime) wazero.HostModuleBuilder {
	params := make([]api.ValueType, 1+hostInvokeArgs)
	params[0] = api.ValueTypeI32
	for i := 1; i < len(params); i++ {
		params[i] = api.ValueTypeI64
	}
	return r.NewHostModuleBuilder(HostModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(c.invoke), params, []api.ValueType{api.ValueTypeI64}).
		WithParameterNames("id", "a0", "a1", "a2", "a3", "a4", "a5").
		Export(HostInvokeName)
}

func (c *WasmCore) invoke(_ context.Context, _ api.Module, stack []uint64) {
	fn := HostFunc(api.DecodeU32(stack[0]))
	args := make([]uint64, hostInvokeArgs)
	copy(args, stack[1:1+hostInvokeArgs])
	c.mu.Lock()
	d := c.d
	c.mu.Unlock()
	stack[0] = route(d, fn, args, 4)
}

func (c *WasmCore) Info() Info {
	return Info{Path: c.path, Backend: "wasm", PointerSize: 4, FormattedLog: true}
}

func (c *WasmCore) Memory() retroruntime.Memory       { return c.mem }
func (c *WasmCore) Allocator() retroruntime.Allocator { return c.alloc }

func (c *WasmCore) Has(e Entry) bool {
	return e < numEntries && c.entries[e] != nil
}

func (c *WasmCore) Bind(d Dispatcher) {
	c.mu.Lock()
	c.d = d
	c.mu.Unlock()
}

// HostFunction returns the tagged id of fn. The guest never sees a real
// table index for host functions.
func (c *WasmCore) HostFunction(fn HostFunc) (uint64, error) {
	if !fn.valid() {
		return 0, rterrors.InvalidInput(rterrors.PhaseEngine, "unknown host function")
	}
	return HostPointerBit | uint64(fn), nil
}

func (c *WasmCore) Call(ptr uint64, sig Signature, args ...uint64) (uint64, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	if ptr == 0 {
		return 0, rterrors.NilPointer(rterrors.PhaseEngine, []string{"function"})
	}
	if len(args) != len(sig.Params) {
		return 0, rterrors.InvalidInput(rterrors.PhaseEngine, "argument count does not match signature")
	}
	if ptr&HostPointerBit != 0 {
		c.mu.Lock()
		d := c.d
		c.mu.Unlock()
		return route(d, HostFunc(ptr&^HostPointerBit), append([]uint64(nil), args...), 4), nil
	}
	name := InvokeExportPrefix + sig.String()
	f, ok := c.invokers[name]
	if !ok {
		f = c.mod.ExportedFunction(name)
		c.invokers[name] = f
	}
	if f == nil {
		return 0, rterrors.NotFound(rterrors.PhaseEngine, "export", name)
	}
	params := make([]uint64, 0, 1+len(args))
	params = append(params, ptr&0xFFFFFFFF)
	params = append(params, lower(sig, args)...)
	return c.call(name, f, sig.Result, params)
}

func (c *WasmCore) CallEntry(e Entry, args ...uint64) (uint64, error) {
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
	return c.call(e.Symbol(), c.entries[e], sig.Result, lower(sig, args))
}

func (c *WasmCore) call(name string, f api.Function, result Kind, params []uint64) (uint64, error) {
	res, err := f.Call(c.ctx, params...)
	if err != nil {
		return 0, rterrors.CallFailed(name, err)
	}
	if result == KindVoid || len(res) == 0 {
		return 0, nil
	}
	return result.Normalize(res[0], 4), nil
}

// lower converts normalized arguments to wasm value encodings. i32 values
// carry no upper bits.
func lower(sig Signature, args []uint64) []uint64 {
	out := make([]uint64, len(args))
	for i, k := range sig.Params {
		v := k.Normalize(args[i], 4)
		if k.wasmType() == api.ValueTypeI32 || k == KindF32 {
			v &= 0xFFFFFFFF
		}
		out[i] = v
	}
	return out
}

func (c *WasmCore) usable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return rterrors.Closed(rterrors.PhaseEngine, "wasm core")
	}
	return nil
}

// Close releases the wazero runtime. It is safe to call more than once.
func (c *WasmCore) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.d = nil
	c.mu.Unlock()
	return c.runtime.Close(c.ctx)
}
