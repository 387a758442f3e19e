// Package engine loads libretro cores and calls into them.
//
// A core is seen as an opaque table of C entry points plus an address space.
// Two backends implement the Core interface:
//
//	NativeCore - a shared library opened with purego (dlopen, no cgo)
//	WasmCore   - a wasm32 build of the core run by wazero
//
// Open picks the backend from the file extension.
//
// # Signatures
//
// Every entry point and host function has a C signature written in a compact
// form: the result letter, an underscore and one letter per parameter.
//
//	Letter   C type            wasm32 type
//	───────────────────────────────────────
//	v        void              -
//	b        bool              i32
//	B        uint8_t           i32
//	s / S    int16 / uint16    i32
//	i / u    int32 / uint32    i32
//	l / L    int64 / uint64    i64
//	p        pointer           i32
//	z        size_t            i32
//	f / d    float / double    f32 / f64
//
// Raw register values cross the boundary as uint64. Kind.Normalize masks
// them to the declared width in both directions, so upper bits a C compiler
// left undefined never reach the host or the core.
//
// # Host Functions
//
// Callbacks handed to a core (environment, video refresh, the interface
// tables filled in by environment commands) are identified by HostFunc.
// HostFunction returns a pointer the core can call; every such call arrives
// at the Dispatcher installed with Bind.
//
// For wasm cores the pointer is the id tagged with HostPointerBit. The guest
// calls it through the retro_host.invoke import. Function pointers the core
// hands back to the host are called through exported trampolines named
// __retro_invoke_<signature>.
//
// # Limitations
//
// Native cores run on amd64 and arm64 under darwin, linux and the BSDs.
// purego caps callbacks per process and never frees them, and a library can
// back only one open core because cores keep their state in globals.
// Native calls with float arguments or results are refused, as are host
// functions returning a float (get_sensor_input), because purego only moves
// integer registers.
//
// Memory64 guests are not supported since wazero does not implement the
// proposal.
//
// # Thread Safety
//
// A Core is not safe for concurrent use. Host functions run synchronously on
// the goroutine that called into the core.
package engine
