package runtime

import (
	"context"

	"go.uber.org/zap"

	retroruntime "github.com/wippyai/retro-runtime"
	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/engine"
	rterrors "github.com/wippyai/retro-runtime/errors"
	"github.com/wippyai/retro-runtime/resource"
	"github.com/wippyai/retro-runtime/transcoder"
)

// Session drives one loaded core through its lifecycle and answers every
// call the core makes back into the host.
//
// A Session is not safe for concurrent use. The core runs synchronously
// inside whichever method the host called and re-enters the session from
// the same goroutine; hosts that share a session across goroutines must
// serialize their calls.
type Session struct {
	core   engine.Core
	reg    driver.Registry
	cfg    Config
	mem    retroruntime.Memory
	alloc  retroruntime.Allocator
	codec  *transcoder.Codec
	shapes *abi.Shapes
	log    *zap.Logger

	err error

	sysInfo *SystemInfo
	av      driver.AVInfo
	game    *loadedGame

	tables map[abi.Command]ifaceTable
	strs   *hostStrings
	mics   *micTable
	perf   perfCounters

	subsystems []Subsystem
	memoryMaps []MemoryDescriptor
	overrides  []ContentOverride

	frameTime  frameTimeCallback
	audioCB    audioCallback
	camera     cameraCallbacks
	location   locationCallbacks
	hw         hwRenderCallbacks
	procAddr   uint64
	quirks     uint64
	perfLevel  uint32
	depth      int
	ptrSize    uint32
	format     abi.PixelFormat
	state      State
	loading    bool
	noGame     bool
	achieve    bool
	shutdown   bool
	closed     bool
	runStarted bool
}

// Open loads the core at path and constructs a session around it. On
// failure the core is closed and no session is returned.
func Open(ctx context.Context, path string, reg driver.Registry, cfg Config) (*Session, error) {
	core, err := engine.Open(ctx, path, cfg.Engine)
	if err != nil {
		return nil, err
	}
	s, err := New(core, reg, cfg)
	if err != nil {
		_ = core.Close()
		return nil, err
	}
	return s, nil
}

// New constructs a session for an opened core. It checks the core's API
// version, installs the environment callback and leaves the session in
// StateLoaded. The session owns core only when New succeeds.
func New(core engine.Core, reg driver.Registry, cfg Config) (*Session, error) {
	if core == nil {
		return nil, rterrors.InvalidInput(rterrors.PhaseLoad, "nil core")
	}
	info := core.Info()
	if info.PointerSize != 4 && info.PointerSize != 8 {
		return nil, rterrors.Load("unsupported pointer size", nil)
	}

	s := &Session{
		core:    core,
		reg:     reg,
		cfg:     cfg,
		mem:     core.Memory(),
		alloc:   core.Allocator(),
		codec:   transcoder.NewCodec(core.Memory(), info.PointerSize),
		shapes:  abi.ShapesFor(info.PointerSize),
		log:     Logger().With(zap.String("core", info.Path)),
		tables:  make(map[abi.Command]ifaceTable),
		ptrSize: info.PointerSize,
		format:  abi.PixelFormat0RGB1555,
	}
	s.strs = newHostStrings(s.mem, s.alloc)
	s.mics = newMicTable(resource.ObserverFunc(s.micEvent))

	version, err := core.CallEntry(engine.EntryAPIVersion)
	if err != nil {
		return nil, rterrors.Load("retro_api_version", err)
	}
	if uint32(version) != abi.APIVersion {
		return nil, rterrors.VersionMismatch(rterrors.PhaseLoad, "libretro API", uint32(version), abi.APIVersion)
	}

	// Cores may define options from retro_set_environment, so configured
	// values must be in place before it runs.
	if s.reg.Options != nil && len(cfg.Options) > 0 {
		s.reg.Options.Seed(cfg.Options)
	}

	core.Bind(s)
	env, err := core.HostFunction(engine.HostEnvironment)
	if err != nil {
		core.Bind(nil)
		return nil, rterrors.Load("environment callback", err)
	}

	s.state = StateLoaded
	if _, err := s.callEntry(engine.EntrySetEnvironment, env); err != nil {
		s.release()
		return nil, rterrors.Load("retro_set_environment", err)
	}
	s.log.Debug("session created",
		zap.String("backend", info.Backend),
		zap.Uint32("pointer_size", info.PointerSize))
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Err returns the protocol violation that ended the session, if any.
func (s *Session) Err() error { return s.err }

// Core returns the loaded core.
func (s *Session) Core() engine.Core { return s.core }

// ShutdownRequested reports whether the core issued SHUTDOWN.
func (s *Session) ShutdownRequested() bool { return s.shutdown }

// SupportsNoGame reports whether the core declared it can run without
// content.
func (s *Session) SupportsNoGame() bool { return s.noGame }

// PerformanceLevel returns the level set by SET_PERFORMANCE_LEVEL.
func (s *Session) PerformanceLevel() uint32 { return s.perfLevel }

// SupportsAchievements reports the value set by SET_SUPPORT_ACHIEVEMENTS.
func (s *Session) SupportsAchievements() bool { return s.achieve }

// SerializationQuirks returns the quirks declared by the core.
func (s *Session) SerializationQuirks() uint64 { return s.quirks }

// PixelFormat returns the pixel format frames are delivered in.
func (s *Session) PixelFormat() abi.PixelFormat { return s.format }

// Subsystems returns the subsystems declared through SET_SUBSYSTEM_INFO.
func (s *Session) Subsystems() []Subsystem {
	return append([]Subsystem(nil), s.subsystems...)
}

// MemoryMaps returns the descriptors declared through SET_MEMORY_MAPS.
func (s *Session) MemoryMaps() []MemoryDescriptor {
	return append([]MemoryDescriptor(nil), s.memoryMaps...)
}

// ContentOverrides returns the overrides declared through
// SET_CONTENT_INFO_OVERRIDE.
func (s *Session) ContentOverrides() []ContentOverride {
	return append([]ContentOverride(nil), s.overrides...)
}

// Close deinitializes the core if needed and releases the core and every
// host allocation. It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	var firstErr error
	if s.err == nil && s.depth == 0 && opDeinit.allowed(s.state) {
		firstErr = s.Deinit()
	}
	s.release()
	if err := s.core.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// release drops everything the session allocated without calling into the
// core.
func (s *Session) release() {
	s.closed = true
	s.core.Bind(nil)
	s.mics.closeAll()
	s.freeGame()
	s.strs.free()
	if s.reg.Netpacket != nil {
		s.reg.Netpacket.SetCallbacks(nil)
	}
	if s.reg.Options != nil {
		s.reg.Options.SetUpdateDisplayCallback(nil)
	}
	if s.reg.Audio != nil {
		s.reg.Audio.SetBufferStatusCallback(nil)
	}
	if s.reg.Input != nil {
		s.reg.Input.SetKeyboardCallback(nil)
	}
	if s.reg.Disk != nil {
		s.reg.Disk.SetControl(nil)
	}
}

// enter checks that op may run now. A violation poisons the session.
func (s *Session) enter(op operation) error {
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return rterrors.Closed(rterrors.PhaseLifecycle, "session")
	}
	if s.depth > 0 {
		return s.violate(op, "reentrant call from inside the core")
	}
	if !op.allowed(s.state) {
		return s.violate(op, "")
	}
	return nil
}

func (s *Session) violate(op operation, detail string) error {
	err := rterrors.ProtocolViolation(op.String(), s.state.String())
	if detail != "" {
		err.Detail = detail
	}
	s.err = err
	s.log.Error("protocol violation", zap.Error(err))
	return err
}

// callEntry invokes an entry point, tracking that the core is running.
func (s *Session) callEntry(e engine.Entry, args ...uint64) (uint64, error) {
	s.depth++
	defer func() { s.depth-- }()
	v, err := s.core.CallEntry(e, args...)
	if err != nil {
		return 0, rterrors.CallFailed(e.Symbol(), err)
	}
	return v, nil
}

// callCore invokes a function pointer the core handed over. Errors are
// logged; callers that only forward events ignore them.
func (s *Session) callCore(what string, ptr uint64, sig engine.Signature, args ...uint64) (uint64, error) {
	if ptr == 0 {
		return 0, rterrors.NilPointer(rterrors.PhaseEngine, []string{what})
	}
	s.depth++
	defer func() { s.depth-- }()
	v, err := s.core.Call(ptr, sig, args...)
	if err != nil {
		s.log.Debug("core callback failed", zap.String("callback", what), zap.Error(err))
		return 0, rterrors.CallFailed(what, err)
	}
	return v, nil
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
