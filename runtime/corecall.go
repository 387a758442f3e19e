package runtime

import (
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/content"
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/engine"
	rterrors "github.com/wippyai/retro-runtime/errors"
	"github.com/wippyai/retro-runtime/transcoder"
)

// fault records err as fatal. Calls that trap inside the core leave it in
// an unknown state, so the session stops there.
func (s *Session) fault(err error) error {
	if s.err == nil {
		s.err = err
		s.log.Error("core call failed", zap.Error(err))
	}
	return err
}

// record allocates a zeroed struct in core memory. free releases it.
func (s *Session) record(td *wit.TypeDef) (*transcoder.Record, func(), error) {
	r, err := s.codec.NewRecord(s.alloc, td)
	if err != nil {
		return nil, nil, err
	}
	align := s.codec.Layout(td).Align
	return r, func() { s.alloc.Free(r.Addr(), r.Size(), align) }, nil
}

func (s *Session) optional(e engine.Entry) error {
	if !s.core.Has(e) {
		return rterrors.Unsupported(rterrors.PhaseLifecycle, e.Symbol())
	}
	return nil
}

// Init installs the video, audio and input callbacks and calls retro_init.
func (s *Session) Init() error {
	if err := s.enter(opInit); err != nil {
		return err
	}
	setters := []struct {
		entry engine.Entry
		fn    engine.HostFunc
	}{
		{engine.EntrySetVideoRefresh, engine.HostVideoRefresh},
		{engine.EntrySetAudioSample, engine.HostAudioSample},
		{engine.EntrySetAudioSampleBatch, engine.HostAudioSampleBatch},
		{engine.EntrySetInputPoll, engine.HostInputPoll},
		{engine.EntrySetInputState, engine.HostInputState},
	}
	for _, set := range setters {
		ptr, err := s.core.HostFunction(set.fn)
		if err != nil {
			return err
		}
		if _, err := s.callEntry(set.entry, ptr); err != nil {
			return s.fault(err)
		}
	}
	if _, err := s.callEntry(engine.EntryInit); err != nil {
		return s.fault(err)
	}
	s.state = StateInitialized
	s.log.Debug("core initialized")
	return nil
}

// SystemInfo returns retro_system_info. The result is read once and cached.
func (s *Session) SystemInfo() (SystemInfo, error) {
	if s.sysInfo != nil {
		return *s.sysInfo, nil
	}
	if err := s.enter(opSystemInfo); err != nil {
		return SystemInfo{}, err
	}
	r, free, err := s.record(s.shapes.SystemInfo)
	if err != nil {
		return SystemInfo{}, err
	}
	defer free()
	if _, err := s.callEntry(engine.EntryGetSystemInfo, r.Addr()); err != nil {
		return SystemInfo{}, s.fault(err)
	}
	info := SystemInfo{
		LibraryName:     r.String("library_name"),
		LibraryVersion:  r.String("library_version"),
		ValidExtensions: r.String("valid_extensions"),
		NeedFullpath:    r.Bool("need_fullpath"),
		BlockExtract:    r.Bool("block_extract"),
	}
	if err := r.Err(); err != nil {
		return SystemInfo{}, err
	}
	s.sysInfo = &info
	return info, nil
}

// AVInfo returns the audio/video parameters of the loaded game, including
// later SET_SYSTEM_AV_INFO and SET_GEOMETRY updates.
func (s *Session) AVInfo() (driver.AVInfo, error) {
	if err := s.enter(opAVInfo); err != nil {
		return driver.AVInfo{}, err
	}
	return s.av, nil
}

func (s *Session) refreshAVInfo() error {
	r, free, err := s.record(s.shapes.SystemAVInfo)
	if err != nil {
		return err
	}
	defer free()
	if _, err := s.callEntry(engine.EntryGetSystemAVInfo, r.Addr()); err != nil {
		return s.fault(err)
	}
	av, err := importAVInfo(r)
	if err != nil {
		return err
	}
	s.applyAVInfo(av)
	return nil
}

func (s *Session) applyAVInfo(av driver.AVInfo) {
	s.av = av
	if s.reg.Video != nil {
		s.reg.Video.SetSystemAVInfo(av)
	}
	if s.reg.Audio != nil {
		s.reg.Audio.SetSystemAVInfo(av)
	}
}

// LoadGame loads one piece of content, or none when the core declared
// SET_SUPPORT_NO_GAME.
func (s *Session) LoadGame(games ...content.Content) error {
	if err := s.enter(opLoadGame); err != nil {
		return err
	}
	switch {
	case len(games) == 0 && !s.noGame:
		return rterrors.Unsupported(rterrors.PhaseLifecycle, "core requires content")
	case len(games) > 1:
		return rterrors.InvalidInput(rterrors.PhaseLifecycle, "more than one content file needs LoadGameSpecial")
	}
	game, err := s.prepareGame(games)
	if err != nil {
		return err
	}
	var arg uint64
	if len(games) == 1 {
		arg = game.info
	}
	return s.finishLoad(game, func() (uint64, error) {
		return s.callEntry(engine.EntryLoadGame, arg)
	})
}

// LoadNoGame starts a core that declared SET_SUPPORT_NO_GAME without content.
func (s *Session) LoadNoGame() error {
	return s.LoadGame()
}

// LoadGameSpecial loads content for a subsystem declared with
// SET_SUBSYSTEM_INFO.
func (s *Session) LoadGameSpecial(gameType uint32, games ...content.Content) error {
	if err := s.enter(opLoadGame); err != nil {
		return err
	}
	if err := s.optional(engine.EntryLoadGameSpecial); err != nil {
		return err
	}
	if len(games) == 0 {
		return rterrors.InvalidInput(rterrors.PhaseLifecycle, "no content for subsystem")
	}
	game, err := s.prepareGame(games)
	if err != nil {
		return err
	}
	return s.finishLoad(game, func() (uint64, error) {
		return s.callEntry(engine.EntryLoadGameSpecial, uint64(gameType), game.info, uint64(len(games)))
	})
}

func (s *Session) finishLoad(game *loadedGame, load func() (uint64, error)) error {
	s.game = game
	s.loading = true
	ok, err := load()
	s.loading = false
	if err != nil {
		s.freeGame()
		return s.fault(err)
	}
	if ok == 0 {
		s.freeGame()
		return rterrors.New(rterrors.PhaseLifecycle, rterrors.KindCallFailed).
			Symbol("retro_load_game").
			Detail("core rejected content").
			Build()
	}
	s.state = StateGameLoaded
	if err := s.refreshAVInfo(); err != nil {
		return err
	}
	s.log.Info("game loaded",
		zap.Int("files", len(game.content)),
		zap.Float64("fps", s.av.Timing.FPS),
		zap.Float64("sample_rate", s.av.Timing.SampleRate))
	return nil
}

// Reset calls retro_reset.
func (s *Session) Reset() error {
	if err := s.enter(opReset); err != nil {
		return err
	}
	if err := s.optional(engine.EntryReset); err != nil {
		return err
	}
	if _, err := s.callEntry(engine.EntryReset); err != nil {
		return s.fault(err)
	}
	return nil
}

// UnloadGame calls retro_unload_game and returns to StateInitialized.
func (s *Session) UnloadGame() error {
	if err := s.enter(opUnloadGame); err != nil {
		return err
	}
	return s.unload()
}

func (s *Session) unload() error {
	s.setAudioCallbackState(false)
	s.announceDrivers(false)
	s.runStarted = false
	if _, err := s.callEntry(engine.EntryUnloadGame); err != nil {
		return s.fault(err)
	}
	s.freeGame()
	s.state = StateInitialized
	return nil
}

// Deinit unloads any game and calls retro_deinit. It can only happen once.
func (s *Session) Deinit() error {
	if err := s.enter(opDeinit); err != nil {
		return err
	}
	if s.state.HasGame() {
		if err := s.unload(); err != nil {
			return err
		}
	}
	s.announceDrivers(false)
	if _, err := s.callEntry(engine.EntryDeinit); err != nil {
		return s.fault(err)
	}
	s.mics.closeAll()
	s.state = StateDeinitialized
	s.log.Debug("core deinitialized")
	return nil
}

// Serialize returns a savestate.
func (s *Session) Serialize() ([]byte, error) {
	if err := s.enter(opSerialize); err != nil {
		return nil, err
	}
	if err := s.optional(engine.EntrySerialize); err != nil {
		return nil, err
	}
	size, err := s.callEntry(engine.EntrySerializeSize)
	if err != nil {
		return nil, s.fault(err)
	}
	if size == 0 || size > uint64(maxStateSize) {
		return nil, rterrors.Unsupported(rterrors.PhaseLifecycle, "core reports no savestate size")
	}
	ptr, err := s.alloc.Alloc(uint32(size), 8)
	if err != nil {
		return nil, rterrors.AllocationFailed(rterrors.PhaseEncode, uint32(size), 8, err)
	}
	defer s.alloc.Free(ptr, uint32(size), 8)
	ok, err := s.callEntry(engine.EntrySerialize, ptr, size)
	if err != nil {
		return nil, s.fault(err)
	}
	if ok == 0 {
		return nil, rterrors.New(rterrors.PhaseLifecycle, rterrors.KindCallFailed).Symbol("retro_serialize").Build()
	}
	return transcoder.CopyBytes(s.mem, ptr, uint32(size))
}

// Unserialize restores a savestate produced by Serialize.
func (s *Session) Unserialize(data []byte) error {
	if err := s.enter(opSerialize); err != nil {
		return err
	}
	if err := s.optional(engine.EntryUnserialize); err != nil {
		return err
	}
	if len(data) == 0 || len(data) > maxStateSize {
		return rterrors.InvalidInput(rterrors.PhaseLifecycle, "savestate size out of range")
	}
	size := uint32(len(data))
	ptr, err := s.alloc.Alloc(size, 8)
	if err != nil {
		return rterrors.AllocationFailed(rterrors.PhaseEncode, size, 8, err)
	}
	defer s.alloc.Free(ptr, size, 8)
	if err := s.mem.Write(ptr, data); err != nil {
		return err
	}
	ok, err := s.callEntry(engine.EntryUnserialize, ptr, uint64(size))
	if err != nil {
		return s.fault(err)
	}
	if ok == 0 {
		return rterrors.New(rterrors.PhaseLifecycle, rterrors.KindCallFailed).Symbol("retro_unserialize").Build()
	}
	return nil
}

const maxStateSize = 256 << 20

// CheatReset calls retro_cheat_reset.
func (s *Session) CheatReset() error {
	if err := s.enter(opCheat); err != nil {
		return err
	}
	if err := s.optional(engine.EntryCheatReset); err != nil {
		return err
	}
	if _, err := s.callEntry(engine.EntryCheatReset); err != nil {
		return s.fault(err)
	}
	return nil
}

// CheatSet calls retro_cheat_set.
func (s *Session) CheatSet(c Cheat) error {
	if err := s.enter(opCheat); err != nil {
		return err
	}
	if err := s.optional(engine.EntryCheatSet); err != nil {
		return err
	}
	ptr, size, err := transcoder.WriteCString(s.mem, s.alloc, c.Code)
	if err != nil {
		return err
	}
	defer s.alloc.Free(ptr, size, 1)
	if _, err := s.callEntry(engine.EntryCheatSet, uint64(c.Index), b2u(c.Enabled), ptr); err != nil {
		return s.fault(err)
	}
	return nil
}

// SetControllerPortDevice tells the core and the input driver which device
// is plugged into port.
func (s *Session) SetControllerPortDevice(port, device uint32) error {
	if err := s.enter(opPortDevice); err != nil {
		return err
	}
	if s.reg.Input != nil {
		s.reg.Input.SetPortDevice(port, device)
	}
	if !s.core.Has(engine.EntrySetControllerPortDevice) {
		return nil
	}
	if _, err := s.callEntry(engine.EntrySetControllerPortDevice, uint64(port), uint64(device)); err != nil {
		return s.fault(err)
	}
	return nil
}

func (s *Session) memoryRegion(id uint32) (uint64, uint64, error) {
	if err := s.enter(opMemory); err != nil {
		return 0, 0, err
	}
	if err := s.optional(engine.EntryGetMemoryData); err != nil {
		return 0, 0, err
	}
	if err := s.optional(engine.EntryGetMemorySize); err != nil {
		return 0, 0, err
	}
	ptr, err := s.callEntry(engine.EntryGetMemoryData, uint64(id))
	if err != nil {
		return 0, 0, s.fault(err)
	}
	size, err := s.callEntry(engine.EntryGetMemorySize, uint64(id))
	if err != nil {
		return 0, 0, s.fault(err)
	}
	return ptr, size, nil
}

// MemoryData returns a copy of the memory region id (abi.MemorySaveRAM and
// friends). A region the core does not expose is returned as nil.
func (s *Session) MemoryData(id uint32) ([]byte, error) {
	ptr, size, err := s.memoryRegion(id)
	if err != nil || ptr == 0 || size == 0 {
		return nil, err
	}
	if size > uint64(maxStateSize) {
		return nil, rterrors.InvalidData(rterrors.PhaseDecode, []string{"retro_get_memory_size"}, "region too large")
	}
	return transcoder.CopyBytes(s.mem, ptr, uint32(size))
}

// WriteMemory copies data into the start of region id, for example to
// restore save RAM after LoadGame.
func (s *Session) WriteMemory(id uint32, data []byte) error {
	ptr, size, err := s.memoryRegion(id)
	if err != nil {
		return err
	}
	if ptr == 0 || size == 0 {
		return rterrors.NotFound(rterrors.PhaseLifecycle, "memory region", memoryName(id))
	}
	if uint64(len(data)) > size {
		return rterrors.InvalidInput(rterrors.PhaseLifecycle, "data larger than memory region")
	}
	return s.mem.Write(ptr, data)
}

func memoryName(id uint32) string {
	switch id {
	case 0:
		return "save_ram"
	case 1:
		return "rtc"
	case 2:
		return "system_ram"
	case 3:
		return "video_ram"
	}
	return "custom"
}

// Region returns abi.RegionNTSC or abi.RegionPAL.
func (s *Session) Region() (uint32, error) {
	if err := s.enter(opRegion); err != nil {
		return 0, err
	}
	if err := s.optional(engine.EntryGetRegion); err != nil {
		return 0, err
	}
	v, err := s.callEntry(engine.EntryGetRegion)
	if err != nil {
		return 0, s.fault(err)
	}
	return uint32(v), nil
}

// ProcAddress resolves name through the callback the core registered with
// SET_PROC_ADDRESS_CALLBACK. The result is a core function pointer for
// engine.Core.Call.
func (s *Session) ProcAddress(name string) (uint64, error) {
	if err := s.enter(opProcAddress); err != nil {
		return 0, err
	}
	if s.procAddr == 0 {
		return 0, rterrors.Unsupported(rterrors.PhaseLifecycle, "core registered no proc address callback")
	}
	ptr, size, err := transcoder.WriteCString(s.mem, s.alloc, name)
	if err != nil {
		return 0, err
	}
	defer s.alloc.Free(ptr, size, 1)
	fn, err := s.callCore("get_proc_address", s.procAddr, sigProcAddress, ptr)
	if err != nil {
		return 0, err
	}
	if fn == 0 {
		return 0, rterrors.NotFound(rterrors.PhaseLifecycle, "proc", name)
	}
	return fn, nil
}

// loadedGame holds what the core may reference while a game is loaded.
type loadedGame struct {
	allocs  *transcoder.AllocationList
	content []content.Content
	info    uint64 // retro_game_info[len(content)]
	infoExt uint64 // retro_game_info_ext[len(content)]
}

// prepareGame copies content into core memory as retro_game_info and
// retro_game_info_ext arrays.
func (s *Session) prepareGame(games []content.Content) (_ *loadedGame, err error) {
	game := &loadedGame{allocs: transcoder.NewAllocationList(), content: games}
	defer func() {
		if err != nil {
			game.allocs.FreeAndRelease(s.alloc)
		}
	}()
	if len(games) == 0 {
		return game, nil
	}
	sys, err := s.SystemInfo()
	if err != nil {
		return nil, err
	}

	infos, err := s.allocArray(game.allocs, s.shapes.GameInfo, len(games))
	if err != nil {
		return nil, err
	}
	exts, err := s.allocArray(game.allocs, s.shapes.GameInfoExt, len(games))
	if err != nil {
		return nil, err
	}
	game.info = infos[0].Addr()
	game.infoExt = exts[0].Addr()

	for i, c := range games {
		fullpath, persistent := s.needsFullpath(sys, c)
		if fullpath && c.Path == "" {
			return nil, rterrors.InvalidInput(rterrors.PhaseContent, "core needs a content path")
		}
		if !fullpath && c.Data == nil {
			return nil, rterrors.InvalidInput(rterrors.PhaseContent, "core needs content data")
		}
		str := func(v string) (uint64, error) {
			if v == "" {
				return 0, nil
			}
			ptr, size, err := transcoder.WriteCString(s.mem, s.alloc, v)
			if err != nil {
				return 0, err
			}
			game.allocs.Add(ptr, size, 1)
			return ptr, nil
		}
		var data uint64
		if !fullpath && len(c.Data) > 0 {
			size := uint32(len(c.Data))
			if data, err = s.alloc.Alloc(size, 16); err != nil {
				return nil, rterrors.AllocationFailed(rterrors.PhaseEncode, size, 16, err)
			}
			game.allocs.Add(data, size, 16)
			if err := s.mem.Write(data, c.Data); err != nil {
				return nil, err
			}
		}
		fields := []struct {
			name, value string
		}{
			{"path", c.Path}, {"meta", c.Meta}, {"full_path", c.Path},
			{"archive_path", c.ArchivePath}, {"archive_file", c.ArchiveFile},
			{"dir", c.Dir()}, {"name", c.Name}, {"ext", c.Ext},
		}
		ptrs := make(map[string]uint64, len(fields))
		for _, f := range fields {
			if ptrs[f.name], err = str(f.value); err != nil {
				return nil, err
			}
		}

		gi := infos[i]
		gi.SetPtr("path", ptrs["path"])
		gi.SetPtr("data", data)
		gi.SetUint("size", uint64(len(c.Data)))
		if fullpath {
			gi.SetUint("size", 0)
		}
		gi.SetPtr("meta", ptrs["meta"])

		ext := exts[i]
		for _, name := range []string{"full_path", "archive_path", "archive_file", "dir", "name", "ext", "meta"} {
			ext.SetPtr(name, ptrs[name])
		}
		ext.SetPtr("data", data)
		ext.SetUint("size", uint64(len(c.Data)))
		if fullpath {
			ext.SetUint("size", 0)
		}
		ext.SetBool("file_in_archive", c.InArchive())
		ext.SetBool("persistent_data", persistent && data != 0)
		if err := gi.Err(); err != nil {
			return nil, err
		}
		if err := ext.Err(); err != nil {
			return nil, err
		}
	}
	return game, nil
}

// needsFullpath applies content overrides by extension over the core's
// system info.
func (s *Session) needsFullpath(sys SystemInfo, c content.Content) (fullpath, persistent bool) {
	fullpath = sys.NeedFullpath
	for _, o := range s.overrides {
		for _, e := range strings.Split(o.Extensions, "|") {
			if strings.EqualFold(e, c.Ext) {
				return o.NeedFullpath, o.PersistentData
			}
		}
	}
	return fullpath, false
}

func (s *Session) allocArray(list *transcoder.AllocationList, td *wit.TypeDef, n int) ([]*transcoder.Record, error) {
	info := s.codec.Layout(td)
	total := info.Size * uint32(n)
	base, err := s.alloc.Alloc(total, info.Align)
	if err != nil {
		return nil, rterrors.AllocationFailed(rterrors.PhaseEncode, total, info.Align, err)
	}
	list.Add(base, total, info.Align)
	if err := s.mem.Write(base, make([]byte, total)); err != nil {
		return nil, err
	}
	return s.codec.Array(td, base, n)
}

func (s *Session) freeGame() {
	if s.game == nil {
		return
	}
	s.game.allocs.FreeAndRelease(s.alloc)
	s.game = nil
}
