package runtime

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	rterrors "github.com/wippyai/retro-runtime/errors"
)

func (s *Session) writeBool(data uint64, v bool) error {
	return s.mem.WriteU8(data, uint8(b2u(v)))
}

func (s *Session) writeString(data uint64, v string) error {
	ptr, err := s.strs.get(v)
	if err != nil {
		return err
	}
	return s.codec.WritePtr(data, ptr)
}

func (s *Session) envSetRotation(data uint64) (bool, error) {
	if s.reg.Video == nil {
		return false, nil
	}
	rot, err := s.mem.ReadU32(data)
	if err != nil {
		return false, err
	}
	return s.reg.Video.SetRotation(rot), nil
}

func (s *Session) envGetOverscan(data uint64) (bool, error) {
	return true, s.writeBool(data, s.cfg.Overscan)
}

func (s *Session) envGetCanDupe(data uint64) (bool, error) {
	if s.reg.Video == nil {
		return false, nil
	}
	return true, s.writeBool(data, s.reg.Video.CanDupe())
}

func (s *Session) envShutdown(uint64) (bool, error) {
	s.shutdown = true
	s.log.Info("core requested shutdown")
	return true, nil
}

func (s *Session) envSetPerformanceLevel(data uint64) (bool, error) {
	level, err := s.mem.ReadU32(data)
	if err != nil {
		return false, err
	}
	s.perfLevel = level
	return true, nil
}

func (s *Session) envPath(data uint64, get func(driver.Path) (string, bool)) (bool, error) {
	if s.reg.Path == nil {
		return false, nil
	}
	dir, ok := get(s.reg.Path)
	if !ok {
		return false, s.codec.WritePtr(data, 0)
	}
	return true, s.writeString(data, dir)
}

func (s *Session) envGetSystemDirectory(data uint64) (bool, error) {
	return s.envPath(data, driver.Path.System)
}

func (s *Session) envGetSaveDirectory(data uint64) (bool, error) {
	return s.envPath(data, driver.Path.Save)
}

func (s *Session) envGetCoreAssetsDirectory(data uint64) (bool, error) {
	return s.envPath(data, driver.Path.CoreAssets)
}

func (s *Session) envGetPlaylistDirectory(data uint64) (bool, error) {
	return s.envPath(data, driver.Path.Playlist)
}

func (s *Session) envGetFileBrowserStartDirectory(data uint64) (bool, error) {
	return s.envPath(data, driver.Path.FileBrowserStart)
}

// envGetLibretroPath falls back to the path the core was loaded from.
func (s *Session) envGetLibretroPath(data uint64) (bool, error) {
	if s.reg.Path != nil {
		if p, ok := s.reg.Path.Libretro(); ok {
			return true, s.writeString(data, p)
		}
	}
	if p := s.core.Info().Path; p != "" {
		return true, s.writeString(data, p)
	}
	return false, nil
}

func (s *Session) envSetSupportNoGame(data uint64) (bool, error) {
	v, err := s.mem.ReadU8(data)
	if err != nil {
		return false, err
	}
	s.noGame = v != 0
	return true, nil
}

func (s *Session) envSetSupportAchievements(data uint64) (bool, error) {
	v, err := s.mem.ReadU8(data)
	if err != nil {
		return false, err
	}
	s.achieve = v != 0
	return true, nil
}

// envSetSerializationQuirks stores the core's quirks and reports back that
// the host copes with a savestate size that changes between calls.
func (s *Session) envSetSerializationQuirks(data uint64) (bool, error) {
	q, err := s.mem.ReadU64(data)
	if err != nil {
		return false, err
	}
	s.quirks = q
	return true, s.mem.WriteU64(data, q|abi.QuirkFrontVariableSize)
}

func (s *Session) envSetMessage(data uint64) (bool, error) {
	if s.reg.Message == nil {
		return false, nil
	}
	msg, err := s.importMessage(data)
	if err != nil {
		return false, err
	}
	return s.reg.Message.SetMessage(msg), nil
}

func (s *Session) envSetMessageExt(data uint64) (bool, error) {
	if s.reg.Message == nil {
		return false, nil
	}
	msg, err := s.importMessageExt(data)
	if err != nil {
		return false, err
	}
	return s.reg.Message.SetMessageExt(msg), nil
}

func (s *Session) envGetMessageInterfaceVersion(data uint64) (bool, error) {
	if s.reg.Message == nil {
		return false, nil
	}
	return true, s.mem.WriteU32(data, abi.MessageInterfaceVersion)
}

func (s *Session) envSetSystemAVInfo(data uint64) (bool, error) {
	av, err := importAVInfo(s.codec.Record(s.shapes.SystemAVInfo, data))
	if err != nil {
		return false, err
	}
	if av.Timing.FPS <= 0 || av.Timing.SampleRate <= 0 {
		return false, rterrors.InvalidData(rterrors.PhaseDispatch, []string{"retro_system_av_info", "timing"}, "non-positive timing")
	}
	s.applyAVInfo(av)
	return true, nil
}

func (s *Session) envSetGeometry(data uint64) (bool, error) {
	geom, err := importGeometry(s.codec.Record(s.shapes.GameGeometry, data))
	if err != nil {
		return false, err
	}
	s.av.Geometry = geom
	if s.reg.Video != nil {
		s.reg.Video.SetGeometry(geom)
	}
	return true, nil
}

func (s *Session) envSetProcAddressCallback(data uint64) (bool, error) {
	r := s.codec.Record(s.shapes.ProcAddressInterface, data)
	fn := r.Ptr("get_proc_address")
	if err := r.Err(); err != nil {
		return false, err
	}
	s.procAddr = fn
	return true, nil
}

func (s *Session) envSetSubsystemInfo(data uint64) (bool, error) {
	subs, err := s.importSubsystems(data)
	if err != nil {
		return false, err
	}
	s.subsystems = subs
	return true, nil
}

func (s *Session) envSetMemoryMaps(data uint64) (bool, error) {
	maps, err := s.importMemoryMap(data)
	if err != nil {
		return false, err
	}
	s.memoryMaps = maps
	return true, nil
}

// envSetContentInfoOverride with NULL asks whether overrides are supported.
func (s *Session) envSetContentInfoOverride(data uint64) (bool, error) {
	if data == 0 {
		return true, nil
	}
	ov, err := s.importContentOverrides(data)
	if err != nil {
		return false, err
	}
	s.overrides = ov
	return true, nil
}

// envGetGameInfoExt hands out the retro_game_info_ext array built when the
// content was loaded.
func (s *Session) envGetGameInfoExt(data uint64) (bool, error) {
	if s.game == nil || len(s.game.content) == 0 {
		return false, nil
	}
	return true, s.codec.WritePtr(data, s.game.infoExt)
}

func (s *Session) envGetUsername(data uint64) (bool, error) {
	if s.reg.User == nil {
		return false, nil
	}
	name, ok := s.reg.User.Username()
	if !ok {
		return false, nil
	}
	return true, s.writeString(data, name)
}

func (s *Session) envGetLanguage(data uint64) (bool, error) {
	lang := s.cfg.Language
	if s.reg.User != nil {
		lang = s.reg.User.Language()
	}
	return true, s.mem.WriteU32(data, uint32(lang))
}

func (s *Session) envGetAudioVideoEnable(data uint64) (bool, error) {
	var bits int32
	if s.reg.Video != nil && s.reg.Video.Enabled() {
		bits |= abi.AVEnableVideo
	}
	if s.reg.Audio != nil && s.reg.Audio.Enabled() {
		bits |= abi.AVEnableAudio
	}
	if s.reg.Audio == nil {
		bits |= abi.AVEnableHardDisableAudio
	}
	if s.cfg.FastSavestates {
		bits |= abi.AVEnableFastSavestates
	}
	return true, s.mem.WriteU32(data, uint32(bits))
}

func (s *Session) envGetFastForwarding(data uint64) (bool, error) {
	if s.reg.Timing == nil {
		return false, nil
	}
	return true, s.writeBool(data, s.reg.Timing.FastForwarding())
}

func (s *Session) envGetTargetRefreshRate(data uint64) (bool, error) {
	if s.reg.Timing == nil {
		return false, nil
	}
	return true, s.mem.WriteU32(data, math.Float32bits(s.reg.Timing.TargetRefreshRate()))
}

func (s *Session) envGetThrottleState(data uint64) (bool, error) {
	if s.reg.Timing == nil {
		return false, nil
	}
	st := s.reg.Timing.ThrottleState()
	r := s.codec.Record(s.shapes.ThrottleState, data)
	r.SetUint("mode", uint64(st.Mode))
	r.SetF32("rate", st.Rate)
	return true, r.Err()
}

// envSetFastForwardingOverride with NULL asks whether overrides are
// supported.
func (s *Session) envSetFastForwardingOverride(data uint64) (bool, error) {
	if s.reg.Timing == nil {
		return false, nil
	}
	if data == 0 {
		return true, nil
	}
	r := s.codec.Record(s.shapes.FastForwardingOverride, data)
	ov := driver.FastForwardingOverride{
		Ratio:         r.F32("ratio"),
		FastForward:   r.Bool("fastforward"),
		Notification:  r.Bool("notification"),
		InhibitToggle: r.Bool("inhibit_toggle"),
	}
	if err := r.Err(); err != nil {
		return false, err
	}
	return s.reg.Timing.SetFastForwardingOverride(ov), nil
}

func (s *Session) envGetSavestateContext(data uint64) (bool, error) {
	return true, s.mem.WriteU32(data, uint32(s.cfg.SavestateContext))
}

func (s *Session) envGetJITCapable(data uint64) (bool, error) {
	return true, s.writeBool(data, s.cfg.JITCapable)
}

// envGetDevicePower with NULL asks whether power reporting is supported.
func (s *Session) envGetDevicePower(data uint64) (bool, error) {
	if s.reg.Power == nil {
		return false, nil
	}
	if data == 0 {
		return true, nil
	}
	p, ok := s.reg.Power.DevicePower()
	if !ok {
		return false, nil
	}
	r := s.codec.Record(s.shapes.DevicePower, data)
	r.SetUint("state", uint64(p.State))
	r.SetInt("seconds", int64(p.Seconds))
	r.SetInt("percent", int64(p.Percent))
	return true, r.Err()
}

func (s *Session) logDispatch(cmd string, fields ...zap.Field) {
	s.log.Debug(cmd, fields...)
}
