package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/engine"
	rterrors "github.com/wippyai/retro-runtime/errors"
)

func (s *Session) envSetPixelFormat(data uint64) (bool, error) {
	v, err := s.mem.ReadU32(data)
	if err != nil {
		return false, err
	}
	format := abi.PixelFormat(v)
	if !format.Valid() {
		return false, rterrors.InvalidEnum(rterrors.PhaseDispatch, []string{"SET_PIXEL_FORMAT"}, v, "retro_pixel_format")
	}
	if s.reg.Video != nil && !s.reg.Video.SetPixelFormat(format) {
		return false, nil
	}
	s.format = format
	return true, nil
}

// envSetHWRender negotiates a hardware context. On success the host's
// framebuffer and proc address functions are written back into the
// request and the core's reset and destroy callbacks are kept.
func (s *Session) envSetHWRender(data uint64) (bool, error) {
	if s.reg.Video == nil {
		return false, nil
	}
	r := s.codec.Record(s.shapes.HWRenderCallback, data)
	req, err := importHWRender(r)
	reset, destroy := r.Ptr("context_reset"), r.Ptr("context_destroy")
	if err == nil {
		err = r.Err()
	}
	if err != nil {
		return false, err
	}
	if !s.reg.Video.SetHWRender(req) {
		s.log.Debug("hardware context rejected", zap.Uint32("context", uint32(req.ContextType)))
		return false, nil
	}
	fb, err := s.core.HostFunction(engine.HostHWGetCurrentFramebuffer)
	if err != nil {
		return false, err
	}
	proc, err := s.core.HostFunction(engine.HostHWGetProcAddress)
	if err != nil {
		return false, err
	}
	r.SetPtr("get_current_framebuffer", fb)
	r.SetPtr("get_proc_address", proc)
	if err := r.Err(); err != nil {
		return false, err
	}
	s.hw = hwRenderCallbacks{
		req:            req,
		contextReset:   reset,
		contextDestroy: destroy,
		set:            true,
	}
	return true, nil
}

func (s *Session) envSetHWSharedContext(uint64) (bool, error) {
	if s.reg.Video == nil {
		return false, nil
	}
	return s.reg.Video.SetHWSharedContext(), nil
}

func (s *Session) envGetPreferredHWRender(data uint64) (bool, error) {
	if s.reg.Video == nil {
		return false, nil
	}
	ctx, ok := s.reg.Video.PreferredHWRender()
	if !ok {
		return false, nil
	}
	return true, s.mem.WriteU32(data, uint32(ctx))
}

// resetHWContext tells the core its hardware context is ready. It runs
// once per negotiated context, before the first frame.
func (s *Session) resetHWContext() {
	if !s.hw.set || s.hw.reset {
		return
	}
	s.hw.reset = true
	if s.hw.contextReset != 0 {
		_, _ = s.callCore("context_reset", s.hw.contextReset, sigVoid)
	}
}

func (s *Session) destroyHWContext() {
	if !s.hw.reset {
		return
	}
	s.hw.reset = false
	if s.hw.contextDestroy != 0 {
		_, _ = s.callCore("context_destroy", s.hw.contextDestroy, sigVoid)
	}
}

// envSetFrameTimeCallback keeps the core's callback; the run loop calls it
// before every frame.
func (s *Session) envSetFrameTimeCallback(data uint64) (bool, error) {
	r := s.codec.Record(s.shapes.FrameTimeCallback, data)
	cb := frameTimeCallback{fn: r.Ptr("callback"), reference: r.Int("reference")}
	if err := r.Err(); err != nil {
		return false, err
	}
	s.frameTime = cb
	return true, nil
}

// envSetAudioCallback is honoured only when the audio driver accepts
// callback-driven audio.
func (s *Session) envSetAudioCallback(data uint64) (bool, error) {
	if s.reg.Audio == nil {
		return false, nil
	}
	r := s.codec.Record(s.shapes.AudioCallback, data)
	fn, setState := r.Ptr("callback"), r.Ptr("set_state")
	if err := r.Err(); err != nil {
		return false, err
	}
	if !s.reg.Audio.SetCallback(fn != 0) {
		return false, nil
	}
	s.audioCB = audioCallback{fn: fn, setState: setState}
	return true, nil
}

func (s *Session) envSetMinimumAudioLatency(data uint64) (bool, error) {
	if s.reg.Audio == nil {
		return false, nil
	}
	ms, err := s.mem.ReadU32(data)
	if err != nil {
		return false, err
	}
	return s.reg.Audio.SetMinimumLatency(ms), nil
}

// envSetAudioBufferStatusCallback with NULL removes the callback.
func (s *Session) envSetAudioBufferStatusCallback(data uint64) (bool, error) {
	if s.reg.Audio == nil {
		return false, nil
	}
	var cb uint64
	if data != 0 {
		r := s.codec.Record(s.shapes.AudioBufferStatusCallback, data)
		cb = r.Ptr("callback")
		if err := r.Err(); err != nil {
			return false, err
		}
	}
	if cb == 0 {
		return s.reg.Audio.SetBufferStatusCallback(nil), nil
	}
	return s.reg.Audio.SetBufferStatusCallback(func(active bool, occupancy uint32, underrunLikely bool) {
		if s.closed {
			return
		}
		_, _ = s.callCore("audio_buffer_status", cb, sigBufferStatus,
			b2u(active), uint64(occupancy), b2u(underrunLikely))
	}), nil
}

func (s *Session) envSetInputDescriptors(data uint64) (bool, error) {
	if s.reg.Input == nil {
		return false, nil
	}
	descs, err := s.importInputDescriptors(data)
	if err != nil {
		return false, err
	}
	s.reg.Input.SetDescriptors(descs)
	return true, nil
}

func (s *Session) envSetControllerInfo(data uint64) (bool, error) {
	if s.reg.Input == nil {
		return false, nil
	}
	ports, err := s.importControllerInfo(data)
	if err != nil {
		return false, err
	}
	s.reg.Input.SetControllerInfo(ports)
	return true, nil
}

func (s *Session) envSetKeyboardCallback(data uint64) (bool, error) {
	if s.reg.Input == nil {
		return false, nil
	}
	r := s.codec.Record(s.shapes.KeyboardCallback, data)
	cb := r.Ptr("callback")
	if err := r.Err(); err != nil {
		return false, err
	}
	if cb == 0 {
		s.reg.Input.SetKeyboardCallback(nil)
		return true, nil
	}
	s.reg.Input.SetKeyboardCallback(driver.KeyboardFunc(func(down bool, keycode, character uint32, modifiers uint16) {
		if s.closed {
			return
		}
		_, _ = s.callCore("keyboard", cb, sigKeyboard,
			b2u(down), uint64(keycode), uint64(character), uint64(modifiers))
	}))
	return true, nil
}

func (s *Session) envGetInputDeviceCapabilities(data uint64) (bool, error) {
	if s.reg.Input == nil {
		return false, nil
	}
	return true, s.mem.WriteU64(data, s.reg.Input.DeviceCapabilities())
}

// envGetInputBitmasks with NULL asks whether RETRO_DEVICE_ID_JOYPAD_MASK
// is understood.
func (s *Session) envGetInputBitmasks(data uint64) (bool, error) {
	if s.reg.Input == nil || !s.reg.Input.SupportsBitmasks() {
		return false, nil
	}
	if data == 0 {
		return true, nil
	}
	return true, s.writeBool(data, true)
}

func (s *Session) envGetInputMaxUsers(data uint64) (bool, error) {
	users := s.cfg.MaxUsers
	if s.reg.Input != nil {
		if n := s.reg.Input.MaxUsers(); n > 0 {
			users = n
		}
	}
	if users == 0 {
		users = defaultMaxUsers
	}
	return true, s.mem.WriteU32(data, users)
}
