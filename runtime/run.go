package runtime

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/engine"
)

// Run advances the core by one frame. The first frame after a game loads
// also tells camera and location users that their drivers are ready,
// resets a negotiated hardware context and enables callback audio.
func (s *Session) Run() error {
	if err := s.enter(opRun); err != nil {
		return err
	}
	if !s.runStarted {
		s.runStarted = true
		s.announceDrivers(true)
		s.resetHWContext()
		s.setAudioCallbackState(true)
	}
	s.state = StateRunning

	if s.frameTime.fn != 0 {
		delta := s.frameTime.reference
		if s.reg.Timing != nil {
			delta = s.reg.Timing.FrameDelta(s.frameTime.reference)
		}
		if _, err := s.callCore("frame_time", s.frameTime.fn, sigFrameTime, uint64(delta)); err != nil {
			return s.fault(err)
		}
	}
	s.pumpCamera()
	if s.audioCB.fn != 0 && s.audioCB.active {
		if _, err := s.callCore("audio_callback", s.audioCB.fn, sigVoid); err != nil {
			return s.fault(err)
		}
	}
	if _, err := s.callEntry(engine.EntryRun); err != nil {
		return s.fault(err)
	}
	return nil
}

// RunFrames runs n frames, stopping early on error or when the core asks
// to shut down.
func (s *Session) RunFrames(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Run(); err != nil {
			return err
		}
		if s.shutdown {
			s.log.Debug("run stopped by core shutdown", zap.Int("frames", i+1))
			return nil
		}
	}
	return nil
}

// setAudioCallbackState tells a callback-audio core to start or stop
// producing audio. Repeated calls with the same state are dropped.
func (s *Session) setAudioCallbackState(enabled bool) {
	if s.audioCB.fn == 0 || s.audioCB.active == enabled {
		return
	}
	s.audioCB.active = enabled
	if s.audioCB.setState != 0 {
		_, _ = s.callCore("audio_set_state", s.audioCB.setState, sigAudioSetState, b2u(enabled))
	}
}

// announceDrivers calls the camera and location initialized callbacks, or
// the deinitialized ones when up is false. Each is paired: a deinitialized
// call only follows an initialized one.
func (s *Session) announceDrivers(up bool) {
	if s.camera.announced != up {
		s.camera.announced = up
		fn := s.camera.deinitialized
		if up {
			fn = s.camera.initialized
		}
		if fn != 0 {
			_, _ = s.callCore("camera_lifetime", fn, sigVoid)
		}
		if !up && s.camera.started && s.reg.Camera != nil {
			s.cameraStop()
		}
	}
	if s.location.announced != up {
		s.location.announced = up
		fn := s.location.deinitialized
		if up {
			fn = s.location.initialized
		}
		if fn != 0 {
			_, _ = s.callCore("location_lifetime", fn, sigVoid)
		}
	}
	if !up {
		s.destroyHWContext()
	}
}

// pumpCamera hands the next camera frame to the core's raw framebuffer
// callback. The frame is copied into core memory for the call only.
func (s *Session) pumpCamera() {
	if !s.camera.started || s.camera.frameRaw == 0 || s.reg.Camera == nil {
		return
	}
	frame, ok := s.reg.Camera.Frame()
	if !ok || len(frame.Data) == 0 || frame.Width == 0 || frame.Height == 0 {
		return
	}
	pitch := frame.Pitch
	if pitch == 0 {
		pitch = frame.Width * 4
	}
	need := uint64(pitch/4)*uint64(frame.Height-1) + uint64(frame.Width)
	if uint64(len(frame.Data)) < need || need*4 > maxFrameBytes {
		s.log.Debug("camera frame too short", zap.Int("pixels", len(frame.Data)))
		return
	}
	raw := make([]byte, len(frame.Data)*4)
	for i, px := range frame.Data {
		binary.LittleEndian.PutUint32(raw[i*4:], px)
	}
	size := uint32(len(raw))
	buf, err := s.alloc.Alloc(size, 4)
	if err != nil {
		return
	}
	defer s.alloc.Free(buf, size, 4)
	if err := s.mem.Write(buf, raw); err != nil {
		return
	}
	_, _ = s.callCore("camera_frame_raw", s.camera.frameRaw, sigCameraFrameRaw,
		buf, uint64(frame.Width), uint64(frame.Height), uint64(pitch))
}
