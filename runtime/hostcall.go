package runtime

import (
	"encoding/binary"
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	"github.com/wippyai/retro-runtime/engine"
	rterrors "github.com/wippyai/retro-runtime/errors"
	"github.com/wippyai/retro-runtime/transcoder"
)

// Signatures of function pointers the core hands to the host.
var (
	sigVoid           = engine.Sig("v_")
	sigFrameTime      = engine.Sig("v_l")
	sigAudioSetState  = engine.Sig("v_b")
	sigKeyboard       = engine.Sig("v_buuS")
	sigBufferStatus   = engine.Sig("v_bub")
	sigUpdateDisplay  = engine.Sig("b_")
	sigProcAddress    = engine.Sig("p_p")
	sigCameraFrameRaw = engine.Sig("v_puuz")
)

const (
	maxFrameBytes  = 64 << 20
	maxBatchFrames = 1 << 16
)

// HostCall implements engine.Dispatcher. It is the single entry point for
// every call the core makes into the host. Panics from drivers are
// contained here; they must not unwind into core frames.
func (s *Session) HostCall(fn engine.HostFunc, args []uint64) (ret uint64) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("host function panicked", zap.Stringer("fn", fn), zap.Any("panic", r))
			ret = 0
		}
	}()
	if s.closed {
		return 0
	}
	arg := func(i int) uint64 {
		if i < len(args) {
			return args[i]
		}
		return 0
	}

	switch fn {
	case engine.HostEnvironment:
		return b2u(s.Dispatch(uint32(arg(0)), arg(1)))
	case engine.HostVideoRefresh:
		s.videoRefresh(arg(0), uint32(arg(1)), uint32(arg(2)), arg(3))
	case engine.HostAudioSample:
		if s.reg.Audio != nil {
			s.reg.Audio.Sample(int16(arg(0)), int16(arg(1)))
		}
	case engine.HostAudioSampleBatch:
		return s.audioSampleBatch(arg(0), arg(1))
	case engine.HostInputPoll:
		if s.reg.Input != nil {
			s.reg.Input.Poll()
		}
	case engine.HostInputState:
		if s.reg.Input == nil {
			return 0
		}
		return uint64(int64(s.reg.Input.State(uint32(arg(0)), uint32(arg(1)), uint32(arg(2)), uint32(arg(3)))))

	case engine.HostRumbleSetState:
		if s.reg.Rumble == nil {
			return 0
		}
		return b2u(s.reg.Rumble.SetRumbleState(uint32(arg(0)), abi.RumbleEffect(arg(1)), uint16(arg(2))))
	case engine.HostSensorSetState:
		if s.reg.Sensor == nil {
			return 0
		}
		return b2u(s.reg.Sensor.SetSensorState(uint32(arg(0)), abi.SensorAction(arg(1)), uint32(arg(2))))
	case engine.HostSensorGetInput:
		if s.reg.Sensor == nil {
			return 0
		}
		return uint64(math.Float32bits(s.reg.Sensor.SensorInput(uint32(arg(0)), uint32(arg(1)))))

	case engine.HostCameraStart:
		return b2u(s.cameraStart())
	case engine.HostCameraStop:
		s.cameraStop()

	case engine.HostLocationStart:
		if s.reg.Location == nil {
			return 0
		}
		return b2u(s.reg.Location.Start())
	case engine.HostLocationStop:
		if s.reg.Location != nil {
			s.reg.Location.Stop()
		}
	case engine.HostLocationGetPosition:
		return b2u(s.locationPosition(arg(0), arg(1), arg(2), arg(3)))
	case engine.HostLocationSetInterval:
		if s.reg.Location != nil {
			s.reg.Location.SetInterval(uint32(arg(0)), uint32(arg(1)))
		}

	case engine.HostLog:
		s.coreLog(abi.LogLevel(arg(0)), arg(1), args[min(2, len(args)):])

	case engine.HostPerfGetTimeUsec:
		if s.reg.Perf == nil {
			return 0
		}
		return uint64(s.reg.Perf.TimeUsec())
	case engine.HostPerfGetCPUFeatures:
		if s.reg.Perf == nil {
			return 0
		}
		return s.reg.Perf.CPUFeatures()
	case engine.HostPerfGetCounter:
		if s.reg.Perf == nil {
			return 0
		}
		return s.reg.Perf.Counter()
	case engine.HostPerfRegister:
		s.perfRegister(arg(0))
	case engine.HostPerfStart:
		s.perfStart(arg(0))
	case engine.HostPerfStop:
		s.perfStop(arg(0))
	case engine.HostPerfLog:
		s.perfLog()

	case engine.HostLEDSetState:
		if s.reg.LED != nil {
			s.reg.LED.SetLEDState(int32(arg(0)), int32(arg(1)))
		}

	case engine.HostMIDIInputEnabled:
		return b2u(s.reg.MIDI != nil && s.reg.MIDI.InputEnabled())
	case engine.HostMIDIOutputEnabled:
		return b2u(s.reg.MIDI != nil && s.reg.MIDI.OutputEnabled())
	case engine.HostMIDIRead:
		return b2u(s.midiRead(arg(0)))
	case engine.HostMIDIWrite:
		return b2u(s.reg.MIDI != nil && s.reg.MIDI.Write(byte(arg(0)), uint32(arg(1))))
	case engine.HostMIDIFlush:
		return b2u(s.reg.MIDI != nil && s.reg.MIDI.Flush())

	case engine.HostMicOpen:
		return s.micOpen(arg(0))
	case engine.HostMicClose:
		s.micClose(arg(0))
	case engine.HostMicGetParams:
		return b2u(s.micGetParams(arg(0), arg(1)))
	case engine.HostMicSetState:
		return b2u(s.micSetState(arg(0), arg(1) != 0))
	case engine.HostMicGetState:
		return b2u(s.micGetState(arg(0)))
	case engine.HostMicRead:
		return uint64(int64(s.micRead(arg(0), arg(1), arg(2))))

	case engine.HostNetpacketSend:
		s.netpacketSend(uint32(arg(0)), arg(1), arg(2), uint16(arg(3)))
	case engine.HostNetpacketPollReceive:
		if s.reg.Netpacket != nil {
			s.reg.Netpacket.PollReceive()
		}

	case engine.HostHWGetCurrentFramebuffer:
		if s.reg.Video == nil {
			return 0
		}
		return s.reg.Video.CurrentFramebuffer()
	case engine.HostHWGetProcAddress:
		if s.reg.Video == nil {
			return 0
		}
		sym, err := s.codec.CString(arg(0))
		if err != nil {
			return 0
		}
		return s.reg.Video.HWProcAddress(sym)

	default:
		s.log.Debug("unknown host function", zap.Stringer("fn", fn))
	}
	return 0
}

func (s *Session) pointerMask() uint64 {
	if s.ptrSize == 4 {
		return math.MaxUint32
	}
	return math.MaxUint64
}

func (s *Session) videoRefresh(data uint64, width, height uint32, pitch uint64) {
	v := s.reg.Video
	if v == nil {
		return
	}
	frame := driver.Frame{Width: width, Height: height, Pitch: uint32(pitch), Format: s.format}
	switch data {
	case 0:
		frame.Dupe = true
	case abi.HWFrameBufferValid & s.pointerMask():
		frame.HW = true
	default:
		buf, err := s.readFrame(data, width, height, pitch)
		if err != nil {
			s.log.Debug("dropping video frame", zap.Error(err))
			return
		}
		frame.Data = buf
	}
	v.Refresh(frame)
}

// readFrame copies a software frame. The last row is copied without its
// pitch padding since cores may not own memory past it.
func (s *Session) readFrame(data uint64, width, height uint32, pitch uint64) ([]byte, error) {
	row := uint64(width) * uint64(s.format.BytesPerPixel())
	if width == 0 || height == 0 {
		return nil, rterrors.InvalidData(rterrors.PhaseDecode, []string{"video_refresh"}, "empty frame")
	}
	if pitch < row {
		return nil, rterrors.InvalidData(rterrors.PhaseDecode, []string{"video_refresh", "pitch"}, "pitch smaller than a row")
	}
	total := pitch*uint64(height-1) + row
	if total > maxFrameBytes {
		return nil, rterrors.InvalidData(rterrors.PhaseDecode, []string{"video_refresh"}, "frame too large")
	}
	return transcoder.CopyBytes(s.mem, data, uint32(total))
}

func (s *Session) audioSampleBatch(data, frames uint64) uint64 {
	a := s.reg.Audio
	if a == nil || frames == 0 {
		return frames
	}
	if data == 0 || frames > maxBatchFrames {
		return 0
	}
	raw, err := s.mem.Read(data, uint32(frames*4))
	if err != nil {
		s.log.Debug("audio batch out of bounds", zap.Error(err))
		return 0
	}
	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return uint64(a.SampleBatch(samples))
}

func (s *Session) locationPosition(lat, lon, hacc, vacc uint64) bool {
	if s.reg.Location == nil {
		return false
	}
	pos, ok := s.reg.Location.Position()
	if !ok {
		return false
	}
	for _, out := range []struct {
		addr uint64
		v    float64
	}{{lat, pos.Lat}, {lon, pos.Lon}, {hacc, pos.HorizAccuracy}, {vacc, pos.VertAccuracy}} {
		if out.addr == 0 {
			continue
		}
		if err := s.mem.WriteU64(out.addr, math.Float64bits(out.v)); err != nil {
			return false
		}
	}
	return true
}

func (s *Session) midiRead(out uint64) bool {
	if s.reg.MIDI == nil || out == 0 {
		return false
	}
	b, ok := s.reg.MIDI.Read()
	if !ok {
		return false
	}
	return s.mem.WriteU8(out, b) == nil
}

func (s *Session) netpacketSend(flags uint32, buf, size uint64, client uint16) {
	if s.reg.Netpacket == nil || buf == 0 || size == 0 {
		return
	}
	if size > maxFrameBytes {
		return
	}
	data, err := transcoder.CopyBytes(s.mem, buf, uint32(size))
	if err != nil {
		s.log.Debug("netpacket send out of bounds", zap.Error(err))
		return
	}
	s.reg.Netpacket.Send(flags, data, client)
}

func (s *Session) cameraStart() bool {
	if s.reg.Camera == nil {
		return false
	}
	s.camera.started = s.reg.Camera.Start()
	return s.camera.started
}

func (s *Session) cameraStop() {
	if s.reg.Camera == nil {
		return
	}
	s.reg.Camera.Stop()
	s.camera.started = false
}
