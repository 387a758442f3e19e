package runtime

import (
	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/driver"
	rterrors "github.com/wippyai/retro-runtime/errors"
)

// Capability GET commands fill a struct of function pointers. The pointers
// come from a per-command table built on first use, so repeated requests
// hand out identical values.

func (s *Session) envGetRumbleInterface(data uint64) (bool, error) {
	if s.reg.Rumble == nil {
		return false, nil
	}
	return s.writeIface(abi.GetRumbleInterface, s.shapes.RumbleInterface, data)
}

func (s *Session) envGetSensorInterface(data uint64) (bool, error) {
	if s.reg.Sensor == nil {
		return false, nil
	}
	return s.writeIface(abi.GetSensorInterface, s.shapes.SensorInterface, data)
}

func (s *Session) envGetLEDInterface(data uint64) (bool, error) {
	if s.reg.LED == nil {
		return false, nil
	}
	return s.writeIface(abi.GetLEDInterface, s.shapes.LEDInterface, data)
}

func (s *Session) envGetMIDIInterface(data uint64) (bool, error) {
	if s.reg.MIDI == nil {
		return false, nil
	}
	return s.writeIface(abi.GetMIDIInterface, s.shapes.MIDIInterface, data)
}

// envGetLogInterface is always honoured. Without a Log driver core messages
// go to the session logger.
func (s *Session) envGetLogInterface(data uint64) (bool, error) {
	return s.writeIface(abi.GetLogInterface, s.shapes.LogCallback, data)
}

func (s *Session) envGetPerfInterface(data uint64) (bool, error) {
	if s.reg.Perf == nil {
		return false, nil
	}
	return s.writeIface(abi.GetPerfInterface, s.shapes.PerfCallback, data)
}

// envGetCameraInterface passes the requested configuration to the camera
// driver and keeps the core's frame and lifetime callbacks.
func (s *Session) envGetCameraInterface(data uint64) (bool, error) {
	if s.reg.Camera == nil {
		return false, nil
	}
	r := s.codec.Record(s.shapes.CameraCallback, data)
	cfg := driver.CameraConfig{
		Caps:   r.Uint("caps"),
		Width:  r.U32("width"),
		Height: r.U32("height"),
	}
	cb := cameraCallbacks{
		frameRaw:      r.Ptr("frame_raw_framebuffer"),
		initialized:   r.Ptr("initialized"),
		deinitialized: r.Ptr("deinitialized"),
	}
	if err := r.Err(); err != nil {
		return false, err
	}
	if !s.reg.Camera.Configure(cfg) {
		return false, nil
	}
	if ok, err := s.writeIface(abi.GetCameraInterface, s.shapes.CameraCallback, data); !ok {
		return false, err
	}
	s.camera = cb
	return true, nil
}

func (s *Session) envGetLocationInterface(data uint64) (bool, error) {
	if s.reg.Location == nil {
		return false, nil
	}
	r := s.codec.Record(s.shapes.LocationCallback, data)
	cb := locationCallbacks{
		initialized:   r.Ptr("initialized"),
		deinitialized: r.Ptr("deinitialized"),
	}
	if err := r.Err(); err != nil {
		return false, err
	}
	if ok, err := s.writeIface(abi.GetLocationInterface, s.shapes.LocationCallback, data); !ok {
		return false, err
	}
	s.location = cb
	return true, nil
}

// envGetMicrophoneInterface only serves the interface version this host
// implements. The core states the version it expects.
func (s *Session) envGetMicrophoneInterface(data uint64) (bool, error) {
	if s.reg.Microphone == nil {
		return false, nil
	}
	r := s.codec.Record(s.shapes.MicrophoneInterface, data)
	version := r.U32("interface_version")
	if err := r.Err(); err != nil {
		return false, err
	}
	if version != abi.MicrophoneInterfaceVersion {
		return false, rterrors.VersionMismatch(rterrors.PhaseDispatch, "microphone interface", version, abi.MicrophoneInterfaceVersion)
	}
	return s.writeIface(abi.GetMicrophoneInterface, s.shapes.MicrophoneInterface, data)
}
