package runtime

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/engine"
)

// ifaceTable maps the function pointer fields of a capability struct to
// host function pointers.
type ifaceTable map[string]uint64

type ifaceField struct {
	name string
	fn   engine.HostFunc
}

var ifaceFields = map[abi.Command][]ifaceField{
	abi.GetRumbleInterface: {
		{"set_rumble_state", engine.HostRumbleSetState},
	},
	abi.GetSensorInterface: {
		{"set_sensor_state", engine.HostSensorSetState},
		{"get_sensor_input", engine.HostSensorGetInput},
	},
	abi.GetCameraInterface: {
		{"start", engine.HostCameraStart},
		{"stop", engine.HostCameraStop},
	},
	abi.GetLocationInterface: {
		{"start", engine.HostLocationStart},
		{"stop", engine.HostLocationStop},
		{"get_position", engine.HostLocationGetPosition},
		{"set_interval", engine.HostLocationSetInterval},
	},
	abi.GetLogInterface: {
		{"log", engine.HostLog},
	},
	abi.GetPerfInterface: {
		{"get_time_usec", engine.HostPerfGetTimeUsec},
		{"get_cpu_features", engine.HostPerfGetCPUFeatures},
		{"get_perf_counter", engine.HostPerfGetCounter},
		{"perf_register", engine.HostPerfRegister},
		{"perf_start", engine.HostPerfStart},
		{"perf_stop", engine.HostPerfStop},
		{"perf_log", engine.HostPerfLog},
	},
	abi.GetLEDInterface: {
		{"set_led_state", engine.HostLEDSetState},
	},
	abi.GetMIDIInterface: {
		{"input_enabled", engine.HostMIDIInputEnabled},
		{"output_enabled", engine.HostMIDIOutputEnabled},
		{"read", engine.HostMIDIRead},
		{"write", engine.HostMIDIWrite},
		{"flush", engine.HostMIDIFlush},
	},
	abi.GetMicrophoneInterface: {
		{"open_mic", engine.HostMicOpen},
		{"close_mic", engine.HostMicClose},
		{"get_params", engine.HostMicGetParams},
		{"set_mic_state", engine.HostMicSetState},
		{"get_mic_state", engine.HostMicGetState},
		{"read_mic", engine.HostMicRead},
	},
}

// ifaceTable returns the cached table for cmd, building it on first use.
// A table that cannot be built is not cached, so a later request retries.
func (s *Session) ifaceTable(cmd abi.Command) (ifaceTable, error) {
	if t, ok := s.tables[cmd]; ok {
		return t, nil
	}
	fields := ifaceFields[cmd]
	t := make(ifaceTable, len(fields))
	for _, f := range fields {
		ptr, err := s.core.HostFunction(f.fn)
		if err != nil {
			return nil, err
		}
		t[f.name] = ptr
	}
	s.tables[cmd] = t
	return t, nil
}

// writeIface fills the function pointers of the capability struct at data.
func (s *Session) writeIface(cmd abi.Command, td *wit.TypeDef, data uint64) (bool, error) {
	t, err := s.ifaceTable(cmd)
	if err != nil {
		return false, err
	}
	r := s.codec.Record(td, data)
	for name, ptr := range t {
		r.SetPtr(name, ptr)
	}
	return r.Err() == nil, r.Err()
}
