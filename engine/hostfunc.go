package engine

// HostFunc identifies a host function whose pointer is handed to a core.
// The values are part of the WebAssembly guest ABI (the id passed to
// retro_host.invoke) and must not be renumbered.
type HostFunc uint32

const (
	HostEnvironment HostFunc = iota
	HostVideoRefresh
	HostAudioSample
	HostAudioSampleBatch
	HostInputPoll
	HostInputState

	HostRumbleSetState
	HostSensorSetState
	HostSensorGetInput
	HostCameraStart
	HostCameraStop
	HostLocationStart
	HostLocationStop
	HostLocationGetPosition
	HostLocationSetInterval
	HostLog

	HostPerfGetTimeUsec
	HostPerfGetCPUFeatures
	HostPerfGetCounter
	HostPerfRegister
	HostPerfStart
	HostPerfStop
	HostPerfLog

	HostLEDSetState
	HostMIDIInputEnabled
	HostMIDIOutputEnabled
	HostMIDIRead
	HostMIDIWrite
	HostMIDIFlush

	HostMicOpen
	HostMicClose
	HostMicGetParams
	HostMicSetState
	HostMicGetState
	HostMicRead

	HostNetpacketSend
	HostNetpacketPollReceive

	HostHWGetCurrentFramebuffer
	HostHWGetProcAddress

	numHostFuncs
)

type hostFuncInfo struct {
	name string
	sig  Signature
}

var hostFuncs = [numHostFuncs]hostFuncInfo{
	HostEnvironment:      {"environment", Sig("b_up")},
	HostVideoRefresh:     {"video_refresh", Sig("v_puuz")},
	HostAudioSample:      {"audio_sample", Sig("v_ss")},
	HostAudioSampleBatch: {"audio_sample_batch", Sig("z_pz")},
	HostInputPoll:        {"input_poll", Sig("v_")},
	HostInputState:       {"input_state", Sig("s_uuuu")},

	HostRumbleSetState:      {"set_rumble_state", Sig("b_uuS")},
	HostSensorSetState:      {"set_sensor_state", Sig("b_uuu")},
	HostSensorGetInput:      {"get_sensor_input", Sig("f_uu")},
	HostCameraStart:         {"camera_start", Sig("b_")},
	HostCameraStop:          {"camera_stop", Sig("v_")},
	HostLocationStart:       {"location_start", Sig("b_")},
	HostLocationStop:        {"location_stop", Sig("v_")},
	HostLocationGetPosition: {"location_get_position", Sig("b_pppp")},
	HostLocationSetInterval: {"location_set_interval", Sig("v_uu")},
	HostLog:                 {"log", Sig("v_up")},

	HostPerfGetTimeUsec:    {"perf_get_time_usec", Sig("l_")},
	HostPerfGetCPUFeatures: {"perf_get_cpu_features", Sig("L_")},
	HostPerfGetCounter:     {"perf_get_counter", Sig("L_")},
	HostPerfRegister:       {"perf_register", Sig("v_p")},
	HostPerfStart:          {"perf_start", Sig("v_p")},
	HostPerfStop:           {"perf_stop", Sig("v_p")},
	HostPerfLog:            {"perf_log", Sig("v_")},

	HostLEDSetState:       {"set_led_state", Sig("v_ii")},
	HostMIDIInputEnabled:  {"midi_input_enabled", Sig("b_")},
	HostMIDIOutputEnabled: {"midi_output_enabled", Sig("b_")},
	HostMIDIRead:          {"midi_read", Sig("b_p")},
	HostMIDIWrite:         {"midi_write", Sig("b_Bu")},
	HostMIDIFlush:         {"midi_flush", Sig("b_")},

	HostMicOpen:      {"open_mic", Sig("p_p")},
	HostMicClose:     {"close_mic", Sig("v_p")},
	HostMicGetParams: {"get_mic_params", Sig("b_pp")},
	HostMicSetState:  {"set_mic_state", Sig("b_pb")},
	HostMicGetState:  {"get_mic_state", Sig("b_p")},
	HostMicRead:      {"read_mic", Sig("i_ppz")},

	HostNetpacketSend:        {"netpacket_send", Sig("v_ipzS")},
	HostNetpacketPollReceive: {"netpacket_poll_receive", Sig("v_")},

	HostHWGetCurrentFramebuffer: {"hw_get_current_framebuffer", Sig("p_")},
	HostHWGetProcAddress:        {"hw_get_proc_address", Sig("p_p")},
}

func (f HostFunc) valid() bool { return f < numHostFuncs }

func (f HostFunc) String() string {
	if !f.valid() {
		return "unknown host function"
	}
	return hostFuncs[f].name
}

// Signature returns the C signature the core calls the function with.
func (f HostFunc) Signature() Signature {
	if !f.valid() {
		return Signature{Result: KindVoid}
	}
	return hostFuncs[f].sig
}

// HostFuncs returns every host function in id order.
func HostFuncs() []HostFunc {
	out := make([]HostFunc, numHostFuncs)
	for i := range out {
		out[i] = HostFunc(i)
	}
	return out
}
