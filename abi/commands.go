package abi

import "fmt"

// Command is an environment command code as passed to the environment callback.
type Command uint32

// Flag bits carried in the high half of some command codes.
const (
	Experimental Command = 0x10000
	Private      Command = 0x20000
)

// Environment commands. Codes are append-only and never reused.
const (
	SetRotation                                   Command = 1
	GetOverscan                                   Command = 2
	GetCanDupe                                    Command = 3
	SetMessage                                    Command = 6
	Shutdown                                      Command = 7
	SetPerformanceLevel                           Command = 8
	GetSystemDirectory                            Command = 9
	SetPixelFormat                                Command = 10
	SetInputDescriptors                           Command = 11
	SetKeyboardCallback                           Command = 12
	SetDiskControlInterface                       Command = 13
	SetHWRender                                   Command = 14
	GetVariable                                   Command = 15
	SetVariables                                  Command = 16
	GetVariableUpdate                             Command = 17
	SetSupportNoGame                              Command = 18
	GetLibretroPath                               Command = 19
	SetFrameTimeCallback                          Command = 21
	SetAudioCallback                              Command = 22
	GetRumbleInterface                            Command = 23
	GetInputDeviceCapabilities                    Command = 24
	GetSensorInterface                            Command = 25 | Experimental
	GetCameraInterface                            Command = 26 | Experimental
	GetLogInterface                               Command = 27
	GetPerfInterface                              Command = 28
	GetLocationInterface                          Command = 29
	GetCoreAssetsDirectory                        Command = 30
	GetSaveDirectory                              Command = 31
	SetSystemAVInfo                               Command = 32
	SetProcAddressCallback                        Command = 33
	SetSubsystemInfo                              Command = 34
	SetControllerInfo                             Command = 35
	SetMemoryMaps                                 Command = 36 | Experimental
	SetGeometry                                   Command = 37
	GetUsername                                   Command = 38
	GetLanguage                                   Command = 39
	GetCurrentSoftwareFramebuffer                 Command = 40 | Experimental
	GetHWRenderInterface                          Command = 41 | Experimental
	SetSupportAchievements                        Command = 42 | Experimental
	SetHWRenderContextNegotiationInterface        Command = 43 | Experimental
	SetSerializationQuirks                        Command = 44
	SetHWSharedContext                            Command = 44 | Experimental
	GetVFSInterface                               Command = 45 | Experimental
	GetLEDInterface                               Command = 46 | Experimental
	GetAudioVideoEnable                           Command = 47 | Experimental
	GetMIDIInterface                              Command = 48 | Experimental
	GetFastForwarding                             Command = 49 | Experimental
	GetTargetRefreshRate                          Command = 50 | Experimental
	GetInputBitmasks                              Command = 51 | Experimental
	GetCoreOptionsVersion                         Command = 52
	SetCoreOptions                                Command = 53
	SetCoreOptionsIntl                            Command = 54
	SetCoreOptionsDisplay                         Command = 55
	GetPreferredHWRender                          Command = 56
	GetDiskControlInterfaceVersion                Command = 57
	SetDiskControlExtInterface                    Command = 58
	GetMessageInterfaceVersion                    Command = 59
	SetMessageExt                                 Command = 60
	GetInputMaxUsers                              Command = 61
	SetAudioBufferStatusCallback                  Command = 62
	SetMinimumAudioLatency                        Command = 63
	SetFastForwardingOverride                     Command = 64
	SetContentInfoOverride                        Command = 65
	GetGameInfoExt                                Command = 66
	SetCoreOptionsV2                              Command = 67
	SetCoreOptionsV2Intl                          Command = 68
	SetCoreOptionsUpdateDisplayCallback           Command = 69
	SetVariable                                   Command = 70
	GetThrottleState                              Command = 71 | Experimental
	GetSavestateContext                           Command = 72 | Experimental
	GetHWRenderContextNegotiationInterfaceSupport Command = 73 | Experimental
	GetJITCapable                                 Command = 74
	GetMicrophoneInterface                        Command = 75 | Experimental
	GetDevicePower                                Command = 77 | Experimental
	SetNetpacketInterface                         Command = 78
	GetPlaylistDirectory                          Command = 79
	GetFileBrowserStartDirectory                  Command = 80
)

// Direction is the data flow of a command payload.
type Direction uint8

const (
	// DirGet: the host writes a result through the payload pointer.
	DirGet Direction = iota + 1
	// DirSet: the core provides data the host reads.
	DirSet
	// DirGetSet: the core provides input and the host writes results back into the same struct.
	DirGetSet
	// DirCommand: no payload.
	DirCommand
)

func (d Direction) String() string {
	switch d {
	case DirGet:
		return "GET"
	case DirSet:
		return "SET"
	case DirGetSet:
		return "GET/SET"
	case DirCommand:
		return "COMMAND"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Spec describes one environment command.
type Spec struct {
	Name      string
	Shape     string // payload C type, empty for commands without payload
	Code      Command
	Direction Direction
	// Nullable commands accept a NULL payload as a capability query or a clear.
	Nullable bool
}

// Experimental reports whether the canonical code carries the experimental flag.
func (s Spec) Experimental() bool {
	return s.Code&Experimental != 0
}

var specs = []Spec{
	{Code: SetRotation, Name: "SET_ROTATION", Direction: DirSet, Shape: "unsigned"},
	{Code: GetOverscan, Name: "GET_OVERSCAN", Direction: DirGet, Shape: "bool"},
	{Code: GetCanDupe, Name: "GET_CAN_DUPE", Direction: DirGet, Shape: "bool"},
	{Code: SetMessage, Name: "SET_MESSAGE", Direction: DirSet, Shape: "retro_message"},
	{Code: Shutdown, Name: "SHUTDOWN", Direction: DirCommand},
	{Code: SetPerformanceLevel, Name: "SET_PERFORMANCE_LEVEL", Direction: DirSet, Shape: "unsigned"},
	{Code: GetSystemDirectory, Name: "GET_SYSTEM_DIRECTORY", Direction: DirGet, Shape: "const char*"},
	{Code: SetPixelFormat, Name: "SET_PIXEL_FORMAT", Direction: DirSet, Shape: "enum retro_pixel_format"},
	{Code: SetInputDescriptors, Name: "SET_INPUT_DESCRIPTORS", Direction: DirSet, Shape: "retro_input_descriptor[]"},
	{Code: SetKeyboardCallback, Name: "SET_KEYBOARD_CALLBACK", Direction: DirSet, Shape: "retro_keyboard_callback"},
	{Code: SetDiskControlInterface, Name: "SET_DISK_CONTROL_INTERFACE", Direction: DirSet, Shape: "retro_disk_control_callback"},
	{Code: SetHWRender, Name: "SET_HW_RENDER", Direction: DirGetSet, Shape: "retro_hw_render_callback"},
	{Code: GetVariable, Name: "GET_VARIABLE", Direction: DirGetSet, Shape: "retro_variable"},
	{Code: SetVariables, Name: "SET_VARIABLES", Direction: DirSet, Shape: "retro_variable[]"},
	{Code: GetVariableUpdate, Name: "GET_VARIABLE_UPDATE", Direction: DirGet, Shape: "bool"},
	{Code: SetSupportNoGame, Name: "SET_SUPPORT_NO_GAME", Direction: DirSet, Shape: "bool"},
	{Code: GetLibretroPath, Name: "GET_LIBRETRO_PATH", Direction: DirGet, Shape: "const char*"},
	{Code: SetFrameTimeCallback, Name: "SET_FRAME_TIME_CALLBACK", Direction: DirSet, Shape: "retro_frame_time_callback"},
	{Code: SetAudioCallback, Name: "SET_AUDIO_CALLBACK", Direction: DirSet, Shape: "retro_audio_callback"},
	{Code: GetRumbleInterface, Name: "GET_RUMBLE_INTERFACE", Direction: DirGet, Shape: "retro_rumble_interface"},
	{Code: GetInputDeviceCapabilities, Name: "GET_INPUT_DEVICE_CAPABILITIES", Direction: DirGet, Shape: "uint64_t"},
	{Code: GetSensorInterface, Name: "GET_SENSOR_INTERFACE", Direction: DirGet, Shape: "retro_sensor_interface"},
	{Code: GetCameraInterface, Name: "GET_CAMERA_INTERFACE", Direction: DirGetSet, Shape: "retro_camera_callback"},
	{Code: GetLogInterface, Name: "GET_LOG_INTERFACE", Direction: DirGet, Shape: "retro_log_callback"},
	{Code: GetPerfInterface, Name: "GET_PERF_INTERFACE", Direction: DirGet, Shape: "retro_perf_callback"},
	{Code: GetLocationInterface, Name: "GET_LOCATION_INTERFACE", Direction: DirGetSet, Shape: "retro_location_callback"},
	{Code: GetCoreAssetsDirectory, Name: "GET_CORE_ASSETS_DIRECTORY", Direction: DirGet, Shape: "const char*"},
	{Code: GetSaveDirectory, Name: "GET_SAVE_DIRECTORY", Direction: DirGet, Shape: "const char*"},
	{Code: SetSystemAVInfo, Name: "SET_SYSTEM_AV_INFO", Direction: DirSet, Shape: "retro_system_av_info"},
	{Code: SetProcAddressCallback, Name: "SET_PROC_ADDRESS_CALLBACK", Direction: DirSet, Shape: "retro_get_proc_address_interface"},
	{Code: SetSubsystemInfo, Name: "SET_SUBSYSTEM_INFO", Direction: DirSet, Shape: "retro_subsystem_info[]"},
	{Code: SetControllerInfo, Name: "SET_CONTROLLER_INFO", Direction: DirSet, Shape: "retro_controller_info[]"},
	{Code: SetMemoryMaps, Name: "SET_MEMORY_MAPS", Direction: DirSet, Shape: "retro_memory_map"},
	{Code: SetGeometry, Name: "SET_GEOMETRY", Direction: DirSet, Shape: "retro_game_geometry"},
	{Code: GetUsername, Name: "GET_USERNAME", Direction: DirGet, Shape: "const char*"},
	{Code: GetLanguage, Name: "GET_LANGUAGE", Direction: DirGet, Shape: "unsigned"},
	{Code: GetCurrentSoftwareFramebuffer, Name: "GET_CURRENT_SOFTWARE_FRAMEBUFFER", Direction: DirGetSet, Shape: "retro_framebuffer"},
	{Code: GetHWRenderInterface, Name: "GET_HW_RENDER_INTERFACE", Direction: DirGet, Shape: "const retro_hw_render_interface*"},
	{Code: SetSupportAchievements, Name: "SET_SUPPORT_ACHIEVEMENTS", Direction: DirSet, Shape: "bool"},
	{Code: SetHWRenderContextNegotiationInterface, Name: "SET_HW_RENDER_CONTEXT_NEGOTIATION_INTERFACE", Direction: DirSet, Shape: "retro_hw_render_context_negotiation_interface"},
	{Code: SetSerializationQuirks, Name: "SET_SERIALIZATION_QUIRKS", Direction: DirGetSet, Shape: "uint64_t"},
	{Code: SetHWSharedContext, Name: "SET_HW_SHARED_CONTEXT", Direction: DirCommand},
	{Code: GetVFSInterface, Name: "GET_VFS_INTERFACE", Direction: DirGetSet, Shape: "retro_vfs_interface_info"},
	{Code: GetLEDInterface, Name: "GET_LED_INTERFACE", Direction: DirGet, Shape: "retro_led_interface"},
	{Code: GetAudioVideoEnable, Name: "GET_AUDIO_VIDEO_ENABLE", Direction: DirGet, Shape: "int"},
	{Code: GetMIDIInterface, Name: "GET_MIDI_INTERFACE", Direction: DirGet, Shape: "retro_midi_interface"},
	{Code: GetFastForwarding, Name: "GET_FASTFORWARDING", Direction: DirGet, Shape: "bool"},
	{Code: GetTargetRefreshRate, Name: "GET_TARGET_REFRESH_RATE", Direction: DirGet, Shape: "float"},
	{Code: GetInputBitmasks, Name: "GET_INPUT_BITMASKS", Direction: DirGet, Shape: "bool", Nullable: true},
	{Code: GetCoreOptionsVersion, Name: "GET_CORE_OPTIONS_VERSION", Direction: DirGet, Shape: "unsigned"},
	{Code: SetCoreOptions, Name: "SET_CORE_OPTIONS", Direction: DirSet, Shape: "retro_core_option_definition[]"},
	{Code: SetCoreOptionsIntl, Name: "SET_CORE_OPTIONS_INTL", Direction: DirSet, Shape: "retro_core_options_intl"},
	{Code: SetCoreOptionsDisplay, Name: "SET_CORE_OPTIONS_DISPLAY", Direction: DirSet, Shape: "retro_core_option_display"},
	{Code: GetPreferredHWRender, Name: "GET_PREFERRED_HW_RENDER", Direction: DirGet, Shape: "unsigned"},
	{Code: GetDiskControlInterfaceVersion, Name: "GET_DISK_CONTROL_INTERFACE_VERSION", Direction: DirGet, Shape: "unsigned"},
	{Code: SetDiskControlExtInterface, Name: "SET_DISK_CONTROL_EXT_INTERFACE", Direction: DirSet, Shape: "retro_disk_control_ext_callback"},
	{Code: GetMessageInterfaceVersion, Name: "GET_MESSAGE_INTERFACE_VERSION", Direction: DirGet, Shape: "unsigned"},
	{Code: SetMessageExt, Name: "SET_MESSAGE_EXT", Direction: DirSet, Shape: "retro_message_ext"},
	{Code: GetInputMaxUsers, Name: "GET_INPUT_MAX_USERS", Direction: DirGet, Shape: "unsigned"},
	{Code: SetAudioBufferStatusCallback, Name: "SET_AUDIO_BUFFER_STATUS_CALLBACK", Direction: DirSet, Shape: "retro_audio_buffer_status_callback", Nullable: true},
	{Code: SetMinimumAudioLatency, Name: "SET_MINIMUM_AUDIO_LATENCY", Direction: DirSet, Shape: "unsigned"},
	{Code: SetFastForwardingOverride, Name: "SET_FASTFORWARDING_OVERRIDE", Direction: DirSet, Shape: "retro_fastforwarding_override", Nullable: true},
	{Code: SetContentInfoOverride, Name: "SET_CONTENT_INFO_OVERRIDE", Direction: DirSet, Shape: "retro_system_content_info_override[]", Nullable: true},
	{Code: GetGameInfoExt, Name: "GET_GAME_INFO_EXT", Direction: DirGet, Shape: "const retro_game_info_ext*"},
	{Code: SetCoreOptionsV2, Name: "SET_CORE_OPTIONS_V2", Direction: DirSet, Shape: "retro_core_options_v2"},
	{Code: SetCoreOptionsV2Intl, Name: "SET_CORE_OPTIONS_V2_INTL", Direction: DirSet, Shape: "retro_core_options_v2_intl"},
	{Code: SetCoreOptionsUpdateDisplayCallback, Name: "SET_CORE_OPTIONS_UPDATE_DISPLAY_CALLBACK", Direction: DirSet, Shape: "retro_core_options_update_display_callback", Nullable: true},
	{Code: SetVariable, Name: "SET_VARIABLE", Direction: DirSet, Shape: "retro_variable", Nullable: true},
	{Code: GetThrottleState, Name: "GET_THROTTLE_STATE", Direction: DirGet, Shape: "retro_throttle_state"},
	{Code: GetSavestateContext, Name: "GET_SAVESTATE_CONTEXT", Direction: DirGet, Shape: "int"},
	{Code: GetHWRenderContextNegotiationInterfaceSupport, Name: "GET_HW_RENDER_CONTEXT_NEGOTIATION_INTERFACE_SUPPORT", Direction: DirGetSet, Shape: "retro_hw_render_context_negotiation_interface"},
	{Code: GetJITCapable, Name: "GET_JIT_CAPABLE", Direction: DirGet, Shape: "bool"},
	{Code: GetMicrophoneInterface, Name: "GET_MICROPHONE_INTERFACE", Direction: DirGetSet, Shape: "retro_microphone_interface"},
	{Code: GetDevicePower, Name: "GET_DEVICE_POWER", Direction: DirGet, Shape: "retro_device_power", Nullable: true},
	{Code: SetNetpacketInterface, Name: "SET_NETPACKET_INTERFACE", Direction: DirSet, Shape: "retro_netpacket_callback", Nullable: true},
	{Code: GetPlaylistDirectory, Name: "GET_PLAYLIST_DIRECTORY", Direction: DirGet, Shape: "const char*"},
	{Code: GetFileBrowserStartDirectory, Name: "GET_FILE_BROWSER_START_DIRECTORY", Direction: DirGet, Shape: "const char*"},
}

var (
	byCode   = make(map[Command]Spec, len(specs))
	byFamily = make(map[Command]Spec, len(specs))
)

func init() {
	for _, s := range specs {
		byCode[s.Code] = s
	}
	// Families collide only where two distinct commands share a number and differ
	// by the experimental flag; the non-experimental command owns the family then.
	for _, s := range specs {
		f := s.Code.Family()
		if prev, ok := byFamily[f]; ok && !prev.Experimental() {
			continue
		}
		byFamily[f] = s
	}
}

// Family returns the command number with flag bits stripped.
func (c Command) Family() Command {
	return c &^ (Experimental | Private)
}

// Lookup resolves a raw code as received from a core.
// An exact match wins; otherwise the flag bits are stripped so cores that
// omit or add the experimental flag still reach the same command.
func Lookup(code uint32) (Spec, bool) {
	c := Command(code)
	if c&Private != 0 {
		return Spec{}, false
	}
	if s, ok := byCode[c]; ok {
		return s, true
	}
	s, ok := byFamily[c.Family()]
	return s, ok
}

// Specs returns the full command table in code order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

func (c Command) String() string {
	if s, ok := byCode[c]; ok {
		return s.Name
	}
	if s, ok := byFamily[c.Family()]; ok {
		return s.Name
	}
	return fmt.Sprintf("Command(0x%x)", uint32(c))
}
