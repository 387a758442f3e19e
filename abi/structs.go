package abi

import "go.bytecodealliance.org/wit"

// Shapes describes the C structs exchanged with a core as WIT records.
//
// Pointer, size_t and function pointer fields are unsigned integers of the
// core's pointer width, so one Shapes value exists per pointer size.
// Fixed-size C arrays are tuples. Field names match the C member names.
type Shapes struct {
	PointerSize uint32

	Variable                  *wit.TypeDef
	CoreOptionValue           *wit.TypeDef
	CoreOptionDefinition      *wit.TypeDef
	CoreOptionsIntl           *wit.TypeDef
	CoreOptionV2Category      *wit.TypeDef
	CoreOptionV2Definition    *wit.TypeDef
	CoreOptionsV2             *wit.TypeDef
	CoreOptionsV2Intl         *wit.TypeDef
	CoreOptionDisplay         *wit.TypeDef
	UpdateDisplayCallback     *wit.TypeDef
	ControllerDescription     *wit.TypeDef
	ControllerInfo            *wit.TypeDef
	InputDescriptor           *wit.TypeDef
	Message                   *wit.TypeDef
	MessageExt                *wit.TypeDef
	GameGeometry              *wit.TypeDef
	SystemTiming              *wit.TypeDef
	SystemAVInfo              *wit.TypeDef
	SystemInfo                *wit.TypeDef
	GameInfo                  *wit.TypeDef
	GameInfoExt               *wit.TypeDef
	SubsystemMemoryInfo       *wit.TypeDef
	SubsystemROMInfo          *wit.TypeDef
	SubsystemInfo             *wit.TypeDef
	MemoryDescriptor          *wit.TypeDef
	MemoryMap                 *wit.TypeDef
	ContentInfoOverride       *wit.TypeDef
	RumbleInterface           *wit.TypeDef
	SensorInterface           *wit.TypeDef
	CameraCallback            *wit.TypeDef
	LocationCallback          *wit.TypeDef
	LogCallback               *wit.TypeDef
	PerfCallback              *wit.TypeDef
	PerfCounter               *wit.TypeDef
	LEDInterface              *wit.TypeDef
	MIDIInterface             *wit.TypeDef
	MicrophoneParams          *wit.TypeDef
	MicrophoneInterface       *wit.TypeDef
	DevicePower               *wit.TypeDef
	NetpacketCallback         *wit.TypeDef
	DiskControlCallback       *wit.TypeDef
	DiskControlExtCallback    *wit.TypeDef
	FrameTimeCallback         *wit.TypeDef
	AudioCallback             *wit.TypeDef
	AudioBufferStatusCallback *wit.TypeDef
	FastForwardingOverride    *wit.TypeDef
	ThrottleState             *wit.TypeDef
	HWRenderCallback          *wit.TypeDef
	KeyboardCallback          *wit.TypeDef
	ProcAddressInterface      *wit.TypeDef
}

var (
	shapes32 = newShapes(4)
	shapes64 = newShapes(8)
)

// ShapesFor returns the struct shapes for a core with the given pointer size.
// Only 4 and 8 are valid.
func ShapesFor(pointerSize uint32) *Shapes {
	if pointerSize == 4 {
		return shapes32
	}
	return shapes64
}

func field(name string, t wit.Type) wit.Field {
	return wit.Field{Name: name, Type: t}
}

func record(name string, fields ...wit.Field) *wit.TypeDef {
	n := name
	return &wit.TypeDef{Name: &n, Kind: &wit.Record{Fields: fields}}
}

func array(t wit.Type, n int) *wit.TypeDef {
	types := make([]wit.Type, n)
	for i := range types {
		types[i] = t
	}
	return &wit.TypeDef{Kind: &wit.Tuple{Types: types}}
}

func newShapes(ptrSize uint32) *Shapes {
	var ptr wit.Type = wit.U64{}
	if ptrSize == 4 {
		ptr = wit.U32{}
	}
	p := func(name string) wit.Field { return field(name, ptr) }
	u32 := func(name string) wit.Field { return field(name, wit.U32{}) }
	b := func(name string) wit.Field { return field(name, wit.Bool{}) }

	s := &Shapes{PointerSize: ptrSize}

	s.Variable = record("retro_variable", p("key"), p("value"))
	s.CoreOptionValue = record("retro_core_option_value", p("value"), p("label"))
	s.CoreOptionDefinition = record("retro_core_option_definition",
		p("key"), p("desc"), p("info"),
		field("values", array(s.CoreOptionValue, NumCoreOptionValuesMax)),
		p("default_value"))
	s.CoreOptionsIntl = record("retro_core_options_intl", p("us"), p("local"))
	s.CoreOptionV2Category = record("retro_core_option_v2_category", p("key"), p("desc"), p("info"))
	s.CoreOptionV2Definition = record("retro_core_option_v2_definition",
		p("key"), p("desc"), p("desc_categorized"), p("info"), p("info_categorized"), p("category_key"),
		field("values", array(s.CoreOptionValue, NumCoreOptionValuesMax)),
		p("default_value"))
	s.CoreOptionsV2 = record("retro_core_options_v2", p("categories"), p("definitions"))
	s.CoreOptionsV2Intl = record("retro_core_options_v2_intl", p("us"), p("local"))
	s.CoreOptionDisplay = record("retro_core_option_display", p("key"), b("visible"))
	s.UpdateDisplayCallback = record("retro_core_options_update_display_callback", p("callback"))

	s.ControllerDescription = record("retro_controller_description", p("desc"), u32("id"))
	s.ControllerInfo = record("retro_controller_info", p("types"), u32("num_types"))
	s.InputDescriptor = record("retro_input_descriptor",
		u32("port"), u32("device"), u32("index"), u32("id"), p("description"))

	s.Message = record("retro_message", p("msg"), u32("frames"))
	s.MessageExt = record("retro_message_ext",
		p("msg"), u32("duration"), u32("priority"), u32("level"), u32("target"), u32("type"),
		field("progress", wit.S8{}))

	s.GameGeometry = record("retro_game_geometry",
		u32("base_width"), u32("base_height"), u32("max_width"), u32("max_height"),
		field("aspect_ratio", wit.F32{}))
	s.SystemTiming = record("retro_system_timing",
		field("fps", wit.F64{}), field("sample_rate", wit.F64{}))
	s.SystemAVInfo = record("retro_system_av_info",
		field("geometry", s.GameGeometry), field("timing", s.SystemTiming))
	s.SystemInfo = record("retro_system_info",
		p("library_name"), p("library_version"), p("valid_extensions"),
		b("need_fullpath"), b("block_extract"))
	s.GameInfo = record("retro_game_info", p("path"), p("data"), p("size"), p("meta"))
	s.GameInfoExt = record("retro_game_info_ext",
		p("full_path"), p("archive_path"), p("archive_file"), p("dir"), p("name"), p("ext"), p("meta"),
		p("data"), p("size"), b("file_in_archive"), b("persistent_data"))

	s.SubsystemMemoryInfo = record("retro_subsystem_memory_info", p("extension"), u32("type"))
	s.SubsystemROMInfo = record("retro_subsystem_rom_info",
		p("desc"), p("valid_extensions"), b("need_fullpath"), b("block_extract"), b("required"),
		p("memory"), u32("num_memory"))
	s.SubsystemInfo = record("retro_subsystem_info",
		p("desc"), p("ident"), p("roms"), u32("num_roms"), u32("id"))
	s.MemoryDescriptor = record("retro_memory_descriptor",
		field("flags", wit.U64{}), p("ptr"), p("offset"), p("start"), p("select"), p("disconnect"), p("len"),
		p("addrspace"))
	s.MemoryMap = record("retro_memory_map", p("descriptors"), u32("num_descriptors"))
	s.ContentInfoOverride = record("retro_system_content_info_override",
		p("extensions"), b("need_fullpath"), b("persistent_data"))

	s.RumbleInterface = record("retro_rumble_interface", p("set_rumble_state"))
	s.SensorInterface = record("retro_sensor_interface", p("set_sensor_state"), p("get_sensor_input"))
	s.CameraCallback = record("retro_camera_callback",
		field("caps", wit.U64{}), u32("width"), u32("height"),
		p("start"), p("stop"), p("frame_raw_framebuffer"), p("frame_opengl_texture"),
		p("initialized"), p("deinitialized"))
	s.LocationCallback = record("retro_location_callback",
		p("start"), p("stop"), p("get_position"), p("set_interval"), p("initialized"), p("deinitialized"))
	s.LogCallback = record("retro_log_callback", p("log"))
	s.PerfCallback = record("retro_perf_callback",
		p("get_time_usec"), p("get_cpu_features"), p("get_perf_counter"),
		p("perf_register"), p("perf_start"), p("perf_stop"), p("perf_log"))
	s.PerfCounter = record("retro_perf_counter",
		p("ident"), field("start", wit.U64{}), field("total", wit.U64{}), field("call_cnt", wit.U64{}),
		b("registered"))
	s.LEDInterface = record("retro_led_interface", p("set_led_state"))
	s.MIDIInterface = record("retro_midi_interface",
		p("input_enabled"), p("output_enabled"), p("read"), p("write"), p("flush"))
	s.MicrophoneParams = record("retro_microphone_params", u32("rate"))
	s.MicrophoneInterface = record("retro_microphone_interface",
		u32("interface_version"),
		p("open_mic"), p("close_mic"), p("get_params"), p("set_mic_state"), p("get_mic_state"), p("read_mic"))
	s.DevicePower = record("retro_device_power",
		u32("state"), field("seconds", wit.S32{}), field("percent", wit.S8{}))
	s.NetpacketCallback = record("retro_netpacket_callback",
		p("start"), p("receive"), p("stop"), p("poll"), p("connected"), p("disconnected"),
		p("protocol_version"))

	diskFields := []wit.Field{
		p("set_eject_state"), p("get_eject_state"), p("get_image_index"), p("set_image_index"),
		p("get_num_images"), p("replace_image_index"), p("add_image_index"),
	}
	s.DiskControlCallback = record("retro_disk_control_callback", diskFields...)
	s.DiskControlExtCallback = record("retro_disk_control_ext_callback",
		append(append([]wit.Field{}, diskFields...),
			p("set_initial_image"), p("get_image_path"), p("get_image_label"))...)

	s.FrameTimeCallback = record("retro_frame_time_callback", p("callback"), field("reference", wit.S64{}))
	s.AudioCallback = record("retro_audio_callback", p("callback"), p("set_state"))
	s.AudioBufferStatusCallback = record("retro_audio_buffer_status_callback", p("callback"))
	s.FastForwardingOverride = record("retro_fastforwarding_override",
		field("ratio", wit.F32{}), b("fastforward"), b("notification"), b("inhibit_toggle"))
	s.ThrottleState = record("retro_throttle_state", u32("mode"), field("rate", wit.F32{}))
	s.HWRenderCallback = record("retro_hw_render_callback",
		u32("context_type"), p("context_reset"), p("get_current_framebuffer"), p("get_proc_address"),
		b("depth"), b("stencil"), b("bottom_left_origin"),
		u32("version_major"), u32("version_minor"), b("cache_context"),
		p("context_destroy"), b("debug_context"))
	s.KeyboardCallback = record("retro_keyboard_callback", p("callback"))
	s.ProcAddressInterface = record("retro_get_proc_address_interface", p("get_proc_address"))

	return s
}
