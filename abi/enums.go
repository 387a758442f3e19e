package abi

// APIVersion is the libretro API version this host implements.
const APIVersion = 1

// PixelFormat is enum retro_pixel_format.
type PixelFormat uint32

const (
	PixelFormat0RGB1555 PixelFormat = 0
	PixelFormatXRGB8888 PixelFormat = 1
	PixelFormatRGB565   PixelFormat = 2
)

// Valid reports whether the format is one the ABI defines.
func (f PixelFormat) Valid() bool {
	return f <= PixelFormatRGB565
}

// BytesPerPixel returns the storage size of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	if f == PixelFormatXRGB8888 {
		return 4
	}
	return 2
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormat0RGB1555:
		return "0RGB1555"
	case PixelFormatXRGB8888:
		return "XRGB8888"
	case PixelFormatRGB565:
		return "RGB565"
	}
	return "unknown"
}

// Device types.
const (
	DeviceNone     uint32 = 0
	DeviceJoypad   uint32 = 1
	DeviceMouse    uint32 = 2
	DeviceKeyboard uint32 = 3
	DeviceLightgun uint32 = 4
	DeviceAnalog   uint32 = 5
	DevicePointer  uint32 = 6

	DeviceTypeShift = 8
	DeviceMask      = (1 << DeviceTypeShift) - 1
)

// DeviceSubclass builds a subclassed device id.
func DeviceSubclass(base, id uint32) uint32 {
	return ((id + 1) << DeviceTypeShift) | base
}

// Joypad button ids.
const (
	JoypadB      uint32 = 0
	JoypadY      uint32 = 1
	JoypadSelect uint32 = 2
	JoypadStart  uint32 = 3
	JoypadUp     uint32 = 4
	JoypadDown   uint32 = 5
	JoypadLeft   uint32 = 6
	JoypadRight  uint32 = 7
	JoypadA      uint32 = 8
	JoypadX      uint32 = 9
	JoypadL      uint32 = 10
	JoypadR      uint32 = 11
	JoypadL2     uint32 = 12
	JoypadR2     uint32 = 13
	JoypadL3     uint32 = 14
	JoypadR3     uint32 = 15
	JoypadMask   uint32 = 256
)

// Analog indexes and axes.
const (
	AnalogIndexLeft   uint32 = 0
	AnalogIndexRight  uint32 = 1
	AnalogIndexButton uint32 = 2
	AnalogX           uint32 = 0
	AnalogY           uint32 = 1
)

// Memory ids for retro_get_memory_data.
const (
	MemorySaveRAM   uint32 = 0
	MemoryRTC       uint32 = 1
	MemorySystemRAM uint32 = 2
	MemoryVideoRAM  uint32 = 3
)

// Region values returned by retro_get_region.
const (
	RegionNTSC uint32 = 0
	RegionPAL  uint32 = 1
)

// RumbleEffect is enum retro_rumble_effect.
type RumbleEffect uint32

const (
	RumbleStrong RumbleEffect = 0
	RumbleWeak   RumbleEffect = 1
)

// SensorAction is enum retro_sensor_action.
type SensorAction uint32

const (
	SensorAccelerometerEnable  SensorAction = 0
	SensorAccelerometerDisable SensorAction = 1
	SensorGyroscopeEnable      SensorAction = 2
	SensorGyroscopeDisable     SensorAction = 3
	SensorIlluminanceEnable    SensorAction = 4
	SensorIlluminanceDisable   SensorAction = 5
)

// Sensor input ids.
const (
	SensorAccelerometerX uint32 = 0
	SensorAccelerometerY uint32 = 1
	SensorAccelerometerZ uint32 = 2
	SensorGyroscopeX     uint32 = 3
	SensorGyroscopeY     uint32 = 4
	SensorGyroscopeZ     uint32 = 5
	SensorIlluminance    uint32 = 6
)

// LogLevel is enum retro_log_level.
type LogLevel uint32

const (
	LogDebug LogLevel = 0
	LogInfo  LogLevel = 1
	LogWarn  LogLevel = 2
	LogError LogLevel = 3
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarn:
		return "warn"
	case LogError:
		return "error"
	}
	return "unknown"
}

// Language is enum retro_language.
type Language uint32

const (
	LanguageEnglish            Language = 0
	LanguageJapanese           Language = 1
	LanguageFrench             Language = 2
	LanguageSpanish            Language = 3
	LanguageGerman             Language = 4
	LanguageItalian            Language = 5
	LanguageDutch              Language = 6
	LanguagePortugueseBrazil   Language = 7
	LanguagePortuguesePortugal Language = 8
	LanguageRussian            Language = 9
	LanguageKorean             Language = 10
	LanguageChineseTraditional Language = 11
	LanguageChineseSimplified  Language = 12
	LanguageEsperanto          Language = 13
	LanguagePolish             Language = 14
	LanguageVietnamese         Language = 15
	LanguageArabic             Language = 16
	LanguageGreek              Language = 17
	LanguageTurkish            Language = 18
)

// PowerState is enum retro_power_state.
type PowerState uint32

const (
	PowerUnknown     PowerState = 0
	PowerDischarging PowerState = 1
	PowerCharging    PowerState = 2
	PowerCharged     PowerState = 3
	PowerPluggedIn   PowerState = 4

	PowerNoEstimate int32 = -1
)

// Message targets and types for retro_message_ext.
type MessageTarget uint32

const (
	MessageTargetAll MessageTarget = 0
	MessageTargetOSD MessageTarget = 1
	MessageTargetLog MessageTarget = 2
)

type MessageType uint32

const (
	MessageTypeNotification    MessageType = 0
	MessageTypeNotificationAlt MessageType = 1
	MessageTypeStatus          MessageType = 2
	MessageTypeProgress        MessageType = 3
)

// HWContextType is enum retro_hw_context_type.
type HWContextType uint32

const (
	HWContextNone            HWContextType = 0
	HWContextOpenGL          HWContextType = 1
	HWContextOpenGLES2       HWContextType = 2
	HWContextOpenGLCore      HWContextType = 3
	HWContextOpenGLES3       HWContextType = 4
	HWContextOpenGLESVersion HWContextType = 5
	HWContextVulkan          HWContextType = 6
	HWContextD3D11           HWContextType = 7
	HWContextD3D10           HWContextType = 8
	HWContextD3D12           HWContextType = 9
	HWContextD3D9            HWContextType = 10
)

// HWFrameBufferValid is passed as the data pointer of video refresh for hardware frames.
const HWFrameBufferValid = ^uint64(0)

// Netpacket constants.
const (
	NetpacketReliable    uint32 = 1 << 0
	NetpacketUnsequenced uint32 = 1 << 1
	NetpacketFlushHint   uint32 = 1 << 2

	NetpacketLocal     uint16 = 0
	NetpacketBroadcast uint16 = 0xFFFF
)

// SavestateContext is enum retro_savestate_context.
type SavestateContext int32

const (
	SavestateNormal               SavestateContext = 0
	SavestateRunaheadSameInstance SavestateContext = 1
	SavestateRunaheadSameBinary   SavestateContext = 2
	SavestateRollbackNetplay      SavestateContext = 3
)

// ThrottleMode values for retro_throttle_state.
const (
	ThrottleNone          uint32 = 0
	ThrottleFrameStepping uint32 = 1
	ThrottleFastForward   uint32 = 2
	ThrottleSlowMotion    uint32 = 3
	ThrottleRewinding     uint32 = 4
	ThrottleVSync         uint32 = 5
	ThrottleUnblocked     uint32 = 6
)

// Bits reported by GET_AUDIO_VIDEO_ENABLE.
const (
	AVEnableVideo            int32 = 1 << 0
	AVEnableAudio            int32 = 1 << 1
	AVEnableFastSavestates   int32 = 1 << 2
	AVEnableHardDisableAudio int32 = 1 << 3
)

// Serialization quirk bits.
const (
	QuirkIncomplete        uint64 = 1 << 0
	QuirkMustInitialize    uint64 = 1 << 1
	QuirkCoreVariableSize  uint64 = 1 << 2
	QuirkFrontVariableSize uint64 = 1 << 3
	QuirkSingleSession     uint64 = 1 << 4
	QuirkEndianDependent   uint64 = 1 << 5
	QuirkPlatformDependent uint64 = 1 << 6
)

// SIMD feature bits reported by the perf interface.
const (
	SIMDSSE    uint64 = 1 << 0
	SIMDSSE2   uint64 = 1 << 1
	SIMDVMX    uint64 = 1 << 2
	SIMDVMX128 uint64 = 1 << 3
	SIMDAVX    uint64 = 1 << 4
	SIMDNEON   uint64 = 1 << 5
	SIMDSSE3   uint64 = 1 << 6
	SIMDSSSE3  uint64 = 1 << 7
	SIMDMMX    uint64 = 1 << 8
	SIMDMMXEXT uint64 = 1 << 9
	SIMDSSE4   uint64 = 1 << 10
	SIMDSSE42  uint64 = 1 << 11
	SIMDAVX2   uint64 = 1 << 12
	SIMDVFPU   uint64 = 1 << 13
	SIMDPS     uint64 = 1 << 14
	SIMDAES    uint64 = 1 << 15
	SIMDVFPV3  uint64 = 1 << 16
	SIMDVFPV4  uint64 = 1 << 17
	SIMDPOPCNT uint64 = 1 << 18
	SIMDMOVBE  uint64 = 1 << 19
	SIMDCMOV   uint64 = 1 << 20
	SIMDASIMD  uint64 = 1 << 21
)

// Camera buffer kinds in retro_camera_callback.caps.
const (
	CameraBufferOpenGLTexture  uint32 = 0
	CameraBufferRawFramebuffer uint32 = 1
)

// Memory descriptor flags for SET_MEMORY_MAPS.
const (
	MemDescConst     uint64 = 1 << 0
	MemDescBigEndian uint64 = 1 << 1
	MemDescSystemRAM uint64 = 1 << 2
	MemDescSaveRAM   uint64 = 1 << 3
	MemDescVideoRAM  uint64 = 1 << 4
)

// Limits and interface versions.
const (
	NumCoreOptionValuesMax      = 128
	CoreOptionsVersion          = 2
	DiskControlInterfaceVersion = 1
	MessageInterfaceVersion     = 1
	MicrophoneInterfaceVersion  = 1
	HWRenderInterfaceVersion    = 0
)
