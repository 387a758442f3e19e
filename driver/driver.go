package driver

import (
	"github.com/wippyai/retro-runtime/abi"
	"github.com/wippyai/retro-runtime/options"
)

// Video receives frames and video configuration.
type Video interface {
	Refresh(frame Frame)
	SetPixelFormat(format abi.PixelFormat) bool
	SetRotation(rotation uint32) bool
	SetGeometry(geom Geometry)
	SetSystemAVInfo(info AVInfo)
	CanDupe() bool
	Enabled() bool

	SetHWRender(req HWRender) bool
	SetHWSharedContext() bool
	PreferredHWRender() (abi.HWContextType, bool)
	CurrentFramebuffer() uint64
	HWProcAddress(symbol string) uint64
}

// Audio receives samples as signed 16-bit interleaved stereo.
type Audio interface {
	Sample(left, right int16)
	// SampleBatch consumes frames (two samples each) and returns the number of
	// frames accepted.
	SampleBatch(samples []int16) int
	SetSystemAVInfo(info AVInfo)
	Enabled() bool

	// SetCallback reports whether the driver accepts a core that produces
	// audio from its own callback. The session drives the callback.
	SetCallback(enabled bool) bool
	SetBufferStatusCallback(fn AudioBufferStatusFunc) bool
	SetMinimumLatency(ms uint32) bool
}

type Input interface {
	Poll()
	State(port, device, index, id uint32) int16
	SetDescriptors(descs []InputDescriptor)
	SetControllerInfo(ports []ControllerInfo)
	SetPortDevice(port, device uint32)
	SetKeyboardCallback(fn KeyboardFunc)
	DeviceCapabilities() uint64
	SupportsBitmasks() bool
	MaxUsers() uint32
}

type Rumble interface {
	SetRumbleState(port uint32, effect abi.RumbleEffect, strength uint16) bool
	RumbleState(port uint32) (strong, weak uint16)
}

type Sensor interface {
	SetSensorState(port uint32, action abi.SensorAction, rate uint32) bool
	SensorInput(port, id uint32) float32
}

type Camera interface {
	Configure(cfg CameraConfig) bool
	Start() bool
	Stop()
	// Frame returns the next raw frame, if one is ready.
	Frame() (CameraFrame, bool)
}

type Location interface {
	Start() bool
	Stop()
	Position() (Position, bool)
	SetInterval(intervalMs, intervalDistance uint32)
}

// Microphone opens sample sources for core microphone handles.
type Microphone interface {
	// Open returns a source and the effective parameters, which may differ
	// from the requested ones.
	Open(params MicrophoneParams) (MicrophoneSource, MicrophoneParams, error)
}

// MicrophoneSource produces samples for one open microphone.
// Pull never blocks; it returns nil when nothing new was produced.
type MicrophoneSource interface {
	Pull() []int16
	SetActive(active bool)
	Close()
}

type Netpacket interface {
	// SetCallbacks installs the core interface, or removes it when cb is nil.
	SetCallbacks(cb *NetpacketCallbacks) bool
	Send(flags uint32, data []byte, clientID uint16)
	PollReceive()
}

type Disk interface {
	SetControl(ctl *DiskControl) bool
}

type LED interface {
	SetLEDState(led, state int32)
}

type Log interface {
	Log(level abi.LogLevel, msg string)
}

type Perf interface {
	TimeUsec() int64
	CPUFeatures() uint64
	Counter() uint64
	Register(ident string)
	Report(counters []PerfCounter)
}

type Power interface {
	DevicePower() (DevicePower, bool)
}

type User interface {
	Username() (string, bool)
	Language() abi.Language
}

type Message interface {
	SetMessage(msg MessageText) bool
	SetMessageExt(msg MessageExt) bool
}

// Options stores core option definitions and values.
type Options interface {
	// Define replaces the definitions. For v2 sets it returns whether the
	// frontend displays categories.
	Define(set options.Set) bool
	Value(key string) (string, bool)
	SetValue(key, value string) bool
	// Seed stores values without validating them. A seeded value takes
	// effect once a definition declares it. Seeding neither marks the store
	// updated nor runs the display callback.
	Seed(values map[string]string)
	Updated() bool
	SetVisible(key string, visible bool)
	SetUpdateDisplayCallback(fn func())
	Version() uint32
}

type Timing interface {
	// FrameDelta returns the time in microseconds to report to a core's frame
	// time callback. reference is the core's ideal frame time.
	FrameDelta(reference int64) int64
	FastForwarding() bool
	SetFastForwardingOverride(ov FastForwardingOverride) bool
	TargetRefreshRate() float32
	ThrottleState() ThrottleState
}

type MIDI interface {
	InputEnabled() bool
	OutputEnabled() bool
	Read() (byte, bool)
	Write(b byte, deltaTime uint32) bool
	Flush() bool
}

// Path answers the directory queries. A false result means the host has no
// such directory.
type Path interface {
	System() (string, bool)
	Save() (string, bool)
	CoreAssets() (string, bool)
	Libretro() (string, bool)
	Playlist() (string, bool)
	FileBrowserStart() (string, bool)
}
