package driver

import "github.com/wippyai/retro-runtime/abi"

// Frame is one video frame produced by the core. Data is a copy owned by
// the receiver. Dupe frames repeat the previous frame and carry no data;
// HW frames were rendered into the hardware framebuffer.
type Frame struct {
	Data   []byte
	Width  uint32
	Height uint32
	Pitch  uint32
	Format abi.PixelFormat
	Dupe   bool
	HW     bool
}

type Geometry struct {
	BaseWidth   uint32
	BaseHeight  uint32
	MaxWidth    uint32
	MaxHeight   uint32
	AspectRatio float32
}

// SystemTiming is retro_system_timing.
type SystemTiming struct {
	FPS        float64
	SampleRate float64
}

// AVInfo is retro_system_av_info.
type AVInfo struct {
	Geometry Geometry
	Timing   SystemTiming
}

// HWRender is the request made through SET_HW_RENDER.
type HWRender struct {
	ContextType      abi.HWContextType
	VersionMajor     uint32
	VersionMinor     uint32
	Depth            bool
	Stencil          bool
	BottomLeftOrigin bool
	CacheContext     bool
	DebugContext     bool
}

type InputDescriptor struct {
	Description string
	Port        uint32
	Device      uint32
	Index       uint32
	ID          uint32
}

type ControllerDescription struct {
	Desc string
	ID   uint32
}

// ControllerInfo lists the device types a core supports on one port.
type ControllerInfo struct {
	Types []ControllerDescription
}

// KeyboardFunc delivers keyboard events to the core.
type KeyboardFunc func(down bool, keycode, character uint32, modifiers uint16)

// MessageText is a SET_MESSAGE notification shown for a number of frames.
type MessageText struct {
	Text   string
	Frames uint32
}

type MessageExt struct {
	Text     string
	Duration uint32
	Priority uint32
	Level    abi.LogLevel
	Target   abi.MessageTarget
	Type     abi.MessageType
	Progress int8
}

type DevicePower struct {
	State   abi.PowerState
	Seconds int32
	Percent int8
}

type Position struct {
	Lat           float64
	Lon           float64
	HorizAccuracy float64
	VertAccuracy  float64
}

// CameraConfig is what the core requests in GET_CAMERA_INTERFACE.
type CameraConfig struct {
	Caps   uint64
	Width  uint32
	Height uint32
}

// CameraFrame is a raw XRGB8888 camera frame.
type CameraFrame struct {
	Data   []uint32
	Width  uint32
	Height uint32
	Pitch  uint32
}

type FastForwardingOverride struct {
	Ratio         float32
	FastForward   bool
	Notification  bool
	InhibitToggle bool
}

type ThrottleState struct {
	Mode uint32
	Rate float32
}

type MicrophoneParams struct {
	Rate uint32
}

// PerfCounter is a snapshot of a core-registered performance counter.
type PerfCounter struct {
	Ident string
	Start uint64
	Total uint64
	Calls uint64
}

// AudioBufferStatusFunc reports host audio buffer state to the core.
type AudioBufferStatusFunc func(active bool, occupancy uint32, underrunLikely bool)

// GameInfo describes content handed to a core, used by disk replacement.
type GameInfo struct {
	Path string
	Data []byte
	Meta string
}

// DiskControl is the core's disk control interface. Ext functions are nil
// when the core registered the version 0 interface.
type DiskControl struct {
	SetEjectState     func(ejected bool) bool
	GetEjectState     func() bool
	GetImageIndex     func() uint32
	SetImageIndex     func(index uint32) bool
	GetNumImages      func() uint32
	ReplaceImageIndex func(index uint32, info *GameInfo) bool
	AddImageIndex     func() bool

	SetInitialImage func(index uint32, path string) bool
	GetImagePath    func(index uint32) (string, bool)
	GetImageLabel   func(index uint32) (string, bool)

	Version uint32
}

// NetpacketCallbacks is the core's netpacket interface. Start is called with
// the local client id once a session begins; the core then sends through
// Netpacket.Send.
type NetpacketCallbacks struct {
	Start           func(clientID uint16)
	Receive         func(data []byte, clientID uint16)
	Stop            func()
	Poll            func()
	Connected       func(clientID uint16) bool
	Disconnected    func(clientID uint16)
	ProtocolVersion string
}

// NetpacketState is the host side of a netpacket session.
type NetpacketState uint8

const (
	NetpacketDisconnected NetpacketState = iota
	NetpacketConnected
	NetpacketStarted
	NetpacketStopped
)

func (s NetpacketState) String() string {
	switch s {
	case NetpacketDisconnected:
		return "disconnected"
	case NetpacketConnected:
		return "connected"
	case NetpacketStarted:
		return "started"
	case NetpacketStopped:
		return "stopped"
	}
	return "unknown"
}
