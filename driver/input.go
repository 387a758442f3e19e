package driver

import (
	"sync"

	"github.com/wippyai/retro-runtime/abi"
)

// InputKey addresses one input state query.
type InputKey struct {
	Port   uint32
	Device uint32
	Index  uint32
	ID     uint32
}

// Joypad returns the key for a joypad button on port.
func Joypad(port, button uint32) InputKey {
	return InputKey{Port: port, Device: abi.DeviceJoypad, ID: button}
}

// InputFrame is the input state for one frame. Missing keys read as 0.
type InputFrame map[InputKey]int16

// IterableInput plays back a script of input frames, advancing one frame per
// Poll. Before the first Poll and after the script ends every query reads 0.
type IterableInput struct {
	script      []InputFrame
	cur         InputFrame
	descriptors []InputDescriptor
	ports       []ControllerInfo
	devices     map[uint32]uint32
	keyboard    KeyboardFunc
	polls       int
	mu          sync.Mutex

	Users        uint32
	Capabilities uint64
}

func NewIterableInput(script []InputFrame) *IterableInput {
	return &IterableInput{
		script:  script,
		devices: make(map[uint32]uint32),
		Users:   2,
		Capabilities: 1<<abi.DeviceJoypad | 1<<abi.DeviceAnalog |
			1<<abi.DeviceKeyboard | 1<<abi.DeviceMouse,
	}
}

func (in *IterableInput) Poll() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.polls < len(in.script) {
		in.cur = in.script[in.polls]
	} else {
		in.cur = nil
	}
	in.polls++
}

func (in *IterableInput) State(port, device, index, id uint32) int16 {
	in.mu.Lock()
	defer in.mu.Unlock()
	base := device & abi.DeviceMask
	if base == abi.DeviceJoypad && id == abi.JoypadMask {
		var mask int16
		for b := abi.JoypadB; b <= abi.JoypadR3; b++ {
			if in.cur[InputKey{Port: port, Device: abi.DeviceJoypad, Index: index, ID: b}] != 0 {
				mask |= 1 << b
			}
		}
		return mask
	}
	return in.cur[InputKey{Port: port, Device: base, Index: index, ID: id}]
}

func (in *IterableInput) SetDescriptors(descs []InputDescriptor) {
	in.mu.Lock()
	in.descriptors = descs
	in.mu.Unlock()
}

func (in *IterableInput) SetControllerInfo(ports []ControllerInfo) {
	in.mu.Lock()
	in.ports = ports
	in.mu.Unlock()
}

func (in *IterableInput) SetPortDevice(port, device uint32) {
	in.mu.Lock()
	in.devices[port] = device
	in.mu.Unlock()
}

func (in *IterableInput) SetKeyboardCallback(fn KeyboardFunc) {
	in.mu.Lock()
	in.keyboard = fn
	in.mu.Unlock()
}

func (in *IterableInput) DeviceCapabilities() uint64 { return in.Capabilities }
func (in *IterableInput) SupportsBitmasks() bool     { return true }
func (in *IterableInput) MaxUsers() uint32           { return in.Users }

// Key sends a keyboard event to the core, if it registered a callback.
func (in *IterableInput) Key(down bool, keycode, character uint32, modifiers uint16) bool {
	in.mu.Lock()
	fn := in.keyboard
	in.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(down, keycode, character, modifiers)
	return true
}

func (in *IterableInput) Descriptors() []InputDescriptor {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]InputDescriptor(nil), in.descriptors...)
}

func (in *IterableInput) ControllerInfo() []ControllerInfo {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]ControllerInfo(nil), in.ports...)
}

// PortDevice returns the device last assigned to port.
func (in *IterableInput) PortDevice(port uint32) (uint32, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	d, ok := in.devices[port]
	return d, ok
}

// Polls returns how many times the core polled input.
func (in *IterableInput) Polls() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.polls
}
