package driver

import (
	"sync"

	"github.com/wippyai/retro-runtime/abi"
)

// MaxPorts bounds the port numbers accepted by the map-backed drivers.
const MaxPorts = 16

type rumbleState struct {
	strong uint16
	weak   uint16
}

// DictRumble stores the last requested strength per port and effect.
type DictRumble struct {
	ports map[uint32]rumbleState
	mu    sync.Mutex
}

func NewDictRumble() *DictRumble {
	return &DictRumble{ports: make(map[uint32]rumbleState)}
}

func (r *DictRumble) SetRumbleState(port uint32, effect abi.RumbleEffect, strength uint16) bool {
	if port >= MaxPorts {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.ports[port]
	switch effect {
	case abi.RumbleStrong:
		st.strong = strength
	case abi.RumbleWeak:
		st.weak = strength
	default:
		return false
	}
	r.ports[port] = st
	return true
}

func (r *DictRumble) RumbleState(port uint32) (strong, weak uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.ports[port]
	return st.strong, st.weak
}
